// Package note parses Markdown files into a structured Document: YAML front
// matter plus a Block/Inline tree independent of the underlying parser
// library. The source Markdown file is always the source of truth — this
// package only reads and parses, never writes.
package note

// Block is a block-level element of a parsed document. Concrete types are
// Heading, Paragraph, CodeBlock, BlockQuote, List, Table, ThematicBreak, and
// HtmlBlock.
type Block interface {
	blockNode()
}

// Heading is an h1-h6.
type Heading struct {
	Level   int
	Content []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Content []Inline
}

// CodeBlock is a fenced or indented code block. Language is the info string's
// first word, or "" if absent.
type CodeBlock struct {
	Language string
	Code     string
}

// BlockQuote nests further blocks.
type BlockQuote struct {
	Children []Block
}

// List is an ordered or unordered list. Start is the first item number for
// ordered lists; it is meaningless otherwise.
type List struct {
	Ordered bool
	Start   int
	Items   []ListItem
}

// ListItem is one entry of a List. Checked is nil for a regular item, and
// non-nil for a GFM task-list item (true = checked).
type ListItem struct {
	Checked  *bool
	Children []Block
}

// Table is a GFM table.
type Table struct {
	Alignments []Alignment
	Rows       []TableRow
}

// TableRow is one row of a Table; Header marks the header row.
type TableRow struct {
	Header bool
	Cells  [][]Inline
}

// Alignment is a table column's declared alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{}

// HtmlBlock is raw HTML, preserved verbatim.
type HtmlBlock struct {
	HTML string
}

func (Heading) blockNode()       {}
func (Paragraph) blockNode()     {}
func (CodeBlock) blockNode()     {}
func (BlockQuote) blockNode()    {}
func (List) blockNode()          {}
func (Table) blockNode()         {}
func (ThematicBreak) blockNode() {}
func (HtmlBlock) blockNode()     {}

// Inline is an inline-level element within a block. Concrete types are Text,
// Code, Emphasis, Strong, Strikethrough, Link, Image, SoftBreak, HardBreak,
// and Html.
type Inline interface {
	inlineNode()
}

// Text is plain text content.
type Text struct {
	Value string
}

// Code is an inline code span.
type Code struct {
	Value string
}

// Emphasis is italicized content.
type Emphasis struct {
	Children []Inline
}

// Strong is bolded content.
type Strong struct {
	Children []Inline
}

// Strikethrough is GFM struck-through content.
type Strikethrough struct {
	Children []Inline
}

// Link is a hyperlink. Title is "" when absent.
type Link struct {
	URL      string
	Title    string
	Children []Inline
}

// Image is an embedded image. Alt is the flattened plain text of the
// original alt-text inline content.
type Image struct {
	URL   string
	Title string
	Alt   string
}

// SoftBreak renders as a single space.
type SoftBreak struct{}

// HardBreak is an explicit line break.
type HardBreak struct{}

// Html is a raw inline HTML span.
type Html struct {
	Value string
}

func (Text) inlineNode()          {}
func (Code) inlineNode()          {}
func (Emphasis) inlineNode()      {}
func (Strong) inlineNode()        {}
func (Strikethrough) inlineNode() {}
func (Link) inlineNode()          {}
func (Image) inlineNode()         {}
func (SoftBreak) inlineNode()     {}
func (HardBreak) inlineNode()     {}
func (Html) inlineNode()          {}
