package note

import (
	"strings"

	gast "github.com/yuin/goldmark/ast"
	gextast "github.com/yuin/goldmark/extension/ast"
)

// astToBlocks converts a goldmark document's top-level children into Fracta
// Blocks. source is the original Markdown bytes goldmark parsed, needed
// because goldmark AST text nodes are byte-range segments into it rather
// than owned strings.
func astToBlocks(root gast.Node, source []byte) []Block {
	var blocks []Block
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		if b, ok := nodeToBlock(child, source); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func nodeToBlock(node gast.Node, source []byte) (Block, bool) {
	switch n := node.(type) {
	case *gast.Heading:
		return Heading{Level: n.Level, Content: collectInlines(n, source)}, true

	case *gast.Paragraph:
		return Paragraph{Content: collectInlines(n, source)}, true

	case *gast.TextBlock:
		// goldmark's form of a paragraph inside a tight list item.
		return Paragraph{Content: collectInlines(n, source)}, true

	case *gast.FencedCodeBlock:
		lang := string(n.Language(source))
		return CodeBlock{Language: firstWord(lang), Code: codeBlockLiteral(n, source)}, true

	case *gast.CodeBlock:
		return CodeBlock{Code: codeBlockLiteral(n, source)}, true

	case *gast.Blockquote:
		return BlockQuote{Children: astToBlocks(n, source)}, true

	case *gast.List:
		return convertList(n, source), true

	case *gextast.Table:
		return convertTable(n, source), true

	case *gast.ThematicBreak:
		return ThematicBreak{}, true

	case *gast.HTMLBlock:
		return HtmlBlock{HTML: htmlBlockLiteral(n, source)}, true

	default:
		return nil, false
	}
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func codeBlockLiteral(node gast.Node, source []byte) string {
	var buf strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func htmlBlockLiteral(n *gast.HTMLBlock, source []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		buf.Write(lines.At(i).Value(source))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(source))
	}
	return buf.String()
}

func convertList(n *gast.List, source []byte) Block {
	ordered := n.IsOrdered()
	start := 0
	if ordered {
		start = n.Start
	}

	var items []ListItem
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*gast.ListItem)
		if !ok {
			continue
		}
		items = append(items, listItemFromNode(item, source))
	}

	return List{Ordered: ordered, Start: start, Items: items}
}

// listItemFromNode reads task-list state off the item's first child
// (a paragraph, or a text block in a tight list), where goldmark's tasklist
// extension attaches a TaskCheckBox
// node, then collects the item's block children.
func listItemFromNode(node *gast.ListItem, source []byte) ListItem {
	var checked *bool

	if firstChild := node.FirstChild(); firstChild != nil {
		if box := firstChild.FirstChild(); box != nil {
			if cb, ok := box.(*gextast.TaskCheckBox); ok {
				v := cb.IsChecked
				checked = &v
			}
		}
	}

	var children []Block
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if b, ok := nodeToBlock(child, source); ok {
			children = append(children, b)
		}
	}

	return ListItem{Checked: checked, Children: children}
}

func convertTable(n *gextast.Table, source []byte) Block {
	alignments := make([]Alignment, len(n.Alignments))
	for i, a := range n.Alignments {
		switch a {
		case gextast.AlignLeft:
			alignments[i] = AlignLeft
		case gextast.AlignCenter:
			alignments[i] = AlignCenter
		case gextast.AlignRight:
			alignments[i] = AlignRight
		default:
			alignments[i] = AlignNone
		}
	}

	var rows []TableRow
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *gextast.TableHeader:
			rows = append(rows, TableRow{Header: true, Cells: collectRowCells(row, source)})
		case *gextast.TableRow:
			rows = append(rows, TableRow{Header: false, Cells: collectRowCells(row, source)})
		}
	}

	return Table{Alignments: alignments, Rows: rows}
}

func collectRowCells(row gast.Node, source []byte) [][]Inline {
	var cells [][]Inline
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, collectInlines(cell, source))
	}
	return cells
}

func collectInlines(node gast.Node, source []byte) []Inline {
	var inlines []Inline
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if in, ok := nodeToInline(child, source); ok {
			inlines = append(inlines, in)
		}
		// goldmark marks a line break as a flag on the Text node before it.
		if t, ok := child.(*gast.Text); ok {
			if t.HardLineBreak() {
				inlines = append(inlines, HardBreak{})
			} else if t.SoftLineBreak() {
				inlines = append(inlines, SoftBreak{})
			}
		}
	}
	return inlines
}

func nodeToInline(node gast.Node, source []byte) (Inline, bool) {
	switch n := node.(type) {
	case *gast.Text:
		return Text{Value: string(n.Segment.Value(source))}, true

	case *gast.String:
		return Text{Value: string(n.Value)}, true

	case *gast.CodeSpan:
		return Code{Value: collectPlainText(n, source)}, true

	case *gast.Emphasis:
		if n.Level >= 2 {
			return Strong{Children: collectInlines(n, source)}, true
		}
		return Emphasis{Children: collectInlines(n, source)}, true

	case *gextast.Strikethrough:
		return Strikethrough{Children: collectInlines(n, source)}, true

	case *gast.Link:
		return Link{URL: string(n.Destination), Title: string(n.Title), Children: collectInlines(n, source)}, true

	case *gast.AutoLink:
		url := string(n.URL(source))
		return Link{URL: url, Children: []Inline{Text{Value: url}}}, true

	case *gast.Image:
		return Image{URL: string(n.Destination), Title: string(n.Title), Alt: collectPlainText(n, source)}, true

	case *gast.RawHTML:
		return Html{Value: rawHTMLLiteral(n, source)}, true

	default:
		return nil, false
	}
}

func rawHTMLLiteral(n *gast.RawHTML, source []byte) string {
	var buf strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		buf.Write(n.Segments.At(i).Value(source))
	}
	return buf.String()
}

// collectPlainText flattens a node's descendant text, used for code spans,
// and alt text of images.
func collectPlainText(node gast.Node, source []byte) string {
	var buf strings.Builder
	collectPlainTextRecursive(node, source, &buf)
	return buf.String()
}

func collectPlainTextRecursive(node gast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *gast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
	case *gast.String:
		buf.Write(n.Value)
	case *gast.CodeSpan:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			collectPlainTextRecursive(child, source, buf)
		}
		return
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		collectPlainTextRecursive(child, source, buf)
	}
}
