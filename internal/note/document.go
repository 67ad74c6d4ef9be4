package note

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Document is a parsed Markdown file: optional YAML front matter plus its
// block-level content.
type Document struct {
	FrontMatter *FrontMatter
	Blocks      []Block
}

// Parse parses raw Markdown content into a Document. Front matter, if
// present, is extracted before the body reaches the Markdown parser so a
// malformed or non-mapping block never leaks stray text into the body.
func Parse(markdown string) Document {
	frontRaw, body, hasFront := splitFrontMatter(markdown)

	var fm *FrontMatter
	if hasFront {
		fm, _ = parseFrontMatter(frontRaw)
	}

	source := []byte(body)
	root := markdownParser.Parser().Parse(text.NewReader(source))
	blocks := astToBlocks(root, source)

	return Document{FrontMatter: fm, Blocks: blocks}
}

// splitFrontMatter extracts a leading "---\n...\n---\n" delimited block.
// hasFront is false, and body equals markdown unchanged, when no front
// matter delimiter is present at all — this is distinct from front matter
// that fails to parse as a YAML mapping, which parseFrontMatter rejects on
// its own.
func splitFrontMatter(markdown string) (raw string, body string, hasFront bool) {
	const delim = "---"

	lines := strings.Split(markdown, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delim {
		return "", markdown, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delim {
			raw = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return raw, body, true
		}
	}
	return "", markdown, false
}

// PlainText extracts all plain text content, suitable for full-text search
// indexing.
func (d Document) PlainText() string {
	return extractText(d.Blocks)
}

// Title returns the document title: the front matter "title" field if
// present, else the text of the first top-level h1.
func (d Document) Title() (string, bool) {
	if d.FrontMatter != nil {
		if title, ok := d.FrontMatter.String("title"); ok {
			return title, true
		}
	}
	for _, block := range d.Blocks {
		if h, ok := block.(Heading); ok && h.Level == 1 {
			return inlinesToText(h.Content), true
		}
	}
	return "", false
}
