package note

import "strings"

// extractText flattens a slice of Blocks to plain text, one block's content
// per line, suitable for full-text search indexing.
func extractText(blocks []Block) string {
	var buf strings.Builder
	for _, block := range blocks {
		extractBlockText(block, &buf)
	}
	return strings.TrimRight(buf.String(), " \t\n")
}

// inlinesToText flattens inline content to plain text with no trailing
// newline, for titles and other single-line projections.
func inlinesToText(inlines []Inline) string {
	var buf strings.Builder
	extractInlineText(inlines, &buf)
	return buf.String()
}

func extractBlockText(block Block, buf *strings.Builder) {
	switch b := block.(type) {
	case Heading:
		extractInlineText(b.Content, buf)
		buf.WriteByte('\n')
	case Paragraph:
		extractInlineText(b.Content, buf)
		buf.WriteByte('\n')
	case CodeBlock:
		buf.WriteString(b.Code)
		if !strings.HasSuffix(b.Code, "\n") {
			buf.WriteByte('\n')
		}
	case BlockQuote:
		for _, child := range b.Children {
			extractBlockText(child, buf)
		}
	case List:
		for _, item := range b.Items {
			for _, child := range item.Children {
				extractBlockText(child, buf)
			}
		}
	case Table:
		for _, row := range b.Rows {
			for i, cell := range row.Cells {
				if i > 0 {
					buf.WriteByte(' ')
				}
				extractInlineText(cell, buf)
			}
			buf.WriteByte('\n')
		}
	case ThematicBreak, HtmlBlock:
		// contributes no searchable text
	}
}

func extractInlineText(inlines []Inline, buf *strings.Builder) {
	for _, inline := range inlines {
		switch in := inline.(type) {
		case Text:
			buf.WriteString(in.Value)
		case Code:
			buf.WriteString(in.Value)
		case Emphasis:
			extractInlineText(in.Children, buf)
		case Strong:
			extractInlineText(in.Children, buf)
		case Strikethrough:
			extractInlineText(in.Children, buf)
		case Link:
			extractInlineText(in.Children, buf)
		case Image:
			buf.WriteString(in.Alt)
		case SoftBreak:
			buf.WriteByte(' ')
		case HardBreak:
			buf.WriteByte('\n')
		case Html:
			// raw markup contributes no searchable text
		}
	}
}
