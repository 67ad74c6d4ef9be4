package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
)

// documentMapping describes how path, title, and content fields are
// analyzed. title and content use bleve's CJK analyzer: it performs
// Unicode-aware segmentation with bigram shingling over CJK scripts and
// falls through to ordinary lowercased tokenization for everything else, so
// "Rust" and "机器学习" are both searchable without a second analyzer
// pipeline. path is indexed as an unanalyzed keyword so it can be used as a
// stable document identifier for delete-then-add updates, and excluded from
// the composite _all field so an unqualified query searches title/content
// only, never matching on a file's own path.
func documentMapping() *mapping.IndexMappingImpl {
	content := bleve.NewTextFieldMapping()
	content.Analyzer = cjk.AnalyzerName

	title := bleve.NewTextFieldMapping()
	title.Analyzer = cjk.AnalyzerName

	path := bleve.NewTextFieldMapping()
	path.Analyzer = "keyword"
	path.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("title", title)
	doc.AddFieldMappingsAt("path", path)

	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = cjk.AnalyzerName
	im.DefaultMapping = doc
	return im
}
