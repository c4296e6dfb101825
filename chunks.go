package pagemd

import (
	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// PageChunk is the conversion result for a single page, suitable for
// retrieval pipelines that want page-granular documents with metadata.
type PageChunk struct {
	// PageNumber is 1-indexed.
	PageNumber int

	// Text is the page's markdown, normalized, ending with one newline.
	Text string

	// Tables describes the tables detected on the page.
	Tables []TableInfo

	// Images describes the raster images found on the page.
	Images []ImageInfo

	// TOCEntries are the document outline items pointing at this page.
	TOCEntries []content.TOCEntry
}

// TableInfo summarizes a detected table.
type TableInfo struct {
	// BBox covers the table body and its header row.
	BBox    geom.Rect
	Rows    int
	Columns int
}

// ImageInfo summarizes a page image.
type ImageInfo struct {
	BBox geom.Rect
}
