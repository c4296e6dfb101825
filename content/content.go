// Package content defines the data model delivered by a PageContentProvider:
// text spans, vector drawing paths, raster images, detected tables and
// hyperlink hot-zones, all positioned on a page rectangle. The layout engine
// consumes these values read-only; providers own extraction, rendering and
// table detection.
package content

import "github.com/tsawler/pagemd/geom"

// StyleFlags is a bitmask of font style attributes on a span.
type StyleFlags int

const (
	StyleSuperscript StyleFlags = 1 << iota
	StyleItalic
	StyleMono
	StyleBold
	StyleStrikeout
)

// Has returns true if all flags in mask are set.
func (f StyleFlags) Has(mask StyleFlags) bool {
	return f&mask == mask
}

// Span is a run of glyphs sharing one font, size and style combination.
type Span struct {
	// BBox is the span's bounding box on the page.
	BBox geom.Rect

	// Text is the decoded glyph run.
	Text string

	// FontSize is the nominal font size in page units.
	FontSize float64

	// Flags carries the style attributes.
	Flags StyleFlags

	// Alpha is the text opacity; 0 means invisible text (OCR layers,
	// redactions).
	Alpha float64

	// Block and Line identify the structural block and line the span came
	// from before reassembly. They survive reassembly so the serializer can
	// place paragraph breaks where the provider saw block boundaries.
	Block int
	Line  int

	// Vertical marks text not written horizontally. Vertical spans are
	// excluded from lines and act as walls during column detection.
	Vertical bool
}

// PathKind classifies a drawing path by its paint operation.
type PathKind int

const (
	PathFill PathKind = iota
	PathStroke
	PathOther
)

// PathOp identifies a path drawing primitive.
type PathOp int

const (
	OpLine PathOp = iota
	OpCurve
	OpQuad
	OpRect
)

// PathItem is one drawing primitive inside a path.
type PathItem struct {
	Op     PathOp
	Points []geom.Point
}

// DrawingPath is one vector drawing on the page. Never mutated by the engine.
type DrawingPath struct {
	BBox  geom.Rect
	Kind  PathKind
	Width float64 // stroke width; 0 if unknown
	Items []PathItem
}

// Image describes a raster image placement.
type Image struct {
	BBox geom.Rect

	// Data optionally holds the encoded image bytes (PNG, JPEG, ...) for
	// embedding or annotation. Providers that cannot render leave it nil.
	Data []byte

	// Ref is a provider-chosen identifier used in generated file names.
	Ref string
}

// Table is the narrow contract to an externally detected table. The engine
// only uses its geometry and delegated Markdown rendering.
type Table interface {
	// BBox is the table body bounding box.
	BBox() geom.Rect
	// HeaderBBox is the header row bounding box, possibly outside BBox.
	HeaderBBox() geom.Rect
	// RowCount and ColCount describe the detected grid.
	RowCount() int
	ColCount() int
	// ToMarkdown renders the table in GitHub Markdown.
	ToMarkdown() string
}

// Link is a hyperlink hot-zone on the page.
type Link struct {
	BBox geom.Rect
	URI  string
}

// TOCEntry is one table-of-contents item supplied by the provider.
type TOCEntry struct {
	Level int
	Title string
	Page  int // 1-based target page
}

// Page is the read-only view of one page's content, assembled once per page
// and discarded after that page has been serialized.
type Page struct {
	Index  int // 0-based
	Rect   geom.Rect
	Spans  []Span
	Paths  []DrawingPath
	Images []Image
	Tables []Table
	Links  []Link
}

// Capabilities advertises what a provider can deliver. The converter rejects
// providers without accurate span geometry at construction time.
type Capabilities struct {
	// AccurateBBoxes is true when span bounding boxes are glyph-accurate
	// rather than approximated from font metrics.
	AccurateBBoxes bool

	// RendersImages is true when Image.Data is populated on request.
	RendersImages bool
}

// Provider supplies per-page content to the converter. Implementations
// perform all I/O; the layout engine itself never touches the source
// document.
type Provider interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// Page assembles the content view for the 0-based page index. Errors
	// (corrupt page, missing object) propagate to the caller unchanged.
	Page(index int) (*Page, error)

	// TOC returns the document outline, possibly empty.
	TOC() []TOCEntry

	// Capabilities describes the provider's accuracy and rendering support.
	Capabilities() Capabilities
}

// TableStrategyProvider is implemented by providers that accept a named
// table-detection strategy. The string is opaque to the engine.
type TableStrategyProvider interface {
	SetTableStrategy(name string)
}
