// Package pagemd converts structured page content into GitHub-flavored
// markdown in natural reading order. It detects multi-column layouts,
// headers, code blocks, lists, tables and figures from span and drawing
// geometry supplied by a content.Provider.
//
// Basic usage:
//
//	md, err := pagemd.New(provider).Markdown()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	md, err := pagemd.New(provider).
//	    Pages(1, 2, 3).
//	    Margins(0, 50, 0, 50).
//	    WriteImages("out/").
//	    Markdown()
//
// For advanced use cases the lower-level layout and markdown packages are
// also available.
package pagemd

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
	"github.com/tsawler/pagemd/layout"
	"github.com/tsawler/pagemd/markdown"
)

// PageSeparator separates pages in concatenated markdown output.
const PageSeparator = "\n-----\n\n"

// Converter converts a document to markdown. Configuration methods return
// a new Converter, so a configured instance can be reused and forked.
type Converter struct {
	provider content.Provider
	options  convertOptions
	err      error
}

// New creates a Converter over the given provider. Providers without
// accurate span geometry are rejected; the error surfaces at the first
// terminal operation.
//
// Example:
//
//	md, err := pagemd.New(provider).Markdown()
func New(provider content.Provider) *Converter {
	c := &Converter{provider: provider, options: defaultOptions()}
	if provider == nil {
		c.err = fmt.Errorf("nil provider: %w", ErrUnsupportedProvider)
		return c
	}
	if !provider.Capabilities().AccurateBBoxes {
		c.err = fmt.Errorf("accurate span geometry required: %w", ErrUnsupportedProvider)
	}
	return c
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	md := pagemd.Must(pagemd.New(provider).Markdown())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func (c *Converter) clone() *Converter {
	return &Converter{
		provider: c.provider,
		options:  c.options.clone(),
		err:      c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Pages selects which pages to convert (1-indexed). Multiple calls are
// cumulative. Without a selection all pages convert.
//
// Example:
//
//	md, err := pagemd.New(provider).Pages(1, 3, 5).Markdown()
func (c *Converter) Pages(pages ...int) *Converter {
	newConv := c.clone()
	newConv.options.pages = append(newConv.options.pages, pages...)
	return newConv
}

// PageRange selects a range of pages to convert (1-indexed, inclusive).
//
// Example:
//
//	md, err := pagemd.New(provider).PageRange(5, 10).Markdown()
func (c *Converter) PageRange(start, end int) *Converter {
	newConv := c.clone()
	for i := start; i <= end; i++ {
		newConv.options.pages = append(newConv.options.pages, i)
	}
	return newConv
}

// Margins excludes content within the given distances from the page edges.
// The default is (0, 50, 0, 50): no side margins, 50 units top and bottom
// for running headers and footers.
func (c *Converter) Margins(left, top, right, bottom float64) *Converter {
	newConv := c.clone()
	newConv.options.margins = [4]float64{left, top, right, bottom}
	return newConv
}

// WriteImages saves page images as PNG files into dir and references them
// from the markdown. Mutually exclusive with EmbedImages.
func (c *Converter) WriteImages(dir string) *Converter {
	newConv := c.clone()
	newConv.options.imageDir = dir
	return newConv
}

// EmbedImages emits images as base64 data URIs inside the markdown.
// Mutually exclusive with WriteImages.
func (c *Converter) EmbedImages() *Converter {
	newConv := c.clone()
	newConv.options.embedImages = true
	return newConv
}

// ImageSizeLimit sets the minimum image size for rendering, as a fraction of
// the page dimensions. Images narrower or shorter than the fraction are
// treated as decoration and not written or embedded. Default: 0.05.
func (c *Converter) ImageSizeLimit(fraction float64) *Converter {
	newConv := c.clone()
	newConv.options.imageSizeLimit = fraction
	return newConv
}

// IgnoreCode disables code block detection; mono-spaced text is written as
// ordinary text.
func (c *Converter) IgnoreCode() *Converter {
	newConv := c.clone()
	newConv.options.ignoreCode = true
	return newConv
}

// ExcludeFigureText drops text lines covered by images and vector graphics
// instead of writing them after the figure reference.
func (c *Converter) ExcludeFigureText() *Converter {
	newConv := c.clone()
	newConv.options.forceText = false
	return newConv
}

// MidpointLinks matches link hot zones by span midpoint instead of the
// default 70% area overlap.
func (c *Converter) MidpointLinks() *Converter {
	newConv := c.clone()
	newConv.options.linkConfig.Strategy = markdown.LinkMidpoint
	return newConv
}

// Annotate consults the given annotator for every written or embedded image
// and appends its description as an HTML comment.
//
// Example:
//
//	ocr, err := annotate.NewTesseract()
//	// handle err, defer ocr.Close()
//	md, err := pagemd.New(provider).WriteImages("out/").Annotate(ocr).Markdown()
func (c *Converter) Annotate(a markdown.Annotator) *Converter {
	newConv := c.clone()
	newConv.options.annotator = a
	return newConv
}

// ExtendRight widens column boxes with free space on their right up to the
// text area's right edge. Useful for single-column documents with short
// trailing lines.
func (c *Converter) ExtendRight() *Converter {
	newConv := c.clone()
	newConv.options.extendRight = true
	return newConv
}

// AsidesLast moves text on shaded backgrounds to the end of each page's
// reading order.
func (c *Converter) AsidesLast() *Converter {
	newConv := c.clone()
	newConv.options.shadedLast = true
	return newConv
}

// GraphicsProcessor replaces the default vector graphics classifier.
func (c *Converter) GraphicsProcessor(p layout.GraphicsProcessor) *Converter {
	newConv := c.clone()
	newConv.options.graphics = p
	return newConv
}

// PageWriter replaces the default markdown writer. A custom writer owns its
// own serialization options; WriteImages, IgnoreCode and related settings do
// not apply to it.
func (c *Converter) PageWriter(w markdown.PageWriter) *Converter {
	newConv := c.clone()
	newConv.options.writer = w
	return newConv
}

// TableStrategy selects the provider's table detection strategy. Known
// strategies are "lines", "lines_strict" (the default) and "text".
// Providers without strategy support keep their built-in behavior.
func (c *Converter) TableStrategy(name string) *Converter {
	newConv := c.clone()
	newConv.options.tableStrategy = name
	return newConv
}

// GraphicsLimit skips layout analysis on pages with more vector drawings
// than the limit and emits a placeholder note instead. Zero means no limit.
func (c *Converter) GraphicsLimit(n int) *Converter {
	newConv := c.clone()
	newConv.options.graphicsLimit = n
	return newConv
}

// Parallel converts up to n pages concurrently. Page content is read
// sequentially up front; results keep page order.
func (c *Converter) Parallel(n int) *Converter {
	newConv := c.clone()
	newConv.options.parallel = n
	return newConv
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages the provider holds.
func (c *Converter) PageCount() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.provider.PageCount(), nil
}

// Markdown converts the selected pages and returns one concatenated
// markdown string with PageSeparator between pages.
func (c *Converter) Markdown() (string, error) {
	chunks, err := c.Chunks()
	if err != nil {
		return "", err
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	return strings.Join(texts, PageSeparator), nil
}

// Chunks converts the selected pages and returns one PageChunk per page, in
// page order.
func (c *Converter) Chunks() ([]PageChunk, error) {
	if c.err != nil {
		return nil, c.err
	}
	if err := c.options.validate(); err != nil {
		return nil, err
	}

	if tsp, ok := c.provider.(content.TableStrategyProvider); ok {
		tsp.SetTableStrategy(c.options.tableStrategy)
	}

	indices, err := c.pageIndices()
	if err != nil {
		return nil, err
	}

	// Read all selected pages first. Header statistics need the whole
	// selection, and conversion can then run without touching the provider.
	pages := make([]*content.Page, len(indices))
	for i, idx := range indices {
		page, err := c.provider.Page(idx)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", idx+1, err)
		}
		pages[i] = page
	}

	writer := c.options.writer
	if writer == nil {
		writer = markdown.NewWriterWithConfig(nil, c.options.writerConfig())
	}
	writer.Fit(pages)
	toc := c.provider.TOC()

	chunks := make([]PageChunk, len(pages))
	g := new(errgroup.Group)
	g.SetLimit(c.options.parallel)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			chunk, err := c.convertPage(page, writer)
			if err != nil {
				return fmt.Errorf("converting page %d: %w", page.Index+1, err)
			}
			for _, entry := range toc {
				if entry.Page == chunk.PageNumber {
					chunk.TOCEntries = append(chunk.TOCEntries, entry)
				}
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// pageIndices resolves the configured 1-indexed page selection to 0-based
// provider indices.
func (c *Converter) pageIndices() ([]int, error) {
	count := c.provider.PageCount()
	if c.options.pages == nil {
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	indices := make([]int, 0, len(c.options.pages))
	for _, p := range c.options.pages {
		if p < 1 || p > count {
			return nil, configErr("Pages", fmt.Sprintf("page %d out of range 1..%d", p, count))
		}
		indices = append(indices, p-1)
	}
	return indices, nil
}

// convertPage runs the layout pipeline for one page and serializes it.
func (c *Converter) convertPage(page *content.Page, writer markdown.PageWriter) (PageChunk, error) {
	o := c.options
	chunk := PageChunk{PageNumber: page.Index + 1}

	if o.graphicsLimit > 0 && len(page.Paths) > o.graphicsLimit {
		chunk.Text = fmt.Sprintf("**Ignoring page %d with %d vector graphics.**\n",
			page.Index+1, len(page.Paths))
		return chunk, nil
	}

	clip := page.Rect
	clip.X0 += o.margins[0]
	clip.Y0 += o.margins[1]
	clip.X1 -= o.margins[2]
	clip.Y1 -= o.margins[3]

	// Column detection works on the provider's extraction lines, which keep
	// side-by-side columns apart. Visual lines are assembled per column box
	// afterwards, so fragments split across a column merge while fragments
	// from different columns never do.
	assembler := layout.NewLineAssembler()
	srcLines := assembler.SourceLines(page.Spans, clip)

	var vertical []geom.Rect
	for _, s := range page.Spans {
		if s.Vertical {
			vertical = append(vertical, s.BBox)
		}
	}

	// Table areas include the header row, which may sit outside the body
	// bbox.
	var tableRects []geom.Rect
	for _, t := range page.Tables {
		r := t.BBox().Union(t.HeaderBBox())
		tableRects = append(tableRects, r)
		chunk.Tables = append(chunk.Tables, TableInfo{
			BBox:    r,
			Rows:    t.RowCount(),
			Columns: t.ColCount(),
		})
	}

	// Drawings inside tables are grid decoration, not figures.
	var paths []content.DrawingPath
	for _, p := range page.Paths {
		if _, ok := geom.FirstIntersecting(p.BBox, tableRects, geom.OverlapMidpoint); ok {
			continue
		}
		paths = append(paths, p)
	}
	classifier := o.graphics
	if classifier == nil {
		classifier = layout.NewGraphicsClassifier()
	}
	graphics := classifier.Classify(paths, page.Rect)

	avoid := append([]geom.Rect{}, tableRects...)
	for _, cl := range graphics.Clusters {
		avoid = append(avoid, cl.Rect)
	}

	// Images only shape the layout when they will be rendered; otherwise
	// their text flows as ordinary content.
	renderImages := o.imageDir != "" || o.embedImages
	minW := page.Rect.Width() * o.imageSizeLimit
	minH := page.Rect.Height() * o.imageSizeLimit
	var images []content.Image
	for _, img := range page.Images {
		chunk.Images = append(chunk.Images, ImageInfo{BBox: img.BBox})
		if img.BBox.Width() < minW || img.BBox.Height() < minH {
			continue
		}
		if renderImages && clip.Contains(img.BBox) {
			images = append(images, img)
			avoid = append(avoid, img.BBox)
		}
	}

	colCfg := layout.DefaultColumnConfig()
	colCfg.ExtendRight = o.extendRight
	colCfg.ShadedLast = o.shadedLast
	boxes := layout.NewColumnFinderWithConfig(colCfg).Find(layout.ColumnInput{
		PageRect: clip,
		Lines:    srcLines,
		Avoid:    avoid,
		Vertical: vertical,
		Paths:    graphics.Paths,
	})

	// Visual lines per column box, plus the lines covered by tables and
	// figures so the composer can attach them to their region.
	var lines []layout.Line
	for _, box := range boxes {
		lines = append(lines, assembler.Assemble(page.Spans, box)...)
	}
	for _, r := range avoid {
		if covered := r.Intersect(clip); covered.IsValid() && !covered.IsEmpty() {
			lines = append(lines, assembler.Assemble(page.Spans, covered)...)
		}
	}

	regions := layout.NewComposer().Compose(layout.ComposeInput{
		Boxes:    boxes,
		Lines:    lines,
		Tables:   page.Tables,
		Images:   images,
		Clusters: graphics.Clusters,
	})

	text, err := writer.Page(markdown.PageInput{Page: page, Regions: regions, Clip: clip})
	if err != nil {
		return chunk, err
	}
	chunk.Text = text
	return chunk, nil
}
