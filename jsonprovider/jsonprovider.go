// Package jsonprovider implements content.Provider over a JSON dump of
// structured page content. It lets the converter run end to end without a
// PDF engine: any extractor that can emit spans, drawings, images, tables
// and links per page can feed the pipeline through a single JSON document.
package jsonprovider

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

type document struct {
	Pages []pageJSON     `json:"pages"`
	TOC   []tocEntryJSON `json:"toc,omitempty"`
}

type pageJSON struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Spans  []spanJSON  `json:"spans,omitempty"`
	Paths  []pathJSON  `json:"paths,omitempty"`
	Images []imageJSON `json:"images,omitempty"`
	Tables []tableJSON `json:"tables,omitempty"`
	Links  []linkJSON  `json:"links,omitempty"`
}

// bbox is [x0, y0, x1, y1] with the origin at the top-left corner.
type bbox [4]float64

func (b bbox) rect() geom.Rect {
	return geom.NewRect(b[0], b[1], b[2], b[3])
}

type spanJSON struct {
	BBox     bbox    `json:"bbox"`
	Text     string  `json:"text"`
	Size     float64 `json:"size"`
	Flags    uint8   `json:"flags,omitempty"`
	Alpha    *uint8  `json:"alpha,omitempty"`
	Block    int     `json:"block,omitempty"`
	Line     int     `json:"line,omitempty"`
	Vertical bool    `json:"vertical,omitempty"`
}

type pathJSON struct {
	BBox  bbox           `json:"bbox"`
	Kind  string         `json:"kind"`
	Width float64        `json:"width,omitempty"`
	Items []pathItemJSON `json:"items,omitempty"`
}

type pathItemJSON struct {
	Op     string       `json:"op"`
	Points [][2]float64 `json:"points"`
}

type imageJSON struct {
	BBox bbox   `json:"bbox"`
	Data []byte `json:"data,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

type tableJSON struct {
	BBox       bbox   `json:"bbox"`
	HeaderBBox *bbox  `json:"header_bbox,omitempty"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Markdown   string `json:"markdown"`
}

type linkJSON struct {
	BBox bbox   `json:"bbox"`
	URI  string `json:"uri"`
}

type tocEntryJSON struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

var pathKinds = map[string]content.PathKind{
	"fill":   content.PathFill,
	"stroke": content.PathStroke,
}

var pathOps = map[string]content.PathOp{
	"l":  content.OpLine,
	"c":  content.OpCurve,
	"qu": content.OpQuad,
	"re": content.OpRect,
}

// Provider serves decoded page content. It satisfies content.Provider.
type Provider struct {
	pages []*content.Page
	toc   []content.TOCEntry
}

// Open reads and decodes a JSON page dump from a file.
func Open(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return p, nil
}

// Decode reads a JSON page dump from r.
func Decode(r io.Reader) (*Provider, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding page dump: %w", err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("page dump contains no pages")
	}

	p := &Provider{}
	for i, pj := range doc.Pages {
		page, err := convertPage(i, pj)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		p.pages = append(p.pages, page)
	}
	for _, t := range doc.TOC {
		p.toc = append(p.toc, content.TOCEntry{Level: t.Level, Title: t.Title, Page: t.Page})
	}
	return p, nil
}

func convertPage(index int, pj pageJSON) (*content.Page, error) {
	if pj.Width <= 0 || pj.Height <= 0 {
		return nil, fmt.Errorf("page dimensions must be positive, got %gx%g", pj.Width, pj.Height)
	}
	page := &content.Page{
		Index: index,
		Rect:  geom.NewRect(0, 0, pj.Width, pj.Height),
	}

	for _, s := range pj.Spans {
		alpha := 255.0
		if s.Alpha != nil {
			alpha = float64(*s.Alpha)
		}
		page.Spans = append(page.Spans, content.Span{
			BBox:     s.BBox.rect(),
			Text:     s.Text,
			FontSize: s.Size,
			Flags:    content.StyleFlags(s.Flags),
			Alpha:    alpha,
			Block:    s.Block,
			Line:     s.Line,
			Vertical: s.Vertical,
		})
	}

	for _, pa := range pj.Paths {
		kind, ok := pathKinds[pa.Kind]
		if !ok {
			kind = content.PathOther
		}
		path := content.DrawingPath{
			BBox:  pa.BBox.rect(),
			Kind:  kind,
			Width: pa.Width,
		}
		for _, item := range pa.Items {
			op, ok := pathOps[item.Op]
			if !ok {
				return nil, fmt.Errorf("unknown path op %q", item.Op)
			}
			points := make([]geom.Point, len(item.Points))
			for i, pt := range item.Points {
				points[i] = geom.Point{X: pt[0], Y: pt[1]}
			}
			path.Items = append(path.Items, content.PathItem{Op: op, Points: points})
		}
		page.Paths = append(page.Paths, path)
	}

	for _, img := range pj.Images {
		page.Images = append(page.Images, content.Image{
			BBox: img.BBox.rect(),
			Data: img.Data,
			Ref:  img.Ref,
		})
	}

	for _, t := range pj.Tables {
		st := staticTable{
			bbox:     t.BBox.rect(),
			rows:     t.Rows,
			cols:     t.Cols,
			markdown: t.Markdown,
		}
		if t.HeaderBBox != nil {
			st.header = t.HeaderBBox.rect()
		}
		page.Tables = append(page.Tables, st)
	}

	for _, l := range pj.Links {
		page.Links = append(page.Links, content.Link{BBox: l.BBox.rect(), URI: l.URI})
	}
	return page, nil
}

// PageCount returns the number of pages in the dump.
func (p *Provider) PageCount() int {
	return len(p.pages)
}

// Page returns the page at the 0-based index.
func (p *Provider) Page(index int) (*content.Page, error) {
	if index < 0 || index >= len(p.pages) {
		return nil, fmt.Errorf("page index %d out of range 0..%d", index, len(p.pages)-1)
	}
	return p.pages[index], nil
}

// TOC returns the document outline from the dump, possibly empty.
func (p *Provider) TOC() []content.TOCEntry {
	return p.toc
}

// Capabilities reports accurate geometry: dumps carry exact span boxes.
func (p *Provider) Capabilities() content.Capabilities {
	return content.Capabilities{AccurateBBoxes: true}
}

// staticTable is a pre-rendered table from the dump.
type staticTable struct {
	bbox     geom.Rect
	header   geom.Rect
	rows     int
	cols     int
	markdown string
}

func (t staticTable) BBox() geom.Rect       { return t.bbox }
func (t staticTable) HeaderBBox() geom.Rect { return t.header }
func (t staticTable) RowCount() int         { return t.rows }
func (t staticTable) ColCount() int         { return t.cols }
func (t staticTable) ToMarkdown() string    { return t.markdown }
