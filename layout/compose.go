package layout

import (
	"sort"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// RegionKind identifies what a composed region holds.
type RegionKind int

const (
	// RegionText is a run of consecutive text lines inside one column box.
	RegionText RegionKind = iota
	// RegionTable is a detected table rendered as a unit.
	RegionTable
	// RegionImage is a raster image.
	RegionImage
	// RegionGraphic is a significant vector graphics cluster.
	RegionGraphic
)

// Region is one element of a page's reading order. Exactly one of the
// payload fields is set, selected by Kind.
type Region struct {
	Kind RegionKind

	// Box is the column box a text region belongs to. Unset for other kinds.
	Box geom.Rect

	// Lines holds a text region's lines. For table, image and graphic
	// regions it holds the lines that fell inside the region's rectangle,
	// for callers that want to render covered text anyway.
	Lines []Line

	Table   content.Table
	Image   *content.Image
	Cluster *GraphicsCluster
}

// Rect returns the bounding rectangle of the region's payload.
func (r Region) Rect() geom.Rect {
	switch r.Kind {
	case RegionTable:
		return r.Table.BBox()
	case RegionImage:
		return r.Image.BBox
	case RegionGraphic:
		return r.Cluster.Rect
	default:
		out := geom.Rect{}
		for _, line := range r.Lines {
			out = out.Union(line.Rect)
		}
		return out
	}
}

// ComposeInput bundles the classified page content the composer orders.
type ComposeInput struct {
	// Boxes are the column boxes in reading order.
	Boxes []geom.Rect
	// Lines are the assembled text lines of the page.
	Lines []Line
	// Tables are detected tables.
	Tables []content.Table
	// Images are raster images large enough to present.
	Images []content.Image
	// Clusters are significant vector graphics clusters.
	Clusters []GraphicsCluster
}

// Composer linearizes a page: text lines grouped by column box, with tables
// and figures spliced in where the vertical flow reaches them. Every table,
// image and cluster appears exactly once; every line lands in at most one
// text region.
type Composer struct{}

// NewComposer creates a composer.
func NewComposer() *Composer {
	return &Composer{}
}

// figure is a table, image or cluster awaiting placement.
type figure struct {
	kind    RegionKind
	rect    geom.Rect
	table   content.Table
	image   *content.Image
	cluster *GraphicsCluster
	lines   []Line
}

func (f *figure) region() Region {
	return Region{Kind: f.kind, Table: f.table, Image: f.image, Cluster: f.cluster, Lines: f.lines}
}

// Compose returns the page's regions in reading order. Tables and figures
// whose bottom lies above the next text line flush before that line; any
// not reached by text flush at the end, tables first.
func (c *Composer) Compose(in ComposeInput) []Region {
	tables := make([]figure, 0, len(in.Tables))
	for _, t := range in.Tables {
		tables = append(tables, figure{kind: RegionTable, rect: t.BBox(), table: t})
	}
	figures := make([]figure, 0, len(in.Images)+len(in.Clusters))
	for i := range in.Images {
		img := &in.Images[i]
		figures = append(figures, figure{kind: RegionImage, rect: img.BBox, image: img})
	}
	for i := range in.Clusters {
		cl := &in.Clusters[i]
		figures = append(figures, figure{kind: RegionGraphic, rect: cl.Rect, cluster: cl})
	}
	sortFigures(tables)
	sortFigures(figures)

	tableRects := make([]geom.Rect, len(tables))
	for i, t := range tables {
		tableRects[i] = t.rect
	}
	figureRects := make([]geom.Rect, len(figures))
	for i, f := range figures {
		figureRects[i] = f.rect
	}

	writtenTables := make([]bool, len(tables))
	writtenFigures := make([]bool, len(figures))

	var regions []Region
	var current *Region

	closeText := func() {
		if current != nil && len(current.Lines) > 0 {
			regions = append(regions, *current)
		}
		current = nil
	}
	// A table or figure belongs to the column it shares an x-range with;
	// one in another column must wait for its own box.
	flushAbove := func(box geom.Rect, y float64) {
		for i := range tables {
			if !writtenTables[i] && tables[i].rect.Y1 <= y && tables[i].rect.OverlapsX(box) {
				regions = append(regions, tables[i].region())
				writtenTables[i] = true
			}
		}
		for i := range figures {
			if !writtenFigures[i] && figures[i].rect.Y1 <= y && figures[i].rect.OverlapsX(box) {
				regions = append(regions, figures[i].region())
				writtenFigures[i] = true
			}
		}
	}

	// Lines covered by a table or figure belong to that region, not to the
	// text flow. Claim them first so a region flushed early still carries
	// its covered lines.
	claimed := make([]bool, len(in.Lines))
	for i, line := range in.Lines {
		if idx, ok := geom.FirstIntersecting(line.Rect, tableRects, geom.OverlapMidpoint); ok {
			tables[idx].lines = append(tables[idx].lines, line)
			claimed[i] = true
			continue
		}
		if idx, ok := geom.FirstIntersecting(line.Rect, figureRects, geom.OverlapMidpoint); ok {
			figures[idx].lines = append(figures[idx].lines, line)
			claimed[i] = true
		}
	}

	for _, box := range in.Boxes {
		boxRegion := Region{Kind: RegionText, Box: box}
		current = &boxRegion
		for i, line := range in.Lines {
			if claimed[i] || !box.ContainsPoint(line.Rect.Mid()) {
				continue
			}
			claimed[i] = true

			// A table or figure ending above this line prints first. That
			// splits the text region so the splice keeps line order intact.
			if pendingAbove(tables, writtenTables, box, line.Rect.Y0) ||
				pendingAbove(figures, writtenFigures, box, line.Rect.Y0) {
				closeText()
				flushAbove(box, line.Rect.Y0)
				next := Region{Kind: RegionText, Box: box}
				current = &next
			}
			current.Lines = append(current.Lines, line)
		}
		closeText()
	}

	for i := range tables {
		if !writtenTables[i] {
			regions = append(regions, tables[i].region())
		}
	}
	for i := range figures {
		if !writtenFigures[i] {
			regions = append(regions, figures[i].region())
		}
	}
	return regions
}

func pendingAbove(figs []figure, written []bool, box geom.Rect, y float64) bool {
	for i, f := range figs {
		if !written[i] && f.rect.Y1 <= y && f.rect.OverlapsX(box) {
			return true
		}
	}
	return false
}

func sortFigures(figs []figure) {
	sort.SliceStable(figs, func(i, j int) bool {
		if figs[i].rect.Y1 != figs[j].rect.Y1 {
			return figs[i].rect.Y1 < figs[j].rect.Y1
		}
		return figs[i].rect.X0 < figs[j].rect.X0
	})
}
