package layout

import (
	"sort"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// GraphicsCluster is a group of drawing paths whose rectangles overlap
// transitively. Member path boxes are always contained in the cluster rect.
type GraphicsCluster struct {
	Rect  geom.Rect
	Paths []content.DrawingPath
}

// GraphicsConfig holds configuration for graphics classification.
type GraphicsConfig struct {
	// SignificanceRatio is the area fraction of the cluster rect below which
	// a member path counts as interior content rather than a border or
	// background. Default: 0.95; sensible range 0.90 to 0.975.
	SignificanceRatio float64

	// MinWidth and MinHeight drop clusters smaller than this in either
	// dimension (stray marks, bullet glyphs drawn as paths). Default: 30x30.
	MinWidth  float64
	MinHeight float64

	// PageMargin shrinks the page rect on all sides before the full-page
	// test; paths as large as the shrunk page are treated as page background
	// and never clustered. Default: 36.
	PageMargin float64

	// RuleThickness is the maximum thickness for a path to count as a
	// horizontal or vertical rule line. Default: 2.
	RuleThickness float64
}

// DefaultGraphicsConfig returns sensible default configuration.
func DefaultGraphicsConfig() GraphicsConfig {
	return GraphicsConfig{
		SignificanceRatio: 0.95,
		MinWidth:          30,
		MinHeight:         30,
		PageMargin:        36,
		RuleThickness:     2,
	}
}

// GraphicsResult is the outcome of classifying a page's drawings.
type GraphicsResult struct {
	// Clusters are the significant clusters, sorted by (top, left).
	Clusters []GraphicsCluster

	// Paths are all paths that survived the full-page filter, significant
	// or not. Column detection uses their rectangles as background
	// containers and walls.
	Paths []content.DrawingPath
}

// GraphicsProcessor classifies a page's vector drawings into clusters worth
// keeping. GraphicsClassifier is the default implementation; alternatives can
// be injected for documents with unusual drawing conventions.
type GraphicsProcessor interface {
	Classify(paths []content.DrawingPath, pageRect geom.Rect) GraphicsResult
}

// GraphicsClassifier clusters vector drawings and separates meaningful
// content (charts, diagrams) from decoration (borders, highlight fills,
// rule lines). Most vector noise in real documents is box borders and
// shading; only interior structure indicates a figure worth preserving.
type GraphicsClassifier struct {
	config GraphicsConfig
}

// NewGraphicsClassifier creates a classifier with default configuration.
func NewGraphicsClassifier() *GraphicsClassifier {
	return &GraphicsClassifier{config: DefaultGraphicsConfig()}
}

// NewGraphicsClassifierWithConfig creates a classifier with custom configuration.
func NewGraphicsClassifierWithConfig(config GraphicsConfig) *GraphicsClassifier {
	return &GraphicsClassifier{config: config}
}

// Classify clusters the given paths and returns the significant clusters.
// The input slice is treated as read-only.
func (c *GraphicsClassifier) Classify(paths []content.DrawingPath, pageRect geom.Rect) GraphicsResult {
	m := c.config.PageMargin
	pageClip := pageRect.Expand(-m, -m, -m, -m)

	candidates := make([]content.DrawingPath, 0, len(paths))
	for _, p := range paths {
		// Paths covering (almost) the whole page are background decoration.
		if p.BBox.Width() >= pageClip.Width() && p.BBox.Height() >= pageClip.Height() {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return GraphicsResult{}
	}

	clusters := clusterByOverlap(candidates)

	var kept []GraphicsCluster
	for _, cl := range clusters {
		if cl.Rect.Width() <= c.config.MinWidth || cl.Rect.Height() <= c.config.MinHeight {
			continue
		}
		if c.isSignificant(cl) {
			kept = append(kept, cl)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Rect.Y0 != kept[j].Rect.Y0 {
			return kept[i].Rect.Y0 < kept[j].Rect.Y0
		}
		return kept[i].Rect.X0 < kept[j].Rect.X0
	})

	return GraphicsResult{Clusters: kept, Paths: candidates}
}

// isSignificant reports whether a cluster carries real interior content.
func (c *GraphicsClassifier) isSignificant(cl GraphicsCluster) bool {
	// Clusters made up entirely of rule lines are table grids or underlines.
	allRules := true
	for _, p := range cl.Paths {
		if !c.isRuleLine(p) {
			allRules = false
			break
		}
	}
	if allRules {
		return false
	}

	limit := cl.Rect.Area() * c.config.SignificanceRatio
	for _, p := range cl.Paths {
		if c.isRuleLine(p) {
			continue
		}
		// A path clearly smaller than the cluster is interior structure.
		if p.BBox.Area() < limit {
			return true
		}
		// A path as large as the cluster is its border or background,
		// except a fill whose outline is not a plain rectangle: arrows,
		// banners and similar shapes are content even at full size.
		if p.Kind == content.PathFill && pathPolygonArea(p) < p.BBox.Area()*c.config.SignificanceRatio {
			return true
		}
	}
	return false
}

// isRuleLine reports whether a path is a thin horizontal or vertical bar.
func (c *GraphicsClassifier) isRuleLine(p content.DrawingPath) bool {
	return p.BBox.Width() <= c.config.RuleThickness ||
		p.BBox.Height() <= c.config.RuleThickness
}

// pathPolygonArea sums the shoelace areas of the path's item outlines.
// Curves contribute by their control polygon, which is close enough for the
// border-versus-content decision.
func pathPolygonArea(p content.DrawingPath) float64 {
	total := 0.0
	for _, item := range p.Items {
		total += geom.PolygonArea(item.Points)
	}
	return total
}

// clusterByOverlap merges paths into clusters by transitive rectangle
// intersection using a union-find over the path list.
func clusterByOverlap(paths []content.DrawingPath) []GraphicsCluster {
	parent := make([]int, len(paths))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if paths[i].BBox.Intersects(paths[j].BBox) {
				union(i, j)
			}
		}
	}

	groups := make(map[int]*GraphicsCluster)
	order := make([]int, 0)
	for i, p := range paths {
		root := find(i)
		cl, ok := groups[root]
		if !ok {
			cl = &GraphicsCluster{Rect: p.BBox}
			groups[root] = cl
			order = append(order, root)
		}
		cl.Rect = cl.Rect.Union(p.BBox)
		cl.Paths = append(cl.Paths, p)
	}

	out := make([]GraphicsCluster, 0, len(order))
	for _, root := range order {
		out = append(out, *groups[root])
	}
	return out
}
