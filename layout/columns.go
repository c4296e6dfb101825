package layout

import (
	"sort"

	"github.com/tsawler/pagemd/content"
	"github.com/tsawler/pagemd/geom"
)

// ColumnConfig holds configuration for column box detection.
type ColumnConfig struct {
	// HeaderMargin and FooterMargin exclude lines closer than this to the
	// top, respectively bottom, of the page. Default: 0.
	HeaderMargin float64
	FooterMargin float64

	// SnapTolerance is the edge distance below which box borders are
	// considered equal during cleanup and phase-2 joining. Default: 3.
	SnapTolerance float64

	// JoinGap is the maximum vertical gap between two boxes with matching
	// borders for the phase-2 join to merge them. Default: 12.
	JoinGap float64

	// BottomRunTolerance bounds the bottom-coordinate difference within a
	// run of boxes that gets re-sorted left to right during cleanup.
	// Default: 3.
	BottomRunTolerance float64

	// ExtendRight widens boxes with free space on their right up to the
	// text area's right boundary, so a single-column paragraph spans the
	// full text width even when its lines are short. Default: off.
	ExtendRight bool

	// ShadedLast moves boxes sitting on a colored background to the end of
	// the reading order, preserving their relative order, so asides and
	// callouts print after the main column flow. Default: off.
	ShadedLast bool
}

// DefaultColumnConfig returns sensible default configuration.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		SnapTolerance:      3,
		JoinGap:            12,
		BottomRunTolerance: 3,
	}
}

// ColumnInput bundles the per-page geometry the detector works on. All
// slices are borrowed read-only; the detector copies what it mutates.
type ColumnInput struct {
	// PageRect is the full page rectangle.
	PageRect geom.Rect

	// Lines are the assembled text lines of the page.
	Lines []Line

	// Avoid lists rectangles the detector must keep out of: tables,
	// significant graphics clusters and raster images.
	Avoid []geom.Rect

	// Vertical lists bounding boxes of non-horizontal text. They act as
	// walls that merges may not cross.
	Vertical []geom.Rect

	// Paths are the drawing paths retained by the graphics classifier.
	// Their rectangles define background containers: text sharing a shaded
	// container is kept together before generic top-left ordering.
	Paths []content.DrawingPath
}

// ColumnFinder partitions a page into ordered column boxes: maximal
// coalesced text rectangles representing columns, sidebars and captions,
// sorted left-column-before-right-column, top to bottom.
type ColumnFinder struct {
	config ColumnConfig
}

// NewColumnFinder creates a column finder with default configuration.
func NewColumnFinder() *ColumnFinder {
	return &ColumnFinder{config: DefaultColumnConfig()}
}

// NewColumnFinderWithConfig creates a column finder with custom configuration.
func NewColumnFinderWithConfig(config ColumnConfig) *ColumnFinder {
	return &ColumnFinder{config: config}
}

// bgLookup memoizes background-container lookups for one Find invocation.
// Keys are rectangle values; the table never outlives the call.
type bgLookup struct {
	rects []geom.Rect
	memo  map[geom.Rect]int
}

// id returns the 1-based index of the first background rect containing r,
// or 0 if none does.
func (b *bgLookup) id(r geom.Rect) int {
	if v, ok := b.memo[r]; ok {
		return v
	}
	v := 0
	if i, ok := geom.ContainingRect(r, b.rects); ok {
		v = i + 1
	}
	b.memo[r] = v
	return v
}

// Find returns the ordered column boxes for the page. A page without
// qualifying lines yields an empty slice; degenerate geometry never panics.
func (f *ColumnFinder) Find(in ColumnInput) []geom.Rect {
	clip := in.PageRect
	clip.Y0 += f.config.HeaderMargin
	clip.Y1 -= f.config.FooterMargin

	bg := &bgLookup{rects: backgroundRects(in.Paths), memo: make(map[geom.Rect]int)}

	avoid := make([]geom.Rect, len(in.Avoid))
	copy(avoid, in.Avoid)
	vertical := make([]geom.Rect, len(in.Vertical))
	copy(vertical, in.Vertical)
	walls := append(append([]geom.Rect{}, vertical...), avoid...)

	// Candidate boxes: one per line outside margins and avoid rects.
	var candidates []geom.Rect
	for _, line := range in.Lines {
		r := line.Rect
		if r.Y0 < clip.Y0 || r.Y1 > clip.Y1 {
			continue
		}
		if _, ok := geom.ContainingRect(r, avoid); ok {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}

	// Sort by background container first so text on a shaded aside stays
	// together, then top to bottom, left to right.
	sort.SliceStable(candidates, func(i, j int) bool {
		bi, bj := bg.id(candidates[i]), bg.id(candidates[j])
		if bi != bj {
			return bi < bj
		}
		if candidates[i].Y0 != candidates[j].Y0 {
			return candidates[i].Y0 < candidates[j].Y0
		}
		return candidates[i].X0 < candidates[j].X0
	})

	if f.config.ExtendRight {
		candidates = f.extendRight(candidates, walls, bg)
	}

	boxes := f.greedyMerge(candidates, walls, bg)
	boxes = f.cleanBoxes(boxes)
	if len(boxes) == 0 {
		return boxes
	}
	boxes = f.joinPhase2(boxes, walls)
	boxes = f.joinPhase3(boxes, walls, bg)

	if f.config.ShadedLast {
		boxes = shadedToEnd(boxes, bg)
	}
	return boxes
}

// backgroundRects converts retained drawing paths to background container
// rectangles, giving hairline rects a small extent so containment tests
// behave, sorted by (top, left).
func backgroundRects(paths []content.DrawingPath) []geom.Rect {
	rects := make([]geom.Rect, 0, len(paths))
	for _, p := range paths {
		r := p.BBox
		lw := p.Width * 0.5
		if lw == 0 {
			lw = 0.5
		}
		if r.Width() == 0 {
			r.X0 -= lw
			r.X1 += lw
		}
		if r.Height() == 0 {
			r.Y0 -= lw
			r.Y1 += lw
		}
		rects = append(rects, r)
	}
	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y0 != rects[j].Y0 {
			return rects[i].Y0 < rects[j].Y0
		}
		return rects[i].X0 < rects[j].X0
	})
	return rects
}

// intersectsAny returns true if r has a non-empty overlap with any rect in
// list.
func intersectsAny(r geom.Rect, list []geom.Rect) bool {
	for _, cand := range list {
		if !r.Intersect(cand).IsEmpty() {
			return true
		}
	}
	return false
}

// canExtend reports whether temp can replace member without newly
// intersecting any other rectangle in boxes (nil-padded entries are skipped)
// or any wall rect.
func canExtend(temp geom.Rect, member geom.Rect, boxes []*geom.Rect, walls []geom.Rect) bool {
	if intersectsAny(temp, walls) {
		return false
	}
	for _, b := range boxes {
		if b == nil || *b == member {
			continue
		}
		if !temp.Intersect(*b).IsEmpty() {
			return false
		}
	}
	return true
}

// extendRight widens candidates that have nothing to their right up to the
// text area's right boundary. Boxes on a background container or inside an
// avoid area keep their width.
func (f *ColumnFinder) extendRight(candidates []geom.Rect, walls []geom.Rect, bg *bgLookup) []geom.Rect {
	right := candidates[0].X1
	for _, r := range candidates[1:] {
		if r.X1 > right {
			right = r.X1
		}
	}

	refs := rectPtrs(candidates)
	for i, r := range candidates {
		if bg.id(r) != 0 {
			continue
		}
		temp := r
		temp.X1 = right
		if intersectsAny(temp, walls) {
			continue
		}
		if canExtend(temp, r, refs, walls) {
			candidates[i] = temp
			*refs[i] = temp
		}
	}
	return candidates
}

// greedyMerge walks the sorted candidates and grows accepted boxes by union
// where no other accepted box, remaining candidate or wall is crossed. Every
// candidate either extends an accepted box or becomes one.
func (f *ColumnFinder) greedyMerge(candidates []geom.Rect, walls []geom.Rect, bg *bgLookup) []geom.Rect {
	accepted := []geom.Rect{candidates[0]}
	rest := rectPtrs(candidates[1:])

	for i, bb := range rest {
		extended := false
		j := 0
		var temp geom.Rect

		for j = 0; j < len(accepted); j++ {
			nbb := accepted[j]
			// Never join across columns.
			if nbb.X1 < bb.X0 || bb.X1 < nbb.X0 {
				continue
			}
			// Never join across different background containers.
			if bg.id(nbb) != bg.id(*bb) {
				continue
			}
			temp = bb.Union(nbb)
			if canExtend(temp, nbb, rectPtrs(accepted), walls) {
				extended = true
				break
			}
		}

		if !extended {
			accepted = append(accepted, *bb)
			j = len(accepted) - 1
			temp = accepted[j]
		}

		// Accept the grown box only if it also stays clear of the not yet
		// processed candidates; otherwise keep the candidate separate.
		if canExtend(temp, *bb, rest, walls) {
			accepted[j] = temp
		} else {
			accepted = append(accepted, *bb)
		}
		rest[i] = nil // consumed
	}
	return accepted
}

// cleanBoxes removes duplicate boxes and re-sorts runs of boxes sharing
// nearly the same bottom coordinate left to right. Lines with equal bottoms
// can arrive out of x-order from the line pass; this repairs the sequence.
func (f *ColumnFinder) cleanBoxes(boxes []geom.Rect) []geom.Rect {
	seen := make(map[geom.Rect]bool, len(boxes))
	out := boxes[:0:0]
	for _, b := range boxes {
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	if len(out) < 2 {
		return out
	}

	tol := f.config.BottomRunTolerance
	start := 0
	bottom := out[0].Y1
	for i := 1; i <= len(out); i++ {
		if i == len(out) || abs(out[i].Y1-bottom) > tol {
			run := out[start:i]
			if len(run) > 1 {
				sort.SliceStable(run, func(a, b int) bool {
					return run[a].X0 < run[b].X0
				})
			}
			if i < len(out) {
				bottom = out[i].Y1
				start = i
			}
		}
	}
	return out
}

// joinPhase2 snaps nearly equal left/right borders to a common value, then
// merges boxes whose snapped borders match and whose vertical gap is small.
// This captures multi-line paragraphs the coarse pass missed.
func (f *ColumnFinder) joinPhase2(boxes []geom.Rect, walls []geom.Rect) []geom.Rect {
	tol := f.config.SnapTolerance
	snapped := make([]geom.Rect, len(boxes))
	copy(snapped, boxes)

	for i, b := range snapped {
		x0, x1 := b.X0, b.X1
		for _, other := range snapped {
			if abs(other.X0-b.X0) <= tol && other.X0 < x0 {
				x0 = other.X0
			}
			if abs(other.X1-b.X1) <= tol && other.X1 > x1 {
				x1 = other.X1
			}
		}
		snapped[i].X0 = x0
		snapped[i].X1 = x1
	}

	sort.SliceStable(snapped, func(i, j int) bool {
		if snapped[i].X0 != snapped[j].X0 {
			return snapped[i].X0 < snapped[j].X0
		}
		return snapped[i].Y0 < snapped[j].Y0
	})

	out := []geom.Rect{snapped[0]}
	for _, r := range snapped[1:] {
		last := out[len(out)-1]
		if abs(r.X0-last.X0) <= tol && abs(r.X1-last.X1) <= tol &&
			abs(last.Y1-r.Y0) <= f.config.JoinGap &&
			!intersectsAny(last.Union(r), walls) &&
			!geom.AnyRectBetweenY(last, r, walls) {
			out[len(out)-1] = last.Union(r)
			continue
		}
		out = append(out, r)
	}
	return out
}

// joinPhase3 merges overlapping-column boxes when no third box touches
// their union, then sorts the result into final reading order.
func (f *ColumnFinder) joinPhase3(boxes []geom.Rect, walls []geom.Rect, bg *bgLookup) []geom.Rect {
	pending := make([]geom.Rect, len(boxes))
	copy(pending, boxes)
	var merged []geom.Rect

	for len(pending) > 0 {
		box := pending[0]
		pending = pending[1:]
		for {
			joined := false
			for i := len(pending) - 1; i >= 0; i-- {
				other := pending[i]
				// Do not join across columns.
				if other.X0 > box.X1 || other.X1 < box.X0 {
					continue
				}
				// Do not join different backgrounds.
				if bg.id(box) != bg.id(other) {
					continue
				}
				temp := box.Union(other)
				if !intersectsAny(temp, walls) && unionTouchesOnly(temp, box, other, pending, merged) {
					box = temp
					pending = append(pending[:i], pending[i+1:]...)
					joined = true
				}
			}
			if !joined {
				break
			}
		}
		merged = append(merged, box)
	}

	return sortReadingOrder(merged)
}

// unionTouchesOnly reports whether temp intersects no box other than a and b
// across both lists. A third intersecting box means the union would swallow
// or cross an intervening region.
func unionTouchesOnly(temp, a, b geom.Rect, lists ...[]geom.Rect) bool {
	for _, list := range lists {
		for _, r := range list {
			if r == a || r == b {
				continue
			}
			if r.Intersects(temp) {
				return false
			}
		}
	}
	return true
}

// sortReadingOrder sorts boxes using the left-neighbor rule: a box's sort
// key is the top of the nearest box to its left that vertically overlaps it,
// falling back to its own top. The key makes a right-hand column follow the
// left-hand column it sits next to instead of jumping ahead of it:
//
//	      Q +---------+
//	        | next is |
//	P +---+ |  this   |
//	  |left| |  block |
//	  |box | +--------+
//	  +----+           key of Q is (P.y0, Q.x0)
func sortReadingOrder(boxes []geom.Rect) []geom.Rect {
	type keyed struct {
		box geom.Rect
		y   float64
		x   float64
	}
	keys := make([]keyed, 0, len(boxes))
	for _, box := range boxes {
		var left []geom.Rect
		for _, r := range boxes {
			if r.X1 < box.X0 &&
				((box.Y0 <= r.Y0 && r.Y0 <= box.Y1) || (box.Y0 <= r.Y1 && r.Y1 <= box.Y1)) {
				left = append(left, r)
			}
		}
		k := keyed{box: box, y: box.Y0, x: box.X0}
		if len(left) > 0 {
			sort.SliceStable(left, func(i, j int) bool { return left[i].X1 < left[j].X1 })
			k.y = left[len(left)-1].Y0
		}
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].y != keys[j].y {
			return keys[i].y < keys[j].y
		}
		return keys[i].x < keys[j].x
	})
	out := make([]geom.Rect, len(keys))
	for i, k := range keys {
		out[i] = k.box
	}
	return out
}

// shadedToEnd moves boxes on a background container to the end, preserving
// relative order.
func shadedToEnd(boxes []geom.Rect, bg *bgLookup) []geom.Rect {
	var plain, shaded []geom.Rect
	for _, b := range boxes {
		if bg.id(b) != 0 {
			shaded = append(shaded, b)
		} else {
			plain = append(plain, b)
		}
	}
	return append(plain, shaded...)
}

// rectPtrs returns a pointer slice over a copy of rects, the nil-able form
// canExtend consumes.
func rectPtrs(rects []geom.Rect) []*geom.Rect {
	out := make([]*geom.Rect, len(rects))
	for i := range rects {
		r := rects[i]
		out[i] = &r
	}
	return out
}
