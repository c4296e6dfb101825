// Package geom provides the rectangle and polygon primitives used by the
// layout engine. Coordinates follow the page-content convention: the origin
// is the top-left corner of the page and Y grows downward, so Y0 is the top
// edge of a rectangle and Y1 its bottom edge.
package geom

import "math"

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Rect represents an axis-aligned rectangle given by its top-left (X0, Y0)
// and bottom-right (X1, Y1) corners. A Rect is a value type; operations
// return new rectangles and never mutate their receivers.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect creates a rectangle from two corner coordinates.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Normalize returns the rectangle with corners reordered so that X0 <= X1
// and Y0 <= Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Area returns the area, or 0 for an invalid rectangle.
func (r Rect) Area() float64 {
	if !r.IsValid() {
		return 0
	}
	return r.Width() * r.Height()
}

// Mid returns the midpoint of the rectangle.
func (r Rect) Mid() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// IsEmpty returns true if the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// IsValid returns true if the corners are properly ordered. An empty
// rectangle may still be valid (zero width or height).
func (r Rect) IsValid() bool {
	return r.X0 <= r.X1 && r.Y0 <= r.Y1
}

// Union returns the smallest rectangle containing both r and other. If one
// side is empty the other is returned unchanged, so unions can be
// accumulated starting from the zero Rect.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Intersect returns the common area of r and other. The result may be
// invalid (disjoint inputs) or empty (touching inputs); callers must check
// IsValid or IsEmpty before using it.
func (r Rect) Intersect(other Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Intersects returns true if r and other share at least a boundary point.
func (r Rect) Intersects(other Rect) bool {
	return r.Intersect(other).IsValid()
}

// Contains returns true if inner lies completely inside r (boundaries
// included).
func (r Rect) Contains(inner Rect) bool {
	return inner.X0 >= r.X0 && inner.Y0 >= r.Y0 &&
		inner.X1 <= r.X1 && inner.Y1 <= r.Y1
}

// ContainsPoint returns true if p lies inside r (boundaries included).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Expand grows the rectangle by the given amounts on each side. Negative
// values shrink it.
func (r Rect) Expand(left, top, right, bottom float64) Rect {
	return Rect{X0: r.X0 - left, Y0: r.Y0 - top, X1: r.X1 + right, Y1: r.Y1 + bottom}
}

// OverlapsX returns true if the horizontal ranges of r and other overlap,
// i.e. one rectangle is above or below the other.
func (r Rect) OverlapsX(other Rect) bool {
	return !(r.X1 < other.X0 || other.X1 < r.X0)
}

// OverlapsY returns true if the vertical ranges of r and other overlap,
// i.e. one rectangle is beside the other.
func (r Rect) OverlapsY(other Rect) bool {
	return !(r.Y1 < other.Y0 || other.Y1 < r.Y0)
}

// ContainingRect returns the index of the first rectangle in list that fully
// contains r, and true if one was found.
func ContainingRect(r Rect, list []Rect) (int, bool) {
	for i, cand := range list {
		if cand.Contains(r) {
			return i, true
		}
	}
	return 0, false
}

// OverlapStrategy selects how FirstIntersecting decides that a rectangle
// meaningfully overlaps a list member.
type OverlapStrategy int

const (
	// OverlapMidpoint accepts a member containing the candidate's midpoint.
	OverlapMidpoint OverlapStrategy = iota
	// OverlapAreaFraction accepts a member whose intersection with the
	// candidate covers at least AreaFraction of the candidate's own area.
	OverlapAreaFraction
)

// AreaFraction is the overlap fraction used by OverlapAreaFraction.
const AreaFraction = 0.5

// FirstIntersecting returns the index of the first rectangle in list that
// overlaps r per the chosen strategy, and true if one was found.
func FirstIntersecting(r Rect, list []Rect, strategy OverlapStrategy) (int, bool) {
	switch strategy {
	case OverlapAreaFraction:
		limit := r.Area() * AreaFraction
		for i, cand := range list {
			is := r.Intersect(cand)
			if is.IsValid() && is.Area() >= limit && limit > 0 {
				return i, true
			}
		}
	default:
		mid := r.Mid()
		for i, cand := range list {
			if cand.ContainsPoint(mid) {
				return i, true
			}
		}
	}
	return 0, false
}

// AnyRectBetweenY returns true if some rectangle in list sits vertically
// between a and b while sharing a horizontal range with either of them.
// Used to prevent joining boxes across an intervening region.
func AnyRectBetweenY(a, b Rect, list []Rect) bool {
	lo, hi := a, b
	if lo.Y0 > hi.Y0 {
		lo, hi = hi, lo
	}
	for _, r := range list {
		if (r.OverlapsX(lo) || r.OverlapsX(hi)) && lo.Y0 < r.Y0 && r.Y0 < hi.Y0 {
			return true
		}
	}
	return false
}
