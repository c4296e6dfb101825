package geom

import "math"

// PolygonArea computes the area enclosed by a point sequence using the
// shoelace formula. Consecutive duplicate points are dropped first, and the
// polygon is closed implicitly if the last point differs from the first.
// Degenerate sequences (fewer than three distinct points) have area 0.
func PolygonArea(points []Point) float64 {
	pts := dedupePoints(points)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// dedupePoints removes consecutive identical points.
func dedupePoints(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
