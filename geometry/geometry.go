// Package geometry holds the pure measurement and hit-testing functions used
// by the canvas editor. Every function is total: degenerate input such as a
// zero-length line is handled rather than rejected.
package geometry

import (
	"math"

	"building-planner/shapes"
)

const (
	// DefaultTolerance is the pick distance used by PointInShape.
	DefaultTolerance = 10.0
	// SegmentTolerance is the pick distance of the nearest-point test.
	SegmentTolerance = 5.0
)

// Distance is the Euclidean distance between a and b.
func Distance(a, b shapes.Point) float64 {
	return math.Sqrt(math.Pow(b.X-a.X, 2) + math.Pow(b.Y-a.Y, 2))
}

// LineLength is the length of the segment a-b.
func LineLength(a, b shapes.Point) float64 {
	return Distance(a, b)
}

// Radius of a circle shape.
func Radius(c shapes.Circle) float64 {
	return Distance(c.Center, c.Edge)
}

// ClosestPointOnSegment projects p onto the segment a-b, clamping to the
// endpoints. A zero-length segment yields a.
func ClosestPointOnSegment(p, a, b shapes.Point) shapes.Point {
	c := b.X - a.X
	d := b.Y - a.Y

	dot := (p.X-a.X)*c + (p.Y-a.Y)*d
	lenSq := c*c + d*d
	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	switch {
	case param < 0:
		return a
	case param > 1:
		return b
	default:
		return shapes.Pt(a.X+param*c, a.Y+param*d)
	}
}

// DistanceToLineSegment is the distance from p to the closest point of a-b.
func DistanceToLineSegment(p, a, b shapes.Point) float64 {
	return Distance(p, ClosestPointOnSegment(p, a, b))
}

// PointNearSegment is the strict nearest-point pick test with
// SegmentTolerance.
func PointNearSegment(p, a, b shapes.Point) bool {
	return DistanceToLineSegment(p, a, b) < SegmentTolerance
}

// PolygonArea is the absolute shoelace area of the vertex loop.
func PolygonArea(points []shapes.Point) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X * points[j].Y
		area -= points[j].X * points[i].Y
	}
	return math.Abs(area) / 2
}

// PolygonCentroid is the arithmetic mean of the vertices. It is not the
// area centroid. An empty slice yields the origin.
func PolygonCentroid(points []shapes.Point) shapes.Point {
	if len(points) == 0 {
		return shapes.Point{}
	}
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	return shapes.Pt(cx/n, cy/n)
}
