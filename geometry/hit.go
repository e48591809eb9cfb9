package geometry

import (
	"math"

	"building-planner/shapes"
)

// Handle names a resize control point of a selected shape.
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
	HandleStart       Handle = "start"
	HandleEnd         Handle = "end"
	HandleCenter      Handle = "center"
	HandleRadius      Handle = "radius"
)

// DefaultHandleSize is the side of a handle marker in pixels.
const DefaultHandleSize = 6.0

// HandlePoint is a named handle position.
type HandlePoint struct {
	Handle Handle
	At     shapes.Point
}

// PointInShape reports whether p picks s.
//
// Lines and arrows use the sum-of-distances test: p is accepted when
// |d(p,start)+d(p,end)-length| < tolerance. That is an ellipse around the
// segment, looser than a perpendicular-distance test near long segments'
// middles and tighter near their ends. Circles are picked on the ring only.
// Polygons are not pickable.
func PointInShape(p shapes.Point, s shapes.Shape, tolerance float64) bool {
	switch g := s.Geometry.(type) {
	case shapes.Line:
		return sumOfDistances(p, g.Start, g.End, tolerance)
	case shapes.Arrow:
		return sumOfDistances(p, g.Start, g.End, tolerance)
	case shapes.Rectangle:
		return p.X >= math.Min(g.Start.X, g.End.X)-tolerance &&
			p.X <= math.Max(g.Start.X, g.End.X)+tolerance &&
			p.Y >= math.Min(g.Start.Y, g.End.Y)-tolerance &&
			p.Y <= math.Max(g.Start.Y, g.End.Y)+tolerance
	case shapes.Circle:
		return math.Abs(Distance(p, g.Center)-Radius(g)) < tolerance
	default:
		return false
	}
}

func sumOfDistances(p, a, b shapes.Point, tolerance float64) bool {
	return math.Abs(Distance(p, a)+Distance(p, b)-LineLength(a, b)) < tolerance
}

// HandlePoints lists the handle markers drawn for a selected shape. Polygon
// vertices are marked but carry HandleNone since polygons cannot be resized.
func HandlePoints(s shapes.Shape) []HandlePoint {
	switch g := s.Geometry.(type) {
	case shapes.Rectangle:
		return []HandlePoint{
			{HandleTopLeft, g.Start},
			{HandleTopRight, shapes.Pt(g.End.X, g.Start.Y)},
			{HandleBottomLeft, shapes.Pt(g.Start.X, g.End.Y)},
			{HandleBottomRight, g.End},
		}
	case shapes.Line:
		return []HandlePoint{{HandleStart, g.Start}, {HandleEnd, g.End}}
	case shapes.Arrow:
		return []HandlePoint{{HandleStart, g.Start}, {HandleEnd, g.End}}
	case shapes.Circle:
		return []HandlePoint{{HandleCenter, g.Center}, {HandleRadius, g.Edge}}
	case shapes.Polygon:
		out := make([]HandlePoint, len(g.Points))
		for i, pt := range g.Points {
			out[i] = HandlePoint{HandleNone, pt}
		}
		return out
	}
	return nil
}

// ResizeHandleAt returns the first handle of s within handleSize+2 of p on
// both axes, or HandleNone.
func ResizeHandleAt(p shapes.Point, s shapes.Shape, handleSize float64) Handle {
	tolerance := handleSize + 2
	for _, hp := range HandlePoints(s) {
		if hp.Handle == HandleNone {
			continue
		}
		if math.Abs(p.X-hp.At.X) <= tolerance && math.Abs(p.Y-hp.At.Y) <= tolerance {
			return hp.Handle
		}
	}
	return HandleNone
}

// Resize moves the part of g addressed by h to p. Corner handles move one
// corner, start/end move an endpoint, center translates the whole circle and
// radius moves only the edge point. Handles that do not apply to g leave it
// unchanged.
func Resize(g shapes.Geometry, h Handle, p shapes.Point) shapes.Geometry {
	switch v := g.(type) {
	case shapes.Rectangle:
		switch h {
		case HandleTopLeft:
			v.Start = p
		case HandleTopRight:
			v.End.X, v.Start.Y = p.X, p.Y
		case HandleBottomLeft:
			v.Start.X, v.End.Y = p.X, p.Y
		case HandleBottomRight:
			v.End = p
		}
		return v
	case shapes.Line:
		switch h {
		case HandleStart:
			v.Start = p
		case HandleEnd:
			v.End = p
		}
		return v
	case shapes.Arrow:
		switch h {
		case HandleStart:
			v.Start = p
		case HandleEnd:
			v.End = p
		}
		return v
	case shapes.Circle:
		switch h {
		case HandleCenter:
			dx, dy := p.X-v.Center.X, p.Y-v.Center.Y
			v.Center = p
			v.Edge = v.Edge.Add(dx, dy)
		case HandleRadius:
			v.Edge = p
		}
		return v
	}
	return g
}
