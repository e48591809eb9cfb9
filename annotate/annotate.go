// Package annotate derives the measurement labels drawn next to shapes.
package annotate

import (
	"fmt"
	"math"

	"building-planner/geometry"
	"building-planner/shapes"
)

// Label is a measurement text and the baseline position it is drawn at.
type Label struct {
	Text string
	At   shapes.Point
}

// For returns the label of s. It returns false for polygons with fewer than
// three points and for shapes without a recognised geometry.
func For(s shapes.Shape) (Label, bool) {
	switch g := s.Geometry.(type) {
	case shapes.Line:
		return segmentLabel(g.Start, g.End), true
	case shapes.Arrow:
		return segmentLabel(g.Start, g.End), true
	case shapes.Rectangle:
		return Label{
			Text: fmt.Sprintf("%d×%dpx", round(g.Width()), round(g.Height())),
			At:   shapes.Pt(g.Start.X, g.Start.Y-5),
		}, true
	case shapes.Circle:
		return Label{
			Text: fmt.Sprintf("r=%dpx", round(geometry.Radius(g))),
			At:   g.Center.Add(5, -5),
		}, true
	case shapes.Polygon:
		if len(g.Points) < 3 {
			return Label{}, false
		}
		area := geometry.PolygonArea(g.Points)
		return Label{
			Text: fmt.Sprintf("Area: %dpx²", round(area)),
			At:   geometry.PolygonCentroid(g.Points).Add(5, -5),
		}, true
	}
	return Label{}, false
}

// All returns the labels of every shape that has one, in list order.
func All(list []shapes.Shape) []Label {
	labels := make([]Label, 0, len(list))
	for _, s := range list {
		if l, ok := For(s); ok {
			labels = append(labels, l)
		}
	}
	return labels
}

func segmentLabel(a, b shapes.Point) Label {
	mid := shapes.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
	return Label{
		Text: fmt.Sprintf("%dpx", round(geometry.LineLength(a, b))),
		At:   mid.Add(5, -5),
	}
}

// round rounds half up, so 2.5 becomes 3 and -2.5 becomes -2.
func round(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
