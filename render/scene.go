// Package render draws a shape list, its selection decoration, measurement
// labels and any in-progress shape onto a 2D drawing surface.
package render

import (
	"image/color"
	"math"

	"golang.org/x/image/colornames"

	"building-planner/annotate"
	"building-planner/geometry"
	"building-planner/shapes"
)

const (
	StrokeWidth         = 2.0
	SelectedStrokeWidth = 3.0
	ArrowHeadLength     = 15.0
)

var (
	StrokeColor     color.Color = colornames.Black
	SelectedColor   color.Color = color.RGBA{R: 0x00, G: 0x7b, B: 0xff, A: 0xff}
	AnnotationColor color.Color = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
)

type (
	// Stroke describes how an outline is painted.
	Stroke struct {
		Color color.Color
		Width float64
	}

	// Surface is the 2D drawing target. Text is positioned by its baseline.
	Surface interface {
		Clear()
		StrokeLine(a, b shapes.Point, st Stroke)
		StrokeRect(a, b shapes.Point, st Stroke)
		StrokeCircle(center shapes.Point, radius float64, st Stroke)
		StrokePath(points []shapes.Point, closed bool, st Stroke)
		FillSquare(center shapes.Point, size float64, c color.Color)
		FillText(at shapes.Point, text string, c color.Color)
	}

	// Preview is a two-point shape being dragged out from Anchor.
	Preview struct {
		Type    shapes.Type
		Anchor  shapes.Point
		Pointer shapes.Point
	}

	// Scene is everything one frame shows.
	Scene struct {
		Shapes          []shapes.Shape
		Selected        int64
		HasSelection    bool
		ShowAnnotations bool
		Preview         *Preview
		// Pending holds the vertices of a polygon under construction and
		// PendingPointer, when set, the live end of its trailing segment.
		Pending        []shapes.Point
		PendingPointer *shapes.Point
	}
)

// Draw clears s and paints the scene in full.
func Draw(s Surface, sc Scene) {
	s.Clear()

	for _, shape := range sc.Shapes {
		selected := sc.HasSelection && shape.ID == sc.Selected
		st := Stroke{Color: StrokeColor, Width: StrokeWidth}
		if selected {
			st = Stroke{Color: SelectedColor, Width: SelectedStrokeWidth}
		}
		drawGeometry(s, shape.Geometry, st)
		if selected {
			drawHandles(s, shape)
		}
	}

	if sc.ShowAnnotations {
		for _, l := range annotate.All(sc.Shapes) {
			s.FillText(l.At, l.Text, AnnotationColor)
		}
	}

	base := Stroke{Color: StrokeColor, Width: StrokeWidth}
	if sc.Preview != nil {
		if g, ok := shapes.Segment(sc.Preview.Type, sc.Preview.Anchor, sc.Preview.Pointer); ok {
			drawGeometry(s, g, base)
		}
	}

	if len(sc.Pending) > 0 {
		path := make([]shapes.Point, 0, len(sc.Pending)+1)
		path = append(path, sc.Pending...)
		if sc.PendingPointer != nil {
			path = append(path, *sc.PendingPointer)
		}
		s.StrokePath(path, false, base)
	}
}

func drawGeometry(s Surface, g shapes.Geometry, st Stroke) {
	switch v := g.(type) {
	case shapes.Line:
		s.StrokeLine(v.Start, v.End, st)
	case shapes.Rectangle:
		s.StrokeRect(v.Start, v.End, st)
	case shapes.Circle:
		s.StrokeCircle(v.Center, geometry.Radius(v), st)
	case shapes.Arrow:
		drawArrow(s, v.Start, v.End, st)
	case shapes.Polygon:
		if len(v.Points) > 2 {
			s.StrokePath(v.Points, true, st)
		}
	}
}

func drawArrow(s Surface, start, end shapes.Point, st Stroke) {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	s.StrokeLine(start, end, st)
	for _, side := range []float64{-math.Pi / 6, math.Pi / 6} {
		head := shapes.Pt(
			end.X-ArrowHeadLength*math.Cos(angle+side),
			end.Y-ArrowHeadLength*math.Sin(angle+side),
		)
		s.StrokeLine(end, head, st)
	}
}

func drawHandles(s Surface, shape shapes.Shape) {
	for _, hp := range geometry.HandlePoints(shape) {
		s.FillSquare(hp.At, geometry.DefaultHandleSize, SelectedColor)
	}
}
