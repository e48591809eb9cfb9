package editor

import (
	"building-planner/geometry"
	"building-planner/shapes"

	"github.com/sirupsen/logrus"
)

// PointerDown handles a press at p.
func (s *Session) PointerDown(p shapes.Point) {
	s.pointer, s.hasPointer = p, true

	switch s.tool {
	case ToolSelect:
		s.pressSelect(p)
	case ToolPolygon:
		s.pressPolygon(p)
	default:
		s.anchor = p
		s.setState(StateDrawing)
	}
	s.Render()
}

func (s *Session) pressSelect(p shapes.Point) {
	if i := s.selectedIndex(); i >= 0 {
		if h := geometry.ResizeHandleAt(p, s.shapes[i], geometry.DefaultHandleSize); h != geometry.HandleNone {
			s.handle = h
			s.cursor = handleCursor(h)
			s.setState(StateResizing)
			return
		}
	}

	// First match in creation order wins, even where a later shape is drawn on top.
	for i := range s.shapes {
		if !geometry.PointInShape(p, s.shapes[i], geometry.DefaultTolerance) {
			continue
		}
		anchor := s.shapes[i].Geometry.Anchor()
		s.selected, s.hasSelection = s.shapes[i].ID, true
		s.dragOffset = shapes.Pt(p.X-anchor.X, p.Y-anchor.Y)
		s.cursor = CursorMove
		s.setState(StateDragging)
		return
	}

	s.clearSelection()
	s.cursor = CursorDefault
	s.setState(StateIdle)
}

func (s *Session) pressPolygon(p shapes.Point) {
	if len(s.pending) > 2 && geometry.Distance(p, s.pending[0]) < PolygonCloseRadius {
		s.commitPolygon()
		return
	}
	s.pending = append(s.pending, p)
	s.setState(StateBuildingPolygon)
}

// PointerMove handles pointer motion to p.
func (s *Session) PointerMove(p shapes.Point) {
	s.pointer, s.hasPointer = p, true

	switch s.state {
	case StateResizing:
		i := s.selectedIndex()
		if i < 0 {
			s.setState(StateIdle)
			return
		}
		s.shapes[i].Geometry = geometry.Resize(s.shapes[i].Geometry, s.handle, p)
	case StateDragging:
		i := s.selectedIndex()
		if i < 0 {
			s.setState(StateIdle)
			return
		}
		anchor := s.shapes[i].Geometry.Anchor()
		dx := p.X - s.dragOffset.X - anchor.X
		dy := p.Y - s.dragOffset.Y - anchor.Y
		s.shapes[i].Geometry = s.shapes[i].Geometry.Translate(dx, dy)
	case StateIdle:
		s.hover(p)
		return
	}
	s.Render()
}

// hover only updates the cursor hint.
func (s *Session) hover(p shapes.Point) {
	i := s.selectedIndex()
	if s.tool != ToolSelect || i < 0 {
		s.cursor = toolCursor(s.tool)
		return
	}
	if h := geometry.ResizeHandleAt(p, s.shapes[i], geometry.DefaultHandleSize); h != geometry.HandleNone {
		s.cursor = handleCursor(h)
	} else if geometry.PointInShape(p, s.shapes[i], geometry.DefaultTolerance) {
		s.cursor = CursorMove
	} else {
		s.cursor = CursorDefault
	}
}

// PointerUp handles a release at p.
func (s *Session) PointerUp(p shapes.Point) {
	s.pointer, s.hasPointer = p, true

	switch s.state {
	case StateDragging:
		s.setState(StateIdle)
	case StateResizing:
		s.handle = geometry.HandleNone
		s.setState(StateIdle)
	case StateDrawing:
		s.finishDrawing(p)
	default:
		// Polygons only complete on a closing click or Enter.
		return
	}
	s.Render()
}

// PointerLeave ends a drag, resize or draw as if released at p.
func (s *Session) PointerLeave(p shapes.Point) {
	s.PointerUp(p)
	s.hasPointer = false
	if s.state == StateBuildingPolygon {
		s.Render()
	}
}

func (s *Session) finishDrawing(p shapes.Point) {
	s.setState(StateIdle)
	if geometry.Distance(s.anchor, p) < MinShapeSize {
		return
	}
	g, ok := shapes.Segment(s.tool.ShapeType(), s.anchor, p)
	if !ok {
		return
	}
	s.appendShape(g)
}

func (s *Session) commitPolygon() {
	points := append([]shapes.Point(nil), s.pending...)
	s.pending = nil
	s.setState(StateIdle)
	s.appendShape(shapes.Polygon{Points: points})
}

func (s *Session) appendShape(g shapes.Geometry) {
	shape := shapes.Shape{
		ID:          s.ids.next(),
		Geometry:    g,
		Properties:  map[string]any{},
		Annotations: map[string]any{},
	}
	s.shapes = append(s.shapes, shape)
	logrus.WithFields(logrus.Fields{
		"shape_id": shape.ID,
		"type":     g.Type(),
	}).Debug("Shape created")
}

// KeyDown handles a key press and reports whether the key was used.
func (s *Session) KeyDown(k Key) bool {
	switch k {
	case KeyDelete, KeyBackspace:
		i := s.selectedIndex()
		if i < 0 {
			return false
		}
		logrus.WithField("shape_id", s.shapes[i].ID).Debug("Shape deleted")
		s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
		s.clearSelection()
		s.handle = geometry.HandleNone
		if s.state == StateDragging || s.state == StateResizing {
			s.setState(StateIdle)
		}
	case KeyEscape:
		s.pending = nil
		s.clearSelection()
		s.handle = geometry.HandleNone
		s.setState(StateIdle)
		s.cursor = toolCursor(s.tool)
	case KeyEnter:
		if s.state != StateBuildingPolygon || len(s.pending) <= 2 {
			return false
		}
		s.commitPolygon()
	default:
		return false
	}
	s.Render()
	return true
}
