// Package editor is the interactive canvas editing engine: it turns pointer
// and keyboard events into changes to a shape list and redraws the result.
//
// A Session is driven from one goroutine, the one delivering input events.
// Persistence calls are the only asynchronous boundary (see SaveAsync).
package editor

import (
	"building-planner/geometry"
	"building-planner/render"
	"building-planner/shapes"

	"github.com/sirupsen/logrus"
)

// Session is one editing surface and the drawing open in it.
type Session struct {
	shapes       []shapes.Shape
	selected     int64
	hasSelection bool

	tool  Tool
	state State

	anchor     shapes.Point
	dragOffset shapes.Point
	handle     geometry.Handle
	pending    []shapes.Point

	pointer    shapes.Point
	hasPointer bool
	cursor     string

	showAnnotations bool
	surface         render.Surface
	ids             *idSource

	store    Persistence
	notifier Notifier
	drawing  drawingInfo
}

type drawingInfo struct {
	id          string
	name        string
	description string
}

// NewSession creates an empty session with the select tool active. surface,
// store and notifier may each be nil; a nil notifier logs instead.
func NewSession(surface render.Surface, store Persistence, notifier Notifier) *Session {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	s := &Session{
		shapes:   []shapes.Shape{},
		tool:     ToolSelect,
		state:    StateIdle,
		cursor:   CursorDefault,
		surface:  surface,
		ids:      newIDSource(),
		store:    store,
		notifier: notifier,
	}
	s.Render()
	return s
}

// Shapes returns a copy of the current shape list in creation order.
func (s *Session) Shapes() []shapes.Shape {
	return shapes.CloneAll(s.shapes)
}

// Selected returns a copy of the selected shape.
func (s *Session) Selected() (shapes.Shape, bool) {
	if i := s.selectedIndex(); i >= 0 {
		return s.shapes[i].Clone(), true
	}
	return shapes.Shape{}, false
}

func (s *Session) State() State   { return s.state }
func (s *Session) Tool() Tool     { return s.tool }
func (s *Session) Cursor() string { return s.cursor }

// Pending returns the vertices of the polygon under construction.
func (s *Session) Pending() []shapes.Point {
	return append([]shapes.Point(nil), s.pending...)
}

func (s *Session) ShowAnnotations() bool { return s.showAnnotations }

// SetShowAnnotations toggles measurement labels.
func (s *Session) SetShowAnnotations(show bool) {
	if s.showAnnotations == show {
		return
	}
	s.showAnnotations = show
	s.Render()
}

// SetTool switches the active tool. Any polygon or shape under construction
// is abandoned; the selection is kept. Unknown tools are ignored.
func (s *Session) SetTool(t Tool) {
	if !t.Valid() {
		logrus.WithField("tool", t).Warn("Ignoring unknown tool")
		return
	}
	s.tool = t
	s.pending = nil
	s.handle = geometry.HandleNone
	s.setState(StateIdle)
	s.cursor = toolCursor(t)
	s.Render()
}

// Select selects the shape with the given id.
func (s *Session) Select(id int64) bool {
	if s.indexOf(id) < 0 {
		return false
	}
	s.selected, s.hasSelection = id, true
	s.Render()
	return true
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	if !s.hasSelection {
		return
	}
	s.clearSelection()
	s.Render()
}

// Scene describes what the surface should currently show.
func (s *Session) Scene() render.Scene {
	sc := render.Scene{
		Shapes:          s.shapes,
		Selected:        s.selected,
		HasSelection:    s.hasSelection,
		ShowAnnotations: s.showAnnotations,
	}
	switch s.state {
	case StateDrawing:
		if s.hasPointer {
			sc.Preview = &render.Preview{Type: s.tool.ShapeType(), Anchor: s.anchor, Pointer: s.pointer}
		}
	case StateBuildingPolygon:
		sc.Pending = s.pending
		if s.hasPointer {
			p := s.pointer
			sc.PendingPointer = &p
		}
	}
	return sc
}

// Render redraws the attached surface in full.
func (s *Session) Render() {
	if s.surface == nil {
		return
	}
	render.Draw(s.surface, s.Scene())
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	logrus.WithFields(logrus.Fields{
		"from": s.state,
		"to":   next,
	}).Debug("Editor state changed")
	s.state = next
}

func (s *Session) clearSelection() {
	s.selected, s.hasSelection = 0, false
}

func (s *Session) indexOf(id int64) int {
	for i := range s.shapes {
		if s.shapes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) selectedIndex() int {
	if !s.hasSelection {
		return -1
	}
	return s.indexOf(s.selected)
}

// replaceShapes installs a loaded shape list and resets all transient state.
func (s *Session) replaceShapes(list []shapes.Shape) {
	s.shapes = shapes.CloneAll(list)
	if s.shapes == nil {
		s.shapes = []shapes.Shape{}
	}
	ids := make([]int64, len(s.shapes))
	for i, shape := range s.shapes {
		ids[i] = shape.ID
	}
	s.ids.observe(ids)

	s.clearSelection()
	s.pending = nil
	s.handle = geometry.HandleNone
	s.setState(StateIdle)
	s.cursor = toolCursor(s.tool)
}
