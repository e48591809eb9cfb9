package editor

import (
	"building-planner/geometry"
	"building-planner/shapes"
)

// State is the interaction state of a Session.
type State int

const (
	StateIdle            State = iota // Waiting for input
	StateDrawing                      // Dragging out a two-point shape from the anchor
	StateDragging                     // Moving the selected shape
	StateResizing                     // Moving one handle of the selected shape
	StateBuildingPolygon              // Collecting polygon vertices
)

// String returns the state name for display and logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateBuildingPolygon:
		return "building-polygon"
	default:
		return "unknown"
	}
}

// Tool is the active drawing tool. It is chosen by the host and is not
// part of the interaction state.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolLine      Tool = Tool(shapes.TypeLine)
	ToolRectangle Tool = Tool(shapes.TypeRectangle)
	ToolCircle    Tool = Tool(shapes.TypeCircle)
	ToolPolygon   Tool = Tool(shapes.TypePolygon)
	ToolArrow     Tool = Tool(shapes.TypeArrow)
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	return t == ToolSelect || shapes.Type(t).Valid()
}

// ShapeType is the kind of shape the tool creates; "" for select.
func (t Tool) ShapeType() shapes.Type {
	if t == ToolSelect {
		return ""
	}
	return shapes.Type(t)
}

// Key names a keyboard key the session reacts to.
type Key string

const (
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
	KeyEscape    Key = "Escape"
	KeyEnter     Key = "Enter"
)

// Cursor hints for the host's pointer.
const (
	CursorDefault   = "default"
	CursorCrosshair = "crosshair"
	CursorMove      = "move"
	CursorNWResize  = "nw-resize"
	CursorNEResize  = "ne-resize"
	CursorSWResize  = "sw-resize"
	CursorSEResize  = "se-resize"
)

const (
	// MinShapeSize is the shortest anchor-to-release distance that creates
	// a shape; shorter releases are treated as clicks.
	MinShapeSize = 5.0
	// PolygonCloseRadius is how near the first vertex a click must land
	// to close a polygon.
	PolygonCloseRadius = 15.0
)

func handleCursor(h geometry.Handle) string {
	switch h {
	case geometry.HandleTopLeft:
		return CursorNWResize
	case geometry.HandleTopRight:
		return CursorNEResize
	case geometry.HandleBottomLeft:
		return CursorSWResize
	case geometry.HandleBottomRight:
		return CursorSEResize
	case geometry.HandleNone:
		return CursorDefault
	default:
		return CursorMove
	}
}

func toolCursor(t Tool) string {
	if t == ToolSelect {
		return CursorDefault
	}
	return CursorCrosshair
}
