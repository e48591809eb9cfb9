package shapes

type (
	// Type is the wire tag of a shape.
	Type string

	// Point is a canvas position in pixels.
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Geometry is the coordinate payload of one shape kind.
	Geometry interface {
		Type() Type
		// Anchor is the coordinate a drag offset is measured from.
		Anchor() Point
		Translate(dx, dy float64) Geometry
		Clone() Geometry
	}

	Line struct {
		Start Point
		End   Point
	}

	// Rectangle is given by two opposite corners; the corners need not be ordered.
	Rectangle struct {
		Start Point
		End   Point
	}

	// Circle is centred on Center and passes through Edge.
	Circle struct {
		Center Point
		Edge   Point
	}

	Arrow struct {
		Start Point
		End   Point
	}

	Polygon struct {
		Points []Point
	}

	// Shape is one drawn primitive. ID is stable for the lifetime of the shape.
	Shape struct {
		ID          int64
		Geometry    Geometry
		Properties  map[string]any
		Annotations map[string]any
	}
)

const (
	TypeLine      Type = "line"
	TypeRectangle Type = "rectangle"
	TypeCircle    Type = "circle"
	TypePolygon   Type = "polygon"
	TypeArrow     Type = "arrow"
)

// Valid reports whether t names one of the five shape kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeLine, TypeRectangle, TypeCircle, TypePolygon, TypeArrow:
		return true
	}
	return false
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (l Line) Type() Type      { return TypeLine }
func (l Line) Anchor() Point   { return l.Start }
func (l Line) Clone() Geometry { return l }
func (l Line) Translate(dx, dy float64) Geometry {
	return Line{Start: l.Start.Add(dx, dy), End: l.End.Add(dx, dy)}
}

func (r Rectangle) Type() Type      { return TypeRectangle }
func (r Rectangle) Anchor() Point   { return r.Start }
func (r Rectangle) Clone() Geometry { return r }
func (r Rectangle) Translate(dx, dy float64) Geometry {
	return Rectangle{Start: r.Start.Add(dx, dy), End: r.End.Add(dx, dy)}
}

// Width is the absolute horizontal extent.
func (r Rectangle) Width() float64 {
	if r.End.X > r.Start.X {
		return r.End.X - r.Start.X
	}
	return r.Start.X - r.End.X
}

// Height is the absolute vertical extent.
func (r Rectangle) Height() float64 {
	if r.End.Y > r.Start.Y {
		return r.End.Y - r.Start.Y
	}
	return r.Start.Y - r.End.Y
}

func (c Circle) Type() Type      { return TypeCircle }
func (c Circle) Anchor() Point   { return c.Center }
func (c Circle) Clone() Geometry { return c }
func (c Circle) Translate(dx, dy float64) Geometry {
	return Circle{Center: c.Center.Add(dx, dy), Edge: c.Edge.Add(dx, dy)}
}

func (a Arrow) Type() Type      { return TypeArrow }
func (a Arrow) Anchor() Point   { return a.Start }
func (a Arrow) Clone() Geometry { return a }
func (a Arrow) Translate(dx, dy float64) Geometry {
	return Arrow{Start: a.Start.Add(dx, dy), End: a.End.Add(dx, dy)}
}

func (p Polygon) Type() Type { return TypePolygon }

// Anchor of a polygon is its first vertex, or the origin when it has none.
func (p Polygon) Anchor() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[0]
}

func (p Polygon) Clone() Geometry {
	pts := make([]Point, len(p.Points))
	copy(pts, p.Points)
	return Polygon{Points: pts}
}

func (p Polygon) Translate(dx, dy float64) Geometry {
	pts := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = pt.Add(dx, dy)
	}
	return Polygon{Points: pts}
}

// Segment builds the two-point geometry for t. It returns false for
// polygons and unknown types, which are not defined by two points.
func Segment(t Type, start, end Point) (Geometry, bool) {
	switch t {
	case TypeLine:
		return Line{Start: start, End: end}, true
	case TypeRectangle:
		return Rectangle{Start: start, End: end}, true
	case TypeCircle:
		return Circle{Center: start, Edge: end}, true
	case TypeArrow:
		return Arrow{Start: start, End: end}, true
	}
	return nil, false
}

// Endpoints returns the start/end pair of a two-point geometry.
func Endpoints(g Geometry) (start, end Point, ok bool) {
	switch v := g.(type) {
	case Line:
		return v.Start, v.End, true
	case Rectangle:
		return v.Start, v.End, true
	case Circle:
		return v.Center, v.Edge, true
	case Arrow:
		return v.Start, v.End, true
	}
	return Point{}, Point{}, false
}

// Type returns the tag of the shape's geometry, or "" when it has none.
func (s Shape) Type() Type {
	if s.Geometry == nil {
		return ""
	}
	return s.Geometry.Type()
}

// Clone returns a deep copy; the maps and polygon points are not shared.
func (s Shape) Clone() Shape {
	out := Shape{
		ID:          s.ID,
		Properties:  cloneMap(s.Properties),
		Annotations: cloneMap(s.Annotations),
	}
	if s.Geometry != nil {
		out.Geometry = s.Geometry.Clone()
	}
	return out
}

// CloneAll deep-copies a shape list. A nil list stays nil.
func CloneAll(list []Shape) []Shape {
	if list == nil {
		return nil
	}
	out := make([]Shape, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

// cloneMap copies m and any nested maps or slices decoded from JSON.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
