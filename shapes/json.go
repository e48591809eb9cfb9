package shapes

import (
	"encoding/json"
	"fmt"
)

type (
	wireShape struct {
		ID          int64           `json:"id"`
		Type        Type            `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
		Properties  map[string]any  `json:"properties"`
		Annotations map[string]any  `json:"annotations"`
	}

	segmentCoordinates struct {
		StartX float64 `json:"startX"`
		StartY float64 `json:"startY"`
		EndX   float64 `json:"endX"`
		EndY   float64 `json:"endY"`
	}

	polygonCoordinates struct {
		Points []Point `json:"points"`
	}
)

// MarshalJSON encodes the shape in the drawing wire format:
// {id, type, coordinates, properties, annotations}.
func (s Shape) MarshalJSON() ([]byte, error) {
	if s.Geometry == nil {
		return nil, fmt.Errorf("shape %d has no geometry", s.ID)
	}

	coords, err := marshalCoordinates(s.Geometry)
	if err != nil {
		return nil, err
	}

	w := wireShape{
		ID:          s.ID,
		Type:        s.Geometry.Type(),
		Coordinates: coords,
		Properties:  s.Properties,
		Annotations: s.Annotations,
	}
	if w.Properties == nil {
		w.Properties = map[string]any{}
	}
	if w.Annotations == nil {
		w.Annotations = map[string]any{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the drawing wire format. Unknown types are rejected;
// missing properties/annotations become empty maps.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var w wireShape
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	g, err := unmarshalCoordinates(w.Type, w.Coordinates)
	if err != nil {
		return fmt.Errorf("shape %d: %w", w.ID, err)
	}

	s.ID = w.ID
	s.Geometry = g
	s.Properties = w.Properties
	s.Annotations = w.Annotations
	if s.Properties == nil {
		s.Properties = map[string]any{}
	}
	if s.Annotations == nil {
		s.Annotations = map[string]any{}
	}
	return nil
}

func marshalCoordinates(g Geometry) ([]byte, error) {
	if p, ok := g.(Polygon); ok {
		pts := p.Points
		if pts == nil {
			pts = []Point{}
		}
		return json.Marshal(polygonCoordinates{Points: pts})
	}

	start, end, ok := Endpoints(g)
	if !ok {
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
	return json.Marshal(segmentCoordinates{
		StartX: start.X,
		StartY: start.Y,
		EndX:   end.X,
		EndY:   end.Y,
	})
}

func unmarshalCoordinates(t Type, raw json.RawMessage) (Geometry, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown shape type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("missing coordinates for %s", t)
	}

	if t == TypePolygon {
		var pc polygonCoordinates
		if err := json.Unmarshal(raw, &pc); err != nil {
			return nil, err
		}
		if pc.Points == nil {
			pc.Points = []Point{}
		}
		return Polygon{Points: pc.Points}, nil
	}

	var sc segmentCoordinates
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, err
	}
	g, _ := Segment(t, Pt(sc.StartX, sc.StartY), Pt(sc.EndX, sc.EndY))
	return g, nil
}

// Encode serialises a full shape list. A nil list encodes as [].
func Encode(list []Shape) ([]byte, error) {
	if list == nil {
		list = []Shape{}
	}
	return json.Marshal(list)
}

// Decode parses a shape list produced by Encode.
func Decode(data []byte) ([]Shape, error) {
	var list []Shape
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Shape{}
	}
	return list, nil
}
