package shapes

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func sampleShapes() []Shape {
	return []Shape{
		{ID: 1, Geometry: Line{Start: Pt(0, 0), End: Pt(3, 4)}, Properties: map[string]any{}, Annotations: map[string]any{}},
		{ID: 2, Geometry: Rectangle{Start: Pt(10, 10), End: Pt(50, 40)}, Properties: map[string]any{"label": "kitchen"}, Annotations: map[string]any{}},
		{ID: 3, Geometry: Circle{Center: Pt(100, 100), Edge: Pt(130, 140)}, Properties: map[string]any{}, Annotations: map[string]any{"note": "column"}},
		{ID: 4, Geometry: Arrow{Start: Pt(5.5, 6.25), End: Pt(-20, 300)}, Properties: map[string]any{}, Annotations: map[string]any{}},
		{ID: 5, Geometry: Polygon{Points: []Point{{0, 0}, {40, 0}, {60, 20}, {40, 40}, {0, 40}}}, Properties: map[string]any{}, Annotations: map[string]any{}},
	}
}

func TestMarshalJSON_WireFormat(t *testing.T) {
	s := Shape{ID: 42, Geometry: Circle{Center: Pt(1, 2), Edge: Pt(3, 4)}}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	if got["id"] != float64(42) {
		t.Errorf("id mismatch: got %v, want 42", got["id"])
	}
	if got["type"] != "circle" {
		t.Errorf("type mismatch: got %v, want circle", got["type"])
	}

	coords, ok := got["coordinates"].(map[string]any)
	if !ok {
		t.Fatalf("coordinates is %T, want object", got["coordinates"])
	}
	want := map[string]any{"startX": float64(1), "startY": float64(2), "endX": float64(3), "endY": float64(4)}
	if !reflect.DeepEqual(coords, want) {
		t.Errorf("coordinates mismatch: got %v, want %v", coords, want)
	}

	if props, ok := got["properties"].(map[string]any); !ok || len(props) != 0 {
		t.Errorf("properties should be an empty object, got %v", got["properties"])
	}
	if ann, ok := got["annotations"].(map[string]any); !ok || len(ann) != 0 {
		t.Errorf("annotations should be an empty object, got %v", got["annotations"])
	}
}

func TestMarshalJSON_Polygon(t *testing.T) {
	s := Shape{ID: 7, Geometry: Polygon{Points: []Point{{0, 0}, {10, 0}, {10, 10}}}}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	if !strings.Contains(string(data), `"coordinates":{"points":[{"x":0,"y":0},{"x":10,"y":0},{"x":10,"y":10}]}`) {
		t.Errorf("unexpected polygon encoding: %s", data)
	}
}

func TestMarshalJSON_NoGeometry(t *testing.T) {
	if _, err := json.Marshal(Shape{ID: 1}); err == nil {
		t.Error("Marshal() should fail for a shape without geometry")
	}
}

func TestEncodeDecode_AllTypes(t *testing.T) {
	original := sampleShapes()

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", decoded, original)
	}
}

func TestEncode_NilList(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestUnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", `{"id":1,"type":"hexagon","coordinates":{"startX":0}}`},
		{"missing type", `{"id":1,"coordinates":{"startX":0}}`},
		{"missing coordinates", `{"id":1,"type":"line"}`},
		{"bad coordinates", `{"id":1,"type":"line","coordinates":"oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Shape
			if err := json.Unmarshal([]byte(tt.input), &s); err == nil {
				t.Errorf("Unmarshal(%s) should fail", tt.input)
			}
		})
	}
}

func TestUnmarshalJSON_DegeneratePolygon(t *testing.T) {
	var s Shape
	err := json.Unmarshal([]byte(`{"id":9,"type":"polygon","coordinates":{"points":[{"x":1,"y":1}]}}`), &s)
	if err != nil {
		t.Fatalf("a short polygon should still decode: %v", err)
	}

	p, ok := s.Geometry.(Polygon)
	if !ok {
		t.Fatalf("geometry is %T, want Polygon", s.Geometry)
	}
	if len(p.Points) != 1 {
		t.Errorf("points length = %d, want 1", len(p.Points))
	}
	if s.Properties == nil || s.Annotations == nil {
		t.Error("missing maps should decode as empty maps")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   Geometry
		want Geometry
	}{
		{"line", Line{Pt(0, 0), Pt(10, 10)}, Line{Pt(5, -5), Pt(15, 5)}},
		{"rectangle", Rectangle{Pt(1, 2), Pt(3, 4)}, Rectangle{Pt(6, -3), Pt(8, -1)}},
		{"circle", Circle{Pt(0, 0), Pt(3, 4)}, Circle{Pt(5, -5), Pt(8, -1)}},
		{"arrow", Arrow{Pt(0, 0), Pt(1, 1)}, Arrow{Pt(5, -5), Pt(6, -4)}},
		{"polygon", Polygon{[]Point{{0, 0}, {1, 0}, {1, 1}}}, Polygon{[]Point{{5, -5}, {6, -5}, {6, -4}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Translate(5, -5)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Translate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone_DoesNotShare(t *testing.T) {
	orig := Shape{
		ID:         1,
		Geometry:   Polygon{Points: []Point{{0, 0}, {1, 0}, {1, 1}}},
		Properties: map[string]any{"a": 1},
	}

	c := orig.Clone()
	c.Geometry.(Polygon).Points[0] = Pt(99, 99)
	c.Properties["a"] = 2

	if orig.Geometry.(Polygon).Points[0] != Pt(0, 0) {
		t.Error("Clone() shares polygon points")
	}
	if orig.Properties["a"] != 1 {
		t.Error("Clone() shares properties")
	}
}

func TestClone_DeepCopiesNestedValues(t *testing.T) {
	var orig, want Shape
	data := `{"id":7,"type":"rectangle","coordinates":{"startX":0,"startY":0,"endX":10,"endY":10},` +
		`"properties":{"room":{"name":"hall","doors":[{"w":90}]}},"annotations":{"tags":["a","b"]}}`
	for _, dst := range []*Shape{&orig, &want} {
		if err := json.Unmarshal([]byte(data), dst); err != nil {
			t.Fatalf("Unmarshal() failed: %v", err)
		}
	}

	c := orig.Clone()
	room := c.Properties["room"].(map[string]any)
	room["name"] = "kitchen"
	room["doors"].([]any)[0].(map[string]any)["w"] = 120.0
	c.Annotations["tags"].([]any)[1] = "z"

	if !reflect.DeepEqual(orig.Properties, want.Properties) {
		t.Errorf("Clone() shares nested properties: %v", orig.Properties)
	}
	if !reflect.DeepEqual(orig.Annotations, want.Annotations) {
		t.Errorf("Clone() shares nested annotations: %v", orig.Annotations)
	}
}

func TestRectangleSize(t *testing.T) {
	r := Rectangle{Start: Pt(50, 40), End: Pt(10, 100)}
	if r.Width() != 40 {
		t.Errorf("Width() = %v, want 40", r.Width())
	}
	if r.Height() != 60 {
		t.Errorf("Height() = %v, want 60", r.Height())
	}
}
