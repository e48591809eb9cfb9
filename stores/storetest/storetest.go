// Package storetest is a behaviour suite shared by every core.DrawingStore
// implementation's tests.
package storetest

import (
	"building-planner/core"
	"building-planner/shapes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// SampleShapes covers all five shape types, including a polygon with more
// than four vertices.
func SampleShapes() []shapes.Shape {
	return []shapes.Shape{
		{ID: 1700000000001, Geometry: shapes.Line{Start: shapes.Pt(0, 0), End: shapes.Pt(3, 4)}, Properties: map[string]any{}, Annotations: map[string]any{}},
		{ID: 1700000000002, Geometry: shapes.Rectangle{Start: shapes.Pt(10.5, 20), End: shapes.Pt(110, 220.25)}, Properties: map[string]any{"room": "kitchen"}, Annotations: map[string]any{}},
		{ID: 1700000000003, Geometry: shapes.Circle{Center: shapes.Pt(300, 300), Edge: shapes.Pt(340, 330)}, Properties: map[string]any{}, Annotations: map[string]any{"note": "column"}},
		{ID: 1700000000004, Geometry: shapes.Arrow{Start: shapes.Pt(-5, 7), End: shapes.Pt(80, 90)}, Properties: map[string]any{}, Annotations: map[string]any{}},
		{ID: 1700000000005, Geometry: shapes.Polygon{Points: []shapes.Point{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 150, Y: 50}, {X: 100, Y: 100}, {X: 0, Y: 100}, {X: -20, Y: 50},
		}}, Properties: map[string]any{}, Annotations: map[string]any{}},
	}
}

// Run exercises store through the full DrawingStore contract.
func Run(t *testing.T, newStore func(t *testing.T) core.DrawingStore) {
	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, "Ground floor", "first sketch")
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if created.ID == "" {
			t.Fatal("Create() returned empty ID")
		}
		if created.Shapes == nil || len(created.Shapes) != 0 {
			t.Errorf("Create() shapes = %v, want empty list", created.Shapes)
		}

		got, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.Name != "Ground floor" || got.Description != "first sketch" {
			t.Errorf("Get() = %q/%q, want Ground floor/first sketch", got.Name, got.Description)
		}
		if len(got.Shapes) != 0 {
			t.Errorf("new drawing has %d shapes, want 0", len(got.Shapes))
		}
	})

	t.Run("CreateRequiresName", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Create(context.Background(), "  ", "")
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("Create() error = %v, want ErrValidation", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
		want := "drawing with id 01HZZZZZZZZZZZZZZZZZZZZZZZ not found"
		if err.Error() != want {
			t.Errorf("Get() error = %q, want %q", err.Error(), want)
		}
	})

	t.Run("SaveThenLoadRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		d, err := store.Create(ctx, "Plan", "")
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		saved := SampleShapes()
		if err := store.Save(ctx, d.ID, "Plan v2", "walls", saved); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}

		got, err := store.Get(ctx, d.ID)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.Name != "Plan v2" || got.Description != "walls" {
			t.Errorf("metadata = %q/%q, want Plan v2/walls", got.Name, got.Description)
		}
		if !reflect.DeepEqual(got.Shapes, SampleShapes()) {
			t.Errorf("shapes mismatch:\n got %#v\nwant %#v", got.Shapes, SampleShapes())
		}
	})

	t.Run("SaveReplacesShapeSet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		d, _ := store.Create(ctx, "Plan", "")
		if err := store.Save(ctx, d.ID, "Plan", "", SampleShapes()); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}

		replacement := SampleShapes()[3:4]
		if err := store.Save(ctx, d.ID, "Plan", "", replacement); err != nil {
			t.Fatalf("second Save() failed: %v", err)
		}

		got, _ := store.Get(ctx, d.ID)
		if !reflect.DeepEqual(got.Shapes, replacement) {
			t.Errorf("shapes after replacement = %#v, want %#v", got.Shapes, replacement)
		}

		if err := store.Save(ctx, d.ID, "Plan", "", []shapes.Shape{}); err != nil {
			t.Fatalf("empty Save() failed: %v", err)
		}
		got, _ = store.Get(ctx, d.ID)
		if len(got.Shapes) != 0 {
			t.Errorf("shapes after clearing = %d, want 0", len(got.Shapes))
		}
	})

	t.Run("SaveNilKeepsShapes", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		d, _ := store.Create(ctx, "Plan", "")
		_ = store.Save(ctx, d.ID, "Plan", "", SampleShapes())

		if err := store.Save(ctx, d.ID, "Renamed", "", nil); err != nil {
			t.Fatalf("Save(nil) failed: %v", err)
		}

		got, _ := store.Get(ctx, d.ID)
		if got.Name != "Renamed" {
			t.Errorf("name = %q, want Renamed", got.Name)
		}
		if len(got.Shapes) != len(SampleShapes()) {
			t.Errorf("shapes = %d, want %d", len(got.Shapes), len(SampleShapes()))
		}
	})

	t.Run("SaveNotFound", func(t *testing.T) {
		store := newStore(t)
		err := store.Save(context.Background(), "missing", "x", "", nil)
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Save() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListOmitsShapesNewestFirst", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first, _ := store.Create(ctx, "First", "")
		time.Sleep(5 * time.Millisecond)
		second, _ := store.Create(ctx, "Second", "")
		time.Sleep(5 * time.Millisecond)
		if err := store.Save(ctx, first.ID, "First", "", SampleShapes()); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() returned %d drawings, want 2", len(list))
		}
		if list[0].ID != first.ID || list[1].ID != second.ID {
			t.Errorf("List() order = %s,%s, want %s,%s", list[0].ID, list[1].ID, first.ID, second.ID)
		}
		for _, d := range list {
			if len(d.Shapes) != 0 {
				t.Errorf("List() included %d shapes for %s", len(d.Shapes), d.ID)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		d, _ := store.Create(ctx, "Doomed", "")
		_ = store.Save(ctx, d.ID, "Doomed", "", SampleShapes())

		if err := store.Delete(ctx, d.ID); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := store.Get(ctx, d.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, d.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("StoredShapesAreIsolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		d, _ := store.Create(ctx, "Plan", "")
		list := SampleShapes()
		_ = store.Save(ctx, d.ID, "Plan", "", list)

		list[0].Geometry = shapes.Line{Start: shapes.Pt(99, 99), End: shapes.Pt(1, 1)}
		list[4].Geometry.(shapes.Polygon).Points[0] = shapes.Pt(-1, -1)

		got, _ := store.Get(ctx, d.ID)
		if !reflect.DeepEqual(got.Shapes, SampleShapes()) {
			t.Error("mutating the saved slice changed the stored drawing")
		}
	})
}
