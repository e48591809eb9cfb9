package editor

import (
	"building-planner/core"
	"building-planner/shapes"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrNoDrawing is returned by persistence calls made before a drawing has
// been opened or created.
var ErrNoDrawing = errors.New("no drawing is open")

type (
	// Persistence is the drawing storage the session loads from and saves
	// to. Every core.DrawingStore satisfies it, as does client.Client.
	Persistence interface {
		Get(ctx context.Context, id string) (*core.Drawing, error)
		Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error
		Create(ctx context.Context, name, description string) (*core.Drawing, error)
		Delete(ctx context.Context, id string) error
	}

	// Level grades a Notification.
	Level int

	// Notification is a one-shot message about a persistence outcome.
	Notification struct {
		Level   Level
		Message string
		Err     error
	}

	// Notifier shows notifications to the user. SaveAsync calls it from
	// its own goroutine.
	Notifier interface {
		Notify(n Notification)
	}

	// NotifierFunc adapts a function to Notifier.
	NotifierFunc func(n Notification)

	// LogNotifier writes notifications to the logrus standard logger.
	LogNotifier struct{}
)

const (
	LevelInfo Level = iota
	LevelError
)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func (LogNotifier) Notify(n Notification) {
	if n.Err != nil {
		logrus.WithError(n.Err).Error(n.Message)
		return
	}
	logrus.Info(n.Message)
}

// DrawingID is the id of the open drawing, or "".
func (s *Session) DrawingID() string   { return s.drawing.id }
func (s *Session) Name() string        { return s.drawing.name }
func (s *Session) Description() string { return s.drawing.description }

// Rename changes the open drawing's metadata; it is stored on the next save.
func (s *Session) Rename(name, description string) {
	s.drawing.name = name
	s.drawing.description = description
}

func (s *Session) fail(message string, err error) error {
	s.notifier.Notify(Notification{Level: LevelError, Message: message, Err: err})
	return err
}

func (s *Session) ok(message string) {
	s.notifier.Notify(Notification{Level: LevelInfo, Message: message})
}

// New creates a drawing and starts editing it with an empty canvas.
func (s *Session) New(ctx context.Context, name, description string) error {
	if s.store == nil {
		return s.fail("Failed to create drawing", ErrNoDrawing)
	}
	d, err := s.store.Create(ctx, name, description)
	if err != nil {
		return s.fail("Failed to create drawing", err)
	}
	s.drawing = drawingInfo{id: d.ID, name: d.Name, description: d.Description}
	s.replaceShapes(d.Shapes)
	s.Render()
	s.ok(fmt.Sprintf("Drawing %q created", d.Name))
	return nil
}

// Open loads a drawing into the session. On failure the current shapes are
// kept.
func (s *Session) Open(ctx context.Context, id string) error {
	if s.store == nil {
		return s.fail("Failed to load drawing", ErrNoDrawing)
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return s.fail("Failed to load drawing", err)
	}
	s.drawing = drawingInfo{id: d.ID, name: d.Name, description: d.Description}
	s.replaceShapes(d.Shapes)
	s.Render()
	s.ok(fmt.Sprintf("Drawing %q loaded", d.Name))
	return nil
}

// snapshot is the full shape list as it should be persisted. It is never
// nil, so a save always replaces the stored set.
func (s *Session) snapshot() []shapes.Shape {
	list := shapes.CloneAll(s.shapes)
	if list == nil {
		list = []shapes.Shape{}
	}
	return list
}

// Save stores the entire shape list, replacing what the drawing held. A
// failure is reported through the notifier and leaves the session as it was.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil || s.drawing.id == "" {
		return s.fail("Failed to save drawing", ErrNoDrawing)
	}
	d := s.drawing
	if err := s.store.Save(ctx, d.id, d.name, d.description, s.snapshot()); err != nil {
		return s.fail("Failed to save drawing", err)
	}
	s.ok("Drawing saved successfully!")
	return nil
}

// SaveAsync snapshots the shape list and saves it in the background, so
// editing can continue while the request is in flight. The channel yields
// the outcome once. There is no retry and no cancellation beyond ctx.
func (s *Session) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if s.store == nil || s.drawing.id == "" {
		done <- s.fail("Failed to save drawing", ErrNoDrawing)
		close(done)
		return done
	}

	store, notifier := s.store, s.notifier
	d, list := s.drawing, s.snapshot()
	go func() {
		defer close(done)
		err := store.Save(ctx, d.id, d.name, d.description, list)
		if err != nil {
			notifier.Notify(Notification{Level: LevelError, Message: "Failed to save drawing", Err: err})
		} else {
			notifier.Notify(Notification{Level: LevelInfo, Message: "Drawing saved successfully!"})
		}
		done <- err
	}()
	return done
}

// Remove deletes the open drawing from storage and clears the canvas.
func (s *Session) Remove(ctx context.Context) error {
	if s.store == nil || s.drawing.id == "" {
		return s.fail("Failed to delete drawing", ErrNoDrawing)
	}
	if err := s.store.Delete(ctx, s.drawing.id); err != nil {
		return s.fail("Failed to delete drawing", err)
	}
	name := s.drawing.name
	s.drawing = drawingInfo{}
	s.replaceShapes(nil)
	s.Render()
	s.ok(fmt.Sprintf("Drawing %q deleted", name))
	return nil
}
