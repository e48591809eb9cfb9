package memory

import (
	"building-planner/core"
	"building-planner/shapes"
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type drawingStore struct {
	mu       sync.RWMutex
	drawings map[string]*core.Drawing
}

// NewDrawingStore returns an in-memory store. Every read and write copies
// the shape list so callers never share state with the store.
func NewDrawingStore() core.DrawingStore {
	return &drawingStore{
		drawings: make(map[string]*core.Drawing),
	}
}

func (s *drawingStore) List(ctx context.Context) ([]*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings := make([]*core.Drawing, 0, len(s.drawings))
	for _, d := range s.drawings {
		// List views leave out the shapes.
		drawings = append(drawings, &core.Drawing{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}
	core.SortByUpdated(drawings)

	logrus.Debugf("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *drawingStore) Get(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)

	s.mu.RLock()
	d, ok := s.drawings[id]
	s.mu.RUnlock()

	if !ok {
		log.WithField("error", "drawing not found").Warn("Drawing with specified ID not found")
		return nil, core.NotFoundError(id)
	}

	out := *d
	out.Shapes = shapes.CloneAll(d.Shapes)
	log.Info("Drawing retrieved successfully")
	return &out, nil
}

func (s *drawingStore) Create(ctx context.Context, name, description string) (*core.Drawing, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &core.Drawing{
		ID:          ulid.Make().String(),
		Name:        name,
		Description: description,
		Shapes:      []shapes.Shape{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.drawings[d.ID] = d
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"drawing_id": d.ID,
		"name":       name,
	}).Info("Drawing created successfully")

	out := *d
	out.Shapes = []shapes.Shape{}
	return &out, nil
}

func (s *drawingStore) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	log := logrus.WithField("drawing_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drawings[id]
	if !ok {
		log.Warn("Drawing to save not found")
		return core.NotFoundError(id)
	}

	d.Name = name
	d.Description = description
	if list != nil {
		d.Shapes = shapes.CloneAll(list)
	}
	d.UpdatedAt = time.Now()

	log.WithField("shape_count", len(d.Shapes)).Info("Drawing saved successfully")
	return nil
}

func (s *drawingStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("drawing_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drawings[id]; !ok {
		log.Warn("Drawing to delete not found")
		return core.NotFoundError(id)
	}

	delete(s.drawings, id)
	log.Info("Drawing deleted successfully")
	return nil
}
