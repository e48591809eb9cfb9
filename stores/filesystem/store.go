package filesystem

import (
	"building-planner/core"
	"building-planner/shapes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const ext = ".json"

type fsStore struct {
	basePath string
	// mu serialises read-modify-write cycles on drawing files.
	mu sync.Mutex
}

// NewDrawingStore keeps one JSON file per drawing under basePath.
func NewDrawingStore(basePath string) (core.DrawingStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

// drawingPath resolves id to a file inside basePath, refusing anything that
// would escape it.
func (s *fsStore) drawingPath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", core.NotFoundError(id)
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	absFile, err := filepath.Abs(filepath.Join(s.basePath, id+ext))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absFile, absBase+string(filepath.Separator)) {
		return "", core.NotFoundError(id)
	}
	return absFile, nil
}

func (s *fsStore) read(id string) (*core.Drawing, error) {
	filePath, err := s.drawingPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.NotFoundError(id)
		}
		return nil, err
	}

	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing %s: %w", id, err)
	}
	if d.Shapes == nil {
		d.Shapes = []shapes.Shape{}
	}
	return &d, nil
}

func (s *fsStore) write(d *core.Drawing) error {
	filePath, err := s.drawingPath(d.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash never leaves a half-written drawing.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func (s *fsStore) List(ctx context.Context) ([]*core.Drawing, error) {
	log := logrus.WithField("path", s.basePath)

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.basePath)
	if err != nil {
		log.WithError(err).Error("Failed to read storage directory")
		return nil, err
	}

	drawings := make([]*core.Drawing, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ext {
			continue
		}
		d, err := s.read(strings.TrimSuffix(file.Name(), ext))
		if err != nil {
			log.WithError(err).Warnf("Failed to read drawing file %s, skipping", file.Name())
			continue
		}
		d.Shapes = nil
		drawings = append(drawings, d)
	}
	core.SortByUpdated(drawings)

	log.Infof("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *fsStore) Get(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Warn("Drawing file not found")
		} else {
			log.WithError(err).Error("Failed to read drawing file")
		}
		return nil, err
	}

	log.Info("Drawing retrieved successfully")
	return d, nil
}

func (s *fsStore) Create(ctx context.Context, name, description string) (*core.Drawing, error) {
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
	log := logrus.WithField("drawing_id", d.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(d); err != nil {
		log.WithError(err).Error("Failed to create drawing file")
		return nil, err
	}

	log.Info("Drawing created successfully")
	return d, nil
}

func (s *fsStore) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	log := logrus.WithFields(logrus.Fields{
		"drawing_id":  id,
		"shape_count": len(list),
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read(id)
	if err != nil {
		log.WithError(err).Warn("Cannot save drawing")
		return err
	}
	d.Name = name
	d.Description = description
	if list != nil {
		d.Shapes = list
	}
	d.UpdatedAt = time.Now()

	if err := s.write(d); err != nil {
		log.WithError(err).Error("Failed to write drawing file")
		return err
	}

	log.Info("Drawing saved successfully")
	return nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("drawing_id", id)

	filePath, err := s.drawingPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("Drawing file not found for deletion")
			return core.NotFoundError(id)
		}
		log.WithError(err).Error("Failed to delete drawing file")
		return err
	}

	log.Info("Drawing deleted successfully")
	return nil
}
