package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"building-planner/shapes"
)

var (
	// ErrNotFound is returned when no drawing has the requested id.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for requests the store refuses to accept,
	// such as creating a drawing without a name.
	ErrValidation = errors.New("validation failed")
)

type (
	// Drawing is a named, persisted collection of shapes.
	Drawing struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Shapes      []shapes.Shape `json:"shapes,omitempty"` // Not included in list views.
		CreatedAt   time.Time      `json:"created_at"`
		UpdatedAt   time.Time      `json:"updated_at"`
	}

	// DrawingStore persists drawings. Save replaces a drawing's whole shape
	// set; there is no incremental update.
	DrawingStore interface {
		// List returns every drawing without shapes, most recently updated first.
		List(ctx context.Context) ([]*Drawing, error)

		// Get returns a drawing with its shapes, or an error wrapping ErrNotFound.
		Get(ctx context.Context, id string) (*Drawing, error)

		// Create stores a new drawing with an empty shape list.
		Create(ctx context.Context, name, description string) (*Drawing, error)

		// Save updates name and description and, when list is non-nil,
		// replaces the stored shape list with it.
		Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error

		// Delete removes a drawing and its shapes.
		Delete(ctx context.Context, id string) error
	}
)

// NotFoundError builds the error stores return for an unknown drawing id.
func NotFoundError(id string) error {
	return fmt.Errorf("drawing with id %s %w", id, ErrNotFound)
}

// ValidateName rejects an empty drawing name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("drawing name is required: %w", ErrValidation)
	}
	return nil
}

// SortByUpdated orders drawings newest update first, breaking ties by id.
func SortByUpdated(drawings []*Drawing) {
	sort.Slice(drawings, func(i, j int) bool {
		if drawings[i].UpdatedAt.Equal(drawings[j].UpdatedAt) {
			return drawings[i].ID > drawings[j].ID
		}
		return drawings[i].UpdatedAt.After(drawings[j].UpdatedAt)
	})
}
