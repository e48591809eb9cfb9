package sqlite

import (
	"building-planner/core"
	"building-planner/shapes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shapes (
	drawing_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	id INTEGER NOT NULL,
	type TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (drawing_id, position)
);`

type drawingStore struct {
	db *sql.DB
}

// NewDrawingStore opens (creating if needed) the sqlite database at
// dataSourceName and prepares its tables.
func NewDrawingStore(dataSourceName string) (core.DrawingStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"driver":         driverName,
		"dataSourceName": dataSourceName,
	}).Debug("SQLite store ready")
	return &drawingStore{db}, nil
}

func (s *drawingStore) List(ctx context.Context) ([]*core.Drawing, error) {
	logrus.Debug("Listing drawings")
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM drawings ORDER BY updated_at DESC, id DESC")
	if err != nil {
		logrus.WithError(err).Error("Failed to list drawings")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("Failed to close drawing rows")
		}
	}()

	drawings := []*core.Drawing{}
	for rows.Next() {
		var d core.Drawing
		var createdAt, updatedAt int64
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &createdAt, &updatedAt); err != nil {
			logrus.WithError(err).Error("Failed to scan drawing")
			return nil, err
		}
		d.CreatedAt = time.Unix(0, createdAt)
		d.UpdatedAt = time.Unix(0, updatedAt)
		drawings = append(drawings, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logrus.WithField("count", len(drawings)).Info("Drawings listed successfully")
	return drawings, nil
}

func (s *drawingStore) Get(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)
	log.Debug("Retrieving drawing by ID")

	var d core.Drawing
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM drawings WHERE id = ?", id).
		Scan(&d.ID, &d.Name, &d.Description, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.WithField("error", "drawing not found").Warn("Drawing with specified ID not found")
			return nil, core.NotFoundError(id)
		}
		log.WithError(err).Error("Failed to retrieve drawing")
		return nil, err
	}
	d.CreatedAt = time.Unix(0, createdAt)
	d.UpdatedAt = time.Unix(0, updatedAt)

	d.Shapes, err = s.loadShapes(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load shapes")
		return nil, err
	}

	log.WithField("shape_count", len(d.Shapes)).Info("Drawing retrieved successfully")
	return &d, nil
}

func (s *drawingStore) loadShapes(ctx context.Context, id string) ([]shapes.Shape, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM shapes WHERE drawing_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []shapes.Shape{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var shape shapes.Shape
		if err := json.Unmarshal([]byte(data), &shape); err != nil {
			return nil, fmt.Errorf("corrupt shape row for drawing %s: %w", id, err)
		}
		list = append(list, shape)
	}
	return list, rows.Err()
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
	log := logrus.WithFields(logrus.Fields{
		"drawing_id": d.ID,
		"name":       name,
	})

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO drawings (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		d.ID, d.Name, d.Description, now.UnixNano(), now.UnixNano())
	if err != nil {
		log.WithError(err).Error("Failed to create drawing")
		return nil, err
	}

	log.Info("Drawing created successfully")
	return d, nil
}

func (s *drawingStore) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	log := logrus.WithFields(logrus.Fields{
		"drawing_id":  id,
		"shape_count": len(list),
	})

	rows := make([][]byte, len(list))
	for i, shape := range list {
		data, err := json.Marshal(shape)
		if err != nil {
			log.WithError(err).Error("Failed to encode shape")
			return err
		}
		rows[i] = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE drawings SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		name, description, time.Now().UnixNano(), id)
	if err != nil {
		log.WithError(err).Error("Failed to update drawing")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Warn("Drawing with specified ID not found")
		return core.NotFoundError(id)
	}

	if list != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM shapes WHERE drawing_id = ?", id); err != nil {
			log.WithError(err).Error("Failed to clear shapes")
			return err
		}
		for i, shape := range list {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO shapes (drawing_id, position, id, type, data) VALUES (?, ?, ?, ?, ?)",
				id, i, shape.ID, string(shape.Type()), string(rows[i]))
			if err != nil {
				log.WithError(err).Error("Failed to insert shape")
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit drawing")
		return err
	}

	log.Info("Drawing saved successfully")
	return nil
}

func (s *drawingStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("drawing_id", id)
	log.Debug("Deleting drawing")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM drawings WHERE id = ?", id)
	if err != nil {
		log.WithError(err).Error("Failed to delete drawing")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.NotFoundError(id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM shapes WHERE drawing_id = ?", id); err != nil {
		log.WithError(err).Error("Failed to delete shapes")
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Drawing deleted successfully")
	return nil
}
