package drawings

import (
	"building-planner/core"
	"building-planner/render"
	"building-planner/shapes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chirender "github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

const (
	maxBodyBytes    = 10 << 20
	maxRenderSize   = 4096
	errNameRequired = "Drawing name is required"
	errNotFound     = "Drawing not found"
)

type (
	CreateDrawingRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	// UpdateDrawingRequest replaces the drawing's shapes only when Shapes
	// is present in the body.
	UpdateDrawingRequest struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Shapes      []shapes.Shape `json:"shapes"`
	}

	// DrawingResponse always carries a shapes array, empty or not.
	DrawingResponse struct {
		*core.Drawing
		Shapes []shapes.Shape `json:"shapes"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	HealthResponse struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}

	// Notifier is told about every successful change so connected viewers
	// can refresh.
	Notifier interface {
		DrawingSaved(id string)
		DrawingsChanged()
	}
)

func newDrawingResponse(d *core.Drawing) DrawingResponse {
	list := d.Shapes
	if list == nil {
		list = []shapes.Shape{}
	}
	return DrawingResponse{Drawing: d, Shapes: list}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	chirender.Status(r, status)
	chirender.JSON(w, r, map[string]string{"error": message})
}

// writeStoreError maps store errors onto status codes.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, errNotFound)
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, http.StatusBadRequest, errNameRequired)
	default:
		logrus.WithError(err).Error(failure)
		writeError(w, r, http.StatusInternalServerError, failure)
	}
}

// Routes mounts the drawing endpoints, typically under /api/drawings.
func Routes(store core.DrawingStore, notifier Notifier) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", HandleList(store))
		r.Post("/", HandleCreate(store, notifier))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", HandleGet(store))
			r.Put("/", HandleUpdate(store, notifier))
			r.Delete("/", HandleDelete(store, notifier))
			r.Get("/render.png", HandleRender(store))
		})
	}
}

// HandleHealth reports liveness.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chirender.JSON(w, r, HealthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// HandleList lists drawings without their shapes, newest first.
func HandleList(store core.DrawingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			writeStoreError(w, r, err, "Failed to list drawings")
			return
		}
		if list == nil {
			list = []*core.Drawing{}
		}
		chirender.JSON(w, r, list)
	}
}

// HandleGet returns one drawing with its shapes.
func HandleGet(store core.DrawingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d, err := store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err, "Failed to load drawing")
			return
		}
		chirender.JSON(w, r, newDrawingResponse(d))
	}
}

// HandleCreate creates an empty drawing.
func HandleCreate(store core.DrawingStore, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDrawingRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			logrus.WithError(err).Warn("Failed to decode create request")
			writeError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := core.ValidateName(req.Name); err != nil {
			writeError(w, r, http.StatusBadRequest, errNameRequired)
			return
		}

		d, err := store.Create(r.Context(), req.Name, req.Description)
		if err != nil {
			writeStoreError(w, r, err, "Failed to create drawing")
			return
		}
		notifier.DrawingsChanged()

		chirender.Status(r, http.StatusCreated)
		chirender.JSON(w, r, newDrawingResponse(d))
	}
}

// HandleUpdate stores name and description and, when given, replaces the
// whole shape list.
func HandleUpdate(store core.DrawingStore, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logrus.WithField("drawing_id", id)

		var req UpdateDrawingRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			log.WithError(err).Warn("Failed to decode update request")
			writeError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := core.ValidateName(req.Name); err != nil {
			writeError(w, r, http.StatusBadRequest, errNameRequired)
			return
		}

		if err := store.Save(r.Context(), id, req.Name, req.Description, req.Shapes); err != nil {
			writeStoreError(w, r, err, "Failed to save drawing")
			return
		}
		notifier.DrawingSaved(id)
		notifier.DrawingsChanged()

		chirender.JSON(w, r, MessageResponse{Message: "Drawing updated successfully"})
	}
}

// HandleDelete removes a drawing.
func HandleDelete(store core.DrawingStore, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil {
			writeStoreError(w, r, err, "Failed to delete drawing")
			return
		}
		notifier.DrawingsChanged()
		chirender.JSON(w, r, MessageResponse{Message: "Drawing deleted successfully"})
	}
}

// HandleRender rasterises a drawing to PNG. Query parameters: annotations
// (default true), width and height (default 800x600).
func HandleRender(store core.DrawingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		q := r.URL.Query()

		showAnnotations := true
		if v := q.Get("annotations"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "Invalid annotations parameter")
				return
			}
			showAnnotations = b
		}
		width, ok := sizeParam(q.Get("width"), render.DefaultWidth)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "Invalid width parameter")
			return
		}
		height, ok := sizeParam(q.Get("height"), render.DefaultHeight)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "Invalid height parameter")
			return
		}

		d, err := store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, err, "Failed to load drawing")
			return
		}

		raster := render.NewRaster(width, height)
		render.Draw(raster, render.Scene{Shapes: d.Shapes, ShowAnnotations: showAnnotations})

		w.Header().Set("Content-Type", "image/png")
		if err := raster.EncodePNG(w); err != nil {
			logrus.WithError(err).WithField("drawing_id", id).Error("Failed to encode PNG")
		}
	}
}

func sizeParam(v string, def int) (int, bool) {
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxRenderSize {
		return 0, false
	}
	return n, true
}
