package drawings

import (
	"building-planner/core"
	"building-planner/shapes"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// Mock drawing store for testing
type mockDrawingStore struct {
	mu       sync.RWMutex
	drawings map[string]*core.Drawing
	next     int
	listErr  error
	saveErr  error
}

func newMockStore() *mockDrawingStore {
	return &mockDrawingStore{drawings: make(map[string]*core.Drawing)}
}

func (m *mockDrawingStore) List(ctx context.Context) ([]*core.Drawing, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*core.Drawing, 0, len(m.drawings))
	for _, d := range m.drawings {
		c := *d
		c.Shapes = nil
		out = append(out, &c)
	}
	core.SortByUpdated(out)
	return out, nil
}

func (m *mockDrawingStore) Get(ctx context.Context, id string) (*core.Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drawings[id]
	if !ok {
		return nil, core.NotFoundError(id)
	}
	c := *d
	c.Shapes = shapes.CloneAll(d.Shapes)
	return &c, nil
}

func (m *mockDrawingStore) Create(ctx context.Context, name, description string) (*core.Drawing, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	now := time.Now()
	d := &core.Drawing{
		ID:          fmt.Sprintf("mock-id-%d", m.next),
		Name:        name,
		Description: description,
		Shapes:      []shapes.Shape{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.drawings[d.ID] = d
	return d, nil
}

func (m *mockDrawingStore) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drawings[id]
	if !ok {
		return core.NotFoundError(id)
	}
	d.Name, d.Description, d.UpdatedAt = name, description, time.Now()
	if list != nil {
		d.Shapes = shapes.CloneAll(list)
	}
	return nil
}

func (m *mockDrawingStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drawings[id]; !ok {
		return core.NotFoundError(id)
	}
	delete(m.drawings, id)
	return nil
}

type recordingNotifier struct {
	saved   []string
	changed int
}

func (n *recordingNotifier) DrawingSaved(id string) { n.saved = append(n.saved, id) }
func (n *recordingNotifier) DrawingsChanged()       { n.changed++ }

func newTestRouter(store core.DrawingStore, notifier Notifier) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/health", HandleHealth())
	r.Route("/api/drawings", Routes(store, notifier))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body["error"]
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, newTestRouter(newMockStore(), &recordingNotifier{}), http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "OK" {
		t.Errorf("status = %q, want OK", resp.Status)
	}
	if _, err := time.Parse(time.RFC3339Nano, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", resp.Timestamp, err)
	}
}

func TestHandleCreate_Success(t *testing.T) {
	store := newMockStore()
	notifier := &recordingNotifier{}
	rec := do(t, newTestRouter(store, notifier), http.MethodPost, "/api/drawings",
		`{"name":"Ground floor","description":"draft"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusCreated)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(raw["shapes"]) != "[]" {
		t.Errorf("shapes = %s, want []", raw["shapes"])
	}
	if string(raw["name"]) != `"Ground floor"` {
		t.Errorf("name = %s", raw["name"])
	}
	if len(store.drawings) != 1 {
		t.Errorf("Expected 1 drawing in store, got %d", len(store.drawings))
	}
	if notifier.changed != 1 {
		t.Errorf("DrawingsChanged calls = %d, want 1", notifier.changed)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"description":"x"}`, "Drawing name is required"},
		{"blank name", `{"name":"   "}`, "Drawing name is required"},
		{"malformed", `{"name":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			rec := do(t, newTestRouter(store, &recordingNotifier{}), http.MethodPost, "/api/drawings", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeError(t, rec); got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
			if len(store.drawings) != 0 {
				t.Error("invalid request created a drawing")
			}
		})
	}
}

func TestHandleGet(t *testing.T) {
	store := newMockStore()
	d, _ := store.Create(context.Background(), "Plan", "")
	list := []shapes.Shape{
		{ID: 1, Geometry: shapes.Line{Start: shapes.Pt(0, 0), End: shapes.Pt(3, 4)}},
		{ID: 2, Geometry: shapes.Polygon{Points: []shapes.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}},
	}
	store.Save(context.Background(), d.ID, "Plan", "", list)

	router := newTestRouter(store, &recordingNotifier{})
	rec := do(t, router, http.MethodGet, "/api/drawings/"+d.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		ID     string         `json:"id"`
		Name   string         `json:"name"`
		Shapes []shapes.Shape `json:"shapes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ID != d.ID || len(resp.Shapes) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Shapes[1].Type() != shapes.TypePolygon {
		t.Errorf("second shape type = %q, want polygon", resp.Shapes[1].Type())
	}

	rec = do(t, router, http.MethodGet, "/api/drawings/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := decodeError(t, rec); got != "Drawing not found" {
		t.Errorf("error = %q, want Drawing not found", got)
	}
}

func TestHandleList(t *testing.T) {
	store := newMockStore()
	store.Create(context.Background(), "First", "")
	time.Sleep(2 * time.Millisecond)
	store.Create(context.Background(), "Second", "")

	rec := do(t, newTestRouter(store, &recordingNotifier{}), http.MethodGet, "/api/drawings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}

	var list []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 2 || list[0]["name"] != "Second" {
		t.Errorf("list = %v, want Second first", list)
	}
	for _, d := range list {
		if _, ok := d["shapes"]; ok {
			t.Errorf("list entry %v includes shapes", d["id"])
		}
	}
}

func TestHandleList_Empty(t *testing.T) {
	rec := do(t, newTestRouter(newMockStore(), &recordingNotifier{}), http.MethodGet, "/api/drawings", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestHandleList_StoreError(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("disk on fire")

	rec := do(t, newTestRouter(store, &recordingNotifier{}), http.MethodGet, "/api/drawings", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := decodeError(t, rec); got != "Failed to list drawings" {
		t.Errorf("error = %q", got)
	}
}

func TestHandleUpdate(t *testing.T) {
	store := newMockStore()
	notifier := &recordingNotifier{}
	router := newTestRouter(store, notifier)
	d, _ := store.Create(context.Background(), "Plan", "")

	body := `{"name":"Plan v2","description":"walls","shapes":[
		{"id":7,"type":"rectangle","coordinates":{"startX":0,"startY":0,"endX":40,"endY":30},"properties":{},"annotations":{}}
	]}`
	rec := do(t, router, http.MethodPut, "/api/drawings/"+d.ID, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	got, _ := store.Get(context.Background(), d.ID)
	if got.Name != "Plan v2" || len(got.Shapes) != 1 || got.Shapes[0].ID != 7 {
		t.Errorf("stored drawing = %+v", got)
	}
	if len(notifier.saved) != 1 || notifier.saved[0] != d.ID {
		t.Errorf("DrawingSaved calls = %v", notifier.saved)
	}

	// Without shapes only the metadata changes.
	rec = do(t, router, http.MethodPut, "/api/drawings/"+d.ID, `{"name":"Plan v3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	got, _ = store.Get(context.Background(), d.ID)
	if got.Name != "Plan v3" || len(got.Shapes) != 1 {
		t.Errorf("metadata-only update = %+v", got)
	}

	// An explicit empty list clears the drawing.
	do(t, router, http.MethodPut, "/api/drawings/"+d.ID, `{"name":"Plan v3","shapes":[]}`)
	got, _ = store.Get(context.Background(), d.ID)
	if len(got.Shapes) != 0 {
		t.Errorf("shapes after clearing = %d, want 0", len(got.Shapes))
	}
}

func TestHandleUpdate_Errors(t *testing.T) {
	store := newMockStore()
	d, _ := store.Create(context.Background(), "Plan", "")

	tests := []struct {
		name    string
		path    string
		body    string
		saveErr error
		code    int
	}{
		{"unknown drawing", "/api/drawings/missing", `{"name":"x"}`, nil, http.StatusNotFound},
		{"missing name", "/api/drawings/" + d.ID, `{"shapes":[]}`, nil, http.StatusBadRequest},
		{"unknown shape type", "/api/drawings/" + d.ID, `{"name":"x","shapes":[{"id":1,"type":"hexagon","coordinates":{}}]}`, nil, http.StatusBadRequest},
		{"storage failure", "/api/drawings/" + d.ID, `{"name":"x"}`, errors.New("timeout"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.saveErr = tt.saveErr
			notifier := &recordingNotifier{}
			rec := do(t, newTestRouter(store, notifier), http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.code {
				t.Errorf("Status code mismatch: got %d, want %d", rec.Code, tt.code)
			}
			if len(notifier.saved) != 0 || notifier.changed != 0 {
				t.Error("failed update notified viewers")
			}
		})
	}
	store.saveErr = nil
}

func TestHandleDelete(t *testing.T) {
	store := newMockStore()
	notifier := &recordingNotifier{}
	router := newTestRouter(store, notifier)
	d, _ := store.Create(context.Background(), "Plan", "")

	rec := do(t, router, http.MethodDelete, "/api/drawings/"+d.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	var msg MessageResponse
	json.NewDecoder(rec.Body).Decode(&msg)
	if msg.Message != "Drawing deleted successfully" {
		t.Errorf("message = %q", msg.Message)
	}
	if notifier.changed != 1 {
		t.Errorf("DrawingsChanged calls = %d, want 1", notifier.changed)
	}

	rec = do(t, router, http.MethodDelete, "/api/drawings/"+d.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleRender(t *testing.T) {
	store := newMockStore()
	d, _ := store.Create(context.Background(), "Plan", "")
	store.Save(context.Background(), d.ID, "Plan", "", []shapes.Shape{
		{ID: 1, Geometry: shapes.Rectangle{Start: shapes.Pt(10, 10), End: shapes.Pt(100, 80)}},
	})
	router := newTestRouter(store, &recordingNotifier{})

	rec := do(t, router, http.MethodGet, "/api/drawings/"+d.ID+"/render.png?width=200&height=120", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 120 {
		t.Errorf("image size = %v, want 200x120", b)
	}

	for _, q := range []string{"?annotations=maybe", "?width=0", "?height=99999"} {
		rec := do(t, router, http.MethodGet, "/api/drawings/"+d.ID+"/render.png"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}

	rec = do(t, router, http.MethodGet, "/api/drawings/missing/render.png", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown drawing status = %d, want 404", rec.Code)
	}
}
