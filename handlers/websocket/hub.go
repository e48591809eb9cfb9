package websocket

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	EventJoin            = "join-drawing"
	EventLeave           = "leave-drawing"
	EventJoinAck         = "join-drawing-ack"
	EventDrawingSaved    = "drawing-saved"
	EventDrawingsChanged = "drawings-changed"
)

type (
	// Hub tells connected viewers when drawings change. Each drawing id is a
	// socket.io room.
	Hub struct {
		srv *socketio.Server

		mu      sync.RWMutex
		viewers map[string]map[socketio.SocketId]struct{}
	}

	// Viewers is one drawing's live viewer count.
	Viewers struct {
		ID      string `json:"id"`
		Viewers int    `json:"viewers"`
	}

	ackInvoker func(payload map[string]any)
)

var localhostOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)

// NewHub creates the socket.io server. With no origins, any localhost
// origin may connect.
func NewHub(origins []string) *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)

	allowed := []any{localhostOrigin}
	if len(origins) > 0 {
		allowed = allowed[:0]
		for _, o := range origins {
			allowed = append(allowed, o)
		}
	}
	opts.SetCors(&types.Cors{
		Origin:      allowed,
		Credentials: true,
	})

	h := newHub()
	h.srv = socketio.NewServer(nil, opts)
	h.srv.On("connection", h.onConnection)
	return h
}

func newHub() *Hub {
	return &Hub{viewers: make(map[string]map[socketio.SocketId]struct{})}
}

// Handler serves the socket.io transport.
func (h *Hub) Handler() http.Handler {
	return h.srv.ServeHandler(nil)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.srv.Close(nil)
}

func (h *Hub) onConnection(clients ...any) {
	socket, ok := clients[0].(*socketio.Socket)
	if !ok {
		return
	}
	me := socket.Id()
	log := logrus.WithField("socket_id", me)
	log.Debug("Viewer connected")

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.On(EventJoin, func(datas ...any) {
		ack, args := extractAck(datas)
		drawingID, err := drawingIDArg(args)
		if err != nil {
			respondWithAck(socket, ack, map[string]any{"status": "error", "error": err.Error()})
			return
		}

		socket.Join(socketio.Room(drawingID))
		count := h.join(drawingID, me)
		log.WithField("drawing_id", drawingID).Debug("Viewer joined drawing")
		respondWithAck(socket, ack, map[string]any{"status": "ok", "viewers": count})
	})

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.On(EventLeave, func(datas ...any) {
		_, args := extractAck(datas)
		drawingID, err := drawingIDArg(args)
		if err != nil {
			return
		}
		socket.Leave(socketio.Room(drawingID))
		h.leave(drawingID, me)
	})

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.On("disconnect", func(datas ...any) {
		h.leaveAll(me)
		log.Debug("Viewer disconnected")
	})
}

// DrawingSaved notifies viewers of one drawing that it was saved.
func (h *Hub) DrawingSaved(id string) {
	if h.srv == nil {
		return
	}
	if err := h.srv.To(socketio.Room(id)).Emit(EventDrawingSaved, id); err != nil {
		logrus.WithError(err).WithField("drawing_id", id).Warn("Failed to emit drawing-saved")
	}
}

// DrawingsChanged tells every client the drawing list changed.
func (h *Hub) DrawingsChanged() {
	if h.srv == nil {
		return
	}
	if err := h.srv.Sockets().Emit(EventDrawingsChanged); err != nil {
		logrus.WithError(err).Warn("Failed to emit drawings-changed")
	}
}

func (h *Hub) join(drawingID string, id socketio.SocketId) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.viewers[drawingID]
	if !ok {
		members = make(map[socketio.SocketId]struct{})
		h.viewers[drawingID] = members
	}
	members[id] = struct{}{}
	return len(members)
}

func (h *Hub) leave(drawingID string, id socketio.SocketId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(drawingID, id)
}

func (h *Hub) leaveAll(id socketio.SocketId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for drawingID := range h.viewers {
		h.removeLocked(drawingID, id)
	}
}

func (h *Hub) removeLocked(drawingID string, id socketio.SocketId) {
	members, ok := h.viewers[drawingID]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.viewers, drawingID)
	}
}

// ActiveViewers returns the viewer count of every drawing with viewers.
func (h *Hub) ActiveViewers() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.viewers))
	for id, members := range h.viewers {
		out[id] = len(members)
	}
	return out
}

// HandleViewers lists drawings being viewed, busiest first.
func (h *Hub) HandleViewers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := h.ActiveViewers()
		list := make([]Viewers, 0, len(active))
		for id, n := range active {
			list = append(list, Viewers{ID: id, Viewers: n})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Viewers == list[j].Viewers {
				return list[i].ID < list[j].ID
			}
			return list[i].Viewers > list[j].Viewers
		})
		render.JSON(w, r, list)
	}
}

func drawingIDArg(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("drawing id is required")
	}
	id, ok := args[0].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid drawing id")
	}
	return id, nil
}

// extractAck splits a trailing acknowledgement callback off the event args.
func extractAck(datas []any) (ack ackInvoker, args []any) {
	if len(datas) == 0 {
		return nil, datas
	}
	value := reflect.ValueOf(datas[len(datas)-1])
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, datas
	}

	typ := value.Type()
	ack = func(payload map[string]any) {
		in := make([]reflect.Value, typ.NumIn())
		for i := range in {
			in[i] = reflect.Zero(typ.In(i))
			if i == typ.NumIn()-1 && reflect.TypeOf(payload).AssignableTo(typ.In(i)) {
				in[i] = reflect.ValueOf(payload)
			}
		}
		value.Call(in)
	}
	return ack, datas[:len(datas)-1]
}

func respondWithAck(socket *socketio.Socket, ack ackInvoker, payload map[string]any) {
	if ack != nil {
		ack(payload)
	}
	_ = socket.Emit(EventJoinAck, payload)
}
