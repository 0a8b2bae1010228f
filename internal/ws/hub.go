package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/KiiTuNp/voteapp/pkg/metrics"
)

type ConnOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Hub is the broadcast registry: room id -> live subscribers. It is
// created once at startup and shared by the HTTP layer and the meeting
// service.
type Hub struct {
	log  *slog.Logger
	opts ConnOptions

	mu    sync.RWMutex
	rooms map[string]*Room // rooms with at least one subscriber
}

// NewHub sets up an empty registry
func NewHub(logger *slog.Logger, opts ConnOptions) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 20 * time.Second
	}
	return &Hub{log: logger, opts: opts, rooms: map[string]*Room{}}
}

// Register subscribes c to roomID.
func (h *Hub) Register(roomID string, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[roomID]
	if rm == nil {
		rm = NewRoom()
		h.rooms[roomID] = rm
	}
	if rm.Join(c) {
		metrics.WSConnections.Inc()
	}
	h.log.Debug("ws.registered", "room", roomID, "subscribers", rm.Len())
}

// Unregister removes c from roomID. Calling it again, or for a client
// that never registered, does nothing.
func (h *Hub) Unregister(roomID string, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[roomID]
	if rm == nil || !rm.Leave(c) {
		return
	}
	metrics.WSConnections.Dec()
	if rm.Len() == 0 {
		delete(h.rooms, roomID)
	}
	h.log.Debug("ws.unregistered", "room", roomID)
}

// Subscribers returns the number of clients registered for roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	rm := h.rooms[roomID]
	h.mu.RUnlock()
	if rm == nil {
		return 0
	}
	return rm.Len()
}

// Broadcast serializes ev once and queues it to every subscriber of
// roomID. Delivery is best-effort: failures are counted and logged, never
// returned.
func (h *Hub) Broadcast(roomID string, ev Event) {
	h.mu.RLock()
	rm := h.rooms[roomID]
	h.mu.RUnlock()

	metrics.EventsBroadcast.WithLabelValues(string(ev.Type())).Inc()
	if rm == nil {
		return
	}

	b, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws.marshal", "type", ev.Type(), "err", err)
		return
	}
	if failed := rm.Broadcast(b); failed > 0 {
		metrics.DeliveriesDropped.Add(float64(failed))
		h.log.Warn("ws.delivery.dropped", "room", roomID, "type", ev.Type(), "count", failed)
	}
}

// ServeWS upgrades the request and keeps the socket subscribed to roomID
// until the client goes away. Inbound frames are read only to notice
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID string) {
	ctx := r.Context()

	ws, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(ws, roomID, h.opts)
	h.Register(roomID, c)
	defer func() {
		h.Unregister(roomID, c)
		_ = c.Close()
	}()

	// Outbound writer
	go c.WriteLoop(ctx)

	for {
		if _, ok := c.Read(ctx); !ok {
			break
		}
	}
}
