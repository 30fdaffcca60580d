package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Hub fans pipeline progress events out to websocket subscribers.
// ⭐ SSOT: 진행 상황 스트림은 이 허브에서만
type Hub struct {
	upgrader websocket.Upgrader
	log      *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

// client pairs a connection with its write lock. gorilla/websocket allows
// only one concurrent writer per connection; concurrent runs broadcast from
// separate goroutines, so every write must hold writeMu.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub creates a hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:     log,
		clients: make(map[*websocket.Conn]*client),
	}
}

// Handle upgrades the connection and keeps it registered until the peer
// disconnects. Subscribers only receive; inbound frames are discarded.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	h.mu.Unlock()

	h.log.WithField("clients", h.ClientCount()).Debug("Progress subscriber connected")

	// Read loop: detect disconnect, discard inbound frames
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastEvent sends a pipeline event to every subscriber. Slow or dead
// subscribers are dropped, never waited on. Safe for concurrent callers.
func (h *Hub) BroadcastEvent(ev pipeline.Event) {
	h.mu.Lock()
	subscribers := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		subscribers = append(subscribers, c)
	}
	h.mu.Unlock()

	for _, c := range subscribers {
		c.writeMu.Lock()
		err := c.conn.WriteJSON(ev)
		c.writeMu.Unlock()

		if err != nil {
			h.drop(c.conn)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}
