// Package debugserver broadcasts schedule.TimelineSnapshot values to
// connected websocket clients, for a browser-side debug panel to render
// timeline/sequence/step state as it changes.
package debugserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/windrift/stagehand/pkg/schedule"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub implements schedule.DebugSink by fanning out every snapshot to all
// currently-connected websocket clients. The zero value is not usable;
// construct with NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	last   *schedule.TimelineSnapshot
	lastMu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Broadcast satisfies schedule.DebugSink. It is safe to call from any
// goroutine, including concurrently with clip/sequence playback.
func (h *Hub) Broadcast(snap schedule.TimelineSnapshot) {
	h.lastMu.Lock()
	h.last = &snap
	h.lastMu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleWebSocket upgrades the request and registers the connection as a
// broadcast target, replaying the last known snapshot immediately so a
// client that connects mid-timeline isn't left blank.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.lastMu.RLock()
	last := h.last
	h.lastMu.RUnlock()
	if last != nil {
		if payload, err := json.Marshal(last); err == nil {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
