package status

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	syncservice "github.com/boweryconnect/companion/internal/service/sync"
)

// WebSocketHandler pushes connectivity transitions and sync state to the UI
// so the offline banner and "needs attention" badge update live.
type WebSocketHandler struct {
	handler  *Handler
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the live status feed handler.
func NewWebSocketHandler(handler *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the feed.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/status", h.handleStatusFeed)
}

type feedMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (h *WebSocketHandler) handleStatusFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	transitions := h.handler.monitor.Subscribe()
	defer h.handler.monitor.Unsubscribe(transitions)

	// Initial snapshot so the client renders current state immediately.
	if err := h.writeSnapshot(conn); err != nil {
		return
	}

	// Reader goroutine notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case state, ok := <-transitions:
			if !ok {
				return
			}
			if err := h.write(conn, feedMessage{
				Type:      "connectivity",
				Data:      state,
				Timestamp: time.Now().UnixMilli(),
			}); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.writeSnapshot(conn); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) writeSnapshot(conn *websocket.Conn) error {
	syncStatus, err := h.handler.scheduler.Status()
	if err != nil {
		log.Printf("[status] failed to read sync status: %v", err)
		syncStatus = syncservice.Status{}
	}
	return h.write(conn, feedMessage{
		Type: "snapshot",
		Data: map[string]any{
			"connectivity": h.handler.monitor.Snapshot(),
			"sync":         syncStatus,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *WebSocketHandler) write(conn *websocket.Conn, msg feedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
