package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"CupBack/cache"
	"CupBack/logger"

	"github.com/gorilla/websocket"
)

// ChangeEvent is what live clients receive when a collection changes. The
// client reaction is always the same: re-fetch the affected view. This is
// best-effort eventual consistency, not a transactional read.
type ChangeEvent struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	Timestamp  int64  `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the campus frontend origin; same policy
	// as the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub fans collection-change notifications out to websocket clients.
// Notifications arrive over the Redis changes channel, so every server
// instance sees writes made through any instance.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan ChangeEvent
}

// NewEventHub creates an EventHub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*websocket.Conn]chan ChangeEvent)}
}

// Run consumes the change subscription until ctx is cancelled.
func (h *EventHub) Run(ctx context.Context) {
	changes := cache.SubscribeChanges(ctx)
	for collection := range changes {
		h.broadcast(ChangeEvent{
			Type:       "changed",
			Collection: collection,
			Timestamp:  time.Now().UnixMilli(),
		})
	}
}

func (h *EventHub) broadcast(event ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Slow client: drop the event, the next change will catch it up.
			_ = conn
		}
	}
}

func (h *EventHub) add(conn *websocket.Conn) chan ChangeEvent {
	ch := make(chan ChangeEvent, 8)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	conn.Close()
}

// EventsHandler upgrades the connection and streams change events until the
// client goes away.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[Events] websocket upgrade failed", logger.ErrorField(err))
		return
	}

	ch := h.hub.add(conn)
	logger.Info("[Events] client connected", logger.String("remoteAddr", r.RemoteAddr))

	// Reader goroutine: we never expect client messages, but reading is what
	// detects the close.
	go func() {
		defer h.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		for event := range ch {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				h.hub.remove(conn)
				return
			}
		}
	}()
}
