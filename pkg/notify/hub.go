// Package notify pushes graph change events to WebSocket clients watching a project.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Message is the envelope sent to clients.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return c.conn.WriteJSON(msg)
}

// Hub keeps the WebSocket clients of every project.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger.With("module", "notify"),
		clients: map[string]map[*client]struct{}{},
	}
}

// Attach forwards bus events to the clients of the event's project.
func (h *Hub) Attach(bus eventbus.EventSubscriber) error {
	err := bus.Handle(events.GraphChangedEvent, func(ctx context.Context, event any) error {
		if changed, ok := event.(*events.GraphChanged); ok {
			h.Broadcast(ctx, changed.ProjectID, Message{Event: string(changed.Type), Payload: changed})
		}

		return nil
	})
	if err != nil {
		return err
	}

	return bus.Handle(events.ActionExecutedEvent, func(ctx context.Context, event any) error {
		if executed, ok := event.(*events.ActionExecuted); ok {
			h.Broadcast(ctx, executed.ProjectID, Message{Event: string(executed.Type), Payload: executed})
		}

		return nil
	})
}

// ServeHTTP upgrades /ws?project_id=... requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "project_id required", http.StatusBadRequest)

		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed", "project_id", projectID, "error", err)

		return
	}

	c := &client{conn: conn}

	h.mu.Lock()
	if h.clients[projectID] == nil {
		h.clients[projectID] = map[*client]struct{}{}
	}

	h.clients[projectID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.DebugContext(r.Context(), "Client connected", "project_id", projectID)

	go h.readLoop(projectID, c)
}

// readLoop discards inbound frames and notices when the client goes away.
func (h *Hub) readLoop(projectID string, c *client) {
	defer h.remove(projectID, c)

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// Broadcast writes msg to every client of projectID. Clients that fail the
// write are dropped.
func (h *Hub) Broadcast(ctx context.Context, projectID string, msg Message) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[projectID]))
	for c := range h.clients[projectID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.logger.DebugContext(ctx, "Dropping client after failed write", "project_id", projectID, "error", err)
			h.remove(projectID, c)
		}
	}
}

// Clients reports how many clients watch projectID.
func (h *Hub) Clients(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[projectID])
}

func (h *Hub) remove(projectID string, c *client) {
	_ = c.conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[projectID]
	if !ok {
		return
	}

	delete(subs, c)

	if len(subs) == 0 {
		delete(h.clients, projectID)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = map[string]map[*client]struct{}{}
	h.mu.Unlock()

	for _, subs := range all {
		for c := range subs {
			_ = c.conn.Close()
		}
	}
}
