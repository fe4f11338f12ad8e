// internal/presence/hub.go

package presence

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is a realtime message pushed to a user's connections
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains active websocket connections. A user may hold several
// connections; events fan out to all of them.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	clientsMux sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	store  Store
	logger *slog.Logger
}

// NewHub creates a hub that records connections in store
func NewHub(store Store, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		store:      store,
		logger:     logger,
	}
}

// Run processes registrations until ctx is cancelled, then closes every
// connection
func (h *Hub) Run(ctx context.Context) {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(ctx, client)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(ctx context.Context, client *Client) {
	h.clientsMux.Lock()
	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	n := len(set)
	h.clientsMux.Unlock()

	if err := h.store.Connect(ctx, client.userID, client.id); err != nil {
		h.logger.Warn("presence connect failed", slog.String("user_id", client.userID), slog.Any("error", err))
	}

	h.logger.Debug("websocket connected",
		slog.String("user_id", client.userID),
		slog.String("conn_id", client.id),
		slog.Int("user_connections", n))
}

func (h *Hub) unregisterClient(ctx context.Context, client *Client) {
	h.clientsMux.Lock()
	set, ok := h.clients[client.userID]
	if !ok {
		h.clientsMux.Unlock()
		return
	}
	if _, exists := set[client]; !exists {
		h.clientsMux.Unlock()
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
	h.clientsMux.Unlock()

	if err := h.store.Disconnect(ctx, client.userID, client.id); err != nil {
		h.logger.Warn("presence disconnect failed", slog.String("user_id", client.userID), slog.Any("error", err))
	}

	h.logger.Debug("websocket disconnected",
		slog.String("user_id", client.userID),
		slog.String("conn_id", client.id))
}

func (h *Hub) cleanup() {
	close(h.done)

	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	// The parent context is gone; give the store its own deadline
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for userID, set := range h.clients {
		for client := range set {
			close(client.send)
			if err := h.store.Disconnect(ctx, userID, client.id); err != nil {
				h.logger.Warn("presence disconnect failed", slog.String("user_id", userID), slog.Any("error", err))
			}
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

// Register hands a new connection to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.conn.Close()
	}
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues event on every connection userID holds on this instance.
// It reports whether at least one connection accepted it.
func (h *Hub) SendToUser(userID string, event Event) bool {
	data, ok := h.encode(event)
	if !ok {
		return false
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	delivered := false
	for client := range h.clients[userID] {
		if h.enqueue(client, data) {
			delivered = true
		}
	}
	return delivered
}

// sendToClient queues event on a single connection if it is still registered
func (h *Hub) sendToClient(client *Client, event Event) bool {
	data, ok := h.encode(event)
	if !ok {
		return false
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	if _, registered := h.clients[client.userID][client]; !registered {
		return false
	}
	return h.enqueue(client, data)
}

func (h *Hub) encode(event Event) ([]byte, bool) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("type", event.Type), slog.Any("error", err))
		return nil, false
	}
	return data, true
}

// enqueue must be called with clientsMux held
func (h *Hub) enqueue(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		// Slow consumer; drop the connection
		go h.Unregister(client)
		return false
	}
}

// IsConnectedHere reports whether userID has a connection on this instance
func (h *Hub) IsConnectedHere(userID string) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients[userID]) > 0
}

// ActiveConnections returns the number of connections on this instance
func (h *Hub) ActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
