// Package ws carries the client protocol over gorilla/websocket connections.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
	"github.com/partyroom/partyroom/internal/transport"
)

// Hub tracks every open connection and delivers frames to them.
// Delivery never blocks: a client whose buffer is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	logger  *slog.Logger
}

// Ensure Hub implements the transport interface
var _ transport.Transport = (*Hub)(nil)

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "ws-hub")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("conn", string(client.id)),
		slog.String("remote", client.remote),
		slog.Int("total_clients", count))
}

// Unregister removes a client and closes its send buffer
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("conn", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
}

// Send delivers msg to one connection
func (h *Hub) Send(conn model.ConnID, msg protocol.Message) {
	frame, err := msg.Encode()
	if err != nil {
		h.logger.Error("ws failed to encode message",
			slog.String("event", msg.Event),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(conn, frame)
}

// Broadcast delivers msg to every listed connection except one
func (h *Hub) Broadcast(conns []model.ConnID, msg protocol.Message, except model.ConnID) {
	frame, err := msg.Encode()
	if err != nil {
		h.logger.Error("ws failed to encode message",
			slog.String("event", msg.Event),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent, dropped := 0, 0
	for _, conn := range conns {
		if conn == except {
			continue
		}
		if h.deliver(conn, frame) {
			sent++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.String("event", msg.Event),
			slog.Int("sent", sent),
			slog.Int("dropped", dropped))
	}
}

// deliver queues a frame for one client. The caller holds h.mu for reading,
// which keeps Unregister from closing the channel underneath us.
func (h *Hub) deliver(conn model.ConnID, frame []byte) bool {
	client, ok := h.clients[conn]
	if !ok {
		h.logger.Debug("ws message for unknown connection dropped", slog.String("conn", string(conn)))
		return false
	}
	select {
	case client.send <- frame:
		return true
	default:
		h.logger.Warn("ws message dropped - client buffer full", slog.String("conn", string(conn)))
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
	h.logger.Info("ws hub closed", slog.Int("disconnected_clients", len(clients)))
}
