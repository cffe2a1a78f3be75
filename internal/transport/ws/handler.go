package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/partyroom/partyroom/internal/model"
)

// SessionHandler consumes inbound frames and connection closes
type SessionHandler interface {
	HandleRaw(ctx context.Context, conn model.ConnID, raw []byte)
	Disconnect(ctx context.Context, conn model.ConnID)
}

// Config holds websocket connection settings
type Config struct {
	// AllowedOrigins lists accepted Origin values; empty or "*" accepts any
	AllowedOrigins []string
	// MaxMessageSize is the largest inbound frame accepted
	MaxMessageSize int64
	// SendBufferSize is the number of frames queued per client before dropping
	SendBufferSize int
	WriteWait      time.Duration
	PongWait       time.Duration
	// PingPeriod must be shorter than PongWait
	PingPeriod time.Duration
}

// DefaultConfig returns sensible defaults for websocket connections
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 256,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
	}
}

// Handler upgrades HTTP requests to websocket connections and runs them
type Handler struct {
	hub      *Hub
	session  SessionHandler
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(hub *Hub, session SessionHandler, cfg Config, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:     hub,
		session: session,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "ws")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response
		h.logger.Warn("ws upgrade failed",
			slog.String("remote", r.RemoteAddr),
			slog.Any("error", err))
		return
	}

	client := newClient(model.ConnID(uuid.NewString()), conn, h.cfg.SendBufferSize)
	h.hub.Register(client)
	go client.writePump(h.cfg)

	// Detached so store writes started by the last frames still finish
	ctx := context.WithoutCancel(r.Context())
	client.readPump(ctx, h.session, h.cfg, h.logger)

	h.hub.Unregister(client)
	h.session.Disconnect(ctx, client.id)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	h.logger.Warn("ws origin rejected", slog.String("origin", origin))
	return false
}
