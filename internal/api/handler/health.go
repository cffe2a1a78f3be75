package handler

import (
	"net/http"

	"github.com/partyroom/partyroom/internal/api/response"
	"github.com/partyroom/partyroom/internal/services/room"
	"github.com/partyroom/partyroom/internal/transport/ws"
)

// HealthHandler reports liveness and a few gauges
type HealthHandler struct {
	registry *room.Registry
	hub      *ws.Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *room.Registry, hub *ws.Hub) *HealthHandler {
	return &HealthHandler{registry: registry, hub: hub}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok"}
	if h.registry != nil {
		resp.Rooms = h.registry.Count()
	}
	if h.hub != nil {
		resp.Clients = h.hub.ClientCount()
	}
	response.OK(w, resp)
}
