package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/partyroom/partyroom/internal/api/response"
	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/services/room"
)

// RoomHandler exposes read-only views of live rooms
type RoomHandler struct {
	registry *room.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.List()

	resp := response.RoomList{Rooms: make([]response.Room, len(rooms))}
	for i, rm := range rooms {
		resp.Rooms[i] = response.RoomFromModel(rm)
	}
	response.OK(w, resp)
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Codes are generated uppercase; accept any case from humans
	code := model.RoomCode(strings.ToUpper(mux.Vars(r)["code"]))

	rm, err := h.registry.Get(code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.RoomFromModel(rm))
}
