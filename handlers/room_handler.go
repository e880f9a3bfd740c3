package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rtchat/services"
)

type RoomHandler struct {
	roomSvc *services.RoomService
	msgSvc  *services.MessageService
}

func NewRoomHandler(rs *services.RoomService, ms *services.MessageService) *RoomHandler {
	return &RoomHandler{roomSvc: rs, msgSvc: ms}
}

// List handles GET /rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomSvc.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// Create handles POST /rooms.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	room, err := h.roomSvc.Create(req.Name, identity.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"room": room})
}

// Get handles GET /rooms/{id}: the room plus its most recent messages.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.Get(r.PathValue("id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	messages, err := h.msgSvc.List(room.ID, 0, time.Time{})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"room": room, "messages": messages})
}
