package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"rtchat/services"
)

type MessageHandler struct {
	svc *services.MessageService
}

func NewMessageHandler(s *services.MessageService) *MessageHandler {
	return &MessageHandler{svc: s}
}

// List handles GET /rooms/{id}/messages?limit=&before=.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative number")
			return
		}
		limit = n
	}

	var before time.Time
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = t
	}

	messages, err := h.svc.List(roomID, limit, before)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// Post handles POST /rooms/{id}/messages: the request-response submission
// path. The created message is also fanned out to the room's subscribers.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	msg, err := h.svc.Send(r.PathValue("id"), identity.UserID, req.Content)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": msg})
}
