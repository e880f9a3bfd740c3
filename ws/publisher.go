package ws

import (
	"encoding/json"
	"log/slog"

	"rtchat/hub"
	"rtchat/models"
)

// Publisher adapts the hub to the services.Broadcaster port: it wraps a
// persisted message in a message:new event and fans it out to the room.
type Publisher struct {
	hub *hub.Hub
	log *slog.Logger
}

func NewPublisher(h *hub.Hub, log *slog.Logger) *Publisher {
	return &Publisher{hub: h, log: log}
}

func (p *Publisher) PublishMessage(msg models.Message) {
	payload, err := json.Marshal(struct {
		Type    string         `json:"type"`
		Message models.Message `json:"message"`
	}{Type: "message:new", Message: msg})
	if err != nil {
		p.log.Error("marshal message event", "message", msg.ID, "err", err)
		return
	}
	p.hub.Publish(msg.RoomID, payload)
}
