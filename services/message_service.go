//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_broadcaster.go -package=mocks
package services

import (
	"fmt"
	"time"

	"rtchat/config"
	"rtchat/errs"
	"rtchat/models"
	"rtchat/repository"
)

// Broadcaster pushes a persisted message to all realtime subscribers of its
// room. Declared here so services stay unaware of the hub package.
type Broadcaster interface {
	PublishMessage(msg models.Message)
}

type MessageService struct {
	msgs  repository.MessageRepository
	rooms repository.RoomRepository
	hub   Broadcaster
	cfg   *config.Config
}

func NewMessageService(mr repository.MessageRepository, rr repository.RoomRepository, hub Broadcaster, cfg *config.Config) *MessageService {
	return &MessageService{msgs: mr, rooms: rr, hub: hub, cfg: cfg}
}

// Send appends a message to the room's log and fans it out to subscribers.
// Nothing is published when validation or the room lookup fails.
func (s *MessageService) Send(roomID, senderID, content string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content required", errs.ErrValidation)
	}
	if len(content) > s.cfg.MaxMessageLength {
		return nil, fmt.Errorf("%w: message too long (max %d characters)", errs.ErrValidation, s.cfg.MaxMessageLength)
	}
	if _, err := s.rooms.FindByID(roomID); err != nil {
		return nil, fmt.Errorf("%w: room %s", errs.ErrNotFound, roomID)
	}

	msg := &models.Message{
		RoomID:    roomID,
		UserID:    senderID,
		Content:   content,
		Timestamp: time.Now(),
	}
	saved, err := s.msgs.Append(msg)
	if err != nil {
		return nil, err
	}

	s.hub.PublishMessage(*saved)
	return saved, nil
}

// List returns the most recent messages of a room in chronological order.
// limit defaults to 50 and is capped at 200; before, when non-zero, restricts
// the result to strictly older messages.
func (s *MessageService) List(roomID string, limit int, before time.Time) ([]models.Message, error) {
	if limit <= 0 {
		limit = s.cfg.MessageListDefault
	}
	if limit > s.cfg.MessageListCap {
		limit = s.cfg.MessageListCap
	}

	if _, err := s.rooms.FindByID(roomID); err != nil {
		return nil, fmt.Errorf("%w: room %s", errs.ErrNotFound, roomID)
	}
	return s.msgs.ListByRoom(roomID, limit, before)
}
