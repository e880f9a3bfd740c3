package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"rtchat/models"
)

type MessageRepository interface {
	Append(msg *models.Message) (*models.Message, error)
	// ListByRoom returns the most recent limit messages in chronological
	// order, restricted to those strictly older than before when non-zero.
	ListByRoom(roomID string, limit int, before time.Time) ([]models.Message, error)
}

type InMemoryMessageRepo struct {
	mu  sync.RWMutex
	byR map[string][]*models.Message // room -> messages in append order
}

func NewInMemoryMessageRepo() *InMemoryMessageRepo {
	return &InMemoryMessageRepo{byR: make(map[string][]*models.Message)}
}

func (r *InMemoryMessageRepo) Append(msg *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = uuid.NewString()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	r.byR[msg.RoomID] = append(r.byR[msg.RoomID], msg)
	return msg, nil
}

func (r *InMemoryMessageRepo) ListByRoom(roomID string, limit int, before time.Time) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := lo.Map(r.byR[roomID], func(m *models.Message, _ int) models.Message { return *m })
	if !before.IsZero() {
		msgs = lo.Filter(msgs, func(m models.Message, _ int) bool {
			return m.Timestamp.Before(before)
		})
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
