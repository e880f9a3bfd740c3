package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"rtchat/errs"
	"rtchat/models"
)

type RoomRepository interface {
	Create(name, createdBy string) (*models.Room, error)
	List() ([]models.Room, error)
	FindByID(id string) (*models.Room, error)
}

type InMemoryRoomRepo struct {
	mu    sync.RWMutex
	data  map[string]*models.Room
	order []string // room IDs in creation order
}

func NewInMemoryRoomRepo() *InMemoryRoomRepo {
	return &InMemoryRoomRepo{data: make(map[string]*models.Room)}
}

func (r *InMemoryRoomRepo) Create(name, createdBy string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := &models.Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	r.data[room.ID] = room
	r.order = append(r.order, room.ID)
	return room, nil
}

// List returns rooms ordered by creation time ascending.
func (r *InMemoryRoomRepo) List() ([]models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]models.Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, *r.data[id])
	}
	return rooms, nil
}

func (r *InMemoryRoomRepo) FindByID(id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.data[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return room, nil
}
