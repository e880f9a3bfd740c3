package services

import (
	"fmt"

	"rtchat/errs"
	"rtchat/models"
	"rtchat/repository"
)

type RoomService struct {
	rooms repository.RoomRepository
}

func NewRoomService(rr repository.RoomRepository) *RoomService {
	return &RoomService{rooms: rr}
}

// Create makes a new room. Names need not be unique.
func (s *RoomService) Create(name, creatorID string) (*models.Room, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", errs.ErrValidation)
	}
	return s.rooms.Create(name, creatorID)
}

// List returns all rooms, oldest first.
func (s *RoomService) List() ([]models.Room, error) {
	return s.rooms.List()
}

func (s *RoomService) Get(id string) (*models.Room, error) {
	return s.rooms.FindByID(id)
}
