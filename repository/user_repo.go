//go:generate go run go.uber.org/mock/mockgen -source=user_repo.go -destination=../mocks/mock_user_repository.go -package=mocks
package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rtchat/errs"
	"rtchat/models"
)

type UserRepository interface {
	Create(email, passwordHash string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	UpdatePushToken(id, token string) (*models.User, error)
}

type InMemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]*models.User // keyed by lowercased email
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (r *InMemoryUserRepo) Create(email, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := r.byEmail[key]; ok {
		return nil, fmt.Errorf("%w: email %s", errs.ErrAlreadyExists, email)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.byID[u.ID] = u
	r.byEmail[key] = u
	return u, nil
}

func (r *InMemoryUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepo) UpdatePushToken(id, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u.FCMToken = token
	return u, nil
}
