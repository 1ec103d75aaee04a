package inmemory

import (
	"context"
	"sync"

	"todoSaas/internal/models/user"
	repo "todoSaas/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.byEmail[userToCreate.Email]; ok {
		return repo.ErrConflict
	}

	copied := *userToCreate
	s.storage[copied.ID] = &copied
	s.byEmail[copied.Email] = copied.ID
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *s.storage[id]
	return &copied, nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *stored
	return &copied, nil
}
