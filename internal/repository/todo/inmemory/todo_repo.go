package inmemory

import (
	"context"
	"sort"
	"sync"

	"todoSaas/internal/logger"
	"todoSaas/internal/models/todo"
	repo "todoSaas/internal/repository"

	"github.com/google/uuid"
)

type TodoStorage struct {
	storage map[uuid.UUID]*todo.Todo
	mtx     *sync.RWMutex
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[uuid.UUID]*todo.Todo),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	copied := *todoToCreate
	s.storage[copied.ID] = &copied
	return nil
}

func (s *TodoStorage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[todoToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	copied := *todoToUpdate
	s.storage[copied.ID] = &copied
	return nil
}

// GetByID возвращает копию записи: сервис применяет опции обновления к
// полученной задаче, и до подтверждения Update хранилище меняться не должно
func (s *TodoStorage) GetByID(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *stored
	return &copied, nil
}

// GetByOwner возвращает задачи владельца, новые первыми
func (s *TodoStorage) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*todo.Todo{}
	for _, stored := range s.storage {
		if stored.OwnerID != ownerID {
			continue
		}
		copied := *stored
		res = append(res, &copied)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}

func (s *TodoStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	return nil
}
