package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoSaas/internal/logger"
	"todoSaas/internal/models/todo"
	rep "todoSaas/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь живут правила владения: каждая мутация заново проверяет,
// что задача принадлежит вызывающему владельцу

type TodoService struct {
	repo TodoRepository
}

func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{
		repo: repo,
	}
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// ListTodos возвращает все задачи владельца, новые первыми
func (s *TodoService) ListTodos(ctx context.Context, ownerID uuid.UUID) ([]*todo.Todo, error) {
	if ownerID == uuid.Nil {
		return nil, NewUnauthenticated()
	}

	todos, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewStorageError(fmt.Errorf("получение задач: %w", err))
	}

	return todos, nil
}

func (s *TodoService) CreateTodo(ctx context.Context, ownerID uuid.UUID, title string) (*todo.Todo, error) {
	if ownerID == uuid.Nil {
		return nil, NewUnauthenticated()
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}

	now := time.Now()
	t := &todo.Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, NewStorageError(fmt.Errorf("создание задачи: %w", err))
	}

	return t, nil
}

// UpdateTodo применяет только переданные опции; отсутствующие поля не трогает.
// Проверка владения - всегда через загрузку полной записи, не через фильтр запроса
func (s *TodoService) UpdateTodo(ctx context.Context, ownerID, id uuid.UUID, options ...todo.TodoOption) (*todo.Todo, error) {
	if ownerID == uuid.Nil {
		return nil, NewUnauthenticated()
	}

	t, err := s.authorize(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		opt(t)
	}

	if strings.TrimSpace(t.Title) == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}

	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			// задача исчезла между загрузкой и обновлением - тот же единый отказ
			return nil, NewForbidden()
		}
		return nil, NewStorageError(fmt.Errorf("обновление задачи: %w", err))
	}

	return t, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return NewUnauthenticated()
	}

	if _, err := s.authorize(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewForbidden()
		}
		return NewStorageError(fmt.Errorf("удаление задачи: %w", err))
	}

	return nil
}

// authorize загружает запись и сверяет владельца; несуществующая и чужая
// задача дают одинаковый результат
func (s *TodoService) authorize(ctx context.Context, ownerID, id uuid.UUID) (*todo.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Отказ в доступе к задаче", zap.String("target_id", id.String()))
			return nil, NewForbidden()
		}
		return nil, NewStorageError(fmt.Errorf("получение задачи: %w", err))
	}

	if t.OwnerID != ownerID {
		logger.Info("Service: Отказ в доступе к задаче", zap.String("target_id", id.String()))
		return nil, NewForbidden()
	}

	return t, nil
}
