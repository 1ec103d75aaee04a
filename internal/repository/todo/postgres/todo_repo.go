package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoSaas/internal/logger"
	"todoSaas/internal/models/todo"
	repo "todoSaas/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, maxConns, minConns int32, idleTimeout time.Duration) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns
	config.MaxConnIdleTime = idleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Pool отдаёт пул наружу: хранилище пользователей работает через то же подключение
func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()

	query := `INSERT INTO todos
				(id, owner_id, title, completed, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		todoToCreate.ID,
		todoToCreate.OwnerID,
		todoToCreate.Title,
		todoToCreate.Completed,
		todoToCreate.CreatedAt,
		todoToCreate.UpdatedAt,
	)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	start := time.Now()

	query := `UPDATE todos
			SET title = $1,
				completed = $2,
				updated_at = $3
			WHERE id = $4
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		todoToUpdate.Title,
		todoToUpdate.Completed,
		todoToUpdate.UpdatedAt,
		todoToUpdate.ID,
	).Scan(&todoToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	start := time.Now()

	query := `SELECT
				id,
				owner_id,
				title,
				completed,
				created_at,
				updated_at
				FROM todos
				WHERE id = $1`

	t := &todo.Todo{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return t, nil
}

// задачи владельца, новые первыми; без пагинации - список целиком
func (s *Storage) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*todo.Todo, error) {
	start := time.Now()

	query := `SELECT
				id,
				owner_id,
				title,
				completed,
				created_at,
				updated_at
				FROM todos
				WHERE owner_id = $1
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	defer rows.Close()

	todos := []*todo.Todo{}

	for rows.Next() {
		t := &todo.Todo{}

		err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Title,
			&t.Completed,
			&t.CreatedAt,
			&t.UpdatedAt,
		)

		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}

		todos = append(todos, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return todos, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM todos
				WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)

	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}

	return nil
}
