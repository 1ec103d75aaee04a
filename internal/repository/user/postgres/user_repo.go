package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoSaas/internal/logger"
	"todoSaas/internal/models/user"
	repo "todoSaas/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, email, name, password_hash, created_at)
				VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		userToCreate.ID,
		userToCreate.Email,
		userToCreate.Name,
		userToCreate.PasswordHash,
		userToCreate.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrConflict
		}
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление пользователя: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.get(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Storage) get(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return u, nil
}
