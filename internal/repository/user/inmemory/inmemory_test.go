package inmemory_test

import (
	"context"
	"testing"
	"time"

	"todoSaas/internal/models/user"
	repo "todoSaas/internal/repository"
	"todoSaas/internal/repository/user/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *user.User {
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "User",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
}

func TestUserStorage_CreateGet(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	created := newUser("user@example.com")
	require.NoError(t, storage.Create(ctx, created))

	byEmail, err := storage.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", byID.Email)
}

func TestUserStorage_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	require.NoError(t, storage.Create(ctx, newUser("user@example.com")))

	err := storage.Create(ctx, newUser("user@example.com"))
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestUserStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	_, err := storage.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUserStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	created := newUser("user@example.com")
	require.NoError(t, storage.Create(ctx, created))

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)

	retrieved.Name = "Mutated"

	again, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "User", again.Name)
}
