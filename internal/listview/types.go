package listview

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task - клиентская копия серверной записи; кэш контроллера никогда
// не считается истиной и целиком замещается следующим fetch
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch - частичное обновление: nil-поле не передаётся на сервер
type Patch struct {
	Title     *string
	Completed *bool
}

// TaskAPI - граница к хранилищу задач; единственный канал распространения
// изменений - повторный List после каждой мутации
type TaskAPI interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, title string) (Task, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
