package dto

import (
	"time"

	"todoSaas/internal/models/todo"

	"github.com/google/uuid"
)

type CreateTodoRequest struct {
	Title string `json:"title"`
}

// указатели различают "поле не передано" и "передано нулевое значение"
type UpdateTodoRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TodoResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromTodo(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTodoList(todos []*todo.Todo) []TodoResponse {
	result := make([]TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = FromTodo(t)
	}
	return result
}
