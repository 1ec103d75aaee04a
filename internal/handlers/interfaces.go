package handlers

import (
	"context"

	"todoSaas/internal/models/todo"
	"todoSaas/internal/models/user"

	"github.com/google/uuid"
)

type TodoService interface {
	HealthCheck(context.Context) error
	ListTodos(context.Context, uuid.UUID) ([]*todo.Todo, error)
	CreateTodo(context.Context, uuid.UUID, string) (*todo.Todo, error)
	UpdateTodo(context.Context, uuid.UUID, uuid.UUID, ...todo.TodoOption) (*todo.Todo, error)
	DeleteTodo(context.Context, uuid.UUID, uuid.UUID) error
}

type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*user.User, error)
	Signin(ctx context.Context, email, password string) (string, error)
	Signout(token string)
}
