package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todoSaas/internal/listview"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("требуется аутентификация")
	ErrForbidden       = errors.New("доступ запрещён")
	ErrValidation      = errors.New("ошибка валидации")
)

// APIError - ошибка, пришедшая с сервера в теле ответа
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d [%s]: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest:
		return ErrValidation
	default:
		return nil
	}
}

// Client ходит в todo API с bearer-токеном сессии
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Signup(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password, "name": name}
	return c.do(ctx, http.MethodPost, "/auth/signup", body, nil)
}

// Signin получает токен сессии и запоминает его для следующих запросов
func (c *Client) Signin(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", body, &out); err != nil {
		return err
	}

	c.token = out.Token
	return nil
}

func (c *Client) List(ctx context.Context) ([]listview.Task, error) {
	var out struct {
		Todos []listview.Task `json:"todos"`
	}
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &out); err != nil {
		return nil, err
	}
	return out.Todos, nil
}

func (c *Client) Create(ctx context.Context, title string) (listview.Task, error) {
	body := map[string]string{"title": title}

	var out struct {
		Todo listview.Task `json:"todo"`
	}
	if err := c.do(ctx, http.MethodPost, "/todos", body, &out); err != nil {
		return listview.Task{}, err
	}
	return out.Todo, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, patch listview.Patch) (listview.Task, error) {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Completed != nil {
		body["completed"] = *patch.Completed
	}

	var out struct {
		Todo listview.Task `json:"todo"`
	}
	if err := c.do(ctx, http.MethodPatch, "/todos/"+id.String(), body, &out); err != nil {
		return listview.Task{}, err
	}
	return out.Todo, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("кодирование тела запроса: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&payload)

		return &APIError{
			Status:  resp.StatusCode,
			Code:    payload.Error,
			Message: payload.Message,
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("разбор ответа: %w", err)
	}

	return nil
}
