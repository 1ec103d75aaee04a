package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoSaas/internal/handlers/dto"
	"todoSaas/internal/logger"
	"todoSaas/internal/middleware"
	"todoSaas/internal/models/todo"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TodoHandler struct {
	TodoService TodoService
}

func NewTodoHandler(todoService TodoService) TodoHandler {
	return TodoHandler{
		TodoService: todoService,
	}
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	ownerID := middleware.GetOwnerID(r.Context())

	todos, err := h.TodoService.ListTodos(r.Context(), ownerID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "list_todos"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("todos", dto.FromTodoList(todos)))
}

func (h *TodoHandler) PostTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	ownerID := middleware.GetOwnerID(r.Context())

	created, err := h.TodoService.CreateTodo(r.Context(), ownerID, request.Title)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "create_todo"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("todo_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("todo", dto.FromTodo(created)))
}

func (h *TodoHandler) PatchTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTodoRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	// собираем опции только из присутствующих полей
	options := []todo.TodoOption{}
	if request.Title != nil {
		options = append(options, todo.WithTitle(*request.Title))
	}
	if request.Completed != nil {
		options = append(options, todo.WithCompleted(*request.Completed))
	}

	ownerID := middleware.GetOwnerID(r.Context())

	updated, err := h.TodoService.UpdateTodo(r.Context(), ownerID, id, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "update_todo"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("todo_id", updated.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("todo", dto.FromTodo(updated)))
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ownerID := middleware.GetOwnerID(r.Context())

	if err := h.TodoService.DeleteTodo(r.Context(), ownerID, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "delete_todo"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("todo_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", "задача удалена"))
}

func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TodoService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, "хранилище недоступно")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return uuid.Nil, false
	}

	return id, true
}
