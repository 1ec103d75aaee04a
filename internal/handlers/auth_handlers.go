package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoSaas/internal/handlers/dto"
	"todoSaas/internal/logger"
	"todoSaas/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	u, err := h.AuthService.Signup(r.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "signup"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", u.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("id", u.ID),
		toPayload("email", u.Email),
		toPayload("name", u.Name),
	)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	token, err := h.AuthService.Signin(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "signin"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("token", token))
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	h.AuthService.Signout(middleware.GetToken(r))

	responseWithJSON(w, http.StatusOK, toPayload("message", "сессия завершена"))
}
