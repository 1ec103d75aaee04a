package handlers

import (
	"errors"
	"net/http"

	"todoSaas/internal/logger"
	"todoSaas/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
		)
		return true
	}
	return false
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodeStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
