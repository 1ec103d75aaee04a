package service

import "fmt"

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeStorage         = "STORAGE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewUnauthenticated() *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthenticated,
		Message: "требуется аутентификация",
	}
}

// NewForbidden - единый отказ: "не найдено" и "не ваша задача" на границе API
// неразличимы, чтобы не раскрывать существование чужих записей
func NewForbidden() *BusinessError {
	return &BusinessError{
		Code:    CodeForbidden,
		Message: "доступ запрещён",
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewConflict(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewStorageError(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeStorage,
		Message: "ошибка хранилища",
		Err:     err,
	}
}
