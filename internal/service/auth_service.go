package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"todoSaas/internal/logger"
	"todoSaas/internal/models/user"
	rep "todoSaas/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService - поставщик идентичности: регистрация, вход и проверка токена.
// Сессии живут в памяти процесса и истекают по TTL

type session struct {
	ownerID   uuid.UUID
	expiresAt time.Time
}

type AuthService struct {
	users      UserRepository
	sessions   map[string]session
	mtx        sync.RWMutex
	sessionTTL time.Duration
}

func NewAuthService(users UserRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   make(map[string]session),
		sessionTTL: sessionTTL,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, NewValidationError("email", "адрес не может быть пустым")
	}
	if password == "" {
		return nil, NewValidationError("password", "пароль не может быть пустым")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewStorageError(fmt.Errorf("хеширование пароля: %w", err))
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, rep.ErrConflict) {
			return nil, NewConflict("пользователь с таким email уже зарегистрирован")
		}
		return nil, NewStorageError(fmt.Errorf("создание пользователя: %w", err))
	}

	logger.Info("Service: Новый пользователь", zap.String("user_id", u.ID.String()))
	return u, nil
}

// Signin проверяет пару email/пароль и выдаёт непрозрачный токен сессии.
// Неверный email и неверный пароль дают одинаковый ответ
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return "", NewUnauthenticated()
		}
		return "", NewStorageError(fmt.Errorf("получение пользователя: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", NewUnauthenticated()
	}

	token := uuid.New().String()

	s.mtx.Lock()
	s.sessions[token] = session{
		ownerID:   u.ID,
		expiresAt: time.Now().Add(s.sessionTTL),
	}
	s.mtx.Unlock()

	return token, nil
}

// Verify отдаёт ownerID по токену; просроченный или неизвестный токен -
// немедленный отказ до любого обращения к записям
func (s *AuthService) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, NewUnauthenticated()
	}

	s.mtx.RLock()
	sess, ok := s.sessions[token]
	s.mtx.RUnlock()

	if !ok || time.Now().After(sess.expiresAt) {
		return uuid.Nil, NewUnauthenticated()
	}

	return sess.ownerID, nil
}

func (s *AuthService) Signout(token string) {
	s.mtx.Lock()
	delete(s.sessions, token)
	s.mtx.Unlock()
}

// SweepExpired удаляет истёкшие сессии, возвращает число удалённых
func (s *AuthService) SweepExpired(now time.Time) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}

	return removed
}
