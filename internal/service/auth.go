// auth.go — сервис аутентификации: проверка пароля и выпуск JWT.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentinel-health/auth-module/internal/repository"
)

// AuthService — сервис аутентификации.
// Выпускает HS256-токены, claim acc содержит полное замыкание доступа
// пользователя по странам.
type AuthService struct {
	userRepo  repository.UserRepository
	roleSvc   *RoleService
	secret    []byte
	tokenLife time.Duration
	issuer    string
	logger    *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	roleSvc *RoleService,
	secret string,
	tokenLife time.Duration,
	issuer string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		roleSvc:   roleSvc,
		secret:    []byte(secret),
		tokenLife: tokenLife,
		issuer:    issuer,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// Authenticate проверяет имя пользователя и пароль и возвращает подписанный
// токен. Неверные учётные данные — ErrInvalidCredentials, некорректные
// назначения ролей — ErrBrokenAccess.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	u, err := s.userRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// bcrypt по фиктивному хешу — время ответа не выдаёт
			// существование учётной записи
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password),
			)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("получение учётной записи %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Info("Неудачная попытка входа", slog.String("username", username))
		return "", ErrInvalidCredentials
	}

	acc, err := s.roleSvc.AccessMap(ctx, u.Grants)
	if err != nil {
		if errors.Is(err, ErrBrokenAccess) {
			s.logger.Error("Назначения ролей учётной записи некорректны",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
			return "", ErrBrokenAccess
		}
		return "", err
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"usr": u.Username,
		"acc": acc,
		"iss": s.issuer,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenLife).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}

	s.logger.Info("Пользователь аутентифицирован", slog.String("username", username))
	return token, nil
}
