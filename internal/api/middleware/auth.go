// auth.go — JWT middleware для аутентификации и авторизации Auth Module.
// Проверяет подпись HS256-токена, извлекает claims (usr, acc) и требует
// управленческий доступ: наличие одной из ролей-менеджеров в любой стране.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/sentinel-health/auth-module/internal/api/errors"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyClaims — извлечённые claims в контексте запроса.
	ContextKeyClaims contextKey = "jwt_claims"
)

// AuthClaims — извлечённые claims из токена.
// Помещаются в контекст запроса для downstream handlers.
type AuthClaims struct {
	// Username — usr из токена.
	Username string
	// Access — acc из токена: страна → полное замыкание доступа.
	Access map[string][]string
}

// HasRole проверяет наличие роли хотя бы в одной стране.
func (c *AuthClaims) HasRole(role string) bool {
	for _, roles := range c.Access {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// HasAnyRole проверяет наличие хотя бы одной из указанных ролей.
func (c *AuthClaims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// tokenClaims — raw claims токена для парсинга.
type tokenClaims struct {
	jwt.RegisteredClaims
	// Username — имя пользователя.
	Username string `json:"usr"`
	// Access — карта страна → замыкание доступа.
	Access map[string][]string `json:"acc"`
}

// JWTAuth — middleware для JWT-аутентификации по статическому секрету.
type JWTAuth struct {
	secret       []byte
	issuer       string
	cookieName   string
	managerRoles []string
	exclude      []string
	jwtLeeway    time.Duration
	logger       *slog.Logger
}

// NewJWTAuth создаёт JWT middleware.
// secret — ключ подписи HS256 (AM_JWT_SECRET).
// issuer — ожидаемый issuer токена (AM_JWT_ISSUER).
// cookieName — имя cookie с токеном для браузерных запросов (AM_JWT_COOKIE_NAME).
// managerRoles — роли, дающие доступ к управлению (AM_MANAGER_ROLES).
// exclude — префиксы путей, не требующих токена.
func NewJWTAuth(
	secret string,
	issuer string,
	cookieName string,
	managerRoles []string,
	exclude []string,
	logger *slog.Logger,
) *JWTAuth {
	return &JWTAuth{
		secret:       []byte(secret),
		issuer:       issuer,
		cookieName:   cookieName,
		managerRoles: managerRoles,
		exclude:      exclude,
		jwtLeeway:    30 * time.Second,
		logger:       logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает токен (Bearer или cookie), валидирует подпись (HS256),
// извлекает claims, проверяет управленческий доступ и помещает claims
// в контекст. Публичные пути из exclude пропускаются без проверки.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if j.isExcluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := j.extractToken(r)
			if tokenString == "" {
				apierrors.Unauthorized(w, "Отсутствует токен аутентификации")
				return
			}

			rawClaims := &tokenClaims{}
			parserOpts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256"}),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(j.jwtLeeway),
			}
			if j.issuer != "" {
				parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
			}

			token, err := jwt.ParseWithClaims(tokenString, rawClaims, func(*jwt.Token) (any, error) {
				return j.secret, nil
			}, parserOpts...)
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			if !token.Valid {
				apierrors.Unauthorized(w, "Невалидный токен")
				return
			}

			if rawClaims.Username == "" {
				apierrors.Unauthorized(w, "Отсутствует usr в токене")
				return
			}

			claims := &AuthClaims{
				Username: rawClaims.Username,
				Access:   rawClaims.Access,
			}

			// Управление пользователями и ролями требует роли-менеджера
			if !claims.HasAnyRole(j.managerRoles...) {
				j.logger.Info("Доступ запрещён: нет роли-менеджера",
					slog.String("username", claims.Username),
				)
				apierrors.Forbidden(w, "Недостаточно прав: требуется роль "+strings.Join(j.managerRoles, " или "))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken извлекает токен из заголовка Authorization (Bearer)
// или из cookie. Заголовок имеет приоритет.
func (j *JWTAuth) extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(j.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// isExcluded проверяет, входит ли путь в список публичных.
func (j *JWTAuth) isExcluded(path string) bool {
	for _, prefix := range j.exclude {
		if strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == prefix {
			return true
		}
	}
	return false
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// UsernameFromContext извлекает имя пользователя из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func UsernameFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Username
}
