// auth.go — обработчики сессии: POST /login и GET /users/get_access.
// Login проверяет учётные данные и выпускает подписанный токен.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/sentinel-health/auth-module/internal/api/errors"
	"github.com/sentinel-health/auth-module/internal/api/middleware"
	"github.com/sentinel-health/auth-module/internal/service"
	"github.com/sentinel-health/auth-module/internal/ui/i18n"
)

// loginRequest — тело запроса POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login — POST /login.
// Успех — {jwt: "..."}; токен также устанавливается cookie для браузера.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		apierrors.ValidationError(w, i18n.T(r.Context(), "login.missing_credentials"))
		return
	}

	token, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apierrors.Unauthorized(w, i18n.T(r.Context(), "login.invalid_credentials"))
		case errors.Is(err, service.ErrBrokenAccess):
			apierrors.Forbidden(w, i18n.T(r.Context(), "login.broken_access"))
		default:
			h.logger.Error("Ошибка аутентификации", "username", req.Username, "error", err)
			apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

// GetAccess — GET /users/get_access.
// Возвращает карту доступа текущего менеджера из claims токена:
// {username, acc}. Редактор использует её для выпадающих списков
// страна/роль — назначать можно только доступ из собственного замыкания.
func (h *APIHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствует токен аутентификации")
		return
	}

	acc := claims.Access
	if acc == nil {
		acc = map[string][]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": claims.Username,
		"acc":      acc,
	})
}
