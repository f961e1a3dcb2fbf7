// handler.go — основной обработчик API Auth Module.
// Объединяет все доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sentinel-health/auth-module/internal/service"
)

// APIHandler — основной обработчик API Auth Module.
type APIHandler struct {
	health *HealthHandler
	users  *service.UserService
	roles  *service.RoleService
	auth   *service.AuthService
	// cookieName — имя cookie, в которую Login кладёт токен
	cookieName string
	logger     *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// cookieName — имя cookie для токена (AM_JWT_COOKIE_NAME).
func NewAPIHandler(
	health *HealthHandler,
	users *service.UserService,
	roles *service.RoleService,
	auth *service.AuthService,
	cookieName string,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:     health,
		users:      users,
		roles:      roles,
		auth:       auth,
		cookieName: cookieName,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
