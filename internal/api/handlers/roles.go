// roles.go — обработчики /roles endpoints.
// Список ролей страны, замыкание доступа роли, граф иерархии.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/sentinel-health/auth-module/internal/api/errors"
	"github.com/sentinel-health/auth-module/internal/domain/model"
	"github.com/sentinel-health/auth-module/internal/service"
	"github.com/sentinel-health/auth-module/internal/ui/i18n"
)

// rolePayload — проводное представление роли.
type rolePayload struct {
	Role        string   `json:"role"`
	Country     string   `json:"country"`
	Ranking     int      `json:"ranking"`
	Parents     []string `json:"parents"`
	Description string   `json:"description"`
}

// GetRoles — GET /roles/get_roles/{country}.
// Возвращает {roles: {id: {...}}} — карту ролей страны по идентификатору.
func (h *APIHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	roles, err := h.roles.GetRoles(r.Context(), country)
	if err != nil {
		h.logger.Error("Ошибка получения ролей", "country", country, "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	out := make(map[string]rolePayload, len(roles))
	for _, role := range roles {
		out[role.ID] = mapRole(role)
	}

	writeJSON(w, http.StatusOK, map[string]any{"roles": out})
}

// GetAllAccess — GET /roles/get_all_access/{country}/{role}.
// Возвращает {access: [...]} — полное замыкание доступа роли, включая её саму.
func (h *APIHandler) GetAllAccess(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	role := chi.URLParam(r, "role")

	closure, err := h.roles.GetAllAccess(r.Context(), country, role)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, i18n.Tf(r.Context(), "roles.not_found", role, country))
			return
		}
		h.logger.Error("Ошибка вычисления замыкания доступа",
			"country", country, "role", role, "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"access": closure})
}

// GetGraph — GET /roles/get_graph/{country}.
// Возвращает {nodes, edges} для клиентской иерархической раскладки.
func (h *APIHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	graph, err := h.roles.GetGraph(r.Context(), country)
	if err != nil {
		h.logger.Error("Ошибка построения графа ролей", "country", country, "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	writeJSON(w, http.StatusOK, graph)
}

// mapRole конвертирует роль в проводной формат.
func mapRole(role *model.Role) rolePayload {
	parents := role.Parents
	if parents == nil {
		parents = []string{}
	}
	return rolePayload{
		Role:        role.Role,
		Country:     role.Country,
		Ranking:     role.Ranking,
		Parents:     parents,
		Description: role.Description,
	}
}
