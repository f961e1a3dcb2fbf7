// users.go — обработчики /users endpoints.
// Список учётных записей, получение, проверка имени, сохранение черновика,
// пакетное удаление.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/sentinel-health/auth-module/internal/api/errors"
	"github.com/sentinel-health/auth-module/internal/domain/access"
	"github.com/sentinel-health/auth-module/internal/domain/model"
	"github.com/sentinel-health/auth-module/internal/service"
	"github.com/sentinel-health/auth-module/internal/ui/i18n"
)

// userPayload — проводное представление учётной записи.
// Назначения передаются парой параллельных массивов countries/roles.
// Дополнительные данные отдаются представлением для формы: поля uneditable
// скрыты, остальные несут флаг deletable. Пароль наружу не отдаётся.
type userPayload struct {
	Username  string                          `json:"username"`
	Email     string                          `json:"email"`
	Countries []string                        `json:"countries"`
	Roles     []string                        `json:"roles"`
	State     string                          `json:"state"`
	Data      map[string]access.EditableField `json:"data"`
	Creation  string                          `json:"creation"`
	Updated   string                          `json:"updated"`
}

// userRow — строка таблицы пользователей: запись плюс вычисленные
// сервером поля отображения и поискового индекса.
type userRow struct {
	userPayload
	Access    string `json:"access"`
	DataIndex string `json:"data_index"`
}

// userDraftRequest — тело запроса POST /users/update_user/{username}.
// Массивы назначений могут содержать null (дыры после удаления по индексу).
type userDraftRequest struct {
	Username  string                     `json:"username"`
	Email     string                     `json:"email"`
	Password  string                     `json:"password"`
	Countries []*string                  `json:"countries"`
	Roles     []*string                  `json:"roles"`
	State     string                     `json:"state"`
	Data      map[string]model.DataValue `json:"data"`
}

// GetUsers — GET /users/get_users.
// Возвращает {total, rows}: все учётные записи со сведёнными строками
// назначений (access) и поискового индекса данных (data_index).
func (h *APIHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка учётных записей", "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{
			userPayload: mapUser(u),
			Access:      access.Summary(u.Grants),
			DataIndex:   access.DataIndex(u.Data),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"rows":  rows,
	})
}

// GetUser — GET /users/get_user/ и /users/get_user/{username}.
// Пустое имя — шаблон новой учётной записи (state "new").
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	u, err := h.users.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, i18n.Tf(r.Context(), "users.not_found", username))
			return
		}
		h.logger.Error("Ошибка получения учётной записи", "username", username, "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	writeJSON(w, http.StatusOK, mapUser(u))
}

// CheckUsername — GET /users/check_username/{username}.
// Возвращает {valid: true}, если имя свободно. Исходное имя редактируемой
// записи передаётся query-параметром original и считается доступным.
func (h *APIHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	original := r.URL.Query().Get("original")

	valid, err := h.users.CheckUsername(r.Context(), original, username)
	if err != nil {
		h.logger.Error("Ошибка проверки имени пользователя", "username", username, "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// UpdateUser — POST /users/update_user/{username}.
// Сохраняет полный черновик учётной записи. Имя в пути — исходное имя
// записи; пустое — создание новой. Смена имени выполняется транзакционно.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	original := chi.URLParam(r, "username")

	var req userDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	draft := &service.UserDraft{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Countries: req.Countries,
		Roles:     req.Roles,
		State:     req.State,
		Data:      req.Data,
	}

	u, err := h.users.UpdateUser(r.Context(), original, draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrUsernameTaken):
			apierrors.Conflict(w, i18n.Tf(r.Context(), "users.name_taken", req.Username))
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, i18n.Tf(r.Context(), "users.not_found", original))
		default:
			h.logger.Error("Ошибка сохранения учётной записи", "username", req.Username, "error", err)
			apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": i18n.Tf(r.Context(), "users.updated", u.Username),
		"user":    mapUser(u),
	})
}

// DeleteUsers — POST /users/delete_users.
// Тело — JSON-массив имён. Возвращает число удалённых записей.
func (h *APIHandler) DeleteUsers(w http.ResponseWriter, r *http.Request) {
	var usernames []string
	if err := json.NewDecoder(r.Body).Decode(&usernames); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	deleted, err := h.users.DeleteUsers(r.Context(), usernames)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка удаления учётных записей", "error", err)
		apierrors.InternalError(w, i18n.T(r.Context(), "error.server"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": i18n.Tf(r.Context(), "users.deleted", deleted),
		"deleted": deleted,
	})
}

// --- Маппинг domain → API ---

// mapUser конвертирует учётную запись в проводной формат.
// Защищённость полей данных сворачивается на сервере: клиент получает
// готовое представление и не видит скрытых полей.
func mapUser(u *model.User) userPayload {
	p := userPayload{
		Username:  u.Username,
		Email:     u.Email,
		Countries: u.Countries(),
		Roles:     u.Roles(),
		State:     u.State,
		Data:      access.EditableData(u.Data),
	}
	if !u.Creation.IsZero() {
		p.Creation = u.Creation.UTC().Format("2006-01-02 15:04:05")
	}
	if !u.Updated.IsZero() {
		p.Updated = u.Updated.UTC().Format("2006-01-02 15:04:05")
	}
	return p
}
