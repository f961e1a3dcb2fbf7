// Пакет model — доменные модели Auth Module.
package model

import "time"

// Состояния учётной записи пользователя.
const (
	// StateNew — черновик новой учётной записи, ещё не сохранённой в БД.
	StateNew = "new"
	// StateLive — действующая учётная запись.
	StateLive = "live"
)

// Статусы полей дополнительных данных пользователя.
const (
	// DataUndeletable — поле нельзя удалить, но можно редактировать.
	DataUndeletable = "undeletable"
	// DataUneditable — поле нельзя ни удалить, ни редактировать.
	DataUneditable = "uneditable"
)

// Grant — назначение роли пользователю в рамках страны.
// Внутреннее представление: пара (страна, роль) хранится одной записью,
// на проводе — двумя параллельными массивами countries/roles.
type Grant struct {
	// Country — код страны (например, "demo")
	Country string
	// Role — имя роли в этой стране (например, "manager")
	Role string
}

// DataValue — значение одного поля дополнительных данных пользователя.
type DataValue struct {
	// Val — значение поля
	Val string `json:"val"`
	// Status — ограничение редактирования: "", undeletable, uneditable
	Status string `json:"status,omitempty"`
}

// User — учётная запись пользователя.
// Хранится в таблице users.
type User struct {
	// Username — имя пользователя (первичный ключ)
	Username string
	// Email — адрес электронной почты
	Email string
	// Password — bcrypt-хеш пароля
	Password string
	// Grants — назначения ролей по странам
	Grants []Grant
	// State — состояние учётной записи (new, live)
	State string
	// Data — дополнительные данные (ключ → значение со статусом)
	Data map[string]DataValue
	// Creation — время создания учётной записи
	Creation time.Time
	// Updated — время последнего обновления
	Updated time.Time
}

// Countries возвращает массив стран в порядке назначений.
func (u *User) Countries() []string {
	out := make([]string, len(u.Grants))
	for i, g := range u.Grants {
		out[i] = g.Country
	}
	return out
}

// Roles возвращает массив ролей в порядке назначений.
func (u *User) Roles() []string {
	out := make([]string, len(u.Grants))
	for i, g := range u.Grants {
		out[i] = g.Role
	}
	return out
}

// GrantsFromArrays собирает назначения из параллельных массивов проводного
// формата. Если длины массивов не совпадают, лишние элементы отбрасываются.
func GrantsFromArrays(countries, roles []string) []Grant {
	n := len(countries)
	if len(roles) < n {
		n = len(roles)
	}
	grants := make([]Grant, 0, n)
	for i := 0; i < n; i++ {
		grants = append(grants, Grant{Country: countries[i], Role: roles[i]})
	}
	return grants
}

// NewUserDraft возвращает черновик новой учётной записи для формы создания.
func NewUserDraft() *User {
	return &User{
		State:  StateNew,
		Grants: []Grant{},
		Data:   map[string]DataValue{},
	}
}
