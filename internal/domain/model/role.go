package model

import "time"

// Role — роль доступа в рамках страны.
// Хранится в таблице roles, уникальна по паре (country, role).
type Role struct {
	// ID — UUID записи
	ID string
	// Country — код страны (например, "demo")
	Country string
	// Role — имя роли (например, "manager")
	Role string
	// Description — человекочитаемое описание роли
	Description string
	// Parents — имена ролей той же страны, чей доступ наследуется
	Parents []string
	// Ranking — уровень роли в иерархии (для раскладки графа)
	Ranking int
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}
