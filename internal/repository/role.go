package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

// RoleRepository — интерфейс CRUD для таблицы roles.
type RoleRepository interface {
	// Get возвращает роль по паре (страна, имя роли).
	Get(ctx context.Context, country, role string) (*model.Role, error)
	// ListByCountry возвращает роли страны, отсортированные по (ranking, имя).
	ListByCountry(ctx context.Context, country string) ([]*model.Role, error)
	// Countries возвращает список стран, в которых определены роли.
	Countries(ctx context.Context) ([]string, error)
	// Upsert создаёт или обновляет роль.
	Upsert(ctx context.Context, role *model.Role) error
	// Delete удаляет роль. Отсутствующая — ErrNotFound.
	Delete(ctx context.Context, country, role string) error
}

// roleRepo — реализация RoleRepository.
type roleRepo struct {
	db DBTX
}

// NewRoleRepository создаёт репозиторий ролей.
func NewRoleRepository(db DBTX) RoleRepository {
	return &roleRepo{db: db}
}

const roleColumns = `id, country, role, description, parents, ranking, created_at, updated_at`

func (r *roleRepo) Get(ctx context.Context, country, role string) (*model.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE country = $1 AND role = $2`, roleColumns)

	m := &model.Role{}
	err := r.db.QueryRow(ctx, query, country, role).Scan(
		&m.ID, &m.Country, &m.Role, &m.Description, &m.Parents,
		&m.Ranking, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения роли: %w", err)
	}
	return m, nil
}

func (r *roleRepo) ListByCountry(ctx context.Context, country string) ([]*model.Role, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM roles
		WHERE country = $1
		ORDER BY ranking, role`, roleColumns)

	rows, err := r.db.Query(ctx, query, country)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ролей страны: %w", err)
	}
	defer rows.Close()

	var result []*model.Role
	for rows.Next() {
		m := &model.Role{}
		if err := rows.Scan(
			&m.ID, &m.Country, &m.Role, &m.Description, &m.Parents,
			&m.Ranking, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования роли: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *roleRepo) Countries(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT country FROM roles ORDER BY country`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка стран: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("ошибка сканирования страны: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *roleRepo) Upsert(ctx context.Context, role *model.Role) error {
	// id генерируется здесь; при конфликте по (country, role)
	// существующий id сохраняется и возвращается через RETURNING
	query := `
		INSERT INTO roles (id, country, role, description, parents, ranking)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (country, role) DO UPDATE SET
			description = EXCLUDED.description,
			parents = EXCLUDED.parents,
			ranking = EXCLUDED.ranking,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		uuid.NewString(), role.Country, role.Role, role.Description, role.Parents, role.Ranking,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка upsert роли: %w", err)
	}
	return nil
}

func (r *roleRepo) Delete(ctx context.Context, country, role string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM roles WHERE country = $1 AND role = $2`, country, role)
	if err != nil {
		return fmt.Errorf("ошибка удаления роли: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
