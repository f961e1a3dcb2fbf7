package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

// UserRepository — интерфейс CRUD для таблицы users.
type UserRepository interface {
	// Get возвращает учётную запись по имени пользователя.
	Get(ctx context.Context, username string) (*model.User, error)
	// Exists проверяет, занято ли имя пользователя.
	Exists(ctx context.Context, username string) (bool, error)
	// List возвращает все учётные записи, отсортированные по имени.
	List(ctx context.Context) ([]*model.User, error)
	// Count возвращает количество учётных записей.
	Count(ctx context.Context) (int, error)
	// Create создаёт учётную запись. Занятое имя — ErrConflict.
	Create(ctx context.Context, u *model.User) error
	// Update перезаписывает учётную запись. Отсутствующая — ErrNotFound.
	Update(ctx context.Context, u *model.User) error
	// Delete удаляет учётную запись. Отсутствующая — ErrNotFound.
	Delete(ctx context.Context, username string) error
	// DeleteMany удаляет учётные записи из списка, возвращает число удалённых.
	DeleteMany(ctx context.Context, usernames []string) (int, error)
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий учётных записей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `username, email, password, countries, roles, state, data, creation, updated`

func (r *userRepo) Get(ctx context.Context, username string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения учётной записи: %w", err)
	}
	return u, nil
}

func (r *userRepo) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки имени пользователя: %w", err)
	}
	return exists, nil
}

func (r *userRepo) List(ctx context.Context) ([]*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY username`, userColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка учётных записей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования учётной записи: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта учётных записей: %w", err)
	}
	return count, nil
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	data, err := marshalData(u.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, email, password, countries, roles, state, data, creation, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		u.Username, u.Email, u.Password, u.Countries(), u.Roles(),
		u.State, data, u.Creation, u.Updated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания учётной записи: %w", err)
	}
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	data, err := marshalData(u.Data)
	if err != nil {
		return err
	}

	query := `
		UPDATE users SET
			email = $2,
			password = $3,
			countries = $4,
			roles = $5,
			state = $6,
			data = $7,
			updated = $8
		WHERE username = $1`

	tag, err := r.db.Exec(ctx, query,
		u.Username, u.Email, u.Password, u.Countries(), u.Roles(),
		u.State, data, u.Updated,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления учётной записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("ошибка удаления учётной записи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) DeleteMany(ctx context.Context, usernames []string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = ANY($1)`, usernames)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления учётных записей: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanUser читает одну строку таблицы users.
// Если поле data не является JSON-объектом ожидаемой формы, Data
// остаётся nil — нормализацию выполняет сервисный слой.
func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var countries, roles []string
	var rawData []byte

	err := row.Scan(
		&u.Username, &u.Email, &u.Password, &countries, &roles,
		&u.State, &rawData, &u.Creation, &u.Updated,
	)
	if err != nil {
		return nil, err
	}

	u.Grants = model.GrantsFromArrays(countries, roles)

	var data map[string]model.DataValue
	if json.Unmarshal(rawData, &data) == nil {
		u.Data = data
	}
	return u, nil
}

// marshalData сериализует дополнительные данные для записи в JSONB.
func marshalData(data map[string]model.DataValue) ([]byte, error) {
	if data == nil {
		data = map[string]model.DataValue{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации дополнительных данных: %w", err)
	}
	return b, nil
}
