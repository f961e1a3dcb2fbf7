// users.go — сервис учётных записей: списки, черновики, сохранение,
// переименование, пакетное удаление.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentinel-health/auth-module/internal/domain/access"
	"github.com/sentinel-health/auth-module/internal/domain/model"
	"github.com/sentinel-health/auth-module/internal/repository"
)

// UserDraft — присланный формой черновик учётной записи.
// Массивы стран и ролей приходят в проводном формате и могут содержать
// дыры (null) — перед сохранением они сжимаются синхронно.
type UserDraft struct {
	// Username — имя пользователя из черновика
	Username string
	// Email — адрес электронной почты
	Email string
	// Password — пароль открытым текстом; пустой — оставить прежний хеш
	Password string
	// Countries — страны назначений (разреженный массив)
	Countries []*string
	// Roles — роли назначений (разреженный массив, параллелен Countries)
	Roles []*string
	// State — состояние черновика (new — создание)
	State string
	// Data — дополнительные данные
	Data map[string]model.DataValue
}

// TxRunner — запуск операций в транзакции.
// Реализуется repository.TxRunner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// UserService — сервис управления учётными записями.
type UserService struct {
	userRepo repository.UserRepository
	roleSvc  *RoleService
	runner   TxRunner
	logger   *slog.Logger

	// фабрика репозитория для работы внутри транзакции
	newUserRepo func(db repository.DBTX) repository.UserRepository
}

// NewUserService создаёт сервис учётных записей.
func NewUserService(
	userRepo repository.UserRepository,
	roleSvc *RoleService,
	runner TxRunner,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		roleSvc:     roleSvc,
		runner:      runner,
		logger:      logger.With(slog.String("component", "users_service")),
		newUserRepo: repository.NewUserRepository,
	}
}

// ListUsers возвращает все учётные записи и их общее количество.
// Повреждённые дополнительные данные заменяются пустым объектом.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, int, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка учётных записей: %w", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт учётных записей: %w", err)
	}

	for _, u := range users {
		s.normalizeData(u)
	}
	return users, total, nil
}

// GetUser возвращает учётную запись по имени. Пустое имя — черновик
// новой учётной записи для формы создания.
func (s *UserService) GetUser(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return model.NewUserDraft(), nil
	}

	u, err := s.userRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение учётной записи %q: %w", username, err)
	}
	s.normalizeData(u)
	return u, nil
}

// CheckUsername проверяет доступность имени пользователя.
// Возвращает true, если имя свободно. Если имя совпадает с исходным
// именем редактируемой записи, проверка пропускается — имя считается
// доступным.
func (s *UserService) CheckUsername(ctx context.Context, original, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	if original != "" && username == original {
		return true, nil
	}

	exists, err := s.userRepo.Exists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("проверка имени пользователя %q: %w", username, err)
	}
	return !exists, nil
}

// UpdateUser сохраняет черновик учётной записи под исходным именем original.
// Для нового пользователя original — пустая строка. Смена имени выполняется
// в транзакции: запись под новым именем, удаление старой.
func (s *UserService) UpdateUser(ctx context.Context, original string, draft *UserDraft) (*model.User, error) {
	if draft.Username == "" {
		return nil, fmt.Errorf("%w: имя пользователя не задано", ErrValidation)
	}
	if draft.Email != "" {
		if _, err := mail.ParseAddress(draft.Email); err != nil {
			return nil, fmt.Errorf("%w: некорректный адрес электронной почты %q", ErrValidation, draft.Email)
		}
	}

	// Сжатие разреженных массивов и удаление дублей
	grants := []model.Grant{}
	for _, g := range access.GrantsFromSparse(draft.Countries, draft.Roles) {
		grants = access.AddGrant(grants, g.Country, g.Role)
	}
	if err := s.roleSvc.ValidateGrants(ctx, grants); err != nil {
		return nil, err
	}

	isNew := original == "" || draft.State == model.StateNew

	var stored *model.User
	if !isNew {
		var err error
		stored, err = s.userRepo.Get(ctx, original)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("получение учётной записи %q: %w", original, err)
		}
		s.normalizeData(stored)
	}

	// Пароль: пустой — прежний хеш, непустой — новый bcrypt-хеш
	var password string
	switch {
	case draft.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("хеширование пароля: %w", err)
		}
		password = string(hash)
	case isNew:
		return nil, fmt.Errorf("%w: для новой учётной записи требуется пароль", ErrValidation)
	default:
		password = stored.Password
	}

	// Черновик накладывается на сохранённые данные как набор операций:
	// защищённые поля не теряются, статусы клиент назначать не может.
	// Для новой записи сохранённых данных нет — статусы просто отбрасываются.
	storedData := map[string]model.DataValue{}
	if !isNew {
		storedData = stored.Data
	}
	data := access.MergeProtectedData(storedData, draft.Data)

	now := time.Now().UTC()
	u := &model.User{
		Username: draft.Username,
		Email:    draft.Email,
		Password: password,
		Grants:   grants,
		State:    model.StateLive,
		Data:     data,
		Creation: now,
		Updated:  now,
	}
	if !isNew {
		u.Creation = stored.Creation
	}

	switch {
	case isNew:
		if err := s.userRepo.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("создание учётной записи %q: %w", u.Username, err)
		}
		s.logger.Info("Учётная запись создана", slog.String("username", u.Username))

	case draft.Username == original:
		if err := s.userRepo.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("обновление учётной записи %q: %w", u.Username, err)
		}
		s.logger.Info("Учётная запись обновлена", slog.String("username", u.Username))

	default:
		// Смена имени: запись под новым именем + удаление старой
		err := s.runner.RunInTx(ctx, func(tx pgx.Tx) error {
			txRepo := s.newUserRepo(tx)
			if err := txRepo.Create(ctx, u); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return ErrUsernameTaken
				}
				return fmt.Errorf("создание учётной записи %q: %w", u.Username, err)
			}
			return txRepo.Delete(ctx, original)
		})
		if err != nil {
			if errors.Is(err, ErrUsernameTaken) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("переименование учётной записи %q -> %q: %w", original, u.Username, err)
		}
		s.logger.Info("Учётная запись переименована",
			slog.String("old", original),
			slog.String("new", u.Username),
		)
	}

	return u, nil
}

// DeleteUsers удаляет учётные записи из списка, возвращает число удалённых.
func (s *UserService) DeleteUsers(ctx context.Context, usernames []string) (int, error) {
	if len(usernames) == 0 {
		return 0, fmt.Errorf("%w: пустой список имён", ErrValidation)
	}

	deleted, err := s.userRepo.DeleteMany(ctx, usernames)
	if err != nil {
		return 0, fmt.Errorf("удаление учётных записей: %w", err)
	}
	s.logger.Info("Учётные записи удалены",
		slog.Int("requested", len(usernames)),
		slog.Int("deleted", deleted),
	)
	return deleted, nil
}

// normalizeData заменяет повреждённые дополнительные данные пустым объектом.
func (s *UserService) normalizeData(u *model.User) {
	if u.Data == nil {
		s.logger.Warn("Дополнительные данные учётной записи повреждены, заменены пустым объектом",
			slog.String("username", u.Username),
		)
		u.Data = map[string]model.DataValue{}
	}
}
