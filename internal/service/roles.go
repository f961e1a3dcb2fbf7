// Пакет service — бизнес-логика Auth Module.
// roles.go — сервис ролей доступа: иерархия, замыкание доступа, граф.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sentinel-health/auth-module/internal/domain/access"
	"github.com/sentinel-health/auth-module/internal/domain/model"
	"github.com/sentinel-health/auth-module/internal/repository"
)

// RoleService — сервис ролей доступа.
type RoleService struct {
	roleRepo repository.RoleRepository
	logger   *slog.Logger
}

// NewRoleService создаёт сервис ролей.
func NewRoleService(roleRepo repository.RoleRepository, logger *slog.Logger) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		logger:   logger.With(slog.String("component", "roles_service")),
	}
}

// GetRoles возвращает роли страны, отсортированные по (ranking, имя).
func (s *RoleService) GetRoles(ctx context.Context, country string) ([]*model.Role, error) {
	roles, err := s.roleRepo.ListByCountry(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("получение ролей страны %q: %w", country, err)
	}
	return roles, nil
}

// GetAllAccess возвращает транзитивное замыкание доступа роли: саму роль
// и все унаследованные. Неизвестная роль — ErrNotFound.
func (s *RoleService) GetAllAccess(ctx context.Context, country, role string) ([]string, error) {
	roles, err := s.roleRepo.ListByCountry(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("получение ролей страны %q: %w", country, err)
	}

	closure, err := access.Closure(access.Index(roles), role)
	if err != nil {
		s.logger.Debug("Замыкание доступа не вычислено",
			slog.String("country", country),
			slog.String("role", role),
			slog.String("error", err.Error()),
		)
		return nil, ErrNotFound
	}
	return closure, nil
}

// GetGraph возвращает граф иерархии ролей страны для клиентской раскладки.
func (s *RoleService) GetGraph(ctx context.Context, country string) (*access.Graph, error) {
	roles, err := s.roleRepo.ListByCountry(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("получение ролей страны %q: %w", country, err)
	}
	return access.BuildGraph(roles), nil
}

// ValidateGrants проверяет, что каждое назначение (страна, роль) ссылается
// на существующую роль. Несуществующая роль — ErrValidation.
func (s *RoleService) ValidateGrants(ctx context.Context, grants []model.Grant) error {
	for _, g := range grants {
		if g.Country == "" || g.Role == "" {
			return fmt.Errorf("%w: пустое назначение (%q, %q)", ErrValidation, g.Country, g.Role)
		}
		_, err := s.roleRepo.Get(ctx, g.Country, g.Role)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: роль %q не существует в стране %q", ErrValidation, g.Role, g.Country)
			}
			return fmt.Errorf("проверка назначения (%s, %s): %w", g.Country, g.Role, err)
		}
	}
	return nil
}

// AccessMap строит карту страна → полное замыкание доступа по назначениям
// учётной записи. Используется при выпуске токена (claim acc).
func (s *RoleService) AccessMap(ctx context.Context, grants []model.Grant) (map[string][]string, error) {
	// Роли каждой страны загружаются один раз
	byCountry := map[string]map[string]*model.Role{}
	acc := map[string][]string{}

	for _, g := range grants {
		idx, ok := byCountry[g.Country]
		if !ok {
			roles, err := s.roleRepo.ListByCountry(ctx, g.Country)
			if err != nil {
				return nil, fmt.Errorf("получение ролей страны %q: %w", g.Country, err)
			}
			idx = access.Index(roles)
			byCountry[g.Country] = idx
		}

		closure, err := access.Closure(idx, g.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrBrokenAccess, g.Country, g.Role)
		}

		// Замыкания нескольких ролей одной страны объединяются без дублей
		seen := map[string]bool{}
		for _, r := range acc[g.Country] {
			seen[r] = true
		}
		for _, r := range closure {
			if !seen[r] {
				seen[r] = true
				acc[g.Country] = append(acc[g.Country], r)
			}
		}
	}
	return acc, nil
}
