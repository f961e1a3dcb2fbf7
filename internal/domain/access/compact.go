package access

import "github.com/sentinel-health/auth-module/internal/domain/model"

// Compact убирает дыры из разреженного среза: nil-элементы отбрасываются,
// остальные сохраняют относительный порядок и получают непрерывные индексы.
// Повторное применение к уже плотному срезу ничего не меняет.
func Compact[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// GrantsFromSparse собирает назначения из разреженных параллельных массивов
// проводного формата: элемент берётся только если на одном индексе заданы
// и страна, и роль. Дыры (null в JSON) отбрасываются синхронно через Compact.
func GrantsFromSparse(countries, roles []*string) []model.Grant {
	n := len(countries)
	if len(roles) < n {
		n = len(roles)
	}
	sparse := make([]*model.Grant, n)
	for i := 0; i < n; i++ {
		if countries[i] == nil || roles[i] == nil {
			continue
		}
		sparse[i] = &model.Grant{Country: *countries[i], Role: *roles[i]}
	}
	return Compact(sparse)
}

// AddGrant добавляет назначение (страна, роль). Точный дубликат не добавляется.
func AddGrant(grants []model.Grant, country, role string) []model.Grant {
	for _, g := range grants {
		if g.Country == country && g.Role == role {
			return grants
		}
	}
	return append(grants, model.Grant{Country: country, Role: role})
}
