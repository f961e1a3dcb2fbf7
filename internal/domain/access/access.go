// Пакет access — логика вычисления прав доступа.
// Роли образуют направленный граф наследования внутри страны:
// роль получает весь доступ своих родителей транзитивно.
package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

// Closure возвращает транзитивное замыкание доступа роли: саму роль и все
// роли, чей доступ она наследует через родителей. Обход — в ширину, каждый
// элемент встречается один раз (ромбовидное наследование не даёт дублей).
// Посещённые роли запоминаются, поэтому цикл в графе родителей не приводит
// к зацикливанию. Неизвестная роль — ошибка.
func Closure(roles map[string]*model.Role, start string) ([]string, error) {
	if _, ok := roles[start]; !ok {
		return nil, fmt.Errorf("роль %q не найдена", start)
	}

	queue := []string{start}
	visited := map[string]bool{start: true}
	result := make([]string, 0, len(roles))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		role, ok := roles[current]
		if !ok {
			return nil, fmt.Errorf("родительская роль %q не найдена", current)
		}
		for _, parent := range role.Parents {
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, parent)
			}
		}
	}

	return result, nil
}

// Index строит индекс ролей одной страны по имени роли.
func Index(roles []*model.Role) map[string]*model.Role {
	idx := make(map[string]*model.Role, len(roles))
	for _, r := range roles {
		idx[r.Role] = r
	}
	return idx
}

// Summary возвращает сводную строку назначений для табличного отображения
// и поиска: "country-role | country-role | ...".
func Summary(grants []model.Grant) string {
	parts := make([]string, len(grants))
	for i, g := range grants {
		parts[i] = g.Country + "-" + g.Role
	}
	return strings.Join(parts, " | ")
}

// DataIndex возвращает строку для поиска по дополнительным данным:
// "key: value | key: value | ...". Ключи отсортированы для стабильности.
func DataIndex(data map[string]model.DataValue) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + data[k].Val
	}
	return strings.Join(parts, " | ")
}
