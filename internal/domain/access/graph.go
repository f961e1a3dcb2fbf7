package access

import (
	"sort"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

// Node — вершина графа иерархии ролей.
type Node struct {
	// ID — имя роли (уникально в рамках страны)
	ID string `json:"id"`
	// Label — подпись вершины
	Label string `json:"label"`
	// Level — уровень в иерархической раскладке (ranking роли)
	Level int `json:"level"`
}

// Edge — ребро графа: роль наследует доступ родителя.
// Стрелка рисуется со стороны родителя.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Arrows string `json:"arrows"`
}

// Graph — граф иерархии ролей страны в формате, пригодном для
// иерархической раскладки на клиенте.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildGraph строит граф иерархии по списку ролей страны: вершина на роль,
// ребро на каждую пару (роль, родитель). Роли сортируются по (ranking, имя),
// чтобы ответ был стабильным.
func BuildGraph(roles []*model.Role) *Graph {
	sorted := make([]*model.Role, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Ranking != sorted[j].Ranking {
			return sorted[i].Ranking < sorted[j].Ranking
		}
		return sorted[i].Role < sorted[j].Role
	})

	g := &Graph{
		Nodes: make([]Node, 0, len(sorted)),
		Edges: []Edge{},
	}
	for _, r := range sorted {
		g.Nodes = append(g.Nodes, Node{
			ID:    r.Role,
			Label: r.Role,
			Level: r.Ranking,
		})
		for _, parent := range r.Parents {
			g.Edges = append(g.Edges, Edge{
				From:   r.Role,
				To:     parent,
				Arrows: "from",
			})
		}
	}
	return g
}
