package statement

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

type stubStructureStore struct {
	nodes []models.StructureNode
	err   error
}

func (s stubStructureStore) GetStructure(ctx context.Context, statement models.StatementType, scope string) ([]models.StructureNode, error) {
	return s.nodes, s.err
}

func TestNewStructure_OrdersActiveNodes(t *testing.T) {
	nodes := dreNodes()
	inactive := node("old", 2, 9, models.OpAdd, "Antiga", "rb")
	inactive.Active = false
	other := node("dfc", 0, 1, models.OpAdd, "Caixa", "")
	other.Statement = models.StatementDFC
	// Reverse to prove ordering does not depend on input order.
	input := []models.StructureNode{inactive, other}
	for i := len(nodes) - 1; i >= 0; i-- {
		input = append(input, nodes[i])
	}

	s := mustStructure(t, input)

	var ids []string
	for _, n := range s.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"rb", "vendas", "ded", "servicos", "rl", "impostos", "desp", "pessoal", "res", "outros"}, ids)
	assert.Equal(t, []string{"rb", "ded", "rl", "desp", "res"}, s.Roots())
	assert.Equal(t, []string{"vendas", "servicos"}, s.Children("rb"))
	assert.True(t, s.IsLeaf("vendas"))
	assert.False(t, s.IsLeaf("rb"))
	assert.False(t, s.IsLeaf("rl"))
	_, ok := s.Node("old")
	assert.False(t, ok)
}

func TestNewStructure_ResolutionOrderPutsDependenciesFirst(t *testing.T) {
	s := mustStructure(t, dreNodes())
	pos := map[string]int{}
	for i, id := range s.ResolutionOrder() {
		pos[id] = i
	}
	assert.Equal(t, 10, len(pos))
	assert.True(t, pos["vendas"] < pos["rb"])
	assert.True(t, pos["rb"] < pos["rl"])
	assert.True(t, pos["ded"] < pos["rl"])
	assert.True(t, pos["rl"] < pos["res"])
	assert.True(t, pos["desp"] < pos["res"])
}

func TestNewStructure_NotFound(t *testing.T) {
	n := node("a", 0, 1, models.OpAdd, "A", "")
	n.Active = false

	_, err := NewStructure(models.StatementDRE, "acme", []models.StructureNode{n})
	assert.IsError(t, err, ErrStructureNotFound)

	var nf *StructureNotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "acme", nf.Scope)

	_, err = NewStructure(models.StatementDRE, "acme", nil)
	assert.IsError(t, err, ErrStructureNotFound)
}

func TestLoadStructure(t *testing.T) {
	s, err := LoadStructure(context.Background(), stubStructureStore{nodes: dreNodes()}, models.StatementDRE, "acme")
	assert.NoError(t, err)
	assert.Equal(t, "acme", s.Scope)

	boom := errors.New("boom")
	_, err = LoadStructure(context.Background(), stubStructureStore{err: boom}, models.StatementDRE, "acme")
	assert.IsError(t, err, boom)
}

func TestNewStructure_CircularTotalizer(t *testing.T) {
	tests := []struct {
		name  string
		nodes []models.StructureNode
		cycle []string
	}{
		{
			name: "self",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OpTotal, "A", "", "a"),
			},
			cycle: []string{"a", "a"},
		},
		{
			name: "transitive",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OpTotal, "A", "", "b"),
				node("b", 0, 2, models.OpTotal, "B", "", "c"),
				node("c", 0, 3, models.OpTotal, "C", "", "a"),
			},
			cycle: []string{"a", "b", "c", "a"},
		},
		{
			name: "through a group",
			nodes: []models.StructureNode{
				node("g", 0, 1, models.OpAdd, "G", ""),
				node("x", 1, 1, models.OpTotal, "X", "g", "g"),
			},
			cycle: []string{"g", "x", "g"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStructure(models.StatementDRE, "acme", tt.nodes)
			assert.IsError(t, err, ErrCircularTotalizer)
			var ce *CircularTotalizerError
			assert.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.cycle, ce.Cycle)
		})
	}
}

func TestNewStructure_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []models.StructureNode
		reason string
	}{
		{
			name: "duplicate order on a level",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OpAdd, "A", ""),
				node("b", 0, 1, models.OpAdd, "B", ""),
			},
			reason: "order 1",
		},
		{
			name: "unknown dependency",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OpTotal, "A", "", "missing"),
			},
			reason: "unknown dependency",
		},
		{
			name: "unknown parent",
			nodes: []models.StructureNode{
				node("a", 2, 1, models.OpAdd, "A", "missing"),
			},
			reason: "unknown parent",
		},
		{
			name: "totalizer with children",
			nodes: []models.StructureNode{
				node("t", 0, 1, models.OpTotal, "T", ""),
				node("a", 2, 1, models.OpAdd, "A", "t"),
			},
			reason: "child lines",
		},
		{
			name: "dependencies on a non-totalizer",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OpAdd, "A", ""),
				node("b", 0, 2, models.OpAdd, "B", "", "a"),
			},
			reason: "only totalizers",
		},
		{
			name: "unknown operation",
			nodes: []models.StructureNode{
				node("a", 0, 1, models.OperationType("*"), "A", ""),
			},
			reason: "unknown operation",
		},
		{
			name: "duplicate leaf account name",
			nodes: []models.StructureNode{
				node("a", 2, 1, models.OpAdd, "Same", ""),
				node("b", 2, 2, models.OpAdd, "Same", ""),
			},
			reason: "already used",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStructure(models.StatementDRE, "acme", tt.nodes)
			assert.IsError(t, err, ErrInvalidStructure)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestNewStructure_InactiveReferences(t *testing.T) {
	t.Run("dependency on an inactive node contributes zero", func(t *testing.T) {
		other := node("other", 2, 2, models.OpAdd, "Other", "")
		other.Active = false
		s := mustStructure(t, []models.StructureNode{
			node("revenue", 2, 1, models.OpAdd, "Revenue", ""),
			other,
			node("gross", 0, 3, models.OpTotal, "Gross", "", "revenue", "other"),
		})
		gross, ok := s.Node("gross")
		assert.True(t, ok)
		assert.Equal(t, []models.Dependency{{NodeID: "revenue"}}, gross.Dependencies)
		_, ok = s.Node("other")
		assert.False(t, ok)
	})

	t.Run("nodes under an inactive parent are hidden", func(t *testing.T) {
		grp := node("grp", 0, 1, models.OpAdd, "Group", "")
		grp.Active = false
		s := mustStructure(t, []models.StructureNode{
			grp,
			node("rev", 2, 1, models.OpAdd, "Rev", "grp"),
			node("deep", 3, 1, models.OpAdd, "Deep", "rev"),
			node("kept", 0, 2, models.OpAdd, "Kept", ""),
			node("total", 0, 3, models.OpTotal, "Total", "", "rev", "kept"),
		})
		for _, id := range []string{"grp", "rev", "deep"} {
			_, ok := s.Node(id)
			assert.False(t, ok, "%s should be hidden", id)
		}
		assert.Equal(t, []string{"kept", "total"}, s.Roots())
		total, _ := s.Node("total")
		assert.Equal(t, []models.Dependency{{NodeID: "kept"}}, total.Dependencies)
	})

	t.Run("ids that never existed still fail", func(t *testing.T) {
		old := node("old", 2, 2, models.OpAdd, "Old", "")
		old.Active = false
		_, err := NewStructure(models.StatementDRE, "acme", []models.StructureNode{
			old,
			node("gross", 0, 3, models.OpTotal, "Gross", "", "old", "missing"),
		})
		assert.IsError(t, err, ErrInvalidStructure)
		assert.Contains(t, err.Error(), `unknown dependency "missing"`)
	})

	t.Run("caller's dependency slice is untouched", func(t *testing.T) {
		other := node("other", 2, 2, models.OpAdd, "Other", "")
		other.Active = false
		gross := node("gross", 0, 3, models.OpTotal, "Gross", "", "other")
		mustStructure(t, []models.StructureNode{other, gross})
		assert.Equal(t, "other", gross.Dependencies[0].NodeID)
	})
}
