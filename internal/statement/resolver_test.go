package statement

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

func resolveFixture(t *testing.T) (*Structure, *Bucket, *Resolution) {
	t.Helper()
	s := mustStructure(t, dreNodes())
	c := NewClassifier(s, dreMappings(), true).Classify(dreEntries())
	b := Aggregate(c.Entries, models.BudgetOrigin)
	r, err := Resolve(context.Background(), s, b)
	assert.NoError(t, err)
	return s, b, r
}

func TestNormalizeLeaf(t *testing.T) {
	tests := []struct {
		op   models.OperationType
		in   string
		want string
	}{
		{models.OpAdd, "100", "100"},
		{models.OpAdd, "-100", "100"},
		{models.OpSubtract, "100", "-100"},
		{models.OpSubtract, "-100", "-100"},
		{models.OpNet, "-100", "-100"},
		{models.OpNet, "100", "100"},
		{models.OpAdd, "0", "0"},
	}
	for _, tt := range tests {
		assertDec(t, NormalizeLeaf(tt.op, mustParseDec(tt.in)), tt.want)
	}
}

func TestResolve_Values(t *testing.T) {
	_, _, r := resolveFixture(t)

	tests := []struct {
		node   string
		period models.Period
		series models.Series
		want   string
	}{
		{"vendas", month(2025, 1), models.SeriesRealized, "1000"},
		{"rb", month(2025, 1), models.SeriesRealized, "1200"},
		{"impostos", month(2025, 1), models.SeriesRealized, "-150"},
		{"rl", month(2025, 1), models.SeriesRealized, "1050"},
		{"desp", month(2025, 1), models.SeriesRealized, "-370"},
		{"res", month(2025, 1), models.SeriesRealized, "680"},
		{"res", month(2025, 2), models.SeriesRealized, "500"},
		{"res", month(2025, 4), models.SeriesRealized, "-80"},
		{"res", quarter(2025, 1), models.SeriesRealized, "1180"},
		{"outros", year(2025), models.SeriesRealized, "-50"},
		{"res", year(2025), models.SeriesRealized, "1100"},
		{"res", models.TotalPeriod, models.SeriesRealized, "1100"},
		{"vendas", month(2025, 1), models.SeriesBudget, "1200"},
		{"res", month(2025, 1), models.SeriesBudget, "1200"},
		{"res", month(2025, 2), models.SeriesBudget, "0"},
		{"res", month(2030, 1), models.SeriesRealized, "0"},
	}
	for _, tt := range tests {
		assertDec(t, r.Value(tt.node, tt.period, tt.series), tt.want)
	}
}

func TestResolve_Additivity(t *testing.T) {
	s, b, r := resolveFixture(t)

	for _, sp := range b.seriesPeriods() {
		for _, n := range s.Nodes() {
			got := r.Value(n.ID, sp.Period, sp.Series)
			switch {
			case n.IsTotalizer():
				sum := decimal.Zero
				for _, d := range n.Dependencies {
					sum = sum.Add(r.Value(d.NodeID, sp.Period, sp.Series).Mul(decimal.NewFromInt(d.Factor())))
				}
				assert.True(t, got.Equal(sum), "%s %s %s: %s != %s", n.ID, sp.Period, sp.Series, got, sum)
			case s.IsLeaf(n.ID) && n.Operation == models.OpAdd:
				assert.False(t, got.IsNegative(), "%s %s negative", n.ID, sp.Period)
			case s.IsLeaf(n.ID) && n.Operation == models.OpSubtract:
				assert.False(t, got.IsPositive(), "%s %s positive", n.ID, sp.Period)
			}
		}
	}
}

func TestResolve_TotalizerChainAndSigns(t *testing.T) {
	nodes := []models.StructureNode{
		// Declared before its inputs to prove ordering comes from the graph.
		node("margin", 0, 1, models.OpTotal, "Margem", "", "gross"),
		node("gross", 0, 2, models.OpTotal, "Bruto", "", "rev", "cost"),
		node("rev", 2, 1, models.OpAdd, "Receita", ""),
		node("cost", 2, 2, models.OpAdd, "Custo", ""),
		node("empty", 0, 3, models.OpTotal, "Vazio", ""),
	}
	// cost is a positive line subtracted explicitly.
	nodes[1].Dependencies[1].Sign = -1
	s := mustStructure(t, nodes)

	b := Aggregate([]ClassifiedEntry{
		{NodeID: "rev", Entry: entry("R", "r", "-900", "2025-06-01", "REAL")},
		{NodeID: "cost", Entry: entry("C", "c", "-300", "2025-06-02", "REAL")},
	}, models.BudgetOrigin)
	r, err := Resolve(context.Background(), s, b)
	assert.NoError(t, err)

	assertDec(t, r.Value("gross", month(2025, 6), models.SeriesRealized), "600")
	assertDec(t, r.Value("margin", month(2025, 6), models.SeriesRealized), "600")
	assertDec(t, r.Value("empty", month(2025, 6), models.SeriesRealized), "0")
}

func TestResolve_CanceledContext(t *testing.T) {
	s := mustStructure(t, dreNodes())
	b := Aggregate(nil, models.BudgetOrigin)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, s, b)
	assert.IsError(t, err, context.Canceled)
}
