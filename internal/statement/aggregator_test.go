package statement

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

func classified(nodeID string, entries ...models.LedgerEntry) []ClassifiedEntry {
	out := make([]ClassifiedEntry, len(entries))
	for i, e := range entries {
		out[i] = ClassifiedEntry{NodeID: nodeID, Entry: e}
	}
	return out
}

func TestAggregate_BucketsByPeriodAndSeries(t *testing.T) {
	b := Aggregate(classified("vendas",
		entry("Sales", "a", "100", "2025-01-15", "REAL"),
		entry("Sales", "b", "-30", "2025-01-31", "REAL"),
		entry("Sales", "c", "50", "2025-03-01", "REAL"),
		entry("Sales", "d", "70", "2025-04-01", "REAL"),
		entry("Sales", "e", "200", "2025-01-10", "ORC"),
	), models.BudgetOrigin)

	tests := []struct {
		period models.Period
		series models.Series
		want   string
	}{
		{month(2025, 1), models.SeriesRealized, "70"},
		{month(2025, 3), models.SeriesRealized, "50"},
		{quarter(2025, 1), models.SeriesRealized, "120"},
		{quarter(2025, 2), models.SeriesRealized, "70"},
		{year(2025), models.SeriesRealized, "190"},
		{models.TotalPeriod, models.SeriesRealized, "190"},
		{month(2025, 1), models.SeriesBudget, "200"},
		{quarter(2025, 1), models.SeriesBudget, "200"},
	}
	for _, tt := range tests {
		got, ok := b.Value(models.BucketKey{NodeID: "vendas", Period: tt.period, Series: tt.series})
		assert.True(t, ok, "%s %s missing", tt.period, tt.series)
		assertDec(t, got, tt.want)
	}

	assert.Equal(t, []string{"2025-01", "2025-03", "2025-04"}, PeriodStrings(b.Periods(models.Month)))
	assert.Equal(t, []string{"2025-Q1", "2025-Q2"}, PeriodStrings(b.Periods(models.Quarter)))
	assert.Equal(t, []string{"2025"}, PeriodStrings(b.Periods(models.Year)))
}

func TestAggregate_SynthesizesZeroBudget(t *testing.T) {
	b := Aggregate(classified("vendas",
		entry("Sales", "a", "100", "2025-01-15", "REAL"),
		entry("Sales", "b", "100", "2025-05-15", "REAL"),
	), models.BudgetOrigin)

	for _, g := range models.Granularities {
		for _, p := range append(b.Periods(g), models.TotalPeriod) {
			got, ok := b.Value(models.BucketKey{NodeID: "vendas", Period: p, Series: models.SeriesBudget})
			assert.True(t, ok, "budget %s absent", p)
			assert.True(t, got.IsZero())
		}
	}
}

func TestAggregate_CustomBudgetOrigin(t *testing.T) {
	b := Aggregate(classified("vendas",
		entry("Sales", "a", "100", "2025-01-15", "ORC"),
		entry("Sales", "b", "40", "2025-01-15", "FCST"),
	), "FCST")

	realized, _ := b.Value(models.BucketKey{NodeID: "vendas", Period: month(2025, 1), Series: models.SeriesRealized})
	budget, _ := b.Value(models.BucketKey{NodeID: "vendas", Period: month(2025, 1), Series: models.SeriesBudget})
	assertDec(t, realized, "100")
	assertDec(t, budget, "40")
}

func TestAggregate_Empty(t *testing.T) {
	b := Aggregate(nil, models.BudgetOrigin)
	assert.Equal(t, 0, len(b.Periods(models.Month)))
	pairs := b.seriesPeriods()
	assert.Equal(t, 2, len(pairs))
	assert.Equal(t, models.TotalPeriod, pairs[0].Period)
}
