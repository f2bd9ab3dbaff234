package statement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// seriesPeriod is the independent unit of totalizer resolution.
type seriesPeriod struct {
	Period models.Period
	Series models.Series
}

// Bucket holds the raw signed sums per (leaf, period, series). It is built
// fresh for each request and never shared.
type Bucket struct {
	budgetOrigin string
	values       map[models.BucketKey]decimal.Decimal
	periods      map[models.Period]struct{}
}

// Aggregate sums classified entries in a single pass. Every realized key
// gets a budget counterpart so a missing budget reads as zero, not absent.
func Aggregate(entries []ClassifiedEntry, budgetOrigin string) *Bucket {
	b := &Bucket{
		budgetOrigin: budgetOrigin,
		values:       make(map[models.BucketKey]decimal.Decimal),
		periods:      make(map[models.Period]struct{}),
	}
	for _, ce := range entries {
		series := ce.Entry.SeriesFor(budgetOrigin)
		for _, g := range models.Granularities {
			p := models.PeriodOf(g, ce.Entry.Date)
			key := models.BucketKey{NodeID: ce.NodeID, Period: p, Series: series}
			b.values[key] = b.values[key].Add(ce.Entry.Amount)
			b.periods[p] = struct{}{}
		}
	}
	b.synthesizeBudget()
	return b
}

func (b *Bucket) synthesizeBudget() {
	var missing []models.BucketKey
	for key := range b.values {
		if key.Series != models.SeriesRealized {
			continue
		}
		budget := key
		budget.Series = models.SeriesBudget
		if _, ok := b.values[budget]; !ok {
			missing = append(missing, budget)
		}
	}
	for _, key := range missing {
		b.values[key] = decimal.Zero
	}
}

// Value returns the raw sum for key and whether any entry produced it.
func (b *Bucket) Value(key models.BucketKey) (decimal.Decimal, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Periods returns the keys of granularity g seen in the ledger, in
// chronological order.
func (b *Bucket) Periods(g models.Granularity) []models.Period {
	var out []models.Period
	for p := range b.periods {
		if p.Granularity == g {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// seriesPeriods returns every (period, series) pair to resolve. Both series
// are always present, and Total even for an empty ledger.
func (b *Bucket) seriesPeriods() []seriesPeriod {
	periods := make([]models.Period, 0, len(b.periods)+1)
	for p := range b.periods {
		periods = append(periods, p)
	}
	if _, ok := b.periods[models.TotalPeriod]; !ok {
		periods = append(periods, models.TotalPeriod)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	out := make([]seriesPeriod, 0, 2*len(periods))
	for _, p := range periods {
		out = append(out,
			seriesPeriod{Period: p, Series: models.SeriesRealized},
			seriesPeriod{Period: p, Series: models.SeriesBudget},
		)
	}
	return out
}

// PeriodStrings renders periods as their string keys.
func PeriodStrings(periods []models.Period) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.String()
	}
	return out
}
