package statement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// Options control what the assembler renders.
type Options struct {
	Series models.SeriesSelection
	// Expand adds the classification and entry drill-down under every leaf.
	Expand bool
	// VerticalBase is the node vertical analysis divides by. Empty selects
	// the first top-level line.
	VerticalBase string
}

type assembler struct {
	structure *Structure
	bucket    *Bucket
	resolved  *Resolution
	opts      Options
	periods   map[models.Granularity][]models.Period
	base      string
	primary   models.Series

	// drill is built on first use only.
	drill map[string][]ClassifiedEntry
	feed  []ClassifiedEntry
}

// Assemble walks the structure in order and renders the report tree.
func Assemble(s *Structure, b *Bucket, r *Resolution, c Classification, opts Options) *models.Report {
	if opts.Series == "" {
		opts.Series = models.SelectBoth
	}
	a := &assembler{
		structure: s,
		bucket:    b,
		resolved:  r,
		opts:      opts,
		periods:   make(map[models.Granularity][]models.Period),
		base:      opts.VerticalBase,
		primary:   models.SeriesRealized,
		feed:      c.Entries,
	}
	if opts.Series == models.SelectBudget {
		a.primary = models.SeriesBudget
	}
	if _, ok := s.Node(a.base); !ok && len(s.roots) > 0 {
		a.base = s.roots[0]
	}
	for _, g := range []models.Granularity{models.Month, models.Quarter, models.Year} {
		a.periods[g] = b.Periods(g)
	}

	report := &models.Report{
		Statement:   s.Statement,
		Scope:       s.Scope,
		Months:      PeriodStrings(a.periods[models.Month]),
		Quarters:    PeriodStrings(a.periods[models.Quarter]),
		Years:       PeriodStrings(a.periods[models.Year]),
		Lines:       make([]*models.ReportLine, 0, len(s.roots)),
		Diagnostics: c.Diagnostics,
	}
	for _, id := range s.roots {
		report.Lines = append(report.Lines, a.line(id))
	}
	return report
}

func (a *assembler) line(id string) *models.ReportLine {
	n, _ := a.structure.Node(id)
	l := &models.ReportLine{
		ID:        n.ID,
		Name:      n.Label(),
		Operation: n.Operation,
		Level:     n.Level,
	}
	a.fill(l, func(p models.Period, s models.Series) decimal.Decimal {
		return a.resolved.Value(id, p, s)
	})
	l.Analysis = a.analysis(id)

	for _, child := range a.structure.Children(id) {
		l.Children = append(l.Children, a.line(child))
	}
	if a.opts.Expand && a.structure.IsLeaf(id) {
		l.Classifications = a.expand(n)
	}
	return l
}

// fill writes the per-period maps and totals of the selected series.
func (a *assembler) fill(l *models.ReportLine, value func(models.Period, models.Series) decimal.Decimal) {
	if a.opts.Series.Includes(models.SeriesRealized) {
		l.MonthlyValues = a.values(models.Month, models.SeriesRealized, value)
		l.QuarterlyValues = a.values(models.Quarter, models.SeriesRealized, value)
		l.YearlyValues = a.values(models.Year, models.SeriesRealized, value)
		total := models.NewAmount(value(models.TotalPeriod, models.SeriesRealized))
		l.Value = &total
	}
	if a.opts.Series.Includes(models.SeriesBudget) {
		l.MonthlyBudget = a.values(models.Month, models.SeriesBudget, value)
		l.QuarterlyBudget = a.values(models.Quarter, models.SeriesBudget, value)
		l.YearlyBudget = a.values(models.Year, models.SeriesBudget, value)
		total := models.NewAmount(value(models.TotalPeriod, models.SeriesBudget))
		l.BudgetTotal = &total
	}
}

func (a *assembler) values(g models.Granularity, s models.Series, value func(models.Period, models.Series) decimal.Decimal) map[string]models.Amount {
	out := make(map[string]models.Amount, len(a.periods[g]))
	for _, p := range a.periods[g] {
		out[p.String()] = models.NewAmount(value(p, s))
	}
	return out
}

func (a *assembler) analysis(id string) *models.LineAnalysis {
	an := &models.LineAnalysis{
		Vertical:   make(map[string]string),
		Horizontal: make(map[string]string),
	}
	both := a.opts.Series == models.SelectBoth
	if both {
		an.BudgetVariance = make(map[string]string)
	}

	for _, g := range []models.Granularity{models.Month, models.Quarter, models.Year, models.Total} {
		periods := a.periods[g]
		if g == models.Total {
			periods = []models.Period{models.TotalPeriod}
		}
		for _, p := range periods {
			key := p.String()
			current := a.resolved.Value(id, p, a.primary)
			an.Vertical[key] = Vertical(current, a.resolved.Value(a.base, p, a.primary))
			if prev, ok := p.Previous(); ok {
				an.Horizontal[key] = Horizontal(current, a.resolved.Value(id, prev, a.primary))
			}
			if both {
				an.BudgetVariance[key] = BudgetVariance(
					a.resolved.Value(id, p, models.SeriesRealized),
					a.resolved.Value(id, p, models.SeriesBudget),
				)
			}
		}
	}
	return an
}

// expand renders the classifications that fed a leaf and, one level
// deeper, the distinct entry names under each classification.
func (a *assembler) expand(n models.StructureNode) []*models.ReportLine {
	if a.drill == nil {
		a.drill = make(map[string][]ClassifiedEntry)
		for _, ce := range a.feed {
			a.drill[ce.NodeID] = append(a.drill[ce.NodeID], ce)
		}
	}

	byClassification := groupBy(a.drill[n.ID], func(ce ClassifiedEntry) string { return ce.Entry.Classification })
	lines := make([]*models.ReportLine, 0, len(byClassification))
	for _, g := range byClassification {
		cl := a.drillLine(g.key, n, n.Level+1, g.entries)
		for _, e := range groupBy(g.entries, func(ce ClassifiedEntry) string { return ce.Entry.Name }) {
			cl.Entries = append(cl.Entries, a.drillLine(e.key, n, n.Level+2, e.entries))
		}
		lines = append(lines, cl)
	}
	return lines
}

func (a *assembler) drillLine(name string, n models.StructureNode, level int, entries []ClassifiedEntry) *models.ReportLine {
	b := Aggregate(entries, a.bucket.budgetOrigin)
	l := &models.ReportLine{Name: name, Operation: n.Operation, Level: level}
	a.fill(l, func(p models.Period, s models.Series) decimal.Decimal {
		key := models.BucketKey{NodeID: n.ID, Period: p, Series: s}
		raw, _ := b.Value(key)
		total, _ := a.bucket.Value(key)
		return leafShare(n.Operation, total, raw)
	})
	return l
}

// leafShare signs a part of a leaf's raw sum the way the leaf's total was
// signed, so the parts of a drill-down add up to the leaf. A refund under a
// "+" leaf stays negative.
func leafShare(op models.OperationType, total, part decimal.Decimal) decimal.Decimal {
	if NormalizeLeaf(op, total).Equal(total) {
		return part
	}
	return part.Neg()
}

type group struct {
	key     string
	entries []ClassifiedEntry
}

// groupBy partitions entries by key, sorted by key for stable output.
func groupBy(entries []ClassifiedEntry, key func(ClassifiedEntry) string) []group {
	idx := make(map[string]int)
	var out []group
	for _, ce := range entries {
		k := key(ce)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, group{key: k})
		}
		out[i].entries = append(out[i].entries, ce)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}
