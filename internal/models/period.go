package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity is the calendar resolution of a Period.
type Granularity int

const (
	Month Granularity = iota
	Quarter
	Year
	Total // whole requested range
)

// Granularities lists every granularity a ledger entry is bucketed into.
var Granularities = []Granularity{Month, Quarter, Year, Total}

func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	case Total:
		return "total"
	}
	return "unknown"
}

// Period is a derived calendar key. Index is the month (1-12) or quarter
// (1-4); it is zero for Year and Total.
type Period struct {
	Granularity Granularity
	Year        int
	Index       int
}

// TotalPeriod is the single key covering the whole requested range.
var TotalPeriod = Period{Granularity: Total}

// PeriodOf derives the key of granularity g for date t.
func PeriodOf(g Granularity, t time.Time) Period {
	switch g {
	case Month:
		return Period{Granularity: Month, Year: t.Year(), Index: int(t.Month())}
	case Quarter:
		return Period{Granularity: Quarter, Year: t.Year(), Index: (int(t.Month()) + 2) / 3}
	case Year:
		return Period{Granularity: Year, Year: t.Year()}
	}
	return TotalPeriod
}

// String renders YYYY-MM, YYYY-Qn, YYYY or "total".
func (p Period) String() string {
	switch p.Granularity {
	case Month:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Index)
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Index)
	case Year:
		return fmt.Sprintf("%04d", p.Year)
	}
	return "total"
}

// Previous returns the preceding key of the same granularity. Total has none.
func (p Period) Previous() (Period, bool) {
	switch p.Granularity {
	case Month:
		if p.Index == 1 {
			return Period{Granularity: Month, Year: p.Year - 1, Index: 12}, true
		}
		return Period{Granularity: Month, Year: p.Year, Index: p.Index - 1}, true
	case Quarter:
		if p.Index == 1 {
			return Period{Granularity: Quarter, Year: p.Year - 1, Index: 4}, true
		}
		return Period{Granularity: Quarter, Year: p.Year, Index: p.Index - 1}, true
	case Year:
		return Period{Granularity: Year, Year: p.Year - 1}, true
	}
	return Period{}, false
}

// Before orders periods chronologically, granularity first.
func (p Period) Before(o Period) bool {
	if p.Granularity != o.Granularity {
		return p.Granularity < o.Granularity
	}
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Index < o.Index
}

// ParseMonth parses a YYYY-MM key into its first and last instant.
func ParseMonth(s string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

// ParsePeriod parses any key produced by Period.String.
func ParsePeriod(s string) (Period, error) {
	if s == "total" {
		return TotalPeriod, nil
	}
	yearPart, rest, found := strings.Cut(s, "-")
	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	if !found {
		return Period{Granularity: Year, Year: year}, nil
	}
	if q, ok := strings.CutPrefix(rest, "Q"); ok {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 4 {
			return Period{}, fmt.Errorf("invalid quarter %q", s)
		}
		return Period{Granularity: Quarter, Year: year, Index: n}, nil
	}
	m, err := strconv.Atoi(rest)
	if err != nil || m < 1 || m > 12 {
		return Period{}, fmt.Errorf("invalid month %q", s)
	}
	return Period{Granularity: Month, Year: year, Index: m}, nil
}

// Series is a value stream of a statement line.
type Series string

const (
	SeriesRealized Series = "realizado"
	SeriesBudget   Series = "orcado"
)

// SeriesSelection chooses which series a report carries.
type SeriesSelection string

const (
	SelectRealized SeriesSelection = "realizado"
	SelectBudget   SeriesSelection = "orcado"
	SelectBoth     SeriesSelection = "ambos"
)

// ParseSeriesSelection defaults an empty value to SelectBoth.
func ParseSeriesSelection(s string) (SeriesSelection, error) {
	switch SeriesSelection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SelectBoth:
		return SelectBoth, nil
	case SelectRealized:
		return SelectRealized, nil
	case SelectBudget:
		return SelectBudget, nil
	}
	return "", fmt.Errorf("unknown series %q", s)
}

// Includes reports whether series s is part of the selection.
func (sel SeriesSelection) Includes(s Series) bool {
	switch sel {
	case SelectRealized:
		return s == SeriesRealized
	case SelectBudget:
		return s == SeriesBudget
	}
	return true
}

// BucketKey addresses one aggregated amount.
type BucketKey struct {
	NodeID string
	Period Period
	Series Series
}
