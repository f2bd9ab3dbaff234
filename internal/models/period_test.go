package models

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		date    string
		month   string
		quarter string
		year    string
	}{
		{"2025-01-15", "2025-01", "2025-Q1", "2025"},
		{"2025-03-31", "2025-03", "2025-Q1", "2025"},
		{"2025-04-01", "2025-04", "2025-Q2", "2025"},
		{"2025-09-30", "2025-09", "2025-Q3", "2025"},
		{"2024-12-31", "2024-12", "2024-Q4", "2024"},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		assert.NoError(t, err)
		assert.Equal(t, tt.month, PeriodOf(Month, d).String())
		assert.Equal(t, tt.quarter, PeriodOf(Quarter, d).String())
		assert.Equal(t, tt.year, PeriodOf(Year, d).String())
		assert.Equal(t, "total", PeriodOf(Total, d).String())
	}
}

func TestPeriod_Previous(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03", "2025-02"},
		{"2025-01", "2024-12"},
		{"2025-Q1", "2024-Q4"},
		{"2025-Q3", "2025-Q2"},
		{"2025", "2024"},
	}
	for _, tt := range tests {
		p, err := ParsePeriod(tt.in)
		assert.NoError(t, err)
		prev, ok := p.Previous()
		assert.True(t, ok)
		assert.Equal(t, tt.want, prev.String())
	}

	_, ok := TotalPeriod.Previous()
	assert.False(t, ok)
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, in := range []string{"", "25", "2025-13", "2025-Q5", "2025-Qx", "abcd-01"} {
		_, err := ParsePeriod(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseMonth(t *testing.T) {
	start, end, err := ParseMonth("2025-02")
	assert.NoError(t, err)
	assert.Equal(t, "2025-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", end.Format("2006-01-02"))

	_, _, err = ParseMonth("02/2025")
	assert.Error(t, err)
}

func TestPeriod_Before(t *testing.T) {
	jan := Period{Granularity: Month, Year: 2025, Index: 1}
	dec := Period{Granularity: Month, Year: 2024, Index: 12}
	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(dec))
	assert.True(t, jan.Before(TotalPeriod))
}

func TestParseSelections(t *testing.T) {
	sel, err := ParseSeriesSelection("")
	assert.NoError(t, err)
	assert.Equal(t, SelectBoth, sel)
	assert.True(t, sel.Includes(SeriesBudget))

	sel, err = ParseSeriesSelection("Realizado")
	assert.NoError(t, err)
	assert.False(t, sel.Includes(SeriesBudget))

	_, err = ParseSeriesSelection("all")
	assert.Error(t, err)

	st, err := ParseStatementType(" dfc ")
	assert.NoError(t, err)
	assert.Equal(t, StatementDFC, st)
	_, err = ParseStatementType("BP")
	assert.Error(t, err)
}
