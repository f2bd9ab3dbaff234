package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetOrigin is the origin tag that marks a budgeted (forecast) entry.
const BudgetOrigin = "ORC"

// LedgerEntry represents a single raw ledger row as delivered by ingestion.
// The engine never mutates it.
type LedgerEntry struct {
	ID             string          // unique identifier
	Scope          string          // owning legal entity
	Classification string          // free-text classification, resolved through AccountMapping
	Name           string          // entry description, used for drill-down
	Amount         decimal.Decimal // signed amount
	Date           time.Time       // transaction date
	Origin         string          // "ORC" for budget, anything else is realized
}

// SeriesFor reports which value stream the entry belongs to given the
// configured budget sentinel.
func (e LedgerEntry) SeriesFor(budgetOrigin string) Series {
	if e.Origin == budgetOrigin {
		return SeriesBudget
	}
	return SeriesRealized
}

// LedgerFilter narrows the ledger slice loaded for a report.
// Nil bounds are open.
type LedgerFilter struct {
	Scope string
	From  *time.Time
	To    *time.Time
}
