package storage

import (
	"sort"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// Matches reports whether entry falls inside filter. Bounds are inclusive.
func Matches(entry models.LedgerEntry, filter models.LedgerFilter) bool {
	if filter.Scope != "" && entry.Scope != filter.Scope {
		return false
	}
	if filter.From != nil && entry.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && entry.Date.After(*filter.To) {
		return false
	}
	return true
}

// SortEntries orders entries by date then id, the order every store returns.
func SortEntries(entries []models.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
}

// ScopeNodes returns the nodes of statement that belong to scope.
func ScopeNodes(nodes []models.StructureNode, statement models.StatementType, scope string) []models.StructureNode {
	var out []models.StructureNode
	for _, n := range nodes {
		if n.Statement == statement && n.Scope == scope {
			out = append(out, n)
		}
	}
	return out
}

// ScopeMappings returns the mappings that belong to scope.
func ScopeMappings(mappings []models.AccountMapping, scope string) []models.AccountMapping {
	var out []models.AccountMapping
	for _, m := range mappings {
		if m.Scope == scope {
			out = append(out, m)
		}
	}
	return out
}
