package statement

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

func mustParseDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func node(id string, level, order int, op models.OperationType, name, parent string, deps ...string) models.StructureNode {
	n := models.StructureNode{
		ID:        id,
		Statement: models.StatementDRE,
		Scope:     "acme",
		Level:     level,
		Name:      name,
		Operation: op,
		Order:     order,
		ParentID:  parent,
		Active:    true,
	}
	for _, d := range deps {
		n.Dependencies = append(n.Dependencies, models.Dependency{NodeID: d})
	}
	return n
}

// dreNodes is a small income statement:
//
//	rb   Receita Bruta (+)      vendas, servicos
//	ded  Deducoes (-)           impostos
//	rl   Receita Liquida (=)    rb + ded
//	desp Despesas (-)           pessoal, outros
//	res  Resultado (=)          rl + desp
func dreNodes() []models.StructureNode {
	return []models.StructureNode{
		node("rb", 0, 1, models.OpAdd, "Receita Bruta", ""),
		node("vendas", 2, 1, models.OpAdd, "Vendas", "rb"),
		node("servicos", 2, 2, models.OpAdd, "Servicos", "rb"),
		node("ded", 0, 2, models.OpSubtract, "Deducoes", ""),
		node("impostos", 2, 3, models.OpSubtract, "Impostos", "ded"),
		node("rl", 0, 3, models.OpTotal, "Receita Liquida", "", "rb", "ded"),
		node("desp", 0, 4, models.OpSubtract, "Despesas", ""),
		node("pessoal", 2, 4, models.OpSubtract, "Pessoal", "desp"),
		node("outros", 2, 5, models.OpNet, "Outros", "desp"),
		node("res", 0, 5, models.OpTotal, "Resultado", "", "rl", "desp"),
	}
}

func dreMappings() []models.AccountMapping {
	return []models.AccountMapping{
		{Scope: "acme", Classification: "Sales", Account: "Vendas"},
		{Scope: "acme", Classification: "Service Fees", Account: "Servicos"},
		{Scope: "acme", Classification: "ICMS", Account: "Impostos"},
		{Scope: "acme", Classification: "Salaries", Account: "Pessoal"},
		{Scope: "acme", Classification: "Misc", Account: "Outros"},
		{Scope: "acme", Classification: "Ghost", Account: "Nao Existe"},
		{Scope: "acme", Classification: "Subtotal", Account: "Receita Liquida"},
	}
}

func entry(classification, name, amount, date, origin string) models.LedgerEntry {
	return models.LedgerEntry{
		ID:             classification + "/" + name,
		Scope:          "acme",
		Classification: classification,
		Name:           name,
		Amount:         mustParseDec(amount),
		Date:           day(date),
		Origin:         origin,
	}
}

func dreEntries() []models.LedgerEntry {
	return []models.LedgerEntry{
		entry("Sales", "NF 1", "1000", "2025-01-15", "REAL"),
		entry("Sales", "NF 2", "500", "2025-02-10", "REAL"),
		entry("Service Fees", "Consulting", "200", "2025-01-20", "REAL"),
		entry("ICMS", "ICMS jan", "150", "2025-01-31", "REAL"),
		entry("Salaries", "Folha jan", "-400", "2025-01-05", "REAL"),
		entry("Misc", "Reembolso", "30", "2025-01-06", "REAL"),
		entry("Misc", "Tarifa", "-80", "2025-04-02", "REAL"),
		entry("Sales", "Meta jan", "1200", "2025-01-01", "ORC"),
		entry("Ghost", "x", "99", "2025-01-10", "REAL"),
		entry("Unknown", "y", "1", "2025-01-10", "REAL"),
		entry("Subtotal", "z", "5", "2025-01-10", "REAL"),
	}
}

func mustStructure(t *testing.T, nodes []models.StructureNode) *Structure {
	t.Helper()
	s, err := NewStructure(models.StatementDRE, "acme", nodes)
	assert.NoError(t, err)
	return s
}

func month(y, m int) models.Period {
	return models.Period{Granularity: models.Month, Year: y, Index: m}
}

func quarter(y, q int) models.Period {
	return models.Period{Granularity: models.Quarter, Year: y, Index: q}
}

func year(y int) models.Period {
	return models.Period{Granularity: models.Year, Year: y}
}

func assertDec(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	assert.True(t, got.Equal(mustParseDec(want)), "got %s, want %s", got, want)
}
