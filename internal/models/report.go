package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that encodes as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MarshalJSON writes the exact decimal text without quotes.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// LineAnalysis holds the formatted ratios of a line, keyed by period.
type LineAnalysis struct {
	Vertical       map[string]string `json:"vertical,omitempty"`
	Horizontal     map[string]string `json:"horizontal,omitempty"`
	BudgetVariance map[string]string `json:"orcamento,omitempty"`
}

// ReportLine is one rendered statement line. Classification and entry
// drill-down lines reuse the same shape.
type ReportLine struct {
	ID              string            `json:"id,omitempty"`
	Name            string            `json:"nome"`
	Operation       OperationType     `json:"tipo"`
	Level           int               `json:"nivel"`
	Value           *Amount           `json:"valor,omitempty"`
	MonthlyValues   map[string]Amount `json:"valores_mensais,omitempty"`
	QuarterlyValues map[string]Amount `json:"valores_trimestrais,omitempty"`
	YearlyValues    map[string]Amount `json:"valores_anuais,omitempty"`
	MonthlyBudget   map[string]Amount `json:"orcamentos_mensais,omitempty"`
	QuarterlyBudget map[string]Amount `json:"orcamentos_trimestrais,omitempty"`
	YearlyBudget    map[string]Amount `json:"orcamentos_anuais,omitempty"`
	BudgetTotal     *Amount           `json:"orcamento_total,omitempty"`
	Analysis        *LineAnalysis     `json:"analise,omitempty"`
	Children        []*ReportLine     `json:"filhos,omitempty"`
	Classifications []*ReportLine     `json:"classificacoes,omitempty"`
	Entries         []*ReportLine     `json:"lancamentos,omitempty"`
}

// Find returns the first line in the tree (depth first) with the given id.
func (l *ReportLine) Find(id string) *ReportLine {
	if l.ID == id {
		return l
	}
	for _, c := range l.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// UnmappedReason explains why a classification was excluded from totals.
type UnmappedReason string

const (
	ReasonNoMapping       UnmappedReason = "sem_mapeamento"
	ReasonNoStructureNode UnmappedReason = "conta_sem_estrutura"
	ReasonNotLeaf         UnmappedReason = "conta_nao_analitica"
	ReasonTotalizerTarget UnmappedReason = "conta_totalizadora"
)

// UnmappedClassification accumulates the entries dropped for one
// classification.
type UnmappedClassification struct {
	Classification string         `json:"classificacao"`
	Reason         UnmappedReason `json:"motivo"`
	Entries        int            `json:"lancamentos"`
	Amount         Amount         `json:"valor"`
}

// Diagnostics is the data-quality summary returned with every report.
type Diagnostics struct {
	Unmapped      []UnmappedClassification `json:"nao_mapeados"`
	Processed     int                      `json:"lancamentos_processados"`
	Ignored       int                      `json:"lancamentos_ignorados"`
	IgnoredAmount Amount                   `json:"valor_ignorado"`
}

// Report is the assembled statement tree for one request.
type Report struct {
	Statement   StatementType `json:"tipo"`
	Scope       string        `json:"empresa"`
	Months      []string      `json:"meses"`
	Quarters    []string      `json:"trimestres"`
	Years       []string      `json:"anos"`
	Lines       []*ReportLine `json:"data"`
	Diagnostics Diagnostics   `json:"diagnosticos"`
}

// Line looks a statement line up by node id anywhere in the tree.
func (r *Report) Line(id string) *ReportLine {
	for _, l := range r.Lines {
		if found := l.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// ReportQuery is one statement request.
type ReportQuery struct {
	Statement    StatementType
	Scope        string
	From         *time.Time
	To           *time.Time
	Series       SeriesSelection
	Expand       bool
	VerticalBase string // node vertical analysis divides by; empty selects the first top line
}

// CacheKey identifies the rendered report within its scope.
func (q ReportQuery) CacheKey() string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%t|%s",
		q.Statement, bound(q.From), bound(q.To), q.Series, q.Expand, q.VerticalBase)
}

// Filter returns the ledger filter for the query.
func (q ReportQuery) Filter() LedgerFilter {
	return LedgerFilter{Scope: q.Scope, From: q.From, To: q.To}
}
