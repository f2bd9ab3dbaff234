// Package statement renders ledger rows into hierarchical financial
// statements: classify, bucket by period, resolve totalizers, analyse and
// assemble. Every step is pure; callers own loading and caching.
package statement

import (
	"context"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// Engine runs the statement pipeline.
type Engine struct {
	BudgetOrigin      string
	NormalizeFallback bool
}

// NewEngine returns an engine using the default budget sentinel with the
// normalization fallback enabled.
func NewEngine() *Engine {
	return &Engine{BudgetOrigin: models.BudgetOrigin, NormalizeFallback: true}
}

// Input is the immutable data a single run works on.
type Input struct {
	Structure *Structure
	Mappings  []models.AccountMapping
	Entries   []models.LedgerEntry
}

// Run classifies, aggregates, resolves and assembles one report.
func (e *Engine) Run(ctx context.Context, in Input, opts Options) (*models.Report, error) {
	classified := e.Classify(in)
	bucket := Aggregate(classified.Entries, e.budgetOrigin())
	resolved, err := Resolve(ctx, in.Structure, bucket)
	if err != nil {
		return nil, err
	}
	return Assemble(in.Structure, bucket, resolved, classified, opts), nil
}

// Classify runs only the classification stage.
func (e *Engine) Classify(in Input) Classification {
	return NewClassifier(in.Structure, in.Mappings, e.NormalizeFallback).Classify(in.Entries)
}

func (e *Engine) budgetOrigin() string {
	if e.BudgetOrigin == "" {
		return models.BudgetOrigin
	}
	return e.BudgetOrigin
}
