package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
	"github.com/sheikh-saqib/financial-statements-engine/internal/metrics"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models/events"
	"github.com/sheikh-saqib/financial-statements-engine/internal/statement"
)

// ErrInvalidEntry marks a rejected ingestion batch.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// Stores groups the persistence ports the ledger reads from.
type Stores struct {
	Entries    interfaces.LedgerStore
	Structures interfaces.StructureStore
	Mappings   interfaces.MappingStore
}

// Ledger loads ledger data, renders statements through the engine and
// keeps the report cache coherent with ingestion.
type Ledger struct {
	stores    Stores
	engine    *statement.Engine
	cache     interfaces.ReportCache    // nil disables caching
	publisher interfaces.EventPublisher // nil disables event publishing
	ttl       time.Duration
	log       *zap.Logger

	muMap map[string]*sync.Mutex // one ingestion lock per scope
	mapMu sync.Mutex             // protects muMap
	now   func() time.Time
}

type Option func(*Ledger)

func WithCache(c interfaces.ReportCache, ttl time.Duration) Option {
	return func(l *Ledger) {
		l.cache = c
		l.ttl = ttl
	}
}

func WithPublisher(p interfaces.EventPublisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

func NewLedger(stores Stores, engine *statement.Engine, opts ...Option) *Ledger {
	l := &Ledger{
		stores: stores,
		engine: engine,
		log:    zap.NewNop(),
		muMap:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// getScopeLock returns the ingestion mutex of scope, creating it on first use.
func (l *Ledger) getScopeLock(scope string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[scope]; !exists {
		l.muMap[scope] = &sync.Mutex{}
	}
	return l.muMap[scope]
}

// load reads the three inputs of a report: chart, mappings and the ledger
// slice of the query's range.
func (l *Ledger) load(ctx context.Context, q models.ReportQuery) (statement.Input, error) {
	// Structure first: an unknown chart fails before touching the ledger
	s, err := statement.LoadStructure(ctx, l.stores.Structures, q.Statement, q.Scope)
	if err != nil {
		return statement.Input{}, err
	}
	mappings, err := l.stores.Mappings.GetMappings(ctx, q.Scope)
	if err != nil {
		return statement.Input{}, fmt.Errorf("load mappings: %w", err)
	}
	entries, err := l.stores.Entries.GetEntries(ctx, q.Filter())
	if err != nil {
		return statement.Input{}, fmt.Errorf("load ledger: %w", err)
	}
	return statement.Input{Structure: s, Mappings: mappings, Entries: entries}, nil
}

// BuildStatement renders a report without going through the cache.
func (l *Ledger) BuildStatement(ctx context.Context, q models.ReportQuery) (*models.Report, error) {
	in, err := l.load(ctx, q)
	if err != nil {
		return nil, err
	}
	report, err := l.engine.Run(ctx, in, statement.Options{
		Series:       q.Series,
		Expand:       q.Expand,
		VerticalBase: q.VerticalBase,
	})
	if err != nil {
		return nil, err
	}
	l.reportUnmapped(q.Scope, report.Diagnostics)
	return report, nil
}

// StatementJSON returns the encoded report, served from the cache when one
// is configured. Concurrent misses for the same query build it once.
func (l *Ledger) StatementJSON(ctx context.Context, q models.ReportQuery) ([]byte, error) {
	start := l.now()
	statementLabel := string(q.Statement)
	defer func() {
		metrics.BuildDuration.WithLabelValues(statementLabel).Observe(time.Since(start).Seconds())
	}()

	var built atomic.Bool
	compute := func(ctx context.Context) ([]byte, error) {
		built.Store(true)
		report, err := l.BuildStatement(ctx, q)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	}

	var (
		data []byte
		err  error
	)
	if l.cache == nil {
		data, err = compute(ctx)
	} else {
		data, err = l.cache.Do(ctx, q.Scope, q.CacheKey(), l.ttl, compute)
		if err == nil {
			// Callers that shared another caller's build count as hits.
			result := "hit"
			if built.Load() {
				result = "miss"
			}
			metrics.CacheResults.WithLabelValues(result).Inc()
		}
	}
	if err != nil {
		metrics.StatementsBuilt.WithLabelValues(statementLabel, "error").Inc()
		return nil, err
	}
	metrics.StatementsBuilt.WithLabelValues(statementLabel, "ok").Inc()
	return data, nil
}

// Diagnose classifies the ledger slice of q without building the report.
func (l *Ledger) Diagnose(ctx context.Context, q models.ReportQuery) (models.Diagnostics, error) {
	in, err := l.load(ctx, q)
	if err != nil {
		return models.Diagnostics{}, err
	}
	return l.engine.Classify(in).Diagnostics, nil
}

func (l *Ledger) reportUnmapped(scope string, d models.Diagnostics) {
	if len(d.Unmapped) == 0 {
		return
	}
	for _, u := range d.Unmapped {
		metrics.UnmappedEntries.WithLabelValues(scope, string(u.Reason)).Add(float64(u.Entries))
		l.log.Warn("unmapped classification",
			zap.String("scope", scope),
			zap.String("classification", u.Classification),
			zap.String("reason", string(u.Reason)),
			zap.Int("entries", u.Entries))
	}
}

func validateEntry(i int, e models.LedgerEntry) error {
	switch {
	case e.Scope == "":
		return fmt.Errorf("%w: entry %d: empresa is required", ErrInvalidEntry, i)
	case e.Classification == "":
		return fmt.Errorf("%w: entry %d: classificacao is required", ErrInvalidEntry, i)
	case e.Date.IsZero():
		return fmt.Errorf("%w: entry %d: data is required", ErrInvalidEntry, i)
	}
	return nil
}

// IngestEntries validates and stores a batch, assigning ids to rows without
// one. A batch belongs to a single scope so it is stored and announced as a
// unit. The scope is invalidated locally and announced on the event bus; a
// failed publish is logged and does not fail the ingest.
func (l *Ledger) IngestEntries(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidEntry)
	}

	scope := entries[0].Scope
	stored := make([]models.LedgerEntry, 0, len(entries))
	for i, e := range entries {
		if err := validateEntry(i, e); err != nil {
			return nil, err
		}
		if e.Scope != scope {
			return nil, fmt.Errorf("%w: entry %d: empresa %q differs from batch empresa %q", ErrInvalidEntry, i, e.Scope, scope)
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		stored = append(stored, e)
	}

	if err := l.ingestScope(ctx, scope, stored); err != nil {
		return nil, err
	}
	metrics.EntriesIngested.Add(float64(len(stored)))
	return stored, nil
}

func (l *Ledger) ingestScope(ctx context.Context, scope string, entries []models.LedgerEntry) error {
	// Serialize ingestion per scope so save and invalidate are not interleaved
	mu := l.getScopeLock(scope)
	mu.Lock()
	defer mu.Unlock()

	// Persist the batch; nothing is invalidated or announced if this fails
	if err := l.stores.Entries.SaveEntries(ctx, entries); err != nil {
		return fmt.Errorf("save entries for %s: %w", scope, err)
	}
	// Drop this instance's cached reports of the scope
	if err := l.Invalidate(ctx, scope); err != nil {
		return err
	}

	if l.publisher == nil {
		return nil
	}
	// Announce the date range the batch touched so other instances invalidate too
	from, to := entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(from) {
			from = e.Date
		}
		if e.Date.After(to) {
			to = e.Date
		}
	}
	event := events.LedgerIngested{
		EventID:    uuid.New().String(),
		Type:       events.TypeLedgerIngested,
		Scope:      scope,
		Entries:    len(entries),
		From:       from,
		To:         to,
		OccurredAt: l.now().UTC(),
	}
	if err := l.publisher.Publish(ctx, scope, event); err != nil {
		metrics.KafkaPublishErrors.Inc()
		l.log.Error("publish ledger_ingested failed",
			zap.String("scope", scope),
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
	return nil
}

// Invalidate drops every cached report of scope.
func (l *Ledger) Invalidate(ctx context.Context, scope string) error {
	if l.cache == nil {
		return nil
	}
	if err := l.cache.Invalidate(ctx, scope); err != nil {
		return fmt.Errorf("invalidate cache for %s: %w", scope, err)
	}
	return nil
}
