package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"sync"    // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage"
)

// MemoryStore is an in-memory implementation of the ledger, structure and
// mapping stores. It is safe for concurrent use and hands out copies only.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   []models.LedgerEntry
	nodes     []models.StructureNode
	mappings  []models.AccountMapping
	entryByID map[string]int // index into entries, keeps ingestion idempotent
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make([]models.LedgerEntry, 0),
		entryByID: make(map[string]int),
	}
}

// SaveEntries appends entries; an entry whose id is already stored replaces
// the stored row.
func (m *MemoryStore) SaveEntries(ctx context.Context, entries []models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		// Re-sent id: overwrite in place so the row keeps its position
		if i, exists := m.entryByID[e.ID]; exists {
			m.entries[i] = e
			continue
		}
		// New id: remember where it lands, then append
		m.entryByID[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

// GetEntries returns a copy of the entries matching filter.
func (m *MemoryStore) GetEntries(ctx context.Context, filter models.LedgerFilter) ([]models.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Build a fresh slice so callers never alias the store's backing array
	var result []models.LedgerEntry
	for _, e := range m.entries {
		if storage.Matches(e, filter) {
			result = append(result, e)
		}
	}
	storage.SortEntries(result) // date, then id, like the SQL store
	return result, nil
}

// SaveStructure replaces every node of the statement/scope pairs present in nodes.
func (m *MemoryStore) SaveStructure(ctx context.Context, nodes []models.StructureNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	type owner struct {
		statement models.StatementType
		scope     string
	}
	// Collect which charts the batch rewrites
	replaced := make(map[owner]bool)
	for _, n := range nodes {
		replaced[owner{n.Statement, n.Scope}] = true
	}
	// Keep every other chart untouched; [:0:0] forces a new backing array
	kept := m.nodes[:0:0]
	for _, n := range m.nodes {
		if !replaced[owner{n.Statement, n.Scope}] {
			kept = append(kept, n)
		}
	}
	m.nodes = append(kept, cloneNodes(nodes)...)
	return nil
}

func (m *MemoryStore) GetStructure(ctx context.Context, statement models.StatementType, scope string) ([]models.StructureNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneNodes(storage.ScopeNodes(m.nodes, statement, scope)), nil
}

// SaveMappings replaces the mappings of every scope present in mappings.
func (m *MemoryStore) SaveMappings(ctx context.Context, mappings []models.AccountMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := make(map[string]bool)
	for _, mp := range mappings {
		replaced[mp.Scope] = true
	}
	kept := m.mappings[:0:0]
	for _, mp := range m.mappings {
		if !replaced[mp.Scope] {
			kept = append(kept, mp)
		}
	}
	m.mappings = append(kept, mappings...)
	return nil
}

func (m *MemoryStore) GetMappings(ctx context.Context, scope string) ([]models.AccountMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return storage.ScopeMappings(m.mappings, scope), nil
}

// cloneNodes deep-copies nodes; Dependencies is the only shared slice.
func cloneNodes(nodes []models.StructureNode) []models.StructureNode {
	out := make([]models.StructureNode, len(nodes))
	for i, n := range nodes {
		n.Dependencies = append([]models.Dependency(nil), n.Dependencies...)
		out[i] = n
	}
	return out
}

// Compile-time check: ensure MemoryStore implements the store interfaces
var (
	_ interfaces.LedgerStore    = (*MemoryStore)(nil)
	_ interfaces.StructureStore = (*MemoryStore)(nil)
	_ interfaces.MappingStore   = (*MemoryStore)(nil)
)
