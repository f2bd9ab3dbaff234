// Package file loads a statement fixture (structure, mappings and ledger)
// from a YAML document and serves it through the store interfaces.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage/memory"
)

const dateLayout = "2006-01-02"

type fixture struct {
	Scope     string                  `yaml:"scope"`
	Structure []nodeDoc               `yaml:"structure"`
	Mappings  []models.AccountMapping `yaml:"mappings"`
	Entries   []entryDoc              `yaml:"entries"`
}

type nodeDoc struct {
	ID           string              `yaml:"id"`
	Statement    string              `yaml:"statement"`
	Level        int                 `yaml:"level"`
	Code         string              `yaml:"code"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	Operation    string              `yaml:"op"`
	Order        int                 `yaml:"order"`
	Parent       string              `yaml:"parent"`
	Inactive     bool                `yaml:"inactive"`
	Dependencies []models.Dependency `yaml:"dependencies"`
}

type entryDoc struct {
	ID             string `yaml:"id"`
	Classification string `yaml:"classification"`
	Name           string `yaml:"name"`
	Amount         string `yaml:"amount"`
	Date           string `yaml:"date"`
	Origin         string `yaml:"origin"`
}

// Store is a read-mostly store seeded from a fixture document.
type Store struct {
	*memory.MemoryStore
	Scope string // default scope declared by the fixture
}

// Open reads the fixture at path.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses a fixture document. Rows without a scope inherit the
// document-level scope.
func Decode(r io.Reader) (*Store, error) {
	var doc fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	nodes := make([]models.StructureNode, 0, len(doc.Structure))
	for _, n := range doc.Structure {
		statement, err := models.ParseStatementType(n.Statement)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		nodes = append(nodes, models.StructureNode{
			ID:           n.ID,
			Statement:    statement,
			Scope:        doc.Scope,
			Level:        n.Level,
			Code:         n.Code,
			Name:         n.Name,
			Description:  n.Description,
			Operation:    models.OperationType(n.Operation),
			Order:        n.Order,
			ParentID:     n.Parent,
			Active:       !n.Inactive,
			Dependencies: n.Dependencies,
		})
	}

	entries := make([]models.LedgerEntry, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		amount, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("entry %d: amount %q: %w", i, e.Amount, err)
		}
		date, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: date %q: %w", i, e.Date, err)
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", doc.Scope, i+1)
		}
		entries = append(entries, models.LedgerEntry{
			ID:             id,
			Scope:          doc.Scope,
			Classification: e.Classification,
			Name:           e.Name,
			Amount:         amount,
			Date:           date,
			Origin:         e.Origin,
		})
	}

	mappings := make([]models.AccountMapping, 0, len(doc.Mappings))
	for _, m := range doc.Mappings {
		if m.Scope == "" {
			m.Scope = doc.Scope
		}
		mappings = append(mappings, m)
	}

	ctx := context.Background()
	mem := memory.NewMemoryStore()
	if err := mem.SaveStructure(ctx, nodes); err != nil {
		return nil, err
	}
	if err := mem.SaveMappings(ctx, mappings); err != nil {
		return nil, err
	}
	if err := mem.SaveEntries(ctx, entries); err != nil {
		return nil, err
	}
	return &Store{MemoryStore: mem, Scope: doc.Scope}, nil
}
