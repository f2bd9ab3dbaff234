package interfaces

import (
	"context"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

type LedgerStore interface {
	SaveEntries(ctx context.Context, entries []models.LedgerEntry) error
	GetEntries(ctx context.Context, filter models.LedgerFilter) ([]models.LedgerEntry, error)
}

type StructureStore interface {
	GetStructure(ctx context.Context, statement models.StatementType, scope string) ([]models.StructureNode, error)
}

type MappingStore interface {
	GetMappings(ctx context.Context, scope string) ([]models.AccountMapping, error)
}
