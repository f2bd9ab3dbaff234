package events

import (
	"time"
)

const (
	TypeLedgerIngested   = "ledger_ingested"
	TypeStructureUpdated = "structure_updated"
)

// LedgerIngested is published after new ledger rows are stored for a scope.
type LedgerIngested struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Scope      string    `json:"scope"`
	Entries    int       `json:"entries"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StructureUpdated is published by the structure admin process after an edit.
type StructureUpdated struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Scope      string    `json:"scope"`
	Statement  string    `json:"statement"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Envelope carries the fields every invalidation event shares.
type Envelope struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Scope   string `json:"scope"`
}
