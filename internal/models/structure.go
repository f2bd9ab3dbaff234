package models

import (
	"fmt"
	"strings"
)

// StatementType selects the financial statement being rendered.
type StatementType string

const (
	StatementDRE StatementType = "DRE" // income statement
	StatementDFC StatementType = "DFC" // cash-flow statement
)

// ParseStatementType accepts DRE/DFC in any case.
func ParseStatementType(s string) (StatementType, error) {
	switch StatementType(strings.ToUpper(strings.TrimSpace(s))) {
	case StatementDRE:
		return StatementDRE, nil
	case StatementDFC:
		return StatementDFC, nil
	}
	return "", fmt.Errorf("unknown statement type %q", s)
}

// OperationType governs how a node's value is derived.
type OperationType string

const (
	OpAdd      OperationType = "+"
	OpSubtract OperationType = "-"
	OpNet      OperationType = "+/-"
	OpTotal    OperationType = "="
)

// Valid reports whether op is one of the four known operation types.
func (op OperationType) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpNet, OpTotal:
		return true
	}
	return false
}

// Structure levels, from the top statement line down to leaf accounts.
const (
	LevelTop     = 0 // "N0" statement lines
	LevelGroup   = 1
	LevelAccount = 2
)

// Dependency is one contributor of a totalizer. Sign is +1 or -1 and is
// applied on top of the contributor's already normalized value; zero means +1.
type Dependency struct {
	NodeID string `json:"no" yaml:"node"`
	Sign   int    `json:"sinal,omitempty" yaml:"sign,omitempty"`
}

// Factor returns the multiplier for the contributor.
func (d Dependency) Factor() int64 {
	if d.Sign < 0 {
		return -1
	}
	return 1
}

// StructureNode is one line of a statement's chart of accounts.
type StructureNode struct {
	ID           string
	Statement    StatementType
	Scope        string
	Level        int
	Code         string
	Name         string
	Description  string
	Operation    OperationType
	Order        int
	ParentID     string
	Active       bool
	Dependencies []Dependency
}

// IsTotalizer reports whether the node derives its value from declared dependencies.
func (n StructureNode) IsTotalizer() bool {
	return n.Operation == OpTotal
}

// Label is the display text of the node.
func (n StructureNode) Label() string {
	if n.Description != "" {
		return n.Description
	}
	return n.Name
}
