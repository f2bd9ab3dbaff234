package statement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

var (
	ErrStructureNotFound = errors.New("structure not found")
	ErrCircularTotalizer = errors.New("circular totalizer")
	ErrInvalidStructure  = errors.New("invalid structure")
)

// StructureNotFoundError is returned when a scope has no active structure
// nodes for the requested statement.
type StructureNotFoundError struct {
	Statement models.StatementType
	Scope     string
}

func (e *StructureNotFoundError) Error() string {
	return fmt.Sprintf("no active %s structure for scope %q", e.Statement, e.Scope)
}

func (e *StructureNotFoundError) Is(target error) bool {
	return target == ErrStructureNotFound
}

// CircularTotalizerError is returned when a node depends, directly or
// transitively, on itself. Cycle lists the node ids along the loop with the
// first id repeated at the end.
type CircularTotalizerError struct {
	Cycle []string
}

func (e *CircularTotalizerError) Error() string {
	return fmt.Sprintf("circular totalizer dependency: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CircularTotalizerError) Is(target error) bool {
	return target == ErrCircularTotalizer
}

// InvalidStructureError reports a structure configuration error other than a cycle.
type InvalidStructureError struct {
	NodeID string
	Reason string
}

func (e *InvalidStructureError) Error() string {
	return fmt.Sprintf("invalid structure node %q: %s", e.NodeID, e.Reason)
}

func (e *InvalidStructureError) Is(target error) bool {
	return target == ErrInvalidStructure
}
