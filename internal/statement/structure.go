package statement

import (
	"context"
	"fmt"
	"sort"

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// nodeKind is the structural role of a node once the tree is known.
type nodeKind int

const (
	kindLeaf nodeKind = iota
	kindGroup
	kindTotalizer
)

// Structure is a validated, ordered chart of accounts for one statement and
// scope. It is immutable once built and safe to share between goroutines.
type Structure struct {
	Statement models.StatementType
	Scope     string

	nodes    []models.StructureNode
	index    map[string]int
	kinds    map[string]nodeKind
	children map[string][]string
	roots    []string

	// order lists node ids so that every dependency precedes its dependents.
	order []string

	accounts     map[string]string
	accountsNorm map[string]string
}

// LoadStructure reads the nodes of a statement for scope and builds the
// structure. A scope without active nodes yields StructureNotFoundError.
func LoadStructure(ctx context.Context, store interfaces.StructureStore, statement models.StatementType, scope string) (*Structure, error) {
	nodes, err := store.GetStructure(ctx, statement, scope)
	if err != nil {
		return nil, fmt.Errorf("load %s structure: %w", statement, err)
	}
	return NewStructure(statement, scope, nodes)
}

// NewStructure filters the active nodes of statement, orders them and
// validates the tree and its totalizer dependencies.
func NewStructure(statement models.StatementType, scope string, nodes []models.StructureNode) (*Structure, error) {
	active := pruneInactive(statement, nodes)
	if len(active) == 0 {
		return nil, &StructureNotFoundError{Statement: statement, Scope: scope}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].Level < active[j].Level
	})

	s := &Structure{
		Statement:    statement,
		Scope:        scope,
		nodes:        active,
		index:        make(map[string]int, len(active)),
		kinds:        make(map[string]nodeKind, len(active)),
		children:     make(map[string][]string),
		accounts:     make(map[string]string),
		accountsNorm: make(map[string]string),
	}

	if err := s.indexNodes(); err != nil {
		return nil, err
	}
	if err := s.classifyNodes(); err != nil {
		return nil, err
	}
	order, err := newDependencyGraph(s).resolutionOrder()
	if err != nil {
		return nil, err
	}
	s.order = order
	return s, nil
}

// pruneInactive keeps the active nodes of statement. A node under an
// inactive parent is hidden with it, and a dependency on a hidden node is
// dropped so it contributes zero. Ids that never existed are kept and fail
// validation later.
func pruneInactive(statement models.StatementType, nodes []models.StructureNode) []models.StructureNode {
	parent := make(map[string]string, len(nodes))
	inactive := make(map[string]bool)
	for _, n := range nodes {
		if n.Statement != "" && n.Statement != statement {
			continue
		}
		parent[n.ID] = n.ParentID
		if !n.Active {
			inactive[n.ID] = true
		}
	}

	hidden := func(id string) bool {
		// Bounded so a malformed parent loop cannot spin forever.
		for i := 0; id != "" && i <= len(parent); i++ {
			if inactive[id] {
				return true
			}
			id = parent[id]
		}
		return false
	}

	active := make([]models.StructureNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Statement != "" && n.Statement != statement {
			continue
		}
		if hidden(n.ID) {
			continue
		}
		if len(n.Dependencies) > 0 {
			deps := make([]models.Dependency, 0, len(n.Dependencies))
			for _, d := range n.Dependencies {
				if _, known := parent[d.NodeID]; known && hidden(d.NodeID) {
					continue
				}
				deps = append(deps, d)
			}
			n.Dependencies = deps
		}
		active = append(active, n)
	}
	return active
}

func (s *Structure) indexNodes() error {
	type levelOrder struct{ level, order int }
	seenOrder := make(map[levelOrder]string)

	for i, n := range s.nodes {
		if n.ID == "" {
			return &InvalidStructureError{NodeID: n.Name, Reason: "missing id"}
		}
		if _, dup := s.index[n.ID]; dup {
			return &InvalidStructureError{NodeID: n.ID, Reason: "duplicate id"}
		}
		if !n.Operation.Valid() {
			return &InvalidStructureError{NodeID: n.ID, Reason: fmt.Sprintf("unknown operation type %q", n.Operation)}
		}
		key := levelOrder{n.Level, n.Order}
		if other, dup := seenOrder[key]; dup {
			return &InvalidStructureError{NodeID: n.ID, Reason: fmt.Sprintf("order %d already used by %q on level %d", n.Order, other, n.Level)}
		}
		seenOrder[key] = n.ID
		s.index[n.ID] = i
	}

	for _, n := range s.nodes {
		if n.ParentID == "" {
			s.roots = append(s.roots, n.ID)
			continue
		}
		if _, ok := s.index[n.ParentID]; !ok {
			return &InvalidStructureError{NodeID: n.ID, Reason: fmt.Sprintf("unknown parent %q", n.ParentID)}
		}
		s.children[n.ParentID] = append(s.children[n.ParentID], n.ID)
	}
	return nil
}

func (s *Structure) classifyNodes() error {
	for _, n := range s.nodes {
		hasChildren := len(s.children[n.ID]) > 0
		switch {
		case n.IsTotalizer():
			if hasChildren {
				return &InvalidStructureError{NodeID: n.ID, Reason: "totalizer cannot have child lines"}
			}
			for _, d := range n.Dependencies {
				if _, ok := s.index[d.NodeID]; !ok {
					return &InvalidStructureError{NodeID: n.ID, Reason: fmt.Sprintf("unknown dependency %q", d.NodeID)}
				}
			}
			s.kinds[n.ID] = kindTotalizer
		case len(n.Dependencies) > 0:
			return &InvalidStructureError{NodeID: n.ID, Reason: "only totalizers declare dependencies"}
		case hasChildren:
			s.kinds[n.ID] = kindGroup
		default:
			s.kinds[n.ID] = kindLeaf
		}

		// Any node name is indexed so the classifier can tell a mapping to a
		// group or totalizer apart from a mapping to nothing.
		if n.Name == "" {
			continue
		}
		if other, dup := s.accounts[n.Name]; dup && s.kinds[other] == kindLeaf && s.kinds[n.ID] == kindLeaf {
			return &InvalidStructureError{NodeID: n.ID, Reason: fmt.Sprintf("account name %q already used by %q", n.Name, other)}
		}
		if _, dup := s.accounts[n.Name]; !dup || s.kinds[n.ID] == kindLeaf {
			s.accounts[n.Name] = n.ID
		}
		norm := Normalize(n.Name)
		if _, dup := s.accountsNorm[norm]; !dup {
			s.accountsNorm[norm] = n.ID
		}
	}
	return nil
}

// Nodes returns the active nodes in order index order.
func (s *Structure) Nodes() []models.StructureNode {
	out := make([]models.StructureNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Node looks a node up by id.
func (s *Structure) Node(id string) (models.StructureNode, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.StructureNode{}, false
	}
	return s.nodes[i], true
}

// IsLeaf reports whether the node receives ledger amounts directly.
func (s *Structure) IsLeaf(id string) bool {
	k, ok := s.kinds[id]
	return ok && k == kindLeaf
}

// Children returns the child ids of id in order.
func (s *Structure) Children(id string) []string {
	return s.children[id]
}

// Roots returns the ids of the top-level lines in order.
func (s *Structure) Roots() []string {
	return s.roots
}

// ResolutionOrder returns node ids with dependencies first.
func (s *Structure) ResolutionOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// lookupAccount finds the node named account, optionally retrying with the
// normalized name.
func (s *Structure) lookupAccount(account string, normalize bool) (string, bool) {
	if id, ok := s.accounts[account]; ok {
		return id, true
	}
	if !normalize {
		return "", false
	}
	id, ok := s.accountsNorm[Normalize(account)]
	return id, ok
}
