package statement

// dependencyGraph holds an edge A -> B whenever B's value is required to
// compute A: a group needs its child lines, a totalizer its declared
// dependencies.
type dependencyGraph struct {
	nodes []string
	edges map[string][]string
}

func newDependencyGraph(s *Structure) *dependencyGraph {
	g := &dependencyGraph{
		nodes: make([]string, 0, len(s.nodes)),
		edges: make(map[string][]string, len(s.nodes)),
	}
	for _, n := range s.nodes {
		g.nodes = append(g.nodes, n.ID)
		switch s.kinds[n.ID] {
		case kindGroup:
			g.edges[n.ID] = append(g.edges[n.ID], s.children[n.ID]...)
		case kindTotalizer:
			for _, d := range n.Dependencies {
				g.edges[n.ID] = append(g.edges[n.ID], d.NodeID)
			}
		}
	}
	return g
}

const (
	unvisited = iota
	visiting
	done
)

// resolutionOrder returns a post-order DFS over the graph, so every node
// appears after all of its dependencies. A back edge is a cycle.
func (g *dependencyGraph) resolutionOrder() ([]string, error) {
	state := make(map[string]int, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return &CircularTotalizerError{Cycle: cycleFrom(stack, id)}
		}
		state[id] = visiting
		stack = append(stack, id)
		for _, dep := range g.edges[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, id := range g.nodes {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleFrom(stack []string, id string) []string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == id {
			cycle := make([]string, 0, len(stack)-i+1)
			cycle = append(cycle, stack[i:]...)
			return append(cycle, id)
		}
	}
	return []string{id, id}
}
