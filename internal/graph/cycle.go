package graph

// Colors for the depth-first marking scheme: white = unvisited, gray = on the
// current walk, black = fully explored.
const (
	white = iota
	gray
	black
)

// DetectCycle searches the blocking edges for a cycle and returns the first
// one found as a closed walk of node IDs (first == last), or nil when the
// snapshot is acyclic.
//
// The traversal follows dependency edges (task -> what it waits on) with an
// explicit frame stack rather than recursion, so arbitrarily deep graphs
// cannot overflow the call stack. Nodes are visited in canonical order, which
// makes the returned witness deterministic for a given snapshot.
func (s *Snapshot) DetectCycle() []NodeID {
	color := make([]int, len(s.nodes))
	parent := make([]NodeID, len(s.nodes))
	for i := range parent {
		parent[i] = -1
	}

	type frame struct {
		id   NodeID
		next int // index of the next dependency to explore
	}

	for start := range s.nodes {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: NodeID(start)}}
		color[start] = gray

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next >= len(s.deps[f.id]) {
				color[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := s.deps[f.id][f.next]
			f.next++

			switch color[v] {
			case white:
				color[v] = gray
				parent[v] = f.id
				stack = append(stack, frame{id: v})
			case gray:
				// Back-edge f.id -> v closes a cycle. Walk parents from f.id
				// up to v, then reverse into forward edge order.
				chain := []NodeID{f.id}
				for cur := f.id; cur != v; {
					cur = parent[cur]
					chain = append(chain, cur)
				}
				walk := make([]NodeID, 0, len(chain)+1)
				for i := len(chain) - 1; i >= 0; i-- {
					walk = append(walk, chain[i])
				}
				walk = append(walk, v)
				return walk
			}
		}
	}
	return nil
}

// Validate returns nil when blocking edges are acyclic, or a *CycleError
// carrying the full witness path in symbolic keys.
func (s *Snapshot) Validate() error {
	cycle := s.DetectCycle()
	if cycle == nil {
		return nil
	}
	return &CycleError{Path: s.Keys(cycle)}
}
