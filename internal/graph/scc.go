package graph

import "sort"

// StronglyConnectedComponents groups nodes that are mutually reachable over
// blocking edges. Singleton components are only reported when the node blocks
// itself, so every returned component is a genuine cycle. Components and
// their members come back in ascending canonical order.
//
// The implementation is Tarjan's algorithm driven by an explicit frame stack;
// recursion depth never depends on graph shape.
func (s *Snapshot) StronglyConnectedComponents() [][]NodeID {
	n := len(s.nodes)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var (
		counter int
		tarjan  []NodeID // Tarjan's component stack
		out     [][]NodeID
	)

	type frame struct {
		id   NodeID
		next int
	}

	for start := range s.nodes {
		if index[start] != -1 {
			continue
		}
		stack := []frame{{id: NodeID(start)}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next == 0 {
				index[f.id] = counter
				lowlink[f.id] = counter
				counter++
				tarjan = append(tarjan, f.id)
				onStack[f.id] = true
			}

			advanced := false
			for f.next < len(s.deps[f.id]) {
				v := s.deps[f.id][f.next]
				f.next++
				if index[v] == -1 {
					stack = append(stack, frame{id: v})
					advanced = true
					break
				}
				if onStack[v] && index[v] < lowlink[f.id] {
					lowlink[f.id] = index[v]
				}
			}
			if advanced {
				continue
			}

			// f.id is fully explored.
			if lowlink[f.id] == index[f.id] {
				var comp []NodeID
				for {
					top := tarjan[len(tarjan)-1]
					tarjan = tarjan[:len(tarjan)-1]
					onStack[top] = false
					comp = append(comp, top)
					if top == f.id {
						break
					}
				}
				if len(comp) > 1 || s.hasSelfLoop(comp[0]) {
					sort.Slice(comp, func(a, b int) bool { return comp[a] < comp[b] })
					out = append(out, comp)
				}
			}

			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				p := &stack[len(stack)-1]
				if lowlink[f.id] < lowlink[p.id] {
					lowlink[p.id] = lowlink[f.id]
				}
			}
		}
	}

	sort.Slice(out, func(a, b int) bool { return out[a][0] < out[b][0] })
	return out
}

func (s *Snapshot) hasSelfLoop(id NodeID) bool {
	for _, d := range s.deps[id] {
		if d == id {
			return true
		}
	}
	return false
}
