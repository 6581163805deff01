package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/model"
)

// Condense collapses every cycle in the snapshot into a single super-node and
// returns the resulting acyclic snapshot plus the grouping: representative
// key -> member keys in canonical order. Nodes outside any cycle map to a
// group of themselves.
//
// A super-node takes the lexicographically smallest member key as its
// representative, the summed member weights as effort, the most urgent member
// class, and the smallest member phase that is set. Blocking edges are
// rewired to the representatives with intra-component edges dropped;
// related/optional edges do not survive condensation since nothing downstream
// of it consumes them.
//
// Condense supports explicit best-effort scheduling only. The condensed
// snapshot shares the MutationID of its source: it is a derived view, not a
// mutation.
func Condense(ctx context.Context, s *Snapshot) (*Snapshot, map[string][]string, error) {
	logger := ctxlog.FromContext(ctx)

	rep := make([]NodeID, s.Len())
	for i := range rep {
		rep[i] = NodeID(i)
	}
	comps := s.StronglyConnectedComponents()
	for _, comp := range comps {
		// comp is ascending, and canonical order is key order, so the first
		// member carries the smallest key.
		for _, id := range comp {
			rep[id] = comp[0]
		}
	}
	logger.Debug("Condense: collapsed components.", "components", len(comps))

	groups := make(map[string][]string, s.Len())
	members := make(map[NodeID][]NodeID, s.Len())
	for i := range rep {
		members[rep[i]] = append(members[rep[i]], NodeID(i))
	}

	records := make([]model.TaskRecord, 0, len(members))
	for repID, ids := range members {
		node := s.nodes[repID]
		rec := model.TaskRecord{
			Key:           node.Key,
			Title:         node.Title,
			PriorityClass: node.Class,
			Effort:        0,
			Phase:         node.Phase,
		}
		var effort float64
		class := math.MaxInt32
		phase := 0
		for _, id := range ids {
			m := s.nodes[id]
			effort += m.Weight()
			if m.Class < class {
				class = m.Class
			}
			if m.Phase > 0 && (phase == 0 || m.Phase < phase) {
				phase = m.Phase
			}
			groups[node.Key] = append(groups[node.Key], m.Key)
		}
		rec.Effort = effort
		rec.PriorityClass = class
		rec.Phase = phase

		depSeen := make(map[string]bool)
		for _, id := range ids {
			for _, d := range s.deps[id] {
				target := s.nodes[rep[d]].Key
				if rep[d] == repID || depSeen[target] {
					continue
				}
				depSeen[target] = true
				rec.DependsOn = append(rec.DependsOn, model.Dependency{Key: target, Kind: model.Blocking})
			}
		}
		records = append(records, rec)
	}

	condensed, err := Build(ctx, records, s.MutationID)
	if err != nil {
		// Keys are unique and every reference targets a representative, so a
		// failure here is a programming bug, not a data defect.
		return nil, nil, fmt.Errorf("condensing snapshot: %w", err)
	}
	return condensed, groups, nil
}
