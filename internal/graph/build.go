// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

package graph

import (
	"context"
	"sort"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/model"
)

// Build resolves a task set into an immutable Snapshot stamped with the given
// mutation ID.
//
// Construction runs in passes, each logged at Debug level:
//  1. index records by symbolic key in canonical (ascending key) order,
//     collecting every duplicate key
//  2. resolve dependency references to node IDs, collecting every key that
//     matches no record
//  3. freeze adjacency and degree tables over blocking edges
//
// Defects are reported in batch: a single *BuildError carries all duplicate
// keys and all unresolved references found, never just the first. A reference
// is never silently dropped or zero-filled. Build performs no cycle check;
// structural validation is a separate, explicit step.
func Build(ctx context.Context, records []model.TaskRecord, mutationID uint64) (*Snapshot, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting snapshot construction.", "records", len(records), "mutation_id", mutationID)

	// Pass 1: canonical ordering and key index.
	sorted := make([]model.TaskRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	defect := &BuildError{}
	byKey := make(map[string]NodeID, len(sorted))
	nodes := make([]*Node, 0, len(sorted))
	dupSeen := make(map[string]bool)
	for _, rec := range sorted {
		if _, exists := byKey[rec.Key]; exists {
			if !dupSeen[rec.Key] {
				defect.Duplicates = append(defect.Duplicates, rec.Key)
				dupSeen[rec.Key] = true
			}
			continue
		}
		id := NodeID(len(nodes))
		byKey[rec.Key] = id
		nodes = append(nodes, &Node{
			ID:     id,
			Key:    rec.Key,
			Title:  rec.Title,
			Class:  rec.Class(),
			Effort: rec.Effort,
			Phase:  rec.Phase,
		})
	}
	logger.Debug("Build: node indexing complete.", "nodes", len(nodes), "duplicates", len(defect.Duplicates))

	// Pass 2: resolve references. Duplicate-key records were skipped above, so
	// resolution runs against the canonical survivor of each key.
	var edges []Edge
	edgeSeen := make(map[Edge]bool)
	for _, rec := range sorted {
		from := byKey[rec.Key]
		for _, dep := range rec.DependsOn {
			to, ok := byKey[dep.Key]
			if !ok {
				defect.Unresolved = append(defect.Unresolved, UnresolvedReference{From: rec.Key, Missing: dep.Key})
				continue
			}
			e := Edge{From: from, To: to, Kind: dep.Kind}
			if edgeSeen[e] {
				logger.Debug("Build: ignoring repeated dependency entry.", "from", rec.Key, "to", dep.Key)
				continue
			}
			edgeSeen[e] = true
			edges = append(edges, e)
		}
	}

	if len(defect.Duplicates) > 0 || len(defect.Unresolved) > 0 {
		logger.Debug("Build: task set rejected.",
			"duplicates", len(defect.Duplicates), "unresolved", len(defect.Unresolved))
		return nil, defect
	}

	// Pass 3: freeze adjacency. Only blocking edges feed the degree tables.
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})

	deps := make([][]NodeID, len(nodes))
	dependents := make([][]NodeID, len(nodes))
	for _, e := range edges {
		if e.Kind != model.Blocking {
			continue
		}
		deps[e.From] = append(deps[e.From], e.To)
		dependents[e.To] = append(dependents[e.To], e.From)
	}
	for i := range deps {
		sort.Slice(deps[i], func(a, b int) bool { return deps[i][a] < deps[i][b] })
	}
	for i := range dependents {
		sort.Slice(dependents[i], func(a, b int) bool { return dependents[i][a] < dependents[i][b] })
	}

	s := &Snapshot{
		MutationID: mutationID,
		nodes:      nodes,
		byKey:      byKey,
		deps:       deps,
		dependents: dependents,
		edges:      edges,
	}
	logger.Debug("Build: snapshot construction successful.", "nodes", s.Len(), "edges", len(edges))
	return s, nil
}
