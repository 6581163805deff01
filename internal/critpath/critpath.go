// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

// Package critpath computes the duration-weighted completion depth of every
// task in an acyclic snapshot.
//
// The completion depth of a node is its own weight plus the deepest
// completion depth among its blocking dependencies; tasks with no
// dependencies sit at their own weight. In project-planning terms this is the
// earliest finish of each task when everything runs as soon as it can, so the
// maximum over all nodes is the critical path length of the whole set.
//
// The whole map is produced by one Kahn's pass over the snapshot, O(V+E).
// Scoring consults the finished map; it never recomputes depth per node.
package critpath

import (
	"context"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/graph"
)

// Map holds the completion depth of every node of one snapshot. It is only
// valid for the MutationID it was computed against.
type Map struct {
	MutationID uint64
	depth      []float64
}

// Depth returns the completion depth of id.
func (m Map) Depth(id graph.NodeID) float64 { return m.depth[id] }

// Longest returns the critical path length of the whole snapshot: the
// largest completion depth of any node. Zero for an empty snapshot.
func (m Map) Longest() float64 {
	var max float64
	for _, d := range m.depth {
		if d > max {
			max = d
		}
	}
	return max
}

// Compute derives the completion depth map for an acyclic snapshot. A cyclic
// snapshot yields a *graph.CycleError carrying the witness path.
func Compute(ctx context.Context, s *graph.Snapshot) (Map, error) {
	logger := ctxlog.FromContext(ctx)
	n := s.Len()

	remaining := make([]int, n)
	queue := make([]graph.NodeID, 0, n)
	for id := 0; id < n; id++ {
		remaining[id] = s.InDegree(graph.NodeID(id))
		if remaining[id] == 0 {
			queue = append(queue, graph.NodeID(id))
		}
	}

	depth := make([]float64, n)
	processed := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		processed++

		d := s.Node(u).Weight()
		var deepest float64
		for _, dep := range s.Deps(u) {
			if depth[dep] > deepest {
				deepest = depth[dep]
			}
		}
		depth[u] = d + deepest

		for _, w := range s.Dependents(u) {
			remaining[w]--
			if remaining[w] == 0 {
				queue = append(queue, w)
			}
		}
	}

	if processed != n {
		logger.Debug("Compute: snapshot is cyclic, refusing critical path.",
			"processed", processed, "nodes", n)
		if err := s.Validate(); err != nil {
			return Map{}, err
		}
		// Validate succeeding here would mean the degree tables disagree with
		// the edge set, which Build makes impossible.
		return Map{}, &graph.CycleError{}
	}

	logger.Debug("Compute: critical path map ready.", "nodes", n, "mutation_id", s.MutationID)
	return Map{MutationID: s.MutationID, depth: depth}, nil
}
