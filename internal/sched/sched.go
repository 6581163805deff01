// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

// Package sched turns a validated snapshot plus a score table into execution
// decisions: a total order, width-bounded parallel batches, or the current
// ready set.
//
// Node readiness is a one-way progression: Blocked (unmet blocking
// dependencies remain) to Ready (none remain) to Emitted (returned to the
// caller). There is no failure state here; whether the work itself succeeds
// is the execution layer's concern, not this engine's.
package sched

import (
	"container/heap"
	"context"
	"fmt"
	"strings"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/score"
)

// DeadlockError reports that scheduling could not emit every node even though
// the snapshot passed upstream validation. It signals an inconsistency
// between the validated snapshot and the scheduling pass and is always
// surfaced, never swallowed.
type DeadlockError struct {
	Remaining []graph.NodeID // ascending canonical order
}

// Error implements the error interface.
func (e *DeadlockError) Error() string {
	ids := make([]string, len(e.Remaining))
	for i, id := range e.Remaining {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("scheduling deadlock: %d node(s) never became ready: %s",
		len(e.Remaining), strings.Join(ids, ", "))
}

// nodeHeap is a priority queue of ready nodes ordered by emission preference:
// score descending, then the fixed tie-break.
type nodeHeap struct {
	ids    []graph.NodeID
	snap   *graph.Snapshot
	scores []float64
}

func (h *nodeHeap) Len() int { return len(h.ids) }
func (h *nodeHeap) Less(i, j int) bool {
	return score.Less(h.snap, h.scores, h.ids[i], h.ids[j])
}
func (h *nodeHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *nodeHeap) Push(x any)    { h.ids = append(h.ids, x.(graph.NodeID)) }
func (h *nodeHeap) Pop() any {
	old := h.ids
	n := len(old)
	x := old[n-1]
	h.ids = old[:n-1]
	return x
}

// ExecutionOrder emits every node exactly once, best score first among ready
// nodes, dependencies always before dependents. The caller is expected to
// have validated the snapshot; a residual structural inconsistency (such as a
// cycle the upstream check missed) surfaces as a *DeadlockError listing the
// nodes that never became ready.
func ExecutionOrder(ctx context.Context, s *graph.Snapshot, scores []float64) ([]graph.NodeID, error) {
	logger := ctxlog.FromContext(ctx)

	remaining := make([]int, s.Len())
	ready := &nodeHeap{snap: s, scores: scores}
	for id := 0; id < s.Len(); id++ {
		remaining[id] = s.InDegree(graph.NodeID(id))
		if remaining[id] == 0 {
			ready.ids = append(ready.ids, graph.NodeID(id))
		}
	}
	heap.Init(ready)

	order := make([]graph.NodeID, 0, s.Len())
	for ready.Len() > 0 {
		u := heap.Pop(ready).(graph.NodeID)
		order = append(order, u)
		for _, w := range s.Dependents(u) {
			remaining[w]--
			if remaining[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}

	if len(order) != s.Len() {
		err := &DeadlockError{Remaining: leftover(remaining, order)}
		logger.Debug("ExecutionOrder: emission incomplete.", "emitted", len(order), "nodes", s.Len())
		return nil, err
	}
	logger.Debug("ExecutionOrder: complete.", "emitted", len(order))
	return order, nil
}

// ParallelBatches groups nodes into width-bounded batches: within each
// readiness level the ready nodes are sorted by emission preference and
// sliced into chunks of at most maxParallel. A node never lands in an earlier
// batch than any of its dependencies, and readiness propagation touches each
// edge once, so the whole pass is O(V+E) plus the per-level sort.
func ParallelBatches(ctx context.Context, s *graph.Snapshot, scores []float64, maxParallel int) ([][]graph.NodeID, error) {
	logger := ctxlog.FromContext(ctx)
	if maxParallel < 1 {
		return nil, fmt.Errorf("max parallel must be positive, got %d", maxParallel)
	}

	remaining := make([]int, s.Len())
	level := &nodeHeap{snap: s, scores: scores}
	for id := 0; id < s.Len(); id++ {
		remaining[id] = s.InDegree(graph.NodeID(id))
		if remaining[id] == 0 {
			level.ids = append(level.ids, graph.NodeID(id))
		}
	}

	var batches [][]graph.NodeID
	emitted := 0
	for len(level.ids) > 0 {
		heap.Init(level)
		next := &nodeHeap{snap: s, scores: scores}

		var batch []graph.NodeID
		for level.Len() > 0 {
			u := heap.Pop(level).(graph.NodeID)
			batch = append(batch, u)
			emitted++
			if len(batch) == maxParallel {
				batches = append(batches, batch)
				batch = nil
			}
			for _, w := range s.Dependents(u) {
				remaining[w]--
				if remaining[w] == 0 {
					next.ids = append(next.ids, w)
				}
			}
		}
		if len(batch) > 0 {
			batches = append(batches, batch)
		}
		level = next
	}

	if emitted != s.Len() {
		var seen []graph.NodeID
		for _, b := range batches {
			seen = append(seen, b...)
		}
		err := &DeadlockError{Remaining: leftover(remaining, seen)}
		logger.Debug("ParallelBatches: emission incomplete.", "emitted", emitted, "nodes", s.Len())
		return nil, err
	}
	logger.Debug("ParallelBatches: complete.", "batches", len(batches), "max_parallel", maxParallel)
	return batches, nil
}

// ReadyTasks returns the nodes with no unmet blocking dependencies, ordered
// by emission preference.
func ReadyTasks(s *graph.Snapshot, scores []float64) []graph.NodeID {
	h := &nodeHeap{snap: s, scores: scores}
	for id := 0; id < s.Len(); id++ {
		if s.InDegree(graph.NodeID(id)) == 0 {
			h.ids = append(h.ids, graph.NodeID(id))
		}
	}
	heap.Init(h)
	out := make([]graph.NodeID, 0, len(h.ids))
	for h.Len() > 0 {
		out = append(out, heap.Pop(h).(graph.NodeID))
	}
	return out
}

// leftover lists, in canonical order, every node that was never emitted.
func leftover(remaining []int, emitted []graph.NodeID) []graph.NodeID {
	done := make(map[graph.NodeID]bool, len(emitted))
	for _, id := range emitted {
		done[id] = true
	}
	var out []graph.NodeID
	for id := range remaining {
		if !done[graph.NodeID(id)] {
			out = append(out, graph.NodeID(id))
		}
	}
	return out
}
