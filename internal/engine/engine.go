// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

// Package engine is the caller-facing facade of the scheduling core. It owns
// the mutation counter, stitches the graph, critical path, scoring and
// scheduling stages together, and memoizes derived artifacts per snapshot in
// a resolution cache.
//
// Snapshots are immutable, so every method here is safe for concurrent use;
// the only shared mutable state is the cache, guarded by its own mutex.
// Results are reported in symbolic keys, the identifiers callers actually
// hold.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nk/planweave/internal/critpath"
	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/model"
	"github.com/nk/planweave/internal/sched"
	"github.com/nk/planweave/internal/score"
)

// Engine coordinates scheduling passes over caller-supplied task sets.
type Engine struct {
	weights    score.Weights
	bestEffort bool

	mutation atomic.Uint64
	cache    *resolutionCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the default scoring policy.
func WithWeights(w score.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithBestEffort enables partial scheduling of cyclic inputs: cycles are
// collapsed into super-nodes and every member of a cycle is emitted together.
// Without this option a cyclic snapshot is refused outright.
func WithBestEffort() Option {
	return func(e *Engine) { e.bestEffort = true }
}

// New constructs an Engine with the default urgency-dominant weights.
func New(opts ...Option) *Engine {
	e := &Engine{
		weights: score.DefaultWeights(),
		cache:   newResolutionCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit resolves a task set into a fresh snapshot stamped with the next
// mutation ID. Any previously cached derived artifacts are invalidated
// wholesale: derived state is recomputed per snapshot, never patched.
func (e *Engine) Submit(ctx context.Context, records []model.TaskRecord) (*graph.Snapshot, error) {
	logger := ctxlog.FromContext(ctx)
	id := e.mutation.Add(1)
	s, err := graph.Build(ctx, records, id)
	if err != nil {
		return nil, err
	}
	e.cache.reset(id)
	logger.Debug("Submit: snapshot accepted.", "mutation_id", id, "nodes", s.Len())
	return s, nil
}

// Validate returns nil when the snapshot's blocking edges are acyclic, or a
// *graph.CycleError with the full cycle path. The verdict is cached per
// snapshot.
func (e *Engine) Validate(s *graph.Snapshot) error {
	return e.cache.cycleErr(s)
}

// CriticalPath returns the completion depth map for the snapshot, memoized
// per mutation ID.
func (e *Engine) CriticalPath(ctx context.Context, s *graph.Snapshot) (critpath.Map, error) {
	a, err := e.cache.analysis(ctx, s, e.weights)
	if err != nil {
		return critpath.Map{}, err
	}
	return a.cp, nil
}

// ReadyTasks returns the keys of every task with no unmet blocking
// dependency, best score first.
func (e *Engine) ReadyTasks(ctx context.Context, s *graph.Snapshot) ([]string, error) {
	a, err := e.cache.analysis(ctx, s, e.weights)
	if err != nil {
		return nil, err
	}
	return s.Keys(sched.ReadyTasks(s, a.scores)), nil
}

// ExecutionOrder emits the full task set as one deterministic total order.
// Cyclic snapshots are refused with *graph.CycleError unless best-effort mode
// is on, in which case the condensation is scheduled and each cycle's members
// are emitted together at the representative's position.
func (e *Engine) ExecutionOrder(ctx context.Context, s *graph.Snapshot) ([]string, error) {
	target, groups, err := e.schedulable(ctx, s)
	if err != nil {
		return nil, err
	}
	a, err := e.cache.analysisFor(ctx, target, e.weights)
	if err != nil {
		return nil, err
	}
	order, err := sched.ExecutionOrder(ctx, target, a.scores)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, id := range order {
		out = append(out, expand(target.Node(id).Key, groups)...)
	}
	return out, nil
}

// ParallelBatches emits width-bounded batches. In best-effort mode a
// collapsed cycle occupies a single slot and its members are listed together,
// so only collapsed cycles may stretch a batch beyond maxParallel.
func (e *Engine) ParallelBatches(ctx context.Context, s *graph.Snapshot, maxParallel int) ([][]string, error) {
	target, groups, err := e.schedulable(ctx, s)
	if err != nil {
		return nil, err
	}
	a, err := e.cache.analysisFor(ctx, target, e.weights)
	if err != nil {
		return nil, err
	}
	batches, err := sched.ParallelBatches(ctx, target, a.scores, maxParallel)
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(batches))
	for i, b := range batches {
		for _, id := range b {
			out[i] = append(out[i], expand(target.Node(id).Key, groups)...)
		}
	}
	return out, nil
}

// BlockingTasks returns the keys of the tasks the named task waits on, in
// canonical order.
func (e *Engine) BlockingTasks(s *graph.Snapshot, key string) ([]string, error) {
	n, ok := s.NodeByKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown task %q", key)
	}
	return s.Keys(s.Deps(n.ID)), nil
}

// Dependents returns the keys of the tasks waiting on the named task, in
// canonical order.
func (e *Engine) Dependents(s *graph.Snapshot, key string) ([]string, error) {
	n, ok := s.NodeByKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown task %q", key)
	}
	return s.Keys(s.Dependents(n.ID)), nil
}

// schedulable applies the cycle policy: refuse cyclic snapshots, or in
// best-effort mode swap in the cached condensation.
func (e *Engine) schedulable(ctx context.Context, s *graph.Snapshot) (*graph.Snapshot, map[string][]string, error) {
	err := e.cache.cycleErr(s)
	if err == nil {
		return s, nil, nil
	}
	if !e.bestEffort {
		return nil, nil, err
	}
	ctxlog.FromContext(ctx).Debug("schedulable: cyclic input, scheduling condensation.",
		"mutation_id", s.MutationID)
	return e.cache.condensation(ctx, s)
}

// expand maps a representative key back to its member keys. Outside
// best-effort mode groups is nil and every key stands for itself.
func expand(key string, groups map[string][]string) []string {
	if groups == nil {
		return []string{key}
	}
	if members, ok := groups[key]; ok {
		return members
	}
	return []string{key}
}
