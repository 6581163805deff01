package engine

import (
	"context"
	"sync"

	"github.com/nk/planweave/internal/critpath"
	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/score"
)

// analysis bundles the derived artifacts of one snapshot: the critical path
// map and the score table computed against it.
type analysis struct {
	cp     critpath.Map
	scores []float64
}

// cacheEntry holds everything derived from one mutation's snapshot. Fields
// are filled lazily under the cache mutex and never patched afterwards.
type cacheEntry struct {
	cycleDone bool
	cycle     error

	src     *analysis
	srcErr  error
	srcDone bool

	cond       *graph.Snapshot
	condGroups map[string][]string
	condErr    error
	condDone   bool

	condAnalysis     *analysis
	condAnalysisErr  error
	condAnalysisDone bool
}

// resolutionCache memoizes derived structures keyed by mutation ID. A new
// submission discards the whole cache rather than patching entries, so stale
// artifacts can never outlive the snapshot they were computed against.
type resolutionCache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{entries: make(map[uint64]*cacheEntry)}
}

// reset invalidates everything and seeds an empty entry for the new mutation.
func (c *resolutionCache) reset(mutationID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uint64]*cacheEntry{mutationID: {}}
}

func (c *resolutionCache) entry(mutationID uint64) *cacheEntry {
	if e, ok := c.entries[mutationID]; ok {
		return e
	}
	e := &cacheEntry{}
	c.entries[mutationID] = e
	return e
}

// cycleErr returns the memoized validation verdict for the snapshot.
func (c *resolutionCache) cycleErr(s *graph.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(s.MutationID)
	if !e.cycleDone {
		e.cycle = s.Validate()
		e.cycleDone = true
	}
	return e.cycle
}

// analysis returns the memoized critical path map and score table of a
// snapshot produced by Submit.
func (c *resolutionCache) analysis(ctx context.Context, s *graph.Snapshot, w score.Weights) (*analysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(s.MutationID)
	if !e.srcDone {
		e.src, e.srcErr = computeAnalysis(ctx, s, w)
		e.srcDone = true
	}
	return e.src, e.srcErr
}

// analysisFor dispatches between the source snapshot and its condensation,
// which share a mutation ID on purpose: the condensation is a derived view.
func (c *resolutionCache) analysisFor(ctx context.Context, target *graph.Snapshot, w score.Weights) (*analysis, error) {
	c.mu.Lock()
	e := c.entry(target.MutationID)
	isCond := e.cond == target
	c.mu.Unlock()

	if !isCond {
		return c.analysis(ctx, target, w)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !e.condAnalysisDone {
		e.condAnalysis, e.condAnalysisErr = computeAnalysis(ctx, target, w)
		e.condAnalysisDone = true
	}
	return e.condAnalysis, e.condAnalysisErr
}

// condensation returns the memoized collapsed view of a cyclic snapshot.
func (c *resolutionCache) condensation(ctx context.Context, s *graph.Snapshot) (*graph.Snapshot, map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(s.MutationID)
	if !e.condDone {
		e.cond, e.condGroups, e.condErr = graph.Condense(ctx, s)
		e.condDone = true
	}
	return e.cond, e.condGroups, e.condErr
}

func computeAnalysis(ctx context.Context, s *graph.Snapshot, w score.Weights) (*analysis, error) {
	cp, err := critpath.Compute(ctx, s)
	if err != nil {
		return nil, err
	}
	return &analysis{cp: cp, scores: score.ComputeAll(s, cp, w)}, nil
}
