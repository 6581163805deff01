package sched

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/critpath"
	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/model"
	"github.com/nk/planweave/internal/score"
)

func fixture(t *testing.T, records []model.TaskRecord) (*graph.Snapshot, []float64) {
	t.Helper()
	ctx := context.Background()
	s, err := graph.Build(ctx, records, 1)
	require.NoError(t, err)
	cp, err := critpath.Compute(ctx, s)
	require.NoError(t, err)
	return s, score.ComputeAll(s, cp, score.DefaultWeights())
}

func dep(key string) model.Dependency { return model.Dependency{Key: key, Kind: model.Blocking} }

func TestExecutionOrder_Totality(t *testing.T) {
	s, scores := fixture(t, []model.TaskRecord{
		{Key: "A", Effort: 10},
		{Key: "B", Effort: 5},
		{Key: "C", Effort: 3, DependsOn: []model.Dependency{dep("A"), dep("B")}},
		{Key: "D", DependsOn: []model.Dependency{dep("C")}},
	})

	order, err := ExecutionOrder(context.Background(), s, scores)
	require.NoError(t, err)
	require.Len(t, order, s.Len())

	seen := make(map[graph.NodeID]int)
	for pos, id := range order {
		_, dupe := seen[id]
		require.False(t, dupe, "node emitted twice")
		seen[id] = pos
	}

	// Every dependency precedes its dependent.
	for _, n := range s.Nodes() {
		for _, d := range s.Deps(n.ID) {
			assert.Less(t, seen[d], seen[n.ID],
				"%s must run before %s", s.Node(d).Key, n.Key)
		}
	}
}

func TestExecutionOrder_LexicographicTieBreakFromWorkedExample(t *testing.T) {
	// Two identical ready tasks: the symbolic key decides.
	s, scores := fixture(t, []model.TaskRecord{
		{Key: "p2", PriorityClass: 2, Effort: 1},
		{Key: "p1", PriorityClass: 2, Effort: 1},
	})

	order, err := ExecutionOrder(context.Background(), s, scores)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, s.Keys(order))
}

func TestExecutionOrder_Deterministic(t *testing.T) {
	records := []model.TaskRecord{
		{Key: "w", PriorityClass: 4, Effort: 2},
		{Key: "x", PriorityClass: 1, Effort: 6, DependsOn: []model.Dependency{dep("w")}},
		{Key: "y", PriorityClass: 2, Effort: 1, DependsOn: []model.Dependency{dep("w")}},
		{Key: "z", PriorityClass: 2, Effort: 1},
	}
	s, scores := fixture(t, records)

	first, err := ExecutionOrder(context.Background(), s, scores)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ExecutionOrder(context.Background(), s, scores)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExecutionOrder_PrefersHigherScore(t *testing.T) {
	s, scores := fixture(t, []model.TaskRecord{
		{Key: "urgent", PriorityClass: 1, Effort: 1},
		{Key: "idle", PriorityClass: 5, Effort: 1},
	})

	order, err := ExecutionOrder(context.Background(), s, scores)
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent", "idle"}, s.Keys(order))
}

func TestExecutionOrder_SelfLoopSurfacesDeadlock(t *testing.T) {
	// A self-referencing node slips past a caller that skipped validation;
	// the scheduler must refuse loudly rather than drop the node.
	ctx := context.Background()
	s, err := graph.Build(ctx, []model.TaskRecord{
		{Key: "a"},
		{Key: "loop", DependsOn: []model.Dependency{dep("loop"), dep("a")}},
	}, 1)
	require.NoError(t, err)
	scores := make([]float64, s.Len())

	_, err = ExecutionOrder(ctx, s, scores)
	require.Error(t, err)

	var deadlock *DeadlockError
	require.True(t, errors.As(err, &deadlock))
	assert.Equal(t, []string{"loop"}, s.Keys(deadlock.Remaining))
}

func TestExecutionOrder_EmptySnapshot(t *testing.T) {
	s, scores := fixture(t, nil)
	order, err := ExecutionOrder(context.Background(), s, scores)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestReadyTasks_ScoreOrdered(t *testing.T) {
	s, scores := fixture(t, []model.TaskRecord{
		{Key: "low", PriorityClass: 5},
		{Key: "high", PriorityClass: 1},
		{Key: "blocked", PriorityClass: 1, DependsOn: []model.Dependency{dep("high")}},
	})

	ready := ReadyTasks(s, scores)
	assert.Equal(t, []string{"high", "low"}, s.Keys(ready))
}
