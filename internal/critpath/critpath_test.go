package critpath

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/model"
)

func build(t *testing.T, records []model.TaskRecord) *graph.Snapshot {
	t.Helper()
	s, err := graph.Build(context.Background(), records, 1)
	require.NoError(t, err)
	return s
}

func dep(key string) model.Dependency { return model.Dependency{Key: key, Kind: model.Blocking} }

func TestCompute_DiamondFromWorkedExample(t *testing.T) {
	s := build(t, []model.TaskRecord{
		{Key: "A", Effort: 10},
		{Key: "B", Effort: 5},
		{Key: "C", Effort: 3, DependsOn: []model.Dependency{dep("A"), dep("B")}},
	})

	m, err := Compute(context.Background(), s)
	require.NoError(t, err)

	a, _ := s.NodeByKey("A")
	b, _ := s.NodeByKey("B")
	c, _ := s.NodeByKey("C")
	assert.Equal(t, 10.0, m.Depth(a.ID))
	assert.Equal(t, 5.0, m.Depth(b.ID))
	assert.Equal(t, 13.0, m.Depth(c.ID))
	assert.Equal(t, 13.0, m.Longest())
}

func TestCompute_Monotonicity(t *testing.T) {
	s := build(t, []model.TaskRecord{
		{Key: "a", Effort: 2},
		{Key: "b", Effort: 7, DependsOn: []model.Dependency{dep("a")}},
		{Key: "c", Effort: 1.5, DependsOn: []model.Dependency{dep("a")}},
		{Key: "d", Effort: 4, DependsOn: []model.Dependency{dep("b"), dep("c")}},
		{Key: "e", DependsOn: []model.Dependency{dep("d")}},
	})

	m, err := Compute(context.Background(), s)
	require.NoError(t, err)

	// For every blocking edge u -> v: depth(u) >= depth(v) + weight(u).
	for _, n := range s.Nodes() {
		for _, v := range s.Deps(n.ID) {
			assert.GreaterOrEqual(t, m.Depth(n.ID), m.Depth(v)+n.Weight(),
				"edge %s -> %s violates monotonicity", n.Key, s.Node(v).Key)
		}
		assert.GreaterOrEqual(t, m.Depth(n.ID), n.Weight())
	}
}

func TestCompute_MissingEffortCountsAsOne(t *testing.T) {
	s := build(t, []model.TaskRecord{
		{Key: "lead"},
		{Key: "tail", DependsOn: []model.Dependency{dep("lead")}},
	})

	m, err := Compute(context.Background(), s)
	require.NoError(t, err)
	tail, _ := s.NodeByKey("tail")
	assert.Equal(t, 2.0, m.Depth(tail.ID))
}

func TestCompute_CyclicSnapshotRefused(t *testing.T) {
	s := build(t, []model.TaskRecord{
		{Key: "x", DependsOn: []model.Dependency{dep("y")}},
		{Key: "y", DependsOn: []model.Dependency{dep("x")}},
	})

	_, err := Compute(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycleFound))
}

func TestCompute_EmptySnapshot(t *testing.T) {
	s := build(t, nil)
	m, err := Compute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Longest())
}
