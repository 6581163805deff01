package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/model"
)

func TestDetectCycle_AcyclicReturnsNil(t *testing.T) {
	s, err := Build(context.Background(), []model.TaskRecord{
		rec("a", 1, 1),
		rec("b", 1, 1, "a"),
		rec("c", 1, 1, "a", "b"),
	}, 1)
	require.NoError(t, err)
	assert.Nil(t, s.DetectCycle())
	assert.NoError(t, s.Validate())
}

func TestDetectCycle_TwoNodeCycle(t *testing.T) {
	s, err := Build(context.Background(), []model.TaskRecord{
		rec("x", 1, 1, "y"),
		rec("y", 1, 1, "x"),
	}, 1)
	require.NoError(t, err)

	err = s.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycleFound))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"x", "y", "x"}, cycleErr.Path)
}

func TestDetectCycle_PathIsClosedWalkOfRealEdges(t *testing.T) {
	s, err := Build(context.Background(), []model.TaskRecord{
		rec("root", 1, 1),
		rec("p", 1, 1, "root", "q"),
		rec("q", 1, 1, "r"),
		rec("r", 1, 1, "p"),
	}, 1)
	require.NoError(t, err)

	walk := s.DetectCycle()
	require.NotNil(t, walk)
	require.GreaterOrEqual(t, len(walk), 3)
	assert.Equal(t, walk[0], walk[len(walk)-1], "walk must be closed")

	for i := 0; i+1 < len(walk); i++ {
		assert.Contains(t, s.Deps(walk[i]), walk[i+1],
			"every consecutive pair must be a blocking edge in the snapshot")
	}
}

func TestDetectCycle_SelfLoop(t *testing.T) {
	s, err := Build(context.Background(), []model.TaskRecord{
		rec("solo", 1, 1, "solo"),
	}, 1)
	require.NoError(t, err)

	walk := s.DetectCycle()
	require.Len(t, walk, 2)
	assert.Equal(t, walk[0], walk[1])
}

func TestDetectCycle_RelatedCyclesAreLegal(t *testing.T) {
	records := []model.TaskRecord{
		{Key: "m", DependsOn: []model.Dependency{{Key: "n", Kind: model.Related}}},
		{Key: "n", DependsOn: []model.Dependency{{Key: "m", Kind: model.Related}}},
	}
	s, err := Build(context.Background(), records, 1)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(), "related edges may form cycles")
}

func TestDetectCycle_DeepChainDoesNotRecurse(t *testing.T) {
	// A chain long enough to break a recursive DFS if one sneaked back in.
	const depth = 200_000
	records := make([]model.TaskRecord, depth)
	for i := 0; i < depth; i++ {
		key := keyFor(i)
		r := model.TaskRecord{Key: key}
		if i > 0 {
			r.DependsOn = []model.Dependency{{Key: keyFor(i - 1), Kind: model.Blocking}}
		}
		records[i] = r
	}
	s, err := Build(context.Background(), records, 1)
	require.NoError(t, err)
	assert.Nil(t, s.DetectCycle())
}

func keyFor(i int) string {
	// Fixed-width keys keep canonical order aligned with chain order.
	const digits = "0123456789"
	buf := [6]byte{}
	for p := len(buf) - 1; p >= 0; p-- {
		buf[p] = digits[i%10]
		i /= 10
	}
	return string(buf[:])
}

func TestStronglyConnectedComponents(t *testing.T) {
	s, err := Build(context.Background(), []model.TaskRecord{
		rec("a", 1, 1, "b"),
		rec("b", 1, 1, "a"),
		rec("c", 1, 1, "a"),
		rec("d", 1, 1, "d"),
		rec("e", 1, 1),
	}, 1)
	require.NoError(t, err)

	comps := s.StronglyConnectedComponents()
	require.Len(t, comps, 2, "plain nodes are not reported as components")

	var got [][]string
	for _, comp := range comps {
		got = append(got, s.Keys(comp))
	}
	assert.Equal(t, [][]string{{"a", "b"}, {"d"}}, got)
}

func TestCondense_CollapsesCycleIntoSuperNode(t *testing.T) {
	ctx := context.Background()
	s, err := Build(ctx, []model.TaskRecord{
		rec("up", 2, 2),
		rec("x", 3, 1, "y", "up"),
		rec("y", 1, 4, "x"),
		rec("down", 4, 1, "x"),
	}, 7)
	require.NoError(t, err)

	condensed, groups, err := Condense(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 3, condensed.Len())
	assert.Equal(t, uint64(7), condensed.MutationID, "condensation is a derived view")
	assert.NoError(t, condensed.Validate(), "condensation must be acyclic")

	super, ok := condensed.NodeByKey("x")
	require.True(t, ok, "smallest member key represents the component")
	assert.Equal(t, 1, super.Class, "most urgent member class wins")
	assert.Equal(t, 5.0, super.Weight(), "member weights are summed")
	assert.Equal(t, []string{"x", "y"}, groups["x"])
	assert.Equal(t, []string{"down"}, groups["down"])

	// External edges are rewired to the representative.
	up, _ := condensed.NodeByKey("up")
	assert.Equal(t, []NodeID{super.ID}, condensed.Dependents(up.ID))
	down, _ := condensed.NodeByKey("down")
	assert.Equal(t, []NodeID{super.ID}, condensed.Deps(down.ID))
}
