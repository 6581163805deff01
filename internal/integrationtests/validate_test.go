package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/app"
	"github.com/nk/planweave/internal/graph"
	"github.com/nk/planweave/internal/testutil"
)

func TestValidate_CleanPlan(t *testing.T) {
	planHCL := `
		task "a" {}
		task "b" { depends_on = ["a"] }
		task "c" { related_to = ["b"] }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdValidate})

	require.NoError(t, result.Err)
	assert.Equal(t, "plan is valid: 3 tasks, 1 blocking edges\n", result.Stdout)
}

func TestValidate_ReportsAllDefectsAtOnce(t *testing.T) {
	planHCL := `
		task "x" {}
		task "x" {}
		task "y" { depends_on = ["missing"] }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdValidate})

	require.Error(t, result.Err)
	var buildErr *graph.BuildError
	require.True(t, errors.As(result.Err, &buildErr))
	assert.Contains(t, result.Err.Error(), "duplicate keys: x")
	assert.Contains(t, result.Err.Error(), `y references unknown task "missing"`)
}

func TestValidate_CyclicPlanNamesTheCycle(t *testing.T) {
	planHCL := `
		task "x" { depends_on = ["y"] }
		task "y" { depends_on = ["x"] }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdValidate})

	require.Error(t, result.Err)
	var cycleErr *graph.CycleError
	require.True(t, errors.As(result.Err, &cycleErr))
	assert.Equal(t, []string{"x", "y", "x"}, cycleErr.Path)
}

func TestValidate_RelatedCycleIsLegal(t *testing.T) {
	planHCL := `
		task "x" { related_to = ["y"] }
		task "y" { optional_after = ["x"] }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdValidate})

	require.NoError(t, result.Err, "only blocking edges participate in cycle detection")
}
