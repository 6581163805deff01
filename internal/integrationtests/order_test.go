package integration_tests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/app"
	"github.com/nk/planweave/internal/testutil"
)

func TestOrder_DependentsFollowTheirBlockers(t *testing.T) {
	planHCL := `
		task "codec" {
			effort = 2
		}

		task "parser" {
			effort = 3
		}

		task "wire" {
			depends_on = ["codec", "parser"]
		}
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdOrder})

	require.NoError(t, result.Err)
	assert.Equal(t, "codec\nparser\nwire\n", result.Stdout)
}

func TestOrder_HigherPriorityClassGoesFirst(t *testing.T) {
	planHCL := `
		task "zz-hotfix" { class = 1 }
		task "aa-chore"  { class = 5 }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdOrder})

	require.NoError(t, result.Err)
	assert.Equal(t, "zz-hotfix\naa-chore\n", result.Stdout,
		"class 1 outscores class 5 even against lexicographic order")
}

func TestOrder_JSONOutput(t *testing.T) {
	planHCL := `
		task "a" {}
		task "b" { depends_on = ["a"] }
	`
	files := map[string]string{"main.hcl": planHCL}

	result := testutil.RunPlanTest(t, files, app.Config{Command: app.CmdOrder, Output: "json"})

	require.NoError(t, result.Err)

	var payload struct {
		MutationID uint64   `json:"mutation_id"`
		Order      []string `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &payload))
	assert.Equal(t, []string{"a", "b"}, payload.Order)
	assert.NotZero(t, payload.MutationID)
}
