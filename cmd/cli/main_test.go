package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An HCL syntax error is guaranteed to cause a panic during the loading
	// phase inside app.NewApp().
	invalidHCL := `
		task "a" {
			depends_on = [
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"validate", "--plan", filePath}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	runErr := run(out, errOut, args)

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to load plan"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	err := run(out, errOut, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"order", "--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	err := run(out, errOut, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ValidPlan(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	planHCL := `
task "a" {}
task "b" { depends_on = ["a"] }
`
	require.NoError(t, os.WriteFile(filePath, []byte(planHCL), 0600))

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	err := run(out, errOut, []string{"order", "--plan", filePath})

	require.NoError(t, err)
	require.Equal(t, "a\nb\n", out.String())
}
