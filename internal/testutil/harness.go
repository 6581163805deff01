// Package testutil provides the shared harness for integration tests: it
// materializes in-memory plan files into a temporary directory, runs the app
// against them, and captures output and logs.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nk/planweave/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Stdout    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunPlanTest provides a standardized harness for integration tests. It
// writes the given files into a temporary directory, points the app at them,
// and runs the requested command. The PlanPath field of appConfig is filled
// in by the harness; when exactly one file is given the path targets that
// file directly, so its extension picks the loader.
func RunPlanTest(t *testing.T, files map[string]string, appConfig app.Config) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	single := ""
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
		single = filePath
	}

	if len(files) == 1 {
		appConfig.PlanPath = single
	} else {
		appConfig.PlanPath = tmpDir
	}
	if appConfig.Output == "" {
		appConfig.Output = "text"
	}
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"

	cfg, err := app.NewConfig(appConfig)
	require.NoError(t, err)

	outBuffer := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(outBuffer, logBuffer, cfg, app.SelectLoader(cfg.PlanPath))
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background(), cfg)

	if os.Getenv("PLANWEAVE_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Stdout:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
