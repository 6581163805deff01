package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/engine"
	"github.com/nk/planweave/internal/hclplan"
	"github.com/nk/planweave/internal/plan"
	"github.com/nk/planweave/internal/yamlplan"
)

// defaultMaxParallel is used when neither the flags nor the plan's scheduler
// block set a batch width.
const defaultMaxParallel = 4

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger

	engine      *engine.Engine
	plan        *plan.Plan
	maxParallel int
}

// SelectLoader picks the plan loader for a path by extension. Files ending
// in .yaml or .yml get the YAML loader; everything else, including
// directories, gets the HCL loader.
func SelectLoader(path string) plan.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlplan.NewLoader()
	default:
		return hclplan.NewLoader()
	}
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded plan.
// Results go to outW; logs and diagnostics go to errW.
func NewApp(outW, errW io.Writer, appConfig *Config, loader plan.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	logger = logger.With("run_id", uuid.NewString())
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the plan into the format-agnostic model first.
	p, err := loader.Load(ctx, appConfig.PlanPath)
	if err != nil {
		// A failure to load the plan is a fatal startup error.
		panic(fmt.Errorf("failed to load plan: %w", err))
	}
	logger.Debug("Plan loaded and translated into unified model.", "tasks", len(p.Tasks))

	// Flags override the plan's scheduler block where they are set.
	var opts []engine.Option
	if p.Scheduler.Weights != nil {
		opts = append(opts, engine.WithWeights(*p.Scheduler.Weights))
	}
	if appConfig.BestEffort || p.Scheduler.BestEffort {
		opts = append(opts, engine.WithBestEffort())
	}

	maxParallel := appConfig.MaxParallel
	if maxParallel == 0 {
		maxParallel = p.Scheduler.MaxParallel
	}
	if maxParallel == 0 {
		maxParallel = defaultMaxParallel
	}
	logger.Debug("Scheduling policy resolved.", "max_parallel", maxParallel)

	return &App{
		outW:        outW,
		logger:      logger,
		engine:      engine.New(opts...),
		plan:        p,
		maxParallel: maxParallel,
	}
}

// Plan returns the loaded plan. This is primarily for testing.
func (a *App) Plan() *plan.Plan {
	return a.plan
}
