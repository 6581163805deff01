// Package plan defines the format-agnostic representation of a scheduling
// plan: the task records plus the scheduler settings that accompany them.
//
// Concrete file formats (HCL, YAML) each provide a Loader that translates
// their syntax into this model, so everything downstream of loading is
// format-blind.
package plan

import (
	"context"

	"github.com/nk/planweave/internal/model"
	"github.com/nk/planweave/internal/score"
)

// SchedulerSettings carries the per-plan scheduling policy.
type SchedulerSettings struct {
	// MaxParallel bounds batch width; zero means the caller did not set it.
	MaxParallel int

	// BestEffort allows cyclic plans to be partially scheduled by collapsing
	// each cycle into a super-node.
	BestEffort bool

	// Weights overrides the default scoring policy when non-nil.
	Weights *score.Weights
}

// Plan is one complete, format-agnostic scheduling request.
type Plan struct {
	Tasks     []model.TaskRecord
	Scheduler SchedulerSettings
}

// Loader is the interface for a format-specific plan loader. Load reads every
// plan file reachable from the given paths and merges them into one Plan.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Plan, error)
}
