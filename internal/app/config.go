package app

import (
	"errors"
	"fmt"
)

// Commands understood by the app layer.
const (
	CmdOrder        = "order"
	CmdBatches      = "batches"
	CmdValidate     = "validate"
	CmdCriticalPath = "critical-path"
	CmdReady        = "ready"
	CmdBlockers     = "blockers"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	TaskKey string // only for the blockers command

	PlanPath string // plan file or directory

	MaxParallel int  // batch width; 0 defers to the plan's scheduler block
	BestEffort  bool // schedule cyclic plans by collapsing cycles

	Output    string // 'text' or 'json'
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it, or an error describing the
// first problem found.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CmdOrder, CmdBatches, CmdValidate, CmdCriticalPath, CmdReady:
	case CmdBlockers:
		if cfg.TaskKey == "" {
			return nil, errors.New("the blockers command requires a task key argument")
		}
	case "":
		return nil, errors.New("a command is required")
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	if cfg.MaxParallel < 0 {
		return nil, errors.New("MaxParallel cannot be negative")
	}
	if cfg.Output != "text" && cfg.Output != "json" {
		return nil, fmt.Errorf("invalid output format %q: must be 'text' or 'json'", cfg.Output)
	}

	return &cfg, nil
}
