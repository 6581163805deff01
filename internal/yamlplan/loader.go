// Package yamlplan loads scheduling plans written in YAML. It mirrors the
// HCL plan schema field for field, so equivalent inputs in either format
// produce identical plans.
package yamlplan

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/fsutil"
	"github.com/nk/planweave/internal/model"
	"github.com/nk/planweave/internal/plan"
	"github.com/nk/planweave/internal/score"
)

// yamlTask mirrors one entry of the tasks list.
type yamlTask struct {
	Key           string   `yaml:"key"`
	Title         string   `yaml:"title"`
	Class         int      `yaml:"class"`
	Effort        float64  `yaml:"effort"`
	Phase         int      `yaml:"phase"`
	DependsOn     []string `yaml:"depends_on"`
	RelatedTo     []string `yaml:"related_to"`
	OptionalAfter []string `yaml:"optional_after"`
}

type yamlWeights struct {
	Urgency      *float64        `yaml:"urgency"`
	ValueDensity *float64        `yaml:"value_density"`
	Unblock      *float64        `yaml:"unblock"`
	CriticalPath *float64        `yaml:"critical_path"`
	Phase        *float64        `yaml:"phase"`
	PhaseTable   map[int]float64 `yaml:"phase_table"`
}

type yamlScheduler struct {
	MaxParallel int          `yaml:"max_parallel"`
	BestEffort  bool         `yaml:"best_effort"`
	Weights     *yamlWeights `yaml:"weights"`
}

type yamlPlan struct {
	Tasks     []yamlTask     `yaml:"tasks"`
	Scheduler *yamlScheduler `yaml:"scheduler"`
}

// Loader is the YAML implementation of plan.Loader.
type Loader struct{}

// NewLoader creates a new YAML plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load finds every .yaml/.yml file reachable from the given paths and merges
// the parsed documents into one plan. Task lists accumulate across files;
// when more than one document carries a scheduler section the last one wins.
func (l *Loader) Load(ctx context.Context, paths ...string) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	out := &plan.Plan{}
	schedulerSeen := false

	for _, root := range paths {
		files, err := fsutil.FindFilesByExtensions(root, ".yaml", ".yml")
		if err != nil {
			return nil, fmt.Errorf("failed to find plan files in %s: %w", root, err)
		}
		for _, path := range files {
			logger.Debug("Loading plan file.", "path", path)
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
			}
			var parsed yamlPlan
			if err := yaml.Unmarshal(raw, &parsed); err != nil {
				return nil, fmt.Errorf("failed to decode plan file %s: %w", path, err)
			}
			for _, t := range parsed.Tasks {
				out.Tasks = append(out.Tasks, translateTask(t))
			}
			if parsed.Scheduler != nil {
				if schedulerSeen {
					logger.Warn("Multiple scheduler sections found, the last one wins.", "path", path)
				}
				schedulerSeen = true
				out.Scheduler = translateScheduler(parsed.Scheduler)
			}
		}
	}

	logger.Debug("Plan loading complete.", "tasks", len(out.Tasks))
	return out, nil
}

func translateTask(t yamlTask) model.TaskRecord {
	rec := model.TaskRecord{
		Key:           t.Key,
		Title:         t.Title,
		PriorityClass: t.Class,
		Effort:        t.Effort,
		Phase:         t.Phase,
	}
	for _, key := range t.DependsOn {
		rec.DependsOn = append(rec.DependsOn, model.Dependency{Key: key, Kind: model.Blocking})
	}
	for _, key := range t.RelatedTo {
		rec.DependsOn = append(rec.DependsOn, model.Dependency{Key: key, Kind: model.Related})
	}
	for _, key := range t.OptionalAfter {
		rec.DependsOn = append(rec.DependsOn, model.Dependency{Key: key, Kind: model.Optional})
	}
	return rec
}

func translateScheduler(s *yamlScheduler) plan.SchedulerSettings {
	settings := plan.SchedulerSettings{
		MaxParallel: s.MaxParallel,
		BestEffort:  s.BestEffort,
	}
	if s.Weights == nil {
		return settings
	}

	w := score.DefaultWeights()
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&w.Urgency, s.Weights.Urgency)
	apply(&w.ValueDensity, s.Weights.ValueDensity)
	apply(&w.UnblockCount, s.Weights.Unblock)
	apply(&w.CriticalPath, s.Weights.CriticalPath)
	apply(&w.PhaseBonus, s.Weights.Phase)
	if len(s.Weights.PhaseTable) > 0 {
		w.PhaseTable = s.Weights.PhaseTable
	}

	settings.Weights = &w
	return settings
}
