// Package hclplan loads scheduling plans written in HCL, the primary plan
// format. Task blocks become task records; an optional scheduler block
// carries the scoring weights and batch policy.
package hclplan

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/fsutil"
	"github.com/nk/planweave/internal/model"
	"github.com/nk/planweave/internal/plan"
	"github.com/nk/planweave/internal/score"
)

// Loader is the HCL implementation of plan.Loader.
type Loader struct{}

// NewLoader creates a new HCL plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load finds every .hcl file reachable from the given paths, parses it, and
// merges the results into a single plan. Task blocks accumulate across files;
// when more than one scheduler block appears the last one wins.
func (l *Loader) Load(ctx context.Context, paths ...string) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()
	out := &plan.Plan{}
	schedulerSeen := false

	for _, root := range paths {
		files, err := fsutil.FindFilesByExtensions(root, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find plan files in %s: %w", root, err)
		}
		for _, path := range files {
			logger.Debug("Loading plan file.", "path", path)
			parsed, err := l.loadFile(path, parser)
			if err != nil {
				return nil, err
			}
			for _, t := range parsed.Tasks {
				out.Tasks = append(out.Tasks, translateTask(t))
			}
			if parsed.Scheduler != nil {
				if schedulerSeen {
					logger.Warn("Multiple scheduler blocks found, the last one wins.", "path", path)
				}
				schedulerSeen = true
				settings, err := translateScheduler(parsed.Scheduler)
				if err != nil {
					return nil, fmt.Errorf("invalid scheduler block in %s: %w", path, err)
				}
				out.Scheduler = settings
			}
		}
	}

	logger.Debug("Plan loading complete.", "tasks", len(out.Tasks))
	return out, nil
}

func (l *Loader) loadFile(path string, parser *hclparse.Parser) (*planFile, error) {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, diags)
	}
	var parsed planFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, diags)
	}
	return &parsed, nil
}

func translateTask(t *taskBlock) model.TaskRecord {
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

func translateScheduler(s *schedulerBlock) (plan.SchedulerSettings, error) {
	settings := plan.SchedulerSettings{
		MaxParallel: s.MaxParallel,
		BestEffort:  s.BestEffort,
	}
	if s.Weights == nil {
		return settings, nil
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

	if s.Weights.PhaseTable != nil {
		table, err := decodePhaseTable(s.Weights.PhaseTable)
		if err != nil {
			return settings, err
		}
		if table != nil {
			w.PhaseTable = table
		}
	}

	settings.Weights = &w
	return settings, nil
}

// decodePhaseTable evaluates a phase_table expression into phase -> bonus.
// HCL delivers `{ 1 = 2.0 }` as an object with string keys, so keys are
// parsed back into phase numbers here.
func decodePhaseTable(expr hcl.Expression) (map[int]float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating phase_table: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("phase_table must be a mapping, got %s", val.Type().FriendlyName())
	}

	table := make(map[int]float64)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		phase, err := strconv.Atoi(k.AsString())
		if err != nil {
			return nil, fmt.Errorf("phase_table key %q is not a phase number", k.AsString())
		}
		if v.Type() != cty.Number {
			return nil, fmt.Errorf("phase_table value for phase %d must be a number", phase)
		}
		f, _ := v.AsBigFloat().Float64()
		table[phase] = f
	}
	return table, nil
}
