package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/nk/planweave/internal/ctxlog"
	"github.com/nk/planweave/internal/model"
)

// Run executes the requested command against the loaded plan and writes the
// rendered result to the app's output writer.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", appConfig.Command)

	s, err := a.engine.Submit(ctx, a.plan.Tasks)
	if err != nil {
		return fmt.Errorf("failed to resolve plan: %w", err)
	}
	a.logger.Debug("Snapshot built.", "mutation_id", s.MutationID, "nodes", s.Len())

	switch appConfig.Command {
	case CmdValidate:
		if err := a.engine.Validate(s); err != nil {
			return err
		}
		blocking := 0
		for _, e := range s.Edges() {
			if e.Kind == model.Blocking {
				blocking++
			}
		}
		return a.render(appConfig, &validateResult{Valid: true, Tasks: s.Len(), BlockingEdges: blocking})

	case CmdOrder:
		order, err := a.engine.ExecutionOrder(ctx, s)
		if err != nil {
			return err
		}
		return a.render(appConfig, &orderResult{MutationID: s.MutationID, Order: order})

	case CmdBatches:
		batches, err := a.engine.ParallelBatches(ctx, s, a.maxParallel)
		if err != nil {
			return err
		}
		return a.render(appConfig, &batchesResult{MaxParallel: a.maxParallel, Batches: batches})

	case CmdCriticalPath:
		cp, err := a.engine.CriticalPath(ctx, s)
		if err != nil {
			return err
		}
		depths := make([]taskDepth, 0, s.Len())
		for _, n := range s.Nodes() {
			depths = append(depths, taskDepth{Key: n.Key, Depth: cp.Depth(n.ID)})
		}
		sort.Slice(depths, func(i, j int) bool {
			if depths[i].Depth != depths[j].Depth {
				return depths[i].Depth > depths[j].Depth
			}
			return depths[i].Key < depths[j].Key
		})
		return a.render(appConfig, &criticalPathResult{Length: cp.Longest(), Depths: depths})

	case CmdReady:
		ready, err := a.engine.ReadyTasks(ctx, s)
		if err != nil {
			return err
		}
		return a.render(appConfig, &readyResult{Ready: ready})

	case CmdBlockers:
		blockers, err := a.engine.BlockingTasks(s, appConfig.TaskKey)
		if err != nil {
			return err
		}
		return a.render(appConfig, &blockersResult{Key: appConfig.TaskKey, Blockers: blockers})
	}

	return fmt.Errorf("unknown command %q", appConfig.Command)
}
