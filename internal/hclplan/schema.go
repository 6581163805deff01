package hclplan

import "github.com/hashicorp/hcl/v2"

// taskBlock mirrors a `task "KEY" { ... }` block from a plan file.
type taskBlock struct {
	Key           string   `hcl:"key,label"`
	Title         string   `hcl:"title,optional"`
	Class         int      `hcl:"class,optional"`
	Effort        float64  `hcl:"effort,optional"`
	Phase         int      `hcl:"phase,optional"`
	DependsOn     []string `hcl:"depends_on,optional"`
	RelatedTo     []string `hcl:"related_to,optional"`
	OptionalAfter []string `hcl:"optional_after,optional"`
}

// weightsBlock mirrors the `weights { ... }` block inside `scheduler`.
// Pointer fields distinguish "not set" from an explicit zero, so a plan can
// deliberately switch a signal off. PhaseTable stays an expression because
// its keys are phase numbers, which HCL only delivers as an object value.
type weightsBlock struct {
	Urgency      *float64       `hcl:"urgency,optional"`
	ValueDensity *float64       `hcl:"value_density,optional"`
	Unblock      *float64       `hcl:"unblock,optional"`
	CriticalPath *float64       `hcl:"critical_path,optional"`
	Phase        *float64       `hcl:"phase,optional"`
	PhaseTable   hcl.Expression `hcl:"phase_table,optional"`
}

// schedulerBlock mirrors the `scheduler { ... }` block.
type schedulerBlock struct {
	MaxParallel int           `hcl:"max_parallel,optional"`
	BestEffort  bool          `hcl:"best_effort,optional"`
	Weights     *weightsBlock `hcl:"weights,block"`
}

// planFile is the top-level structure of one plan file.
type planFile struct {
	Tasks     []*taskBlock    `hcl:"task,block"`
	Scheduler *schedulerBlock `hcl:"scheduler,block"`
}
