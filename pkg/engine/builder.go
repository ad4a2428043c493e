package engine

import (
	"fmt"

	"github.com/chazu/voxmap/pkg/pipeline"
)

// planBuilder accumulates the plan while a script runs. Builtins write to
// it; finish hands out the completed plan.
type planBuilder struct {
	plan        pipeline.Plan
	hasSource   bool
	hasTransfer bool
	warnings    []EvalWarning
}

func newPlanBuilder() *planBuilder {
	return &planBuilder{}
}

func (b *planBuilder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, EvalWarning{Message: fmt.Sprintf(format, args...)})
}

// setSource records the volume source. A later declaration replaces an
// earlier one.
func (b *planBuilder) setSource(src pipeline.Source) {
	if b.hasSource {
		b.warn("volume declared more than once; the last declaration wins")
	}
	b.plan.Source = src
	b.hasSource = true
}

func (b *planBuilder) setTransfer(t pipeline.TransferSpec) {
	if b.hasTransfer {
		b.warn("transfer declared more than once; the last declaration wins")
	}
	b.plan.Transfer = t
	b.hasTransfer = true
}

// addStep appends a step and returns its index.
func (b *planBuilder) addStep(s pipeline.Step) int {
	b.plan.Steps = append(b.plan.Steps, s)
	return len(b.plan.Steps) - 1
}

// finish validates the accumulated plan. Steps without a volume are an
// error; a volume without steps only warns.
func (b *planBuilder) finish() (*pipeline.Plan, []EvalError) {
	if len(b.plan.Steps) > 0 && !b.hasSource {
		return nil, []EvalError{{Message: "no volume declared: add (volume ...) or (raw ...) before mapping steps"}}
	}
	if b.hasSource && len(b.plan.Steps) == 0 {
		b.warn("volume declared but no mapping steps; nothing will be produced")
	}
	names := make(map[string]bool, len(b.plan.Steps))
	for _, s := range b.plan.Steps {
		if s.Name == "" {
			continue
		}
		if names[s.Name] {
			return nil, []EvalError{{Message: fmt.Sprintf("duplicate step name %q", s.Name)}}
		}
		names[s.Name] = true
	}
	plan := b.plan
	plan.Steps = append([]pipeline.Step(nil), b.plan.Steps...)
	return &plan, nil
}
