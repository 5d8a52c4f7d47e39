// Package processor holds the passes that rewrite a method's value graph
// between the walk and step resolution.
//
// A pass receives every Variable of one method body and returns the same
// Variables, with their definitions possibly replaced. Passes never modify a
// Value in place: a rewritten subtree is a new node, and an unchanged subtree
// keeps its identity.
package processor

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/value"
)

// Processor is one pass over a method's Variables.
type Processor interface {
	Name() string
	Process(vars []*value.Variable) ([]*value.Variable, error)
}

// Pipeline is an ordered list of processors applied one after another.
type Pipeline []Processor

// DefaultPipeline returns the passes every method goes through: constant
// folding, then variable inlining.
func DefaultPipeline() Pipeline {
	return Pipeline{ConstantFolder{}, VariableInliner{}}
}

// WithRefold returns a copy of p with a trailing constant folding pass, so
// constants that only meet after inlining are folded as well.
func (p Pipeline) WithRefold() Pipeline {
	return append(slices.Clone(p), ConstantFolder{})
}

// Names lists the processor names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, proc := range p {
		names[i] = proc.Name()
	}
	return names
}

// Run applies every processor in order. The step invariant is checked after
// each pass; a violation is an InternalFault naming the pass.
func (p Pipeline) Run(ctx context.Context, vars []*value.Variable) ([]*value.Variable, error) {
	logger := ctxlog.FromContext(ctx)

	for _, proc := range p {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := proc.Process(vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", proc.Name(), err)
		}
		if err := CheckSteps(out); err != nil {
			return nil, fmt.Errorf("after %s: %w", proc.Name(), err)
		}
		if len(out) != len(vars) {
			return nil, diag.Internal(rangeOf(vars), "%s returned %d variables for %d", proc.Name(), len(out), len(vars))
		}

		logger.Debug("Processor finished.", "processor", proc.Name(), "variables", len(out))
		vars = out
	}
	return vars, nil
}

// CheckSteps verifies that no child in any Variable's graph has a step
// greater than its parent's. Each distinct node is checked once.
func CheckSteps(vars []*value.Variable) error {
	for _, v := range vars {
		var bad error
		value.WalkOnce(v.Value, func(n value.Value) bool {
			if bad != nil {
				return false
			}
			for _, c := range n.Children() {
				if c == nil {
					bad = diag.Internal(v.Range, "%s: nil operand in %s", v.Name, n)
					return false
				}
				if c.Step() > n.Step() {
					bad = diag.Internal(v.Range, "%s: step of %s (%d) exceeds step of parent %s (%d)",
						v.Name, c, c.Step(), n, n.Step())
					return false
				}
			}
			return true
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}

func rangeOf(vars []*value.Variable) hcl.Range {
	if len(vars) > 0 {
		return vars[0].Range
	}
	return hcl.Range{}
}
