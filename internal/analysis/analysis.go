// Package analysis runs the per-method pipeline (walk, process, resolve) and
// schedules it over a batch of methods.
//
// Every failure inside one method's pipeline, including a panic, is turned
// into exactly one diagnostic on that method's Result. Nothing a single
// method does can stop the rest of the batch.
package analysis

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/processor"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/vk/genmaths/internal/steps"
	"github.com/vk/genmaths/internal/value"
	"github.com/vk/genmaths/internal/walker"
)

// Unit is one method handed over by a front-end, together with the oracle
// that types it and the target types of its compilation unit.
type Unit struct {
	Method *semantic.Method
	Oracle semantic.TypeOracle
	Types  []numeric.Type
}

// Result is the outcome of analyzing one method. A successful Result has
// Steps and no error diagnostics; a failed one has a single error diagnostic
// and no Steps.
type Result struct {
	Method      string
	Symbol      semantic.Symbol
	Range       hcl.Range
	Types       []numeric.Type
	Variables   []*value.Variable
	Steps       []steps.Step
	Diagnostics hcl.Diagnostics
}

// OK reports whether the method analyzed without errors.
func (r *Result) OK() bool { return !r.Diagnostics.HasErrors() }

// Err returns the classified error of a failed Result, or nil.
func (r *Result) Err() *diag.Error {
	for _, d := range r.Diagnostics {
		if d.Severity != hcl.DiagError {
			continue
		}
		if e, ok := diag.FromDiagnostic(d); ok {
			return e
		}
	}
	return nil
}

// Analyzer runs one method through the walker, its Pipeline and the step
// resolver.
type Analyzer struct {
	Pipeline processor.Pipeline
}

// New returns an Analyzer using p. A nil p means the default pipeline.
func New(p processor.Pipeline) *Analyzer {
	if p == nil {
		p = processor.DefaultPipeline()
	}
	return &Analyzer{Pipeline: p}
}

// Analyze runs the pipeline for m. It never panics and never returns a nil
// Result.
func (a *Analyzer) Analyze(ctx context.Context, m *semantic.Method, oracle semantic.TypeOracle) (res *Result) {
	ctx = ctxlog.With(ctx, "method", m.Name)
	logger := ctxlog.FromContext(ctx)

	res = &Result{Method: m.Name, Symbol: m.Symbol, Range: m.Range}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Analysis panicked.", "panic", r, "stack", string(debug.Stack()))
			res.Variables, res.Steps = nil, nil
			res.Diagnostics = hcl.Diagnostics{
				diag.ToDiagnostic(m.Name, m.Range, diag.Internal(m.Range, "analysis panicked: %v", r)),
			}
		}
	}()

	err := a.run(ctx, m, oracle, res)
	if err != nil {
		res.Variables, res.Steps = nil, nil
		d := diag.ToDiagnostic(m.Name, m.Range, err)
		res.Diagnostics = append(res.Diagnostics, d)
		if diag.KindOf(err) == diag.InternalFault {
			logger.Error("Method analysis hit an internal fault.", "error", err)
		} else {
			logger.Warn("Method skipped.", "error", err)
		}
		return res
	}
	logger.Debug("Method analyzed.", "variables", len(res.Variables), "steps", len(res.Steps))
	return res
}

func (a *Analyzer) run(ctx context.Context, m *semantic.Method, oracle semantic.TypeOracle, res *Result) error {
	logger := ctxlog.FromContext(ctx)

	vars, err := walker.Walk(m, oracle)
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	logger.Debug("Method walked.", "variables", len(vars))

	vars, err = a.Pipeline.Run(ctx, vars)
	if err != nil {
		return err
	}

	plan, err := steps.Resolve(vars)
	if err != nil {
		return fmt.Errorf("resolve steps: %w", err)
	}

	res.Variables = vars
	res.Steps = plan
	return nil
}
