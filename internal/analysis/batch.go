package analysis

import (
	"context"
	"runtime"

	"github.com/vk/genmaths/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Batch analyzes many methods. Methods run concurrently on up to Workers
// goroutines; each method's own pipeline stays sequential.
type Batch struct {
	Analyzer *Analyzer
	Workers  int
}

// Run analyzes every unit whose method the unit's oracle marks for
// specialization. Results are returned in input order. Cancelling ctx stops
// scheduling further methods; methods already running finish, and the
// context error is returned alongside the results gathered so far.
func (b *Batch) Run(ctx context.Context, units []Unit) ([]*Result, error) {
	logger := ctxlog.FromContext(ctx)

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	analyzer := b.Analyzer
	if analyzer == nil {
		analyzer = New(nil)
	}

	results := make([]*Result, len(units))
	var g errgroup.Group
	g.SetLimit(workers)

	scheduled := 0
	for i, u := range units {
		if ctx.Err() != nil {
			break
		}
		if !u.Oracle.IsMarkedForSpecialization(u.Method.Symbol) {
			logger.Debug("Method not marked, skipping.", "method", u.Method.Name)
			continue
		}
		scheduled++
		g.Go(func() error {
			res := analyzer.Analyze(ctx, u.Method, u.Oracle)
			res.Types = u.Types
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*Result, 0, scheduled)
	failed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		if !r.OK() {
			failed++
		}
		out = append(out, r)
	}
	logger.Info("Batch finished.", "methods", len(out), "failed", failed, "workers", workers)
	return out, ctx.Err()
}
