package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/fsutil"
	"github.com/vk/genmaths/internal/gofront"
	"github.com/vk/genmaths/internal/hclfront"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
	"github.com/vk/genmaths/internal/specialize"
	"github.com/vk/genmaths/internal/watch"
)

// Report is the outcome of one run.
type Report struct {
	Results []*analysis.Result
	// Diagnostics holds load problems, type-check warnings and one error per
	// failed method.
	Diagnostics hcl.Diagnostics
	// Generated lists the files written in emit mode.
	Generated []string
}

// Failed counts the methods that could not be analyzed.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// OK reports whether every input loaded and every method analyzed.
func (r *Report) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// Run executes one analysis of the configured paths: it loads every input,
// analyzes the marked methods, prints the plan and the diagnostics and, in
// emit mode, writes the specialized Go code.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	opts := a.config.Options
	a.logger.Info("Analysis started.", "paths", a.config.Paths, "types", numeric.FormatList(opts.PossibleTypes))

	inputs, err := fsutil.Discover(a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover inputs: %w", err)
	}
	a.logger.Debug("Inputs discovered.", "go_packages", len(inputs.GoDirs), "hcl_files", len(inputs.HCLFiles))

	report := &Report{}
	sources := diag.NewSources()
	var units []analysis.Unit
	var pkgs []*gofront.Package

	for _, dir := range inputs.GoDirs {
		pkg, err := gofront.Load(ctx, dir, sources)
		if err != nil {
			report.Diagnostics = append(report.Diagnostics, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Failed to load Go package",
				Detail:   err.Error(),
			})
			continue
		}
		report.Diagnostics = append(report.Diagnostics, pkg.Warnings...)
		pkgs = append(pkgs, pkg)
		units = append(units, pkg.Units(opts.PossibleTypes)...)
	}

	hclUnits, diags := hclfront.Load(ctx, sources, opts.PossibleTypes, inputs.HCLFiles...)
	report.Diagnostics = append(report.Diagnostics, diags...)
	units = append(units, hclUnits...)

	batch := &analysis.Batch{Analyzer: a.analyzer(), Workers: opts.Workers}
	results, err := batch.Run(ctx, units)
	if err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	report.Results = results
	for _, r := range results {
		report.Diagnostics = append(report.Diagnostics, r.Diagnostics...)
	}

	if err := render.Write(a.outW, opts.Format, results); err != nil {
		return nil, fmt.Errorf("failed to write plan: %w", err)
	}
	if len(report.Diagnostics) > 0 {
		if err := diag.Write(a.errW, sources, report.Diagnostics, a.config.Color); err != nil {
			return nil, fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}

	if opts.Emit {
		for _, pkg := range pkgs {
			out, err := specialize.Package(ctx, pkg, resultsIn(pkg.Dir, results))
			if err != nil {
				return nil, err
			}
			if out == nil {
				removed, err := specialize.RemoveStale(specialize.OutputPath(pkg))
				if err != nil {
					return nil, err
				}
				if removed {
					a.logger.Info("Stale specialized code removed.", "package", pkg.Name)
				}
				continue
			}
			if err := out.Write(); err != nil {
				return nil, err
			}
			report.Generated = append(report.Generated, out.Path)
			a.logger.Info("Specialized code written.", "file", out.Path, "functions", len(out.Funcs))
		}
	}

	a.logger.Info("Analysis finished.", "methods", len(results), "failed", report.Failed())
	return report, nil
}

// resultsIn returns the results of methods declared in dir.
func resultsIn(dir string, results []*analysis.Result) []*analysis.Result {
	var out []*analysis.Result
	for _, r := range results {
		if filepath.Dir(r.Range.Filename) == dir {
			out = append(out, r)
		}
	}
	return out
}

// Watch runs the analysis once and then again after every change reported
// by w, until ctx is cancelled. Failed runs are logged and do not stop the
// loop.
func (a *App) Watch(ctx context.Context, w *watch.Watcher) error {
	for _, p := range a.config.Paths {
		if err := w.Add(p); err != nil {
			return err
		}
	}

	a.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped.")
			return nil
		case path := <-w.Events():
			a.logger.Info("Input changed, analyzing again.", "file", path)
			a.runLogged(ctx)
		}
	}
}

func (a *App) runLogged(ctx context.Context) {
	if _, err := a.Run(ctx); err != nil && ctx.Err() == nil {
		a.logger.Error("Analysis run failed.", "error", err)
	}
}
