// Package hclfront is the HCL host front-end. A method is written as a
// block:
//
//	method "lerp" {
//	  params = [a, b, t]
//	  locals {
//	    d = b - a
//	  }
//	  result = a + d * t
//	}
//
// Locals are declarative, so they may refer to each other in any order.
package hclfront

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/hclutil"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/vk/genmaths/internal/walker"
)

// fileRoot decodes the top-level blocks of a method file.
type fileRoot struct {
	Methods []*methodBlock `hcl:"method,block"`
}

type methodBlock struct {
	Name       string         `hcl:"name,label"`
	Specialize *bool          `hcl:"specialize,optional"`
	Params     hcl.Expression `hcl:"params,optional"`
	Types      hcl.Expression `hcl:"types,optional"`
	Locals     []*localsBlock `hcl:"locals,block"`
	Result     hcl.Expression `hcl:"result,optional"`
	DefRange   hcl.Range      `hcl:",def_range"`
}

type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// present reports whether an optional attribute was set. gohcl fills a
// missing expression field with a synthetic static expression.
func present(expr hcl.Expression) bool {
	_, ok := expr.(hclsyntax.Expression)
	return ok
}

// Load parses every file in paths and lowers its method blocks into
// analysis units. Methods without their own types attribute use defaults.
// Each file gets its own oracle. Parse and decode problems are returned as
// diagnostics; a file with errors contributes no units.
func Load(ctx context.Context, sources *diag.Sources, defaults []numeric.Type, paths ...string) ([]analysis.Unit, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	parser := hclparse.NewParser()
	var units []analysis.Unit
	var diags hcl.Diagnostics

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Failed to read file",
				Detail:   fmt.Sprintf("The file %q could not be read: %s.", path, err),
			})
			continue
		}
		file, d := parser.ParseHCL(src, path)
		if sources != nil && file != nil {
			sources.AddFile(path, file)
		}
		if d.HasErrors() {
			diags = append(diags, d...)
			continue
		}

		fileUnits, d := loadFile(path, file, defaults)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		logger.Debug("HCL file loaded.", "file", path, "methods", len(fileUnits))
		units = append(units, fileUnits...)
	}

	logger.Debug("HCL loading complete.", "methods", len(units))
	return units, diags
}

func loadFile(path string, file *hcl.File, defaults []numeric.Type) ([]analysis.Unit, hcl.Diagnostics) {
	var root fileRoot
	diags := gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, diags
	}

	oracle := semantic.NewMapOracle()
	seen := make(map[string]hcl.Range)
	var units []analysis.Unit

	for _, mb := range root.Methods {
		if first, dup := seen[mb.Name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate method",
				Detail:   fmt.Sprintf("A method named %q was already declared at %s.", mb.Name, first),
				Subject:  mb.DefRange.Ptr(),
			})
			continue
		}
		seen[mb.Name] = mb.DefRange

		m, d := lowerMethod(path, file.Bytes, mb, oracle)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}

		targets := defaults
		if present(mb.Types) {
			list, d := hclutil.TypeList(mb.Types)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			targets = list
		}

		if mb.Specialize == nil || *mb.Specialize {
			oracle.Marked[m.Symbol] = true
		}
		units = append(units, analysis.Unit{Method: m, Oracle: oracle, Types: targets})
	}
	return units, diags
}

func lowerMethod(path string, src []byte, mb *methodBlock, oracle *semantic.MapOracle) (*semantic.Method, hcl.Diagnostics) {
	m := &semantic.Method{
		Name:   mb.Name,
		Symbol: semantic.Symbol{Package: path, Name: mb.Name},
		Range:  mb.DefRange,
	}

	params, diags := paramList(mb.Params)
	if diags.HasErrors() {
		return nil, diags
	}
	m.Params = params

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	l := NewLowerer(src, oracle, names...)

	attrs, d := localAttributes(mb.Locals, params)
	diags = append(diags, d...)
	if d.HasErrors() {
		return nil, diags
	}
	for _, attr := range attrs {
		m.Body = append(m.Body, &semantic.LocalDeclaration{
			Name:     attr.Name,
			Init:     l.Expr(attr.Expr),
			SrcRange: attr.NameRange,
		})
	}

	if present(mb.Result) {
		ret := &semantic.Return{SrcRange: mb.Result.Range()}
		if tuple, ok := mb.Result.(*hclsyntax.TupleConsExpr); ok {
			for _, e := range tuple.Exprs {
				ret.Results = append(ret.Results, l.Expr(e))
			}
		} else {
			ret.Results = append(ret.Results, l.Expr(mb.Result))
		}
		m.Body = append(m.Body, ret)
	}
	return m, diags
}

// paramList reads params = [a, "b"]. Bare keywords and strings are both
// accepted.
func paramList(expr hcl.Expression) ([]*semantic.Parameter, hcl.Diagnostics) {
	if !present(expr) {
		return nil, nil
	}
	exprs, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}

	var out []*semantic.Parameter
	seen := make(map[string]bool)
	for _, e := range exprs {
		name := hcl.ExprAsKeyword(e)
		if name == "" {
			if d := gohcl.DecodeExpression(e, nil, &name); d.HasErrors() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid parameter name",
					Detail:   "A parameter must be a bare name or a string.",
					Subject:  e.Range().Ptr(),
				})
				continue
			}
		}
		if name == walker.ReturnName {
			diags = append(diags, reservedName(name, e.Range()))
			continue
		}
		if seen[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate parameter",
				Detail:   fmt.Sprintf("The parameter %q is listed twice.", name),
				Subject:  e.Range().Ptr(),
			})
			continue
		}
		seen[name] = true
		out = append(out, &semantic.Parameter{Name: name, Range: e.Range()})
	}
	return out, diags
}

// localAttributes collects the attributes of every locals block in source
// order.
func localAttributes(blocks []*localsBlock, params []*semantic.Parameter) ([]*hcl.Attribute, hcl.Diagnostics) {
	var out []*hcl.Attribute
	var diags hcl.Diagnostics
	seen := make(map[string]*hcl.Attribute)
	paramAt := make(map[string]hcl.Range, len(params))
	for _, p := range params {
		paramAt[p.Name] = p.Range
	}

	for _, b := range blocks {
		attrs, d := b.Body.JustAttributes()
		diags = append(diags, d...)
		sorted := make([]*hcl.Attribute, 0, len(attrs))
		for _, a := range attrs {
			sorted = append(sorted, a)
		}
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
		})
		for _, a := range sorted {
			if a.Name == walker.ReturnName {
				diags = append(diags, reservedName(a.Name, a.NameRange))
				continue
			}
			if at, shadows := paramAt[a.Name]; shadows {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Local shadows parameter",
					Detail:   fmt.Sprintf("The local %q has the name of the parameter declared at %s.", a.Name, at),
					Subject:  a.NameRange.Ptr(),
				})
				continue
			}
			if first, dup := seen[a.Name]; dup {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate local",
					Detail:   fmt.Sprintf("The local %q was already defined at %s.", a.Name, first.NameRange),
					Subject:  a.NameRange.Ptr(),
				})
				continue
			}
			seen[a.Name] = a
			out = append(out, a)
		}
	}
	return out, diags
}

func reservedName(name string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Reserved name",
		Detail:   fmt.Sprintf("The name %q is reserved for the method result.", name),
		Subject:  rng.Ptr(),
	}
}
