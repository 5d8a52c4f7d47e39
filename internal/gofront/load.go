// Package gofront is the Go host front-end. It parses and type-checks a Go
// package, finds the functions marked for specialization and lowers their
// bodies into the semantic form the analysis core consumes.
package gofront

import (
	"context"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
)

// GeneratedSuffix is the file name suffix of specialized output. Such files
// are never read back as input.
const GeneratedSuffix = "_genmaths.go"

// Package is a parsed and type-checked Go package.
type Package struct {
	Dir   string
	Name  string
	Fset  *token.FileSet
	Files []*ast.File
	Info  *types.Info
	Types *types.Package

	// TargetTypes is the per-package override from a //genmaths:types
	// directive; nil when the package has none.
	TargetTypes []numeric.Type

	// Warnings holds type-check errors and directive conflicts. They never
	// stop the analysis: a method that depends on a broken declaration fails
	// on its own.
	Warnings hcl.Diagnostics
}

// Load parses every non-test Go file in dir and type-checks the package.
// Source text is registered in sources for diagnostic snippets.
func Load(ctx context.Context, dir string, sources *diag.Sources) (*Package, error) {
	logger := ctxlog.FromContext(ctx).With("dir", dir)

	names, err := goFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}

	pkg := &Package{Dir: dir, Fset: token.NewFileSet()}
	for _, name := range names {
		src, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if sources != nil {
			sources.AddBytes(name, src)
		}
		f, err := parser.ParseFile(pkg.Fset, name, src, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if pkg.Name == "" {
			pkg.Name = f.Name.Name
		} else if f.Name.Name != pkg.Name {
			logger.Warn("Skipping file of another package.", "file", name, "package", f.Name.Name)
			continue
		}
		pkg.Files = append(pkg.Files, f)
	}

	pkg.Info = &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{
		Importer: importer.ForCompiler(pkg.Fset, "source", nil),
		Error: func(err error) {
			pkg.Warnings = append(pkg.Warnings, typeError(pkg.Fset, err))
		},
	}
	pkg.Types, _ = conf.Check(pkg.Name, pkg.Fset, pkg.Files, pkg.Info)
	if len(pkg.Warnings) > 0 {
		logger.Warn("Package has type errors.", "count", len(pkg.Warnings))
	}

	pkg.readTypesDirective()
	logger.Debug("Go package loaded.", "package", pkg.Name, "files", len(pkg.Files))
	return pkg, nil
}

func goFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, GeneratedSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func typeError(fset *token.FileSet, err error) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  "Type check error",
		Detail:   err.Error(),
	}
	if te, ok := err.(types.Error); ok {
		d.Detail = te.Msg
		rng := posRange(fset, te.Pos, te.Pos)
		d.Subject = &rng
	}
	return d
}

// posRange converts a token span into an hcl.Range.
func posRange(fset *token.FileSet, from, to token.Pos) hcl.Range {
	start := fset.Position(from)
	end := fset.Position(to)
	if !end.IsValid() {
		end = start
	}
	return hcl.Range{
		Filename: start.Filename,
		Start:    hcl.Pos{Line: start.Line, Column: start.Column, Byte: start.Offset},
		End:      hcl.Pos{Line: end.Line, Column: end.Column, Byte: end.Offset},
	}
}

func nodeRange(fset *token.FileSet, n ast.Node) hcl.Range {
	return posRange(fset, n.Pos(), n.End())
}
