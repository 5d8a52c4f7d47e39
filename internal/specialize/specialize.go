// Package specialize writes concrete copies of generic Go functions, one per
// target type, into a generated file next to the package.
package specialize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/gofront"
	"github.com/vk/genmaths/internal/numeric"
	"golang.org/x/tools/go/ast/astutil"
)

// Header is the first line of every generated file.
const Header = "// Code generated by genmaths. DO NOT EDIT."

// Output is the generated file of one package.
type Output struct {
	Path   string
	Source []byte
	// Funcs are the names of the emitted functions in output order.
	Funcs []string
}

// Write saves the output to Path. A file at Path that genmaths did not
// generate is never overwritten.
func (o *Output) Write() error {
	if old, err := os.ReadFile(o.Path); err == nil && !IsGenerated(old) {
		return fmt.Errorf("%s exists and was not generated by genmaths", o.Path)
	}
	if err := os.WriteFile(o.Path, o.Source, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.Path, err)
	}
	return nil
}

// OutputPath is the generated file of pkg.
func OutputPath(pkg *gofront.Package) string {
	return filepath.Join(pkg.Dir, pkg.Name+gofront.GeneratedSuffix)
}

// RemoveStale deletes the file at path when genmaths generated it. It reports
// whether a file was removed; a missing file is not an error.
func RemoveStale(path string) (bool, error) {
	old, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !IsGenerated(old) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}

// Package specializes every successful result that belongs to pkg. A nil
// Output is returned when nothing could be emitted.
func Package(ctx context.Context, pkg *gofront.Package, results []*analysis.Result) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("package", pkg.Name)

	var body bytes.Buffer
	var imported []*types.PkgName
	out := &Output{Path: OutputPath(pkg)}

	for _, r := range results {
		if !r.OK() || r.Symbol.Package != pkg.Name {
			continue
		}
		fn := pkg.Func(r.Method)
		if fn == nil {
			return nil, fmt.Errorf("function %s not found in package %s", r.Method, pkg.Name)
		}
		tparam, ok := typeParam(pkg, fn)
		if !ok {
			logger.Warn("Function is not generic over one type parameter, skipping.", "method", r.Method)
			continue
		}

		emitted := false
		for _, target := range r.Types {
			concrete := types.Universe.Lookup(target.Name)
			if concrete == nil || !types.Satisfies(concrete.Type(), constraint(tparam)) {
				logger.Warn("Type does not satisfy constraint, skipping.", "method", r.Method, "type", target.Name)
				continue
			}
			src, name, err := instantiate(pkg.Fset, fn, tparam.Obj().Name(), target)
			if err != nil {
				return nil, fmt.Errorf("specialize %s for %s: %w", r.Method, target.Name, err)
			}
			body.WriteString("\n")
			body.Write(src)
			body.WriteString("\n")
			out.Funcs = append(out.Funcs, name)
			emitted = true
		}
		if emitted {
			imported = append(imported, qualifiers(pkg, fn)...)
		}
	}

	if len(out.Funcs) == 0 {
		return nil, nil
	}

	var text bytes.Buffer
	fmt.Fprintf(&text, "%s\n\npackage %s\n", Header, pkg.Name)
	text.Write(body.Bytes())

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, out.Path, text.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse generated code: %w", err)
	}
	for _, pn := range imported {
		name := pn.Name()
		if name == pn.Imported().Name() {
			name = ""
		}
		astutil.AddNamedImport(fset, file, name, pn.Imported().Path())
	}

	var printed bytes.Buffer
	if err := format.Node(&printed, fset, file); err != nil {
		return nil, fmt.Errorf("print generated code: %w", err)
	}
	formatted, err := format.Source(printed.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	out.Source = formatted

	logger.Debug("Specialized package.", "functions", len(out.Funcs))
	return out, nil
}

// typeParam returns the only type parameter of fn. Methods are rejected:
// their type parameters belong to the receiver type.
func typeParam(pkg *gofront.Package, fn *ast.FuncDecl) (*types.TypeParam, bool) {
	if fn.Recv != nil || fn.Type.TypeParams == nil || fn.Type.TypeParams.NumFields() != 1 {
		return nil, false
	}
	ident := fn.Type.TypeParams.List[0].Names[0]
	obj, ok := pkg.Info.Defs[ident].(*types.TypeName)
	if !ok {
		return nil, false
	}
	tp, ok := obj.Type().(*types.TypeParam)
	return tp, ok
}

// qualifiers lists the imported packages fn refers to, such as time in
// time.Duration(x).
func qualifiers(pkg *gofront.Package, fn *ast.FuncDecl) []*types.PkgName {
	var out []*types.PkgName
	ast.Inspect(fn, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok {
			if pn, ok := pkg.Info.Uses[id].(*types.PkgName); ok {
				out = append(out, pn)
			}
		}
		return true
	})
	return out
}

func constraint(tp *types.TypeParam) *types.Interface {
	if iface, ok := tp.Constraint().Underlying().(*types.Interface); ok {
		return iface
	}
	return types.NewInterfaceType(nil, nil)
}

// Suffix is appended to a function name for target t: Lerp becomes
// LerpInt32.
func Suffix(t numeric.Type) string {
	r := []rune(t.Name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// instantiate prints fn, parses the text back into a fresh tree and rewrites
// it for target.
func instantiate(fset *token.FileSet, fn *ast.FuncDecl, tparam string, target numeric.Type) ([]byte, string, error) {
	bare := *fn
	bare.Doc = nil

	var text bytes.Buffer
	text.WriteString("package p\n\n")
	if err := format.Node(&text, fset, &bare); err != nil {
		return nil, "", err
	}

	copyFset := token.NewFileSet()
	file, err := parser.ParseFile(copyFset, "", text.Bytes(), 0)
	if err != nil {
		return nil, "", err
	}
	clone := file.Decls[0].(*ast.FuncDecl)
	clone.Type.TypeParams = nil
	clone.Name.Name += Suffix(target)

	astutil.Apply(clone, func(c *astutil.Cursor) bool {
		id, ok := c.Node().(*ast.Ident)
		if !ok || id.Name != tparam {
			return true
		}
		if sel, ok := c.Parent().(*ast.SelectorExpr); ok && sel.Sel == id {
			return true
		}
		c.Replace(ast.NewIdent(target.Name))
		return true
	}, nil)

	var out bytes.Buffer
	if err := format.Node(&out, copyFset, clone); err != nil {
		return nil, "", err
	}
	return bytes.TrimSpace(out.Bytes()), clone.Name.Name, nil
}

// IsGenerated reports whether src starts with Header.
func IsGenerated(src []byte) bool {
	return strings.HasPrefix(string(src), Header)
}
