package gofront

import (
	"go/ast"

	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
	"golang.org/x/tools/go/ast/inspector"
)

// Units lowers every function with a body into an analysis unit. All units
// of the package share one oracle, which marks the functions carrying
// SpecializeDirective. defaults is used as the target list unless the
// package sets its own with TypesDirective.
func (p *Package) Units(defaults []numeric.Type) []analysis.Unit {
	targets := defaults
	if p.TargetTypes != nil {
		targets = p.TargetTypes
	}

	oracle := semantic.NewMapOracle()
	var units []analysis.Unit

	ins := inspector.New(p.Files)
	ins.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Body == nil {
			return
		}
		m := newLowerer(p.Fset, p.Info, oracle).Lower(p.Name, fn)
		if IsMarked(fn) {
			oracle.Marked[m.Symbol] = true
		}
		units = append(units, analysis.Unit{Method: m, Oracle: oracle, Types: targets})
	})
	return units
}

// Func returns the declaration of the function the analysis knows as name,
// or nil.
func (p *Package) Func(name string) *ast.FuncDecl {
	for _, f := range p.Files {
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if ok && funcName(fn) == name {
				return fn
			}
		}
	}
	return nil
}
