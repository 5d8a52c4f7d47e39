package gofront

import (
	"go/ast"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/numeric"
)

const (
	// SpecializeDirective in a function's doc comment marks it for analysis.
	SpecializeDirective = "//genmaths:specialize"
	// TypesDirective sets the target types of every marked function of the
	// package: //genmaths:types int32,uint32
	TypesDirective = "//genmaths:types"
)

// IsMarked reports whether fn carries SpecializeDirective. Directives are
// read from the raw comment list because CommentGroup.Text drops them.
func IsMarked(fn *ast.FuncDecl) bool {
	if fn.Doc == nil {
		return false
	}
	for _, c := range fn.Doc.List {
		if strings.TrimSpace(c.Text) == SpecializeDirective {
			return true
		}
	}
	return false
}

// readTypesDirective looks for TypesDirective in every comment of the
// package. The first one wins; later ones that disagree produce a warning.
func (p *Package) readTypesDirective() {
	var first *ast.Comment
	for _, f := range p.Files {
		for _, group := range f.Comments {
			for _, c := range group.List {
				arg, ok := strings.CutPrefix(c.Text, TypesDirective)
				if !ok || (arg != "" && arg[0] != ' ' && arg[0] != '\t') {
					continue
				}
				rng := nodeRange(p.Fset, c)
				list, err := numeric.ParseList(arg)
				if err != nil {
					p.Warnings = append(p.Warnings, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  "Invalid " + TypesDirective + " directive",
						Detail:   err.Error() + "; the directive is ignored.",
						Subject:  rng.Ptr(),
					})
					continue
				}
				if first == nil {
					first = c
					p.TargetTypes = list
					continue
				}
				if numeric.FormatList(list) != numeric.FormatList(p.TargetTypes) {
					prev := nodeRange(p.Fset, first)
					p.Warnings = append(p.Warnings, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  "Conflicting " + TypesDirective + " directive",
						Detail:   "The package already sets its target types at " + prev.String() + "; this directive is ignored.",
						Subject:  rng.Ptr(),
					})
				}
			}
		}
	}
}
