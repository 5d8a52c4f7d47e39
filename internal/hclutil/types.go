package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/zclconf/go-cty/cty"
)

// TypeKeyword reads a numeric type written either as a bare keyword
// (int32) or as a string ("System.Int32").
func TypeKeyword(expr hcl.Expression) (numeric.Type, hcl.Diagnostics) {
	var name string
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(traversal) == 1 {
		name = traversal.RootName()
	} else {
		val, diags := expr.Value(nil)
		if diags.HasErrors() || val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
			return numeric.Type{}, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid type specification",
				Detail:   "A type must be a keyword like int32 or a string like \"System.Int32\", not a complex expression.",
				Subject:  expr.Range().Ptr(),
			}}
		}
		name = val.AsString()
	}

	t, ok := numeric.Lookup(name)
	if !ok || t.Kind == numeric.Bool {
		return numeric.Type{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("%q is not a numeric type.", name),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return t, nil
}

// TypeList reads a list of numeric types from a tuple expression such as
// [int32, "uint8"]. Duplicates are dropped.
func TypeList(expr hcl.Expression) ([]numeric.Type, hcl.Diagnostics) {
	exprs, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	var out []numeric.Type
	seen := make(map[numeric.Type]struct{})
	for _, e := range exprs {
		t, d := TypeKeyword(e)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, diags
}
