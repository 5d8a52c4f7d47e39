package hclfront

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/genmaths/internal/hclutil"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var binaryTokens = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpEqual:              "==",
	hclsyntax.OpNotEqual:           "!=",
	hclsyntax.OpLogicalAnd:         "&&",
	hclsyntax.OpLogicalOr:          "||",
}

var unaryTokens = map[*hclsyntax.Operation]string{
	hclsyntax.OpNegate:     "-",
	hclsyntax.OpLogicalNot: "!",
}

// Lowerer converts hclsyntax expressions into semantic expressions. Names
// listed as parameters become parameter references, every other bare name
// or local.<name> traversal is a local reference.
type Lowerer struct {
	src    []byte
	oracle *semantic.MapOracle
	params map[string]bool
}

// NewLowerer returns a Lowerer for expressions parsed from src. Conversion
// types are recorded in oracle.
func NewLowerer(src []byte, oracle *semantic.MapOracle, params ...string) *Lowerer {
	l := &Lowerer{src: src, oracle: oracle, params: make(map[string]bool, len(params))}
	for _, p := range params {
		l.params[p] = true
	}
	return l
}

// ParseExpression parses a single expression in HCL native syntax.
func ParseExpression(filename string, src []byte) (hclsyntax.Expression, hcl.Diagnostics) {
	return hclsyntax.ParseExpression(src, filename, hcl.InitialPos)
}

// Expr lowers e. Shapes with no semantic counterpart become
// semantic.Unsupported and fail later, in the analysis of the method.
func (l *Lowerer) Expr(e hcl.Expression) semantic.Expression {
	rng := e.Range()

	switch e := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return l.Expr(e.Expression)

	case *hclsyntax.LiteralValueExpr:
		return l.literal(e)

	case *hclsyntax.ScopeTraversalExpr:
		return l.traversal(e)

	case *hclsyntax.BinaryOpExpr:
		tok, ok := binaryTokens[e.Op]
		if !ok {
			return l.unsupported(rng, "operator")
		}
		return &semantic.Binary{Operator: tok, Left: l.Expr(e.LHS), Right: l.Expr(e.RHS), SrcRange: rng}

	case *hclsyntax.UnaryOpExpr:
		tok, ok := unaryTokens[e.Op]
		if !ok {
			return l.unsupported(rng, "operator")
		}
		return &semantic.Unary{Operator: tok, Operand: l.Expr(e.Val), SrcRange: rng}

	case *hclsyntax.FunctionCallExpr:
		t, isType := numeric.Lookup(e.Name)
		if !isType || t.Kind == numeric.Bool || len(e.Args) != 1 || e.ExpandFinal {
			return l.unsupported(rng, fmt.Sprintf("call of %s()", e.Name))
		}
		conv := &semantic.Conversion{Operand: l.Expr(e.Args[0]), SrcRange: rng}
		l.oracle.Types[conv] = semantic.TypeID{Name: t.Name, Kind: t.Kind, Bits: t.Bits}
		return conv

	case *hclsyntax.ConditionalExpr:
		return l.unsupported(rng, "conditional expression")
	case *hclsyntax.TemplateExpr, *hclsyntax.TemplateWrapExpr, *hclsyntax.TemplateJoinExpr:
		return l.unsupported(rng, "string template")
	case *hclsyntax.TupleConsExpr, *hclsyntax.ObjectConsExpr:
		return l.unsupported(rng, "collection constructor")
	case *hclsyntax.ForExpr:
		return l.unsupported(rng, "for expression")
	case *hclsyntax.IndexExpr, *hclsyntax.RelativeTraversalExpr, *hclsyntax.SplatExpr:
		return l.unsupported(rng, "index expression")
	}
	return l.unsupported(rng, fmt.Sprintf("%T", e))
}

func (l *Lowerer) unsupported(rng hcl.Range, what string) semantic.Expression {
	return &semantic.Unsupported{Description: what, SrcRange: rng}
}

func (l *Lowerer) literal(e *hclsyntax.LiteralValueExpr) semantic.Expression {
	rng := e.Range()
	v := e.Val
	if v.IsNull() || !v.IsKnown() {
		return l.unsupported(rng, "null literal")
	}

	switch v.Type() {
	case cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return l.unsupported(rng, "boolean literal")
		}
		return &semantic.Literal{Text: fmt.Sprint(b), SrcRange: rng}

	case cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return l.unsupported(rng, "number literal out of range")
		}
		return &semantic.Literal{Text: l.numberText(rng, v), SrcRange: rng}
	}
	return l.unsupported(rng, v.Type().FriendlyName()+" literal")
}

// numberText keeps the source spelling of a number, so 1.0 stays a float.
func (l *Lowerer) numberText(rng hcl.Range, v cty.Value) string {
	if rng.Start.Byte < rng.End.Byte && rng.End.Byte <= len(l.src) {
		return strings.TrimSpace(string(l.src[rng.Start.Byte:rng.End.Byte]))
	}
	bf := v.AsBigFloat()
	if bf.IsInt() {
		return bf.Text('f', 0)
	}
	return bf.Text('g', -1)
}

func (l *Lowerer) traversal(e *hclsyntax.ScopeTraversalExpr) semantic.Expression {
	rng := e.Range()
	t := e.Traversal

	switch {
	case len(t) == 1:
		name := t.RootName()
		if l.params[name] {
			return &semantic.ParameterReference{Name: name, SrcRange: rng}
		}
		return &semantic.LocalReference{Name: name, SrcRange: rng}

	case len(t) == 2 && t.RootName() == "local":
		if attr, ok := t[1].(hcl.TraverseAttr); ok {
			return &semantic.LocalReference{Name: attr.Name, SrcRange: rng}
		}
	}
	return l.unsupported(rng, "reference to "+hclutil.TraversalKey(t))
}
