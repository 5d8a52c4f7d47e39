// Package walker turns a lowered method body into the initial value graph.
//
// The walker is the only stage that consults type information. Everything
// downstream works on the structural graph alone.
package walker

import (
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/vk/genmaths/internal/value"
)

// ReturnName is the name given to the Variable holding a method's first
// returned value. Later results are named ReturnName.1, ReturnName.2, ...
const ReturnName = "return"

type walker struct {
	oracle semantic.TypeOracle
	params map[string]*value.Variable
	locals map[string]*value.Variable
}

// Walk builds the Variables of m: one per parameter, one per local
// declaration and one per returned value, in that order. Locals are declared
// before any initializer is walked, so a reference may name a local declared
// later in the body.
func Walk(m *semantic.Method, oracle semantic.TypeOracle) ([]*value.Variable, error) {
	w := &walker{
		oracle: oracle,
		params: make(map[string]*value.Variable, len(m.Params)),
		locals: make(map[string]*value.Variable),
	}

	var vars []*value.Variable
	for _, p := range m.Params {
		if _, dup := w.params[p.Name]; dup {
			return nil, diag.Internal(p.Range, "parameter %q declared twice", p.Name)
		}
		v := &value.Variable{Name: p.Name, Parameter: true, Range: p.Range}
		w.params[p.Name] = v
		vars = append(vars, v)
	}

	type pending struct {
		v    *value.Variable
		init semantic.Expression
	}
	var work []pending
	returns := 0

	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *semantic.LocalDeclaration:
			v, err := w.declare(s.Name, s.SrcRange)
			if err != nil {
				return nil, err
			}
			vars = append(vars, v)
			work = append(work, pending{v, s.Init})
		case *semantic.Return:
			for _, res := range s.Results {
				name := ReturnName
				if returns > 0 {
					name += "." + strconv.Itoa(returns)
				}
				returns++
				v, err := w.declare(name, res.Range())
				if err != nil {
					return nil, err
				}
				vars = append(vars, v)
				work = append(work, pending{v, res})
			}
		case *semantic.UnsupportedStatement:
			return nil, diag.Unsupported(s.SrcRange, "%s is not supported", s.Description)
		case nil:
			return nil, diag.Internal(m.Range, "nil statement in %s", m.Name)
		default:
			return nil, diag.Internal(stmt.Range(), "unknown statement %T", stmt)
		}
	}

	for _, p := range work {
		val, err := w.expr(p.init)
		if err != nil {
			return nil, err
		}
		p.v.Value = val
	}
	return vars, nil
}

func (w *walker) declare(name string, rng hcl.Range) (*value.Variable, error) {
	if _, dup := w.locals[name]; dup {
		return nil, diag.Internal(rng, "local %q declared twice", name)
	}
	if _, dup := w.params[name]; dup {
		return nil, diag.Internal(rng, "local %q shadows a parameter", name)
	}
	v := &value.Variable{Name: name, Range: rng}
	w.locals[name] = v
	return v, nil
}

func (w *walker) expr(e semantic.Expression) (value.Value, error) {
	switch e := e.(type) {
	case nil:
		return nil, diag.Internal(hcl.Range{}, "nil expression")

	case *semantic.Literal:
		return w.literal(e, e)

	case *semantic.LocalReference:
		v, ok := w.locals[e.Name]
		if !ok {
			return nil, diag.Unsupported(e.SrcRange, "%q is not a local of this method", e.Name)
		}
		return value.NewRef(v), nil

	case *semantic.ParameterReference:
		v, ok := w.params[e.Name]
		if !ok {
			return nil, diag.Unsupported(e.SrcRange, "%q is not a parameter of this method", e.Name)
		}
		return value.NewRef(v), nil

	case *semantic.Binary:
		op, ok := value.BinaryOperator(e.Operator)
		if !ok {
			return nil, diag.Operator(e.SrcRange, e.Operator)
		}
		left, err := w.expr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := w.expr(e.Right)
		if err != nil {
			return nil, err
		}
		return operation(e.SrcRange, op, left, right)

	case *semantic.Unary:
		op, ok := value.UnaryOperator(e.Operator)
		if !ok {
			return nil, diag.Operator(e.SrcRange, e.Operator)
		}
		operand, err := w.expr(e.Operand)
		if err != nil {
			return nil, err
		}
		return operation(e.SrcRange, op, operand)

	case *semantic.Conversion:
		// A converted literal takes the conversion's type: float32(1) is a
		// float32 constant. Any other operand passes through unchanged.
		if lit, ok := e.Operand.(*semantic.Literal); ok {
			return w.literal(lit, e)
		}
		return w.expr(e.Operand)

	case *semantic.Unsupported:
		return nil, diag.Unsupported(e.SrcRange, "%s is not supported", e.Description)
	}
	return nil, diag.Internal(e.Range(), "unknown expression %T", e)
}

// literal parses lit using the type the oracle reports for typed.
func (w *walker) literal(lit *semantic.Literal, typed semantic.Expression) (value.Value, error) {
	tid, ok := w.oracle.TypeOf(typed)
	var t numeric.Type
	if ok {
		t = tid.Numeric()
	} else {
		t = untyped(lit.Text)
	}
	l, err := numeric.Parse(lit.Text, t)
	if err != nil {
		return nil, diag.Unsupported(lit.SrcRange, "literal %s: %s", lit.Text, err)
	}
	l.Generic = ok && tid.Generic
	return value.NewConstant(l), nil
}

// untyped guesses the kind of a literal the host could not type.
func untyped(text string) numeric.Type {
	switch {
	case text == "true" || text == "false":
		return numeric.Boolean
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		if strings.ContainsAny(text, "pP.") {
			return numeric.Of(numeric.Float, 0)
		}
		return numeric.Of(numeric.Signed, 0)
	case strings.ContainsAny(text, ".eE"):
		return numeric.Of(numeric.Float, 0)
	}
	return numeric.Of(numeric.Signed, 0)
}

func operation(rng hcl.Range, op value.Operator, operands ...value.Value) (value.Value, error) {
	if len(operands) != op.Arity() {
		return nil, diag.Internal(rng, "%s takes %d operands, got %d", op, op.Arity(), len(operands))
	}
	for i, o := range operands {
		if o == nil {
			return nil, diag.Internal(rng, "%s operand %d is nil", op, i)
		}
	}
	return value.NewOperation(op, operands...), nil
}
