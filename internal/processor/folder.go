package processor

import (
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/value"
)

// ConstantFolder replaces every Operation whose operands are all Constants
// with the Constant it evaluates to. Operations that must not be folded, such
// as a division by zero or arithmetic on a generic literal, are kept.
type ConstantFolder struct{}

func (ConstantFolder) Name() string { return "constant-folder" }

func (ConstantFolder) Process(vars []*value.Variable) ([]*value.Variable, error) {
	f := folder{memo: make(map[value.Value]value.Value)}
	for _, v := range vars {
		if v.Value == nil {
			continue
		}
		folded, err := f.fold(v.Value)
		if err != nil {
			return nil, err
		}
		v.Value = folded
	}
	return vars, nil
}

type folder struct {
	memo map[value.Value]value.Value
}

func (f *folder) fold(v value.Value) (value.Value, error) {
	if out, ok := f.memo[v]; ok {
		return out, nil
	}
	op, ok := v.(*value.Operation)
	if !ok {
		return v, nil
	}

	operands := make([]value.Value, len(op.Operands))
	literals := make([]numeric.Literal, 0, len(op.Operands))
	allConst := true
	for i, c := range op.Operands {
		fc, err := f.fold(c)
		if err != nil {
			return nil, err
		}
		operands[i] = fc
		if k, ok := fc.(*value.Constant); ok {
			literals = append(literals, k.Literal)
		} else {
			allConst = false
		}
	}

	var out value.Value = op.With(operands)
	if allConst {
		lit, err := Evaluate(op.Op, literals...)
		switch {
		case err == nil:
			out = value.NewConstant(lit)
		case !errors.Is(err, numeric.ErrNoFold):
			return nil, err
		}
	}
	f.memo[v] = out
	return out, nil
}

// Evaluate applies op to literal operands. numeric.ErrNoFold is returned when
// the result must not be precomputed.
func Evaluate(op value.Operator, args ...numeric.Literal) (numeric.Literal, error) {
	if len(args) != op.Arity() {
		return numeric.Literal{}, diag.Internal(hcl.Range{}, "%s takes %d operands, got %d", op, op.Arity(), len(args))
	}
	switch op {
	case value.Negate:
		return numeric.Neg(args[0])
	case value.UnaryPlus:
		return numeric.Plus(args[0])
	}

	var fn func(a, b numeric.Literal) (numeric.Literal, error)
	switch op {
	case value.Add:
		fn = numeric.Add
	case value.Subtract:
		fn = numeric.Sub
	case value.Multiply:
		fn = numeric.Mul
	case value.Divide:
		fn = numeric.Div
	case value.Modulo:
		fn = numeric.Mod
	case value.Less:
		fn = numeric.Less
	case value.Greater:
		fn = numeric.Greater
	case value.LessEqual:
		fn = numeric.LessEqual
	case value.GreaterEqual:
		fn = numeric.GreaterEqual
	case value.Equal:
		fn = numeric.Equal
	case value.NotEqual:
		fn = numeric.NotEqual
	default:
		return numeric.Literal{}, diag.Internal(hcl.Range{}, "no evaluation for operator %s", op)
	}
	return fn(args[0], args[1])
}
