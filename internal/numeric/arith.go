package numeric

import "errors"

// ErrNoFold reports that an operation on known literals must not be folded:
// division by zero, operands of the generic placeholder type, or operand kinds
// the operator is not defined for. It is a normal outcome, not a failure.
var ErrNoFold = errors.New("operation cannot be folded")

// common returns the type two operands are evaluated in. An untyped operand
// adopts the type of a typed one. Mixed integer and float promotes to float;
// the result is unsigned only when both operands are unsigned.
func common(a, b Type) Type {
	if a == b {
		return a
	}
	if a.Kind == Float || b.Kind == Float {
		switch {
		case a.Kind == Float && b.Kind == Float:
			return Of(Float, max(a.Bits, b.Bits))
		case a.Kind == Float:
			return a
		default:
			return b
		}
	}
	if a.Bits == 0 && b.Bits != 0 {
		return b
	}
	if b.Bits == 0 && a.Bits != 0 {
		return a
	}
	kind := Signed
	if a.Kind == Unsigned && b.Kind == Unsigned {
		kind = Unsigned
	}
	return Of(kind, max(a.Bits, b.Bits))
}

func checkOperands(a, b Literal) error {
	if a.Generic || b.Generic {
		return ErrNoFold
	}
	if a.Type.Kind == Bool || b.Type.Kind == Bool {
		return ErrNoFold
	}
	return nil
}

type arith struct {
	signed   func(x, y int64) int64
	unsigned func(x, y uint64) uint64
	float    func(x, y float64) float64
}

func (op arith) apply(a, b Literal) (Literal, error) {
	if err := checkOperands(a, b); err != nil {
		return Literal{}, err
	}
	t := common(a.Type, b.Type)
	switch t.Kind {
	case Signed:
		return Int(t, op.signed(a.Int64(), b.Int64())), nil
	case Unsigned:
		return Uint(t, op.unsigned(a.Uint64(), b.Uint64())), nil
	default:
		if op.float == nil {
			return Literal{}, ErrNoFold
		}
		return FloatOf(t, op.float(a.Float64(), b.Float64())), nil
	}
}

var (
	addOp = arith{
		signed:   func(x, y int64) int64 { return x + y },
		unsigned: func(x, y uint64) uint64 { return x + y },
		float:    func(x, y float64) float64 { return x + y },
	}
	subOp = arith{
		signed:   func(x, y int64) int64 { return x - y },
		unsigned: func(x, y uint64) uint64 { return x - y },
		float:    func(x, y float64) float64 { return x - y },
	}
	mulOp = arith{
		signed:   func(x, y int64) int64 { return x * y },
		unsigned: func(x, y uint64) uint64 { return x * y },
		float:    func(x, y float64) float64 { return x * y },
	}
	divOp = arith{
		signed:   func(x, y int64) int64 { return x / y },
		unsigned: func(x, y uint64) uint64 { return x / y },
		float:    func(x, y float64) float64 { return x / y },
	}
	// Go has no float remainder operator, so float modulo is left for the
	// specialized code to reject.
	modOp = arith{
		signed:   func(x, y int64) int64 { return x % y },
		unsigned: func(x, y uint64) uint64 { return x % y },
	}
)

func Add(a, b Literal) (Literal, error) { return addOp.apply(a, b) }
func Sub(a, b Literal) (Literal, error) { return subOp.apply(a, b) }
func Mul(a, b Literal) (Literal, error) { return mulOp.apply(a, b) }

// Div divides a by b. A zero divisor is ErrNoFold.
func Div(a, b Literal) (Literal, error) {
	if b.IsZero() && b.Type.Kind != Bool {
		return Literal{}, ErrNoFold
	}
	return divOp.apply(a, b)
}

// Mod is the remainder of a / b. A zero divisor is ErrNoFold.
func Mod(a, b Literal) (Literal, error) {
	if b.IsZero() && b.Type.Kind != Bool {
		return Literal{}, ErrNoFold
	}
	return modOp.apply(a, b)
}

// Neg negates a. Unsigned negation wraps.
func Neg(a Literal) (Literal, error) {
	if a.Generic || a.Type.Kind == Bool {
		return Literal{}, ErrNoFold
	}
	switch a.Type.Kind {
	case Signed:
		return Int(a.Type, -a.i), nil
	case Unsigned:
		return Uint(a.Type, -a.u), nil
	}
	return FloatOf(a.Type, -a.f), nil
}

// Plus is unary plus: the identity on numeric literals.
func Plus(a Literal) (Literal, error) {
	if a.Generic || a.Type.Kind == Bool {
		return Literal{}, ErrNoFold
	}
	return a, nil
}

// compare returns -1, 0 or 1.
func compare(a, b Literal) (int, error) {
	if err := checkOperands(a, b); err != nil {
		return 0, err
	}
	t := common(a.Type, b.Type)
	switch t.Kind {
	case Signed:
		x, y := a.Int64(), b.Int64()
		return cmpOrdered(x, y), nil
	case Unsigned:
		x, y := a.Uint64(), b.Uint64()
		return cmpOrdered(x, y), nil
	}
	x, y := roundFloat(a.Float64(), t.Bits), roundFloat(b.Float64(), t.Bits)
	if x != x || y != y {
		return 0, ErrNoFold
	}
	return cmpOrdered(x, y), nil
}

func cmpOrdered[T int64 | uint64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func Less(a, b Literal) (Literal, error)         { return cmpResult(a, b, func(c int) bool { return c < 0 }) }
func Greater(a, b Literal) (Literal, error)      { return cmpResult(a, b, func(c int) bool { return c > 0 }) }
func LessEqual(a, b Literal) (Literal, error)    { return cmpResult(a, b, func(c int) bool { return c <= 0 }) }
func GreaterEqual(a, b Literal) (Literal, error) { return cmpResult(a, b, func(c int) bool { return c >= 0 }) }

// Equal folds a == b. Two booleans may be compared for equality.
func Equal(a, b Literal) (Literal, error) {
	if a.Type.Kind == Bool && b.Type.Kind == Bool && !a.Generic && !b.Generic {
		return BoolOf(a.b == b.b), nil
	}
	return cmpResult(a, b, func(c int) bool { return c == 0 })
}

// NotEqual folds a != b.
func NotEqual(a, b Literal) (Literal, error) {
	eq, err := Equal(a, b)
	if err != nil {
		return Literal{}, err
	}
	return BoolOf(!eq.b), nil
}

func cmpResult(a, b Literal, pred func(int) bool) (Literal, error) {
	c, err := compare(a, b)
	if err != nil {
		return Literal{}, err
	}
	return BoolOf(pred(c)), nil
}
