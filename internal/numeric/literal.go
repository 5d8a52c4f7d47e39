package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Literal is a typed constant known at analysis time.
//
// Generic marks a literal whose declared type is the generic placeholder. Its
// payload is still recorded, but arithmetic on it is never folded because the
// concrete type, and therefore the overflow behaviour, is not known yet.
type Literal struct {
	Type    Type
	Generic bool

	i int64
	u uint64
	f float64
	b bool
}

// Int returns a signed literal of type t, wrapped to t's width.
func Int(t Type, v int64) Literal {
	return Literal{Type: t, i: wrapSigned(v, t.Bits)}
}

// Uint returns an unsigned literal of type t, wrapped to t's width.
func Uint(t Type, v uint64) Literal {
	return Literal{Type: t, u: wrapUnsigned(v, t.Bits)}
}

// FloatOf returns a float literal of type t. float32 values are rounded.
func FloatOf(t Type, v float64) Literal {
	return Literal{Type: t, f: roundFloat(v, t.Bits)}
}

// BoolOf returns a boolean literal.
func BoolOf(v bool) Literal {
	return Literal{Type: Boolean, b: v}
}

func (l Literal) Int64() int64 {
	switch l.Type.Kind {
	case Unsigned:
		return int64(l.u)
	case Float:
		return int64(l.f)
	case Bool:
		if l.b {
			return 1
		}
		return 0
	}
	return l.i
}

func (l Literal) Uint64() uint64 {
	switch l.Type.Kind {
	case Signed:
		return uint64(l.i)
	case Float:
		return uint64(l.f)
	case Bool:
		return uint64(l.Int64())
	}
	return l.u
}

func (l Literal) Float64() float64 {
	switch l.Type.Kind {
	case Signed:
		return float64(l.i)
	case Unsigned:
		return float64(l.u)
	case Bool:
		return float64(l.Int64())
	}
	return l.f
}

func (l Literal) Bool() bool {
	if l.Type.Kind == Bool {
		return l.b
	}
	return l.Uint64() != 0
}

// IsZero reports whether the literal is a numeric zero.
func (l Literal) IsZero() bool {
	switch l.Type.Kind {
	case Signed:
		return l.i == 0
	case Unsigned:
		return l.u == 0
	case Float:
		return l.f == 0
	}
	return !l.b
}

// Equal compares type, genericity and payload. Float payloads are compared
// bitwise so that NaN equals itself.
func (l Literal) Equal(o Literal) bool {
	if l.Type != o.Type || l.Generic != o.Generic {
		return false
	}
	switch l.Type.Kind {
	case Signed:
		return l.i == o.i
	case Unsigned:
		return l.u == o.u
	case Float:
		return math.Float64bits(l.f) == math.Float64bits(o.f)
	}
	return l.b == o.b
}

// String formats the payload. Floats always carry a decimal point or exponent
// so 1.0 is never confused with the integer 1.
func (l Literal) String() string {
	switch l.Type.Kind {
	case Signed:
		return strconv.FormatInt(l.i, 10)
	case Unsigned:
		return strconv.FormatUint(l.u, 10)
	case Float:
		bits := l.Type.Bits
		if bits != 32 {
			bits = 64
		}
		s := strconv.FormatFloat(l.f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatBool(l.b)
}

// Parse reads literal source text as type t. Go literal syntax is accepted:
// base prefixes, digit separators and rune literals. A float spelling is
// accepted for an integer type when its value is integral.
func Parse(text string, t Type) (Literal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Literal{}, fmt.Errorf("empty literal")
	}

	if t.Kind == Bool {
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Literal{}, fmt.Errorf("parse %q as bool: %w", text, err)
		}
		return BoolOf(b), nil
	}

	if strings.HasPrefix(text, "'") {
		r, err := strconv.Unquote(text)
		if err != nil || len([]rune(r)) != 1 {
			return Literal{}, fmt.Errorf("parse rune literal %q", text)
		}
		text = strconv.Itoa(int([]rune(r)[0]))
	}

	switch t.Kind {
	case Signed:
		if v, err := strconv.ParseInt(text, 0, 64); err == nil {
			return Int(t, v), nil
		}
		v, err := integralFloat(text)
		if err != nil {
			return Literal{}, fmt.Errorf("parse %q as %s: %w", text, t, err)
		}
		return Int(t, int64(v)), nil
	case Unsigned:
		if v, err := strconv.ParseUint(text, 0, 64); err == nil {
			return Uint(t, v), nil
		}
		if v, err := strconv.ParseInt(text, 0, 64); err == nil {
			return Uint(t, uint64(v)), nil
		}
		v, err := integralFloat(text)
		if err != nil {
			return Literal{}, fmt.Errorf("parse %q as %s: %w", text, t, err)
		}
		return Uint(t, uint64(v)), nil
	case Float:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			iv, ierr := strconv.ParseInt(text, 0, 64)
			if ierr != nil {
				return Literal{}, fmt.Errorf("parse %q as %s: %w", text, t, err)
			}
			v = float64(iv)
		}
		return FloatOf(t, v), nil
	}
	return Literal{}, fmt.Errorf("unsupported literal type %s", t)
}

func integralFloat(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%s is not integral", text)
	}
	return v, nil
}

func wrapSigned(v int64, bits int) int64 {
	if bits <= 0 || bits >= 64 {
		return v
	}
	shift := uint(64 - bits)
	return v << shift >> shift
}

func wrapUnsigned(v uint64, bits int) uint64 {
	if bits <= 0 || bits >= 64 {
		return v
	}
	return v & (uint64(1)<<uint(bits) - 1)
}

func roundFloat(v float64, bits int) float64 {
	if bits == 32 {
		return float64(float32(v))
	}
	return v
}
