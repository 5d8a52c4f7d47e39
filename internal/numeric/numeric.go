// Package numeric describes the concrete numeric types genmaths specializes
// against, and the typed literal arithmetic used by constant folding.
package numeric

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a numeric type.
type Kind uint8

const (
	Signed Kind = iota
	Unsigned
	Float
	Bool
)

func (k Kind) String() string {
	switch k {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	case Float:
		return "float"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Type is a concrete numeric type. Bits is zero for untyped (abstract) types,
// which behave as their 64-bit counterpart during arithmetic.
type Type struct {
	Name string
	Kind Kind
	Bits int
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t Type) IsInteger() bool {
	return t.Kind == Signed || t.Kind == Unsigned
}

func (t Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Bits == 0 {
		return "untyped " + t.Kind.String()
	}
	return fmt.Sprintf("%s%d", t.Kind, t.Bits)
}

var (
	Int8    = Type{Name: "int8", Kind: Signed, Bits: 8}
	Int16   = Type{Name: "int16", Kind: Signed, Bits: 16}
	Int32   = Type{Name: "int32", Kind: Signed, Bits: 32}
	Int64   = Type{Name: "int64", Kind: Signed, Bits: 64}
	Uint8   = Type{Name: "uint8", Kind: Unsigned, Bits: 8}
	Uint16  = Type{Name: "uint16", Kind: Unsigned, Bits: 16}
	Uint32  = Type{Name: "uint32", Kind: Unsigned, Bits: 32}
	Uint64  = Type{Name: "uint64", Kind: Unsigned, Bits: 64}
	Float32 = Type{Name: "float32", Kind: Float, Bits: 32}
	Float64 = Type{Name: "float64", Kind: Float, Bits: 64}
	Boolean = Type{Name: "bool", Kind: Bool}
)

// byName maps every accepted spelling to its type. The .NET spellings are the
// ones the generic_maths_possible_types option historically used.
var byName = map[string]Type{
	"int8":    Int8,
	"int16":   Int16,
	"int32":   Int32,
	"int64":   Int64,
	"uint8":   Uint8,
	"uint16":  Uint16,
	"uint32":  Uint32,
	"uint64":  Uint64,
	"float32": Float32,
	"float64": Float64,
	"bool":    Boolean,
	"int":     {Name: "int", Kind: Signed, Bits: strconv.IntSize},
	"uint":    {Name: "uint", Kind: Unsigned, Bits: strconv.IntSize},
	"uintptr": {Name: "uintptr", Kind: Unsigned, Bits: strconv.IntSize},
	"byte":    Uint8,
	"rune":    Int32,

	"sbyte":  Int8,
	"short":  Int16,
	"ushort": Uint16,
	"long":   Int64,
	"ulong":  Uint64,
	"float":  Float32,
	"double": Float64,

	"System.SByte":  Int8,
	"System.Byte":   Uint8,
	"System.Int16":  Int16,
	"System.UInt16": Uint16,
	"System.Int32":  Int32,
	"System.UInt32": Uint32,
	"System.Int64":  Int64,
	"System.UInt64": Uint64,
	"System.Single": Float32,
	"System.Double": Float64,
}

// Lookup resolves a type name.
func Lookup(name string) (Type, bool) {
	t, ok := byName[strings.TrimSpace(name)]
	return t, ok
}

// Of returns the canonical type for a kind and width. Bits == 0 yields the
// untyped variant of the kind.
func Of(kind Kind, bits int) Type {
	if kind == Bool {
		return Boolean
	}
	if bits == 0 {
		return Type{Kind: kind}
	}
	for _, t := range canonical {
		if t.Kind == kind && t.Bits == bits {
			return t
		}
	}
	return Type{Kind: kind, Bits: bits}
}

var canonical = []Type{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64}

// Default returns the target set used when the option is absent or empty:
// the eight fixed-width integer types.
func Default() []Type {
	return []Type{Uint8, Int8, Int16, Uint16, Int32, Uint32, Int64, Uint64}
}

// ParseList parses a comma-separated list of type names. A blank list yields
// Default. Duplicates are dropped and the first occurrence keeps its place.
func ParseList(s string) ([]Type, error) {
	if strings.TrimSpace(s) == "" {
		return Default(), nil
	}

	var out []Type
	seen := make(map[Type]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, ok := Lookup(part)
		if !ok {
			return nil, fmt.Errorf("unknown numeric type %q", part)
		}
		if t.Kind == Bool {
			return nil, fmt.Errorf("%q is not a numeric type", part)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return Default(), nil
	}
	return out, nil
}

// FormatList is the inverse of ParseList.
func FormatList(types []Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}
