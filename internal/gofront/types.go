package gofront

import (
	"go/types"

	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
)

// typeID describes t for the analysis core. Type parameters are generic;
// their Kind is derived from the constraint's type set so literals of the
// parameter type parse sensibly.
func typeID(t types.Type) (semantic.TypeID, bool) {
	if t == nil {
		return semantic.TypeID{}, false
	}
	if tp, ok := t.(*types.TypeParam); ok {
		return semantic.TypeID{Name: tp.Obj().Name(), Kind: constraintKind(tp), Generic: true}, true
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return semantic.TypeID{}, false
	}
	kind, bits, ok := basicKind(basic)
	if !ok {
		return semantic.TypeID{}, false
	}
	name := basic.Name()
	if basic.Info()&types.IsUntyped != 0 {
		name = ""
	}
	return semantic.TypeID{Name: name, Kind: kind, Bits: bits}, true
}

func basicKind(b *types.Basic) (numeric.Kind, int, bool) {
	switch b.Kind() {
	case types.Bool, types.UntypedBool:
		return numeric.Bool, 0, true
	case types.UntypedInt, types.UntypedRune:
		return numeric.Signed, 0, true
	case types.UntypedFloat:
		return numeric.Float, 0, true
	}
	if t, ok := numeric.Lookup(b.Name()); ok {
		return t.Kind, t.Bits, true
	}
	return 0, 0, false
}

// constraintKind is Float when any term of the constraint is a float type,
// Unsigned when every term is unsigned, and Signed otherwise.
func constraintKind(tp *types.TypeParam) numeric.Kind {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok {
		return numeric.Signed
	}
	var terms []*types.Term
	collectTerms(iface, &terms, 0)
	if len(terms) == 0 {
		return numeric.Signed
	}

	allUnsigned := true
	for _, term := range terms {
		b, ok := term.Type().Underlying().(*types.Basic)
		if !ok {
			allUnsigned = false
			continue
		}
		if b.Info()&types.IsFloat != 0 {
			return numeric.Float
		}
		if b.Info()&types.IsUnsigned == 0 {
			allUnsigned = false
		}
	}
	if allUnsigned {
		return numeric.Unsigned
	}
	return numeric.Signed
}

func collectTerms(iface *types.Interface, out *[]*types.Term, depth int) {
	if depth > 8 {
		return
	}
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		switch e := iface.EmbeddedType(i).(type) {
		case *types.Union:
			for j := 0; j < e.Len(); j++ {
				term := e.Term(j)
				if inner, ok := term.Type().Underlying().(*types.Interface); ok {
					collectTerms(inner, out, depth+1)
					continue
				}
				*out = append(*out, term)
			}
		default:
			if inner, ok := e.Underlying().(*types.Interface); ok {
				collectTerms(inner, out, depth+1)
			} else {
				*out = append(*out, types.NewTerm(false, e))
			}
		}
	}
}
