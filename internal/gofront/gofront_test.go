package gofront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/vk/genmaths/internal/testutil"
	"github.com/vk/genmaths/internal/value"
)

const mathxSource = `package mathx

//genmaths:types int32,uint8

type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

const scale = 4

//genmaths:specialize
func Lerp[T Number](a, b, t T) T {
	d := b - a
	d *= t
	return a + d
}

//genmaths:specialize
func Folded[T Number](x T) int32 {
	var y int32 = 2 + 3*scale
	return y
}

//genmaths:specialize
func Double[T Number](x T) T {
	return x * 2
}

//genmaths:specialize
func WithClosure[T Number](x T) T {
	f := func() T { return x }
	return f()
}

func Plain(x int) int { return x + 1 }
`

func loadTree(t *testing.T, files map[string]string) (*Package, *diag.Sources) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteTree(t, files)
	sources := diag.NewSources()
	pkg, err := Load(ctx, dir, sources)
	require.NoError(t, err)
	return pkg, sources
}

func names(vars []*value.Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func TestLoadAndAnalyze(t *testing.T) {
	pkg, sources := loadTree(t, map[string]string{
		"mathx.go":        mathxSource,
		"mathx_test.go":   "package mathx\n\nfunc broken( {",
		"old_genmaths.go": "package mathx\n\nfunc LerpInt32() {}\n",
	})
	assert.Equal(t, "mathx", pkg.Name)
	assert.Len(t, pkg.Files, 1)
	assert.Empty(t, pkg.Warnings)
	assert.Equal(t, []numeric.Type{numeric.Int32, numeric.Uint8}, pkg.TargetTypes)
	assert.Len(t, sources.Files(), 1)

	units := pkg.Units(numeric.Default())
	require.Len(t, units, 5)
	for _, u := range units {
		assert.Equal(t, pkg.TargetTypes, u.Types)
	}

	ctx, _ := testutil.Context(t)
	results, err := (&analysis.Batch{Workers: 2}).Run(ctx, units)
	require.NoError(t, err)
	require.Len(t, results, 4, "Plain is not marked")

	byName := map[string]*analysis.Result{}
	for _, r := range results {
		byName[r.Method] = r
	}

	t.Run("lerp", func(t *testing.T) {
		r := byName["Lerp"]
		require.True(t, r.OK(), "%v", r.Diagnostics)
		assert.Equal(t, []string{"a", "b", "t", "d", "d.1", "return"}, names(r.Variables))
		assert.Equal(t, "(a + ((b - a) * t))", r.Variables[5].Value.String())

		numbers := make([]int, len(r.Steps))
		for i, s := range r.Steps {
			numbers[i] = s.Number
		}
		assert.Equal(t, []int{1, 2, 3}, numbers)
	})

	t.Run("folded", func(t *testing.T) {
		r := byName["Folded"]
		require.True(t, r.OK(), "%v", r.Diagnostics)
		require.Len(t, r.Steps, 1)
		require.Len(t, r.Steps[0].Values, 1)
		c := r.Steps[0].Values[0].(*value.Constant)
		assert.Equal(t, "14", c.String())
		assert.Equal(t, numeric.Int32, c.Literal.Type)
	})

	t.Run("generic literal", func(t *testing.T) {
		r := byName["Double"]
		require.True(t, r.OK(), "%v", r.Diagnostics)
		mul := r.Variables[1].Value.(*value.Operation)
		two := mul.Operands[1].(*value.Constant)
		assert.True(t, two.Literal.Generic)
	})

	t.Run("closure", func(t *testing.T) {
		r := byName["WithClosure"]
		require.False(t, r.OK())
		assert.Empty(t, r.Steps)
		require.NotNil(t, r.Err())
		assert.Equal(t, diag.UnsupportedConstruct, r.Err().Kind)
		assert.Contains(t, r.Err().Message, "function literal")
	})
}

func TestConflictingTypesDirective(t *testing.T) {
	pkg, _ := loadTree(t, map[string]string{
		"a.go": "package p\n\n//genmaths:types int64\n",
		"b.go": "package p\n\n//genmaths:types uint16\n",
		"c.go": "package p\n\n//genmaths:types int64\n",
	})
	assert.Equal(t, []numeric.Type{numeric.Int64}, pkg.TargetTypes)
	require.Len(t, pkg.Warnings, 1)
	assert.Contains(t, pkg.Warnings[0].Summary, "Conflicting")
	assert.Contains(t, pkg.Warnings[0].Subject.Filename, "b.go")

	units := pkg.Units(numeric.Default())
	assert.Empty(t, units)
}

func TestInvalidTypesDirective(t *testing.T) {
	pkg, _ := loadTree(t, map[string]string{
		"a.go": "package p\n\n//genmaths:types int32,decimal\n\nfunc F() {}\n",
	})
	assert.Nil(t, pkg.TargetTypes)
	require.Len(t, pkg.Warnings, 1)
	assert.Contains(t, pkg.Warnings[0].Detail, "decimal")

	units := pkg.Units(numeric.Default())
	require.Len(t, units, 1)
	assert.Equal(t, numeric.Default(), units[0].Types)
}

func TestLowering(t *testing.T) {
	pkg, _ := loadTree(t, map[string]string{
		"p.go": `package p

func Versions(x int64) int64 {
	var acc int64
	acc = acc + x
	acc++
	x = x * 2
	a, b := x, acc
	a, b = b, a
	if a > b {
		return a
	}
	return a - b
}

type Vec struct{}

func (v *Vec) Len(n int32) int32 { return n << 1 }
`,
	})
	units := pkg.Units(nil)
	require.Len(t, units, 2)

	m := units[0].Method
	assert.Equal(t, "Versions", m.Name)
	assert.Equal(t, semantic.Symbol{Package: "p", Name: "Versions"}, m.Symbol)

	var decls []string
	for _, s := range m.Body {
		switch s := s.(type) {
		case *semantic.LocalDeclaration:
			decls = append(decls, s.Name)
		case *semantic.UnsupportedStatement:
			decls = append(decls, "!"+s.Description)
		case *semantic.Return:
			decls = append(decls, "return")
		}
	}
	assert.Equal(t, []string{"acc", "acc.1", "acc.2", "x.1", "a", "b", "a.1", "b.1", "!if statement", "return"}, decls)

	swap := m.Body[6].(*semantic.LocalDeclaration)
	assert.Equal(t, "b", swap.Init.(*semantic.LocalReference).Name)

	zero := m.Body[0].(*semantic.LocalDeclaration).Init.(*semantic.Literal)
	assert.Equal(t, "0", zero.Text)
	tid, ok := units[0].Oracle.TypeOf(zero)
	require.True(t, ok)
	assert.Equal(t, numeric.Int64, tid.Numeric())

	assert.Equal(t, "Vec.Len", units[1].Method.Name)
	ret := units[1].Method.Body[0].(*semantic.Return)
	assert.Equal(t, "<<", ret.Results[0].(*semantic.Binary).Operator)
	assert.NotNil(t, pkg.Func("Vec.Len"))
	assert.Nil(t, pkg.Func("Missing"))
}

func TestUntypedOperandsTakeContextType(t *testing.T) {
	pkg, _ := loadTree(t, map[string]string{
		"p.go": `package p

const k = 4

func Typed(x int64) int64 {
	var f float32 = 0.5 * 3
	var s uint8 = (250 + 5)
	c := x > 1+k
	_, _, _ = f, s, c
	return x + 2*k
}
`,
	})
	assert.Empty(t, pkg.Warnings)
	units := pkg.Units(nil)
	require.Len(t, units, 1)
	body, oracle := units[0].Method.Body, units[0].Oracle

	typeOf := func(e semantic.Expression) numeric.Type {
		t.Helper()
		tid, ok := oracle.TypeOf(e)
		require.True(t, ok, "no type for %T", e)
		return tid.Numeric()
	}

	f := body[0].(*semantic.LocalDeclaration).Init.(*semantic.Binary)
	assert.Equal(t, numeric.Float32, typeOf(f.Left))
	assert.Equal(t, numeric.Float32, typeOf(f.Right))

	s := body[1].(*semantic.LocalDeclaration).Init.(*semantic.Binary)
	assert.Equal(t, numeric.Uint8, typeOf(s.Left))
	assert.Equal(t, numeric.Uint8, typeOf(s.Right))

	cmpExpr := body[2].(*semantic.LocalDeclaration).Init.(*semantic.Binary)
	sum := cmpExpr.Right.(*semantic.Binary)
	assert.Equal(t, numeric.Int64, typeOf(sum.Left))
	assert.Equal(t, numeric.Int64, typeOf(sum.Right), "constant k")

	ret := body[3].(*semantic.Return).Results[0].(*semantic.Binary)
	mul := ret.Right.(*semantic.Binary)
	assert.Equal(t, numeric.Int64, typeOf(mul.Left))
	assert.Equal(t, numeric.Int64, typeOf(mul.Right))
}
