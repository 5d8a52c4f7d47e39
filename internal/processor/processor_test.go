package processor

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/ctxlog"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/value"
)

var valueCmp = cmp.Comparer(func(a, b value.Value) bool { return value.Identical(a, b) })

func i32(v int64) *value.Constant { return value.NewConstant(numeric.Int(numeric.Int32, v)) }

func op(o value.Operator, operands ...value.Value) *value.Operation {
	return value.NewOperation(o, operands...)
}

func ref(v *value.Variable) *value.VariableRef { return value.NewRef(v) }

func roots(vars []*value.Variable) []value.Value {
	out := make([]value.Value, len(vars))
	for i, v := range vars {
		out[i] = v.Value
	}
	return out
}

func TestConstantFolder(t *testing.T) {
	t.Run("folds nested arithmetic", func(t *testing.T) {
		x := &value.Variable{Name: "x", Value: op(value.Add, i32(2), op(value.Multiply, i32(3), i32(4)))}
		vars, err := ConstantFolder{}.Process([]*value.Variable{x})
		require.NoError(t, err)

		c, ok := vars[0].Value.(*value.Constant)
		require.True(t, ok)
		assert.Equal(t, "14", c.String())
		assert.Equal(t, 0, c.Step())
	})

	t.Run("division by zero is kept", func(t *testing.T) {
		div := op(value.Divide, i32(1), i32(0))
		x := &value.Variable{Name: "x", Value: op(value.Add, div, i32(1))}
		_, err := ConstantFolder{}.Process([]*value.Variable{x})
		require.NoError(t, err)
		assert.Same(t, x.Value.Children()[0], div)
	})

	t.Run("partially constant operations fold their constant operands", func(t *testing.T) {
		p := &value.Variable{Name: "p", Parameter: true}
		x := &value.Variable{Name: "x", Value: op(value.Add, ref(p), op(value.Subtract, i32(5), i32(2)))}
		_, err := ConstantFolder{}.Process([]*value.Variable{p, x})
		require.NoError(t, err)
		assert.Equal(t, "(p + 3)", x.Value.String())
		assert.Equal(t, 1, x.Value.Step())
	})

	t.Run("folding twice yields the identical graph", func(t *testing.T) {
		p := &value.Variable{Name: "p", Parameter: true}
		x := &value.Variable{Name: "x", Value: op(value.Multiply,
			op(value.Add, ref(p), i32(1)),
			op(value.Negate, op(value.Add, i32(1), i32(1))),
		)}
		vars := []*value.Variable{p, x}

		_, err := ConstantFolder{}.Process(vars)
		require.NoError(t, err)
		once := x.Value

		_, err = ConstantFolder{}.Process(vars)
		require.NoError(t, err)
		assert.Same(t, once, x.Value)
		assert.Equal(t, "((p + 1) * -2)", x.Value.String())
	})

	t.Run("comparison folds to a bool", func(t *testing.T) {
		x := &value.Variable{Name: "x", Value: op(value.LessEqual, i32(2), i32(2))}
		_, err := ConstantFolder{}.Process([]*value.Variable{x})
		require.NoError(t, err)
		assert.Equal(t, "true", x.Value.String())
	})
}

func TestVariableInliner(t *testing.T) {
	t.Run("substitutes definitions and keeps parameters", func(t *testing.T) {
		p := &value.Variable{Name: "p", Parameter: true}
		a := &value.Variable{Name: "a", Value: op(value.Add, ref(p), i32(1))}
		b := &value.Variable{Name: "b", Value: op(value.Multiply, ref(a), ref(a))}
		ret := &value.Variable{Name: "return", Value: op(value.Subtract, ref(b), ref(a))}
		vars := []*value.Variable{p, ret, b, a}

		_, err := VariableInliner{}.Process(vars)
		require.NoError(t, err)

		want := []value.Value{
			nil,
			op(value.Subtract,
				op(value.Multiply, op(value.Add, ref(p), i32(1)), op(value.Add, ref(p), i32(1))),
				op(value.Add, ref(p), i32(1))),
			op(value.Multiply, op(value.Add, ref(p), i32(1)), op(value.Add, ref(p), i32(1))),
			op(value.Add, ref(p), i32(1)),
		}
		if diff := cmp.Diff(want, roots(vars), valueCmp); diff != "" {
			t.Errorf("inlined graph mismatch (-want +got):\n%s", diff)
		}

		// The definition of a is shared, not copied.
		mul := b.Value.(*value.Operation)
		assert.Same(t, a.Value, mul.Operands[0])
		assert.Same(t, a.Value, mul.Operands[1])
		assert.Same(t, b.Value, ret.Value.Children()[0])
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		p := &value.Variable{Name: "p", Parameter: true}
		a := &value.Variable{Name: "a", Value: op(value.Add, ref(p), i32(1))}
		b := &value.Variable{Name: "b", Value: op(value.Negate, ref(a))}
		vars := []*value.Variable{p, a, b}

		_, err := VariableInliner{}.Process(vars)
		require.NoError(t, err)
		first := roots(vars)

		_, err = VariableInliner{}.Process(vars)
		require.NoError(t, err)
		for i, v := range roots(vars) {
			if first[i] == nil {
				assert.Nil(t, v, "parameter %s", vars[i].Name)
				continue
			}
			assert.Same(t, first[i], v)
		}
	})

	t.Run("self reference is cyclic", func(t *testing.T) {
		a := &value.Variable{Name: "a"}
		a.Value = op(value.Add, ref(a), i32(1))

		_, err := VariableInliner{}.Process([]*value.Variable{a})
		var de *diag.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, diag.CyclicDefinition, de.Kind)
		assert.Equal(t, []string{"a", "a"}, de.Path)
	})

	t.Run("mutual aliasing is cyclic", func(t *testing.T) {
		a := &value.Variable{Name: "a"}
		b := &value.Variable{Name: "b"}
		c := &value.Variable{Name: "c"}
		a.Value = op(value.Add, ref(b), i32(1))
		b.Value = ref(c)
		c.Value = ref(a)

		_, err := VariableInliner{}.Process([]*value.Variable{a, b, c})
		var de *diag.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, diag.CyclicDefinition, de.Kind)
		assert.Equal(t, []string{"a", "b", "c", "a"}, de.Path)
	})

	t.Run("reference to a foreign variable is an internal fault", func(t *testing.T) {
		stray := &value.Variable{Name: "stray", Value: i32(1)}
		a := &value.Variable{Name: "a", Value: ref(stray)}
		_, err := VariableInliner{}.Process([]*value.Variable{a})
		assert.Equal(t, diag.InternalFault, diag.KindOf(err))
	})
}

func TestPipeline(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	t.Run("default order", func(t *testing.T) {
		assert.Equal(t, []string{"constant-folder", "variable-inliner"}, DefaultPipeline().Names())
		assert.Equal(t,
			[]string{"constant-folder", "variable-inliner", "constant-folder"},
			DefaultPipeline().WithRefold().Names())
	})

	t.Run("generic parameter example", func(t *testing.T) {
		gp := &value.Variable{Name: "genericParam", Parameter: true}
		y := &value.Variable{Name: "y", Value: op(value.Add, ref(gp), value.NewConstant(numeric.FloatOf(numeric.Float32, 1)))}

		vars, err := DefaultPipeline().Run(ctx, []*value.Variable{gp, y})
		require.NoError(t, err)
		assert.Equal(t, "(genericParam + 1.0)", vars[1].Value.String())
		assert.NoError(t, CheckSteps(vars))
	})

	t.Run("refold folds constants exposed by inlining", func(t *testing.T) {
		a := &value.Variable{Name: "a", Value: i32(2)}
		b := &value.Variable{Name: "b", Value: op(value.Multiply, ref(a), i32(21))}
		vars := []*value.Variable{a, b}

		_, err := DefaultPipeline().Run(ctx, vars)
		require.NoError(t, err)
		assert.Equal(t, "(2 * 21)", b.Value.String())

		_, err = DefaultPipeline().WithRefold().Run(ctx, vars)
		require.NoError(t, err)
		assert.Equal(t, "42", b.Value.String())
	})

	t.Run("errors name the failing pass", func(t *testing.T) {
		a := &value.Variable{Name: "a"}
		a.Value = ref(a)
		_, err := DefaultPipeline().Run(ctx, []*value.Variable{a})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "variable-inliner")
		assert.Equal(t, diag.CyclicDefinition, diag.KindOf(err))
	})

	t.Run("cancelled context stops the pipeline", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := DefaultPipeline().Run(cctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("a pass breaking the step invariant is an internal fault", func(t *testing.T) {
		bad := &value.Variable{Name: "bad", Value: &value.Operation{Op: value.Negate, Operands: []value.Value{op(value.Negate, i32(1))}}}
		_, err := Pipeline{}.Run(ctx, []*value.Variable{bad})
		require.NoError(t, err, "an empty pipeline checks nothing")

		err = CheckSteps([]*value.Variable{bad})
		assert.Equal(t, diag.InternalFault, diag.KindOf(err))
	})
}

// doublingChain defines x0 = p + p and every further local as the sum of the
// previous one with itself, so the inlined graph has 2^n paths but n nodes.
func doublingChain(n int) []*value.Variable {
	p := &value.Variable{Name: "p", Parameter: true}
	vars := []*value.Variable{p}
	prev := p
	for i := 0; i < n; i++ {
		x := &value.Variable{Name: "x" + strconv.Itoa(i), Value: op(value.Add, ref(prev), ref(prev))}
		vars = append(vars, x)
		prev = x
	}
	return vars
}

func TestPipelineSharedSubtrees(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	vars := doublingChain(64)

	out, err := DefaultPipeline().WithRefold().Run(ctx, vars)
	require.NoError(t, err)

	last := out[len(out)-1].Value.(*value.Operation)
	assert.Equal(t, 64, last.Step())
	assert.Same(t, last.Operands[0], last.Operands[1])
	assert.Same(t, out[len(out)-2].Value, last.Operands[0])
	assert.Equal(t, []*value.Variable{out[0]}, value.Refs(last))
	require.NoError(t, CheckSteps(out))
}

func TestEvaluate(t *testing.T) {
	_, err := Evaluate(value.Add, i32(1).Literal)
	assert.Equal(t, diag.InternalFault, diag.KindOf(err))

	got, err := Evaluate(value.Modulo, i32(7).Literal, i32(4).Literal)
	require.NoError(t, err)
	assert.Equal(t, "3", got.String())

	_, err = Evaluate(value.Divide, i32(7).Literal, i32(0).Literal)
	assert.ErrorIs(t, err, numeric.ErrNoFold)
}
