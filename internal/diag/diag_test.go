package diag

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(file string, line int) hcl.Range {
	return hcl.Range{
		Filename: file,
		Start:    hcl.Pos{Line: line, Column: 1, Byte: 0},
		End:      hcl.Pos{Line: line, Column: 6, Byte: 5},
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "GM1001", UnsupportedConstruct.Code())
	assert.Equal(t, "GM1002", UnsupportedOperator.Code())
	assert.Equal(t, "GM1003", CyclicDefinition.Code())
	assert.Equal(t, "GM1999", InternalFault.Code())
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("walk: %w", Operator(rng("a.go", 1), "<<"))
	assert.Equal(t, UnsupportedOperator, KindOf(err))
	assert.Equal(t, InternalFault, KindOf(errors.New("boom")))
}

func TestCyclicMessage(t *testing.T) {
	self := Cyclic(rng("a.hcl", 2), []string{"a", "a"})
	assert.Equal(t, "variable a depends on itself", self.Message)

	mutual := Cyclic(rng("a.hcl", 2), []string{"a", "b", "a"})
	assert.Equal(t, "variables form a cycle: a -> b -> a", mutual.Message)
	assert.Equal(t, []string{"a", "b", "a"}, mutual.Path)
}

func TestToDiagnostic(t *testing.T) {
	t.Run("classified error keeps its subject", func(t *testing.T) {
		err := Unsupported(rng("m.go", 4), "closures are not supported")
		d := ToDiagnostic("Lerp", rng("m.go", 1), err)

		assert.Equal(t, hcl.DiagError, d.Severity)
		assert.Equal(t, "GM1001 Unsupported construct in Lerp", d.Summary)
		assert.Equal(t, "closures are not supported", d.Detail)
		require.NotNil(t, d.Subject)
		assert.Equal(t, 4, d.Subject.Start.Line)

		back, ok := FromDiagnostic(d)
		require.True(t, ok)
		assert.Same(t, err, back)
	})

	t.Run("unknown error becomes an internal fault at the fallback", func(t *testing.T) {
		d := ToDiagnostic("Lerp", rng("m.go", 1), errors.New("index out of range"))
		assert.Equal(t, "GM1999 Internal fault in Lerp", d.Summary)
		assert.Equal(t, 1, d.Subject.Start.Line)
		e, ok := FromDiagnostic(d)
		require.True(t, ok)
		assert.Equal(t, InternalFault, e.Kind)
	})
}

func TestWrite(t *testing.T) {
	src := []byte("x := a << 2\n")
	sources := NewSources()
	sources.AddBytes("m.go", src)

	subject := hcl.Range{
		Filename: "m.go",
		Start:    hcl.Pos{Line: 1, Column: 6, Byte: 5},
		End:      hcl.Pos{Line: 1, Column: 12, Byte: 11},
	}
	diags := hcl.Diagnostics{ToDiagnostic("Shift", subject, Operator(subject, "<<"))}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sources, diags, false))
	out := buf.String()
	assert.Contains(t, out, "GM1002 Unsupported operator in Shift")
	assert.Contains(t, out, `operator "<<" is not supported`)
	assert.Contains(t, out, "x := a << 2")
}
