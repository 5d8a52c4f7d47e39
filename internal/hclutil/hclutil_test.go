package hclutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/numeric"
)

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestTypeKeyword(t *testing.T) {
	got, diags := TypeKeyword(parseExpr(t, "int32"))
	require.False(t, diags.HasErrors())
	assert.Equal(t, numeric.Int32, got)

	got, diags = TypeKeyword(parseExpr(t, `"System.UInt16"`))
	require.False(t, diags.HasErrors())
	assert.Equal(t, numeric.Uint16, got)

	_, diags = TypeKeyword(parseExpr(t, "decimal"))
	require.True(t, diags.HasErrors())
	assert.Equal(t, "Unsupported type", diags[0].Summary)

	_, diags = TypeKeyword(parseExpr(t, "a + b"))
	require.True(t, diags.HasErrors())
	assert.Equal(t, "Invalid type specification", diags[0].Summary)
}

func TestTypeList(t *testing.T) {
	got, diags := TypeList(parseExpr(t, `[uint8, "sbyte", uint8]`))
	require.False(t, diags.HasErrors())
	assert.Equal(t, []numeric.Type{numeric.Uint8, numeric.Int8}, got)

	_, diags = TypeList(parseExpr(t, `"int32"`))
	assert.True(t, diags.HasErrors())
}

func TestFindUniqueBlock(t *testing.T) {
	f, diags := hclsyntax.ParseConfig([]byte("a {}\nb {}\na {}\n"), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors())
	content, diags := f.Body.Content(&hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{{Type: "a"}, {Type: "b"}}})
	require.False(t, diags.HasErrors())

	block, diags := FindUniqueBlock(content.Blocks, "a")
	require.NotNil(t, block)
	assert.Equal(t, 1, block.DefRange.Start.Line)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Subject.Start.Line)

	block, diags = FindUniqueBlock(content.Blocks, "c")
	assert.Nil(t, block)
	assert.Empty(t, diags)
}

func TestTraversalKey(t *testing.T) {
	expr := parseExpr(t, "var.foo[0].bar")
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	require.False(t, diags.HasErrors())
	assert.Equal(t, "var.foo[0].bar", TraversalKey(traversal))
}
