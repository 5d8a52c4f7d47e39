package render

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/hclfront"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/testutil"
)

const methods = `
method "sum" {
  params = [a, b]
  locals {
    d = a - b
  }
  result = d * 2
}

method "bad" {
  result = max(1, 2)
}
`

func results(t *testing.T) []*analysis.Result {
	t.Helper()
	ctx, _ := testutil.Context(t)
	root := testutil.WriteTree(t, map[string]string{"m.hcl": methods})
	units, diags := hclfront.Load(ctx, nil, []numeric.Type{numeric.Int32}, filepath.Join(root, "m.hcl"))
	require.False(t, diags.HasErrors(), diags.Error())
	res, err := (&analysis.Batch{Workers: 1}).Run(ctx, units)
	require.NoError(t, err)
	require.Len(t, res, 2)
	return res
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"", "text", "HCL", "json", "toml"} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("yaml")
	assert.ErrorContains(t, err, "want one of text, hcl, json, toml")
}

func TestNewPlan(t *testing.T) {
	p := NewPlan(results(t))
	require.Len(t, p.Methods, 2)

	sum := p.Methods[0]
	assert.Equal(t, "sum", sum.Name)
	assert.True(t, sum.OK)
	assert.Nil(t, sum.Error)
	assert.Equal(t, []string{"int32"}, sum.Types)
	assert.Equal(t, []string{"a", "b"}, sum.Params)
	assert.Equal(t, []VariablePlan{
		{Name: "d", Value: "(a - b)"},
		{Name: "return", Value: "((a - b) * 2)"},
	}, sum.Variables)
	require.Len(t, sum.Steps, 3)
	assert.Equal(t, StepPlan{Number: 0, Values: []string{"2"}, Required: []string{}}, sum.Steps[0])
	assert.Equal(t, StepPlan{Number: 1, Values: []string{"(a - b)"}, Required: []string{"a", "b"}}, sum.Steps[1])
	assert.Equal(t, 2, sum.Steps[2].Number)
	assert.ElementsMatch(t, []string{"(a - b)", "2"}, sum.Steps[2].Required)

	bad := p.Methods[1]
	assert.False(t, bad.OK)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "GM1001", bad.Error.Code)
	assert.Equal(t, "UnsupportedConstruct", bad.Error.Kind)
	assert.Empty(t, bad.Steps)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, results(t)))
	out := buf.String()
	assert.Contains(t, out, "method sum (")
	assert.Contains(t, out, "  types: int32\n")
	assert.Contains(t, out, "  params: a, b\n")
	assert.Contains(t, out, "  return = ((a - b) * 2)\n")
	assert.Contains(t, out, "  step 0: 2\n  step 1: (a - b)\n    requires: a, b\n")
	assert.Contains(t, out, "  failed: GM1001 call of max() is not supported\n")
}

func TestWriteHCL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, HCL, results(t)))

	f, diags := hclsyntax.ParseConfig(buf.Bytes(), "plan.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "%s\n%s", diags.Error(), buf.String())
	content, _, diags := f.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "method", LabelNames: []string{"name"}}},
	})
	require.False(t, diags.HasErrors())
	require.Len(t, content.Blocks, 2)
	assert.Equal(t, []string{"sum"}, content.Blocks[0].Labels)

	assert.Contains(t, buf.String(), `step "1" {`)
	assert.Contains(t, buf.String(), `params = ["a", "b"]`)
	assert.Contains(t, buf.String(), `code    = "GM1001"`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, results(t)))

	var got Plan
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, NewPlan(results(t)).Methods[0].Variables, got.Methods[0].Variables)
	assert.Contains(t, buf.String(), `"steps": []`)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TOML, results(t)))

	var got Plan
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err, buf.String())
	require.Len(t, got.Methods, 2)
	assert.Equal(t, "sum", got.Methods[0].Name)
	assert.Len(t, got.Methods[0].Steps, 3)
	assert.Equal(t, "GM1001", got.Methods[1].Error.Code)
}
