package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/render"
	"github.com/vk/genmaths/internal/testutil"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	root := testutil.WriteTree(t, map[string]string{FileName: src})
	return filepath.Join(root, FileName)
}

func TestDefaults(t *testing.T) {
	o := Defaults()
	assert.Equal(t, numeric.Default(), o.PossibleTypes)
	assert.True(t, o.Refold)
	assert.Equal(t, render.Text, o.Format)
	assert.NoError(t, o.Validate())
}

func TestLoadFile(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want func(o *Options)
	}{
		{
			name: "string list",
			src:  "genmaths {\n  generic_maths_possible_types = \"int32, System.Byte\"\n}\n",
			want: func(o *Options) { o.PossibleTypes = []numeric.Type{numeric.Int32, numeric.Uint8} },
		},
		{
			name: "keyword list",
			src:  "genmaths {\n  generic_maths_possible_types = [float64, int16]\n}\n",
			want: func(o *Options) { o.PossibleTypes = []numeric.Type{numeric.Float64, numeric.Int16} },
		},
		{
			name: "blank string falls back to default",
			src:  "genmaths {\n  generic_maths_possible_types = \" \"\n}\n",
			want: func(o *Options) {},
		},
		{
			name: "other settings",
			src:  "genmaths {\n  refold  = false\n  workers = 3\n  format  = \"json\"\n  emit    = true\n}\n",
			want: func(o *Options) {
				o.Refold = false
				o.Workers = 3
				o.Format = render.JSON
				o.Emit = true
			},
		},
		{
			name: "no genmaths block",
			src:  "method \"m\" {\n  result = 1\n}\n",
			want: func(o *Options) {},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Defaults()
			diags := LoadFile(writeConfig(t, tc.src), &got, nil)
			testutil.RequireNoErrors(t, diags)

			want := Defaults()
			tc.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		summary string
	}{
		{name: "unknown type", src: "genmaths {\n  generic_maths_possible_types = \"int32, decimal\"\n}\n", summary: "Invalid generic_maths_possible_types"},
		{name: "unknown keyword", src: "genmaths {\n  generic_maths_possible_types = [decimal]\n}\n", summary: "Unsupported type"},
		{name: "bad format", src: "genmaths {\n  format = \"xml\"\n}\n", summary: "Invalid format"},
		{name: "duplicate block", src: "genmaths {}\ngenmaths {}\n", summary: "Duplicate \"genmaths\" block"},
		{name: "unknown attribute", src: "genmaths {\n  color = true\n}\n", summary: "Unsupported argument"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := Defaults()
			diags := LoadFile(writeConfig(t, tc.src), &o, nil)
			testutil.RequireErrorSummary(t, diags, tc.summary)
			assert.Equal(t, numeric.Default(), o.PossibleTypes)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		o := Defaults()
		diags := LoadFile(filepath.Join(t.TempDir(), FileName), &o, nil)
		testutil.RequireErrorSummary(t, diags, "Failed to read configuration")
	})
}

func TestLoadFileRegistersSource(t *testing.T) {
	sources := diag.NewSources()
	o := Defaults()
	path := writeConfig(t, "genmaths {}\n")
	require.False(t, LoadFile(path, &o, sources).HasErrors())
	assert.Contains(t, sources.Files(), path)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPossibleTypes, "long,ulong")
	t.Setenv(EnvRefold, "false")
	t.Setenv(EnvWorkers, "7")
	t.Setenv(EnvFormat, "hcl")

	o := Defaults()
	require.NoError(t, o.ApplyEnv())
	assert.Equal(t, []numeric.Type{numeric.Int64, numeric.Uint64}, o.PossibleTypes)
	assert.False(t, o.Refold)
	assert.Equal(t, 7, o.Workers)
	assert.Equal(t, render.HCL, o.Format)
}

func TestApplyEnvSeesLaterChanges(t *testing.T) {
	t.Setenv(EnvWorkers, "3")
	o := Defaults()
	require.NoError(t, o.ApplyEnv())
	assert.Equal(t, 3, o.Workers)

	t.Setenv(EnvWorkers, "9")
	t.Setenv(EnvFormat, "toml")
	require.NoError(t, o.ApplyEnv())
	assert.Equal(t, 9, o.Workers)
	assert.Equal(t, render.TOML, o.Format)
}

func TestApplyEnvErrors(t *testing.T) {
	testCases := map[string]string{
		EnvPossibleTypes: "int32,decimal",
		EnvWorkers:       "many",
		EnvFormat:        "xml",
	}
	for name, val := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, val)
			o := Defaults()
			assert.ErrorContains(t, o.ApplyEnv(), name)
		})
	}
}

func TestValidate(t *testing.T) {
	o := Defaults()
	o.PossibleTypes = nil
	o.Workers = -1
	o.Format = "xml"
	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one type")
	assert.Contains(t, err.Error(), "negative")
	assert.Contains(t, err.Error(), "unknown format")
}
