package specialize

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/gofront"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/testutil"
)

const source = `package mathx

type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

//genmaths:specialize
func Lerp[T Signed](a, b, t T) T {
	d := b - a
	return a + d*t
}

//genmaths:specialize
func Square[T any](x T) int32 {
	return 2
}

//genmaths:specialize
func Plain(x int32) int32 {
	return x + 1
}

//genmaths:specialize
func Broken[T Signed](x T) T {
	f := func() T { return x }
	return f()
}
`

func analyze(t *testing.T, targets []numeric.Type) (*gofront.Package, []*analysis.Result) {
	t.Helper()
	return analyzeSource(t, source, targets)
}

func analyzeSource(t *testing.T, src string, targets []numeric.Type) (*gofront.Package, []*analysis.Result) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteTree(t, map[string]string{"mathx.go": src})
	pkg, err := gofront.Load(ctx, dir, diag.NewSources())
	require.NoError(t, err)
	results, err := (&analysis.Batch{Workers: 1}).Run(ctx, pkg.Units(targets))
	require.NoError(t, err)
	return pkg, results
}

func TestPackage(t *testing.T) {
	pkg, results := analyze(t, []numeric.Type{numeric.Uint8, numeric.Int32})
	ctx, logs := testutil.Context(t)

	out, err := Package(ctx, pkg, results)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, filepath.Join(pkg.Dir, "mathx_genmaths.go"), out.Path)
	assert.Equal(t, []string{"LerpInt32", "SquareUint8", "SquareInt32"}, out.Funcs)
	assert.True(t, IsGenerated(out.Source))

	src := string(out.Source)
	assert.Contains(t, src, "package mathx")
	assert.Contains(t, src, "func LerpInt32(a, b, t int32) int32 {")
	assert.Contains(t, src, "func SquareUint8(x uint8) int32 {")
	assert.NotContains(t, src, "genmaths:specialize")
	assert.NotContains(t, src, "Broken")

	_, err = parser.ParseFile(token.NewFileSet(), out.Path, out.Source, 0)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "Type does not satisfy constraint, skipping.")
	assert.Contains(t, logs.String(), "method=Plain")
}

func TestPackageNothingToEmit(t *testing.T) {
	pkg, results := analyze(t, []numeric.Type{numeric.Uint8})
	var only []*analysis.Result
	for _, r := range results {
		if r.Method == "Plain" || r.Method == "Broken" {
			only = append(only, r)
		}
	}
	ctx, _ := testutil.Context(t)
	out, err := Package(ctx, pkg, only)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPackageImports(t *testing.T) {
	pkg, results := analyzeSource(t, `package mathx

import tm "time"

type Number interface {
	~int32 | ~int64
}

//genmaths:specialize
func Ticks[T Number](n T) int64 {
	d := tm.Duration(n) * 2
	return int64(d)
}
`, []numeric.Type{numeric.Int32})
	require.Empty(t, pkg.Warnings)
	ctx, _ := testutil.Context(t)

	out, err := Package(ctx, pkg, results)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, []string{"TicksInt32"}, out.Funcs)

	file, err := parser.ParseFile(token.NewFileSet(), out.Path, out.Source, parser.ImportsOnly)
	require.NoError(t, err)
	require.Len(t, file.Imports, 1)
	assert.Equal(t, `"time"`, file.Imports[0].Path.Value)
	require.NotNil(t, file.Imports[0].Name)
	assert.Equal(t, "tm", file.Imports[0].Name.Name)
	assert.Contains(t, string(out.Source), "d := tm.Duration(n) * 2")
	assert.True(t, IsGenerated(out.Source), "header stays first")
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()

	removed, err := RemoveStale(filepath.Join(dir, "missing_genmaths.go"))
	require.NoError(t, err)
	assert.False(t, removed)

	generated := filepath.Join(dir, "p_genmaths.go")
	require.NoError(t, os.WriteFile(generated, []byte(Header+"\n\npackage p\n"), 0o644))
	removed, err = RemoveStale(generated)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, generated)

	handWritten := filepath.Join(dir, "q_genmaths.go")
	require.NoError(t, os.WriteFile(handWritten, []byte("package p\n"), 0o644))
	removed, err = RemoveStale(handWritten)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.FileExists(t, handWritten)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	out := &Output{Path: filepath.Join(dir, "p_genmaths.go"), Source: []byte(Header + "\n\npackage p\n")}
	require.NoError(t, out.Write())
	require.NoError(t, out.Write(), "generated files are overwritten")

	handWritten := filepath.Join(dir, "q_genmaths.go")
	require.NoError(t, os.WriteFile(handWritten, []byte("package p\n"), 0o644))
	out.Path = handWritten
	assert.ErrorContains(t, out.Write(), "not generated by genmaths")
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "Uint64", Suffix(numeric.Uint64))
	assert.Equal(t, "Float32", Suffix(numeric.Float32))
}
