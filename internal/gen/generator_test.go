package gen

import (
	"errors"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"owngen/internal/analyze"
	"owngen/internal/diagnostic"
)

func load(t *testing.T, cfg analyze.LoaderConfig, patterns ...string) []*analyze.Package {
	t.Helper()

	pkgs, err := analyze.NewLoader(cfg, zaptest.NewLogger(t)).Load(patterns...)
	require.NoError(t, err)

	return pkgs
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return NewGenerator(DefaultGeneratorConfig(), zaptest.NewLogger(t))
}

func descriptor(t *testing.T, pkg *analyze.Package, name string) *analyze.TypeDescriptor {
	t.Helper()

	obj, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
	require.True(t, ok, "type %s not found", name)

	desc, err := pkg.Extract(obj)
	require.NoError(t, err)

	return desc
}

func TestGenerator_Generate_MatchesCheckedInOutput(t *testing.T) {
	for _, pattern := range []string{"owngen/examples/borrowed", "owngen/examples/containers"} {
		t.Run(filepath.Base(pattern), func(t *testing.T) {
			files, err := newTestGenerator(t).Generate(load(t, analyze.LoaderConfig{}, pattern))
			require.NoError(t, err)
			require.Len(t, files, 1)

			assert.Equal(t, analyze.DefaultOutput, files[0].Filename)
			assert.True(t, analyze.IsGenerated(files[0].Content))

			if err := Check(files); err != nil {
				t.Errorf("checked-in output differs from generated output: %v\ngenerated:\n%s", err, files[0].Content)
			}
		})
	}
}

func TestGenerator_Generate_Borrowed(t *testing.T) {
	files, err := newTestGenerator(t).Generate(load(t, analyze.LoaderConfig{}, "owngen/examples/borrowed"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := string(files[0].Content)

	// Named struct: keyed literal, markers erased positionally
	assert.Contains(t, content, "func (v Foo[_, _, T]) IntoOwned() Foo[owned.Static, owned.Static, T] {")
	assert.Contains(t, content, "ViewA: v.ViewA.IntoOwned(),")
	assert.Contains(t, content, "N:     v.N,")

	// Tuple struct: positional literal
	assert.Contains(t, content, "Bar[owned.Static, owned.Static, T]{v.V0.IntoOwned(), v.V1.IntoOwned(), v.V2, v.V3}")

	// Unit struct: identity
	assert.Contains(t, content, "func (v Unit) IntoOwned() Unit {\n\treturn v\n}")

	// Enum: every variant listed, nil and unknown variants handled
	assert.Contains(t, content, "func IntoOwnedEnumeration[S owned.Scope](v Enumeration[S]) Enumeration[owned.Static] {")
	assert.Contains(t, content, "\tcase nil:\n\t\treturn nil\n")

	for _, c := range []string{"case A:", "case *B:", "case C[S]:", "case D[S]:"} {
		assert.Contains(t, content, c)
	}

	assert.Contains(t, content, "return (*B)(nil)")
	assert.Contains(t, content, `panic(fmt.Sprintf("owngen: %T is not a variant of Enumeration", v))`)
	assert.Contains(t, content, "func (v C[_]) IntoOwned() C[owned.Static] {")
}

func TestGenerator_Generate_WithoutComments(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.GenerateComments = false

	files, err := NewGenerator(cfg, nil).Generate(load(t, analyze.LoaderConfig{}, "owngen/examples/borrowed"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := string(files[0].Content)
	assert.NotContains(t, content, "// IntoOwned returns")
	assert.Contains(t, content, "// "+analyze.GeneratedMarker)
}

func TestGenerator_Generate_CustomOutput(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Output = "zz_owned.go"

	pkgs := load(t, analyze.LoaderConfig{Output: cfg.Output}, "owngen/examples/borrowed")

	files, err := NewGenerator(cfg, nil).Generate(pkgs)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "zz_owned.go", files[0].Filename)
	assert.Equal(t, pkgs[0].Dir, files[0].Dir)
}

func TestGenerator_Generate_RejectedIsAllOrNothing(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{}, "owngen/examples/borrowed", "owngen/examples/rejected")

	files, err := newTestGenerator(t).Generate(pkgs)
	require.Error(t, err)
	assert.Nil(t, files)

	assert.ErrorIs(t, err, analyze.ErrUnsupportedKind)
	assert.ErrorIs(t, err, analyze.ErrUnsupportedFeature)
	assert.ErrorIs(t, err, analyze.ErrAlreadyImplemented)
	assert.ErrorContains(t, err, "owngen/examples/rejected.Sized")
}

func TestGenerator_Plan(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{}, "owngen/examples/rejected")

	p, err := newTestGenerator(t).Plan(pkgs)
	require.Error(t, err)
	require.Len(t, p.Packages, 1)

	codes := make(map[string]string)
	for _, d := range p.Diagnostics.Errors {
		codes[d.Decl] = d.Code
	}

	assert.Equal(t, map[string]string{
		"owngen/examples/rejected.Sized":    diagnostic.CodeUnsupportedFeature,
		"owngen/examples/rejected.Number":   diagnostic.CodeUnsupportedKind,
		"owngen/examples/rejected.Celsius":  diagnostic.CodeUnsupportedKind,
		"owngen/examples/rejected.Manual":   diagnostic.CodeAlreadyImplemented,
		"owngen/examples/rejected.Open":     diagnostic.CodeUnsupportedKind,
		"owngen/examples/rejected.Mismatch": diagnostic.CodeUnsupportedFeature,
		"owngen/examples/rejected.Blank":    diagnostic.CodeUnsupportedFeature,
	}, codes)

	// Field conversions are only checked during generation.
	var names []string
	for _, desc := range p.Packages[0].Descriptors {
		names = append(names, desc.Name)
	}

	assert.Equal(t, []string{"Pinned", "Locked"}, names)

	_, err = newTestGenerator(t).GeneratePackage(p, p.Packages[0])
	require.ErrorIs(t, err, ErrNotConvertible)
	assert.ErrorContains(t, err, "Pinned.View")
	assert.ErrorContains(t, err, "Locked.Mu")
}

func TestGenerator_Plan_SkipsVariantDeclarations(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{Types: []string{"owngen/examples/borrowed.A"}}, "owngen/examples/borrowed")

	g := newTestGenerator(t)

	p, err := g.Plan(pkgs)
	require.NoError(t, err)
	require.Len(t, p.Diagnostics.Infos, 1)
	assert.Equal(t, diagnostic.CodeSkipped, p.Diagnostics.Infos[0].Code)
	assert.Equal(t, "owngen/examples/borrowed.A", p.Diagnostics.Infos[0].Decl)

	files, err := g.Generate(pkgs)
	require.NoError(t, err)
	assert.NoError(t, Check(files))
}

func TestGenerator_GeneratePackage_ObsoleteOutput(t *testing.T) {
	dir := t.TempDir()
	pkg := &analyze.Package{
		Path:      "example.com/empty",
		Name:      "empty",
		Dir:       dir,
		Generated: []string{filepath.Join(dir, analyze.DefaultOutput)},
	}

	g := newTestGenerator(t)
	p := &Plan{known: make(knownSet)}

	file, err := g.GeneratePackage(p, &PackagePlan{Package: pkg})
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Nil(t, file.Content)
	assert.Equal(t, filepath.Join(dir, analyze.DefaultOutput), file.Path())

	pkg.Generated = nil

	file, err = g.GeneratePackage(p, &PackagePlan{Package: pkg})
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestGenerator_Synthesize(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{}, "owngen/examples/borrowed")
	g := newTestGenerator(t)

	src, err := g.Synthesize(descriptor(t, pkgs[0], "Foo"))
	require.NoError(t, err)

	assert.Contains(t, src, "package borrowed")
	assert.Contains(t, src, `"owngen/owned"`)
	assert.NotContains(t, src, `"fmt"`)
	assert.Contains(t, src, "func (v Foo[_, _, T]) IntoOwned() Foo[owned.Static, owned.Static, T] {")

	src, err = g.Synthesize(descriptor(t, pkgs[0], "Unit"))
	require.NoError(t, err)
	assert.NotContains(t, src, "import")
}

func TestGenerator_Synthesize_ConstParamProducesNothing(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{}, "owngen/examples/borrowed")

	desc := descriptor(t, pkgs[0], "Foo")
	desc.Params = append(desc.Params, analyze.Param{Name: "N", Role: analyze.RoleConst})

	src, err := newTestGenerator(t).Synthesize(desc)
	require.ErrorIs(t, err, analyze.ErrUnsupportedFeature)
	assert.Empty(t, src)
}

func TestGenerator_Synthesize_NotConvertible(t *testing.T) {
	pkgs := load(t, analyze.LoaderConfig{}, "owngen/examples/rejected")
	g := newTestGenerator(t)

	tests := []struct {
		name  string
		field string
	}{
		{"Pinned", "Pinned.View"},
		{"Locked", "Locked.Mu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := g.Synthesize(descriptor(t, pkgs[0], tt.name))
			require.ErrorIs(t, err, ErrNotConvertible)
			assert.Empty(t, src)
			assert.Equal(t, tt.field, fieldOf(err))
			assert.Equal(t, diagnostic.CodeNotConvertible, errorCode(err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, diagnostic.CodeUnsupportedKind, errorCode(analyze.ErrUnsupportedKind))
	assert.Equal(t, diagnostic.CodeUnsupportedFeature, errorCode(analyze.ErrUnsupportedFeature))
	assert.Equal(t, diagnostic.CodeAlreadyImplemented, errorCode(analyze.ErrAlreadyImplemented))
	assert.Empty(t, errorCode(errors.New("other")))
}

func TestEnumFuncName(t *testing.T) {
	assert.Equal(t, "IntoOwnedShape", enumFuncName("Shape"))
	assert.Equal(t, "intoOwnedShape", enumFuncName("shape"))
}

func TestWriteFiles_And_Check(t *testing.T) {
	dir := t.TempDir()
	files := []GeneratedFile{
		{Dir: dir, Filename: "a_gen.go", Content: []byte("package a\n")},
		{Dir: filepath.Join(dir, "sub"), Filename: "b_gen.go", Content: []byte("package b\n")},
	}

	err := Check(files)
	require.ErrorIs(t, err, ErrStale)
	assert.ErrorContains(t, err, "missing")

	require.NoError(t, WriteFiles(files))
	require.NoError(t, Check(files))

	files[0].Content = []byte("package a\n\nvar X int\n")
	err = Check(files)
	require.ErrorIs(t, err, ErrStale)
	assert.ErrorContains(t, err, "out of date")

	files[0].Content = nil
	err = Check(files)
	require.ErrorIs(t, err, ErrStale)
	assert.ErrorContains(t, err, "obsolete")

	require.NoError(t, WriteFiles(files))

	_, err = os.Stat(files[0].Path())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, Check(files))
}
