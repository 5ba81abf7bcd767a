package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owngen/internal/analyze"
)

func TestParse_Defaults(t *testing.T) {
	f, err := Parse([]byte("version: \"1\"\n"))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, f.Version)
	assert.Equal(t, analyze.DefaultOutput, f.Output)
	assert.Equal(t, StringOrArray{"./..."}, f.Packages)
	assert.True(t, f.GenerateComments())
	assert.Empty(t, f.Types)
}

func TestParse_Full(t *testing.T) {
	data := `
version: "1"
output: zz_owned.go
comments: false
packages: ./models
types:
  - Session
  - example.com/app/models.Token
positional: Pair
tags: [integration, linux]
`
	f, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "zz_owned.go", f.Output)
	assert.False(t, f.GenerateComments())
	assert.Equal(t, StringOrArray{"./models"}, f.Packages)
	assert.Equal(t, StringOrArray{"Session", "example.com/app/models.Token"}, f.Types)
	assert.Equal(t, StringOrArray{"Pair"}, f.Positional)
	assert.True(t, f.Tags.Contains("linux"))
	assert.False(t, f.Tags.Contains("windows"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"version", `version: "2"`, `unsupported version "2"`},
		{"output dir", `output: gen/owned.go`, `output "gen/owned.go"`},
		{"output test", `output: owned_test.go`, `output "owned_test.go"`},
		{"output ext", `output: owned.txt`, `output "owned.txt"`},
		{"type entry", `types: [models.]`, `type entry "models."`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("types: {a: b}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string or array")

	_, err = Parse([]byte("version: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestStringOrArray_Empty(t *testing.T) {
	f, err := Parse([]byte(`tags: ""`))
	require.NoError(t, err)
	assert.Empty(t, f.Tags)
}

func TestMarshal_RoundTrip(t *testing.T) {
	f := Default()
	f.Types = StringOrArray{"Session", "Token"}
	f.Positional = StringOrArray{"Pair"}

	data, err := Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "positional: Pair\n")
	assert.Contains(t, string(data), "- Session\n")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	f, path, err := Find(nested)
	require.NoError(t, err)

	// The temp dir may live below a directory holding its own owngen.yaml.
	if path == "" {
		assert.Equal(t, Default(), f)
	}

	cfg := Default()
	cfg.Output = "zz_owned.go"
	require.NoError(t, WriteFile(cfg, filepath.Join(root, FileName)))

	f, path, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), path)
	assert.Equal(t, "zz_owned.go", f.Output)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
