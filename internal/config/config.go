package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"owngen/internal/analyze"
)

// FileName is the name of the configuration file looked up by the CLI.
const FileName = "owngen.yaml"

// CurrentVersion is the only supported configuration version.
const CurrentVersion = "1"

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// File is the content of owngen.yaml.
type File struct {
	// Version of the configuration format.
	Version string `yaml:"version"`
	// Output is the base name of the generated file in each package.
	Output string `yaml:"output,omitempty"`
	// Comments enables doc comments on generated declarations (default true).
	Comments *bool `yaml:"comments,omitempty"`
	// Packages are the package patterns to process.
	Packages StringOrArray `yaml:"packages,omitempty"`
	// Types selects declarations in addition to //owngen:derive directives.
	Types StringOrArray `yaml:"types,omitempty"`
	// Positional selects structs reconstructed positionally.
	Positional StringOrArray `yaml:"positional,omitempty"`
	// Tags are build tags used while loading packages.
	Tags StringOrArray `yaml:"tags,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	applyDefaults(f)

	return f
}

// LoadFile loads and parses a configuration file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Find looks for FileName in dir and its parents. It returns the default
// configuration and an empty path when no file exists.
func Find(dir string) (*File, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	for {
		path := filepath.Join(dir, FileName)

		_, err := os.Stat(path)

		switch {
		case err == nil:
			f, err := LoadFile(path)
			return f, path, err
		case !errors.Is(err, fs.ErrNotExist):
			return nil, "", fmt.Errorf("checking %s: %w", path, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}

		dir = parent
	}
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Apply defaults and normalize
	applyDefaults(&f)

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	if f.Output == "" {
		f.Output = analyze.DefaultOutput
	}

	if f.Comments == nil {
		comments := true
		f.Comments = &comments
	}

	if len(f.Packages) == 0 {
		f.Packages = StringOrArray{"./..."}
	}
}

// Validate checks the configuration values.
func (f *File) Validate() error {
	var errs []error

	if f.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported version %q, want %q: %w", f.Version, CurrentVersion, ErrInvalid))
	}

	if filepath.Base(f.Output) != f.Output || !strings.HasSuffix(f.Output, ".go") ||
		strings.HasSuffix(f.Output, "_test.go") {
		errs = append(errs, fmt.Errorf("output %q must be a non-test .go file name: %w", f.Output, ErrInvalid))
	}

	for _, entry := range append(append([]string{}, f.Types...), f.Positional...) {
		if entry == "" || strings.HasSuffix(entry, ".") {
			errs = append(errs, fmt.Errorf("type entry %q must be Name or import/path.Name: %w", entry, ErrInvalid))
		}
	}

	return errors.Join(errs...)
}

// GenerateComments reports whether doc comments are generated.
func (f *File) GenerateComments() bool {
	return f.Comments == nil || *f.Comments
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
