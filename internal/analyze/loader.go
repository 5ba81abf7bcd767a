package analyze

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"owngen/internal/match"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// GeneratedMarker identifies files written by the generator.
const GeneratedMarker = "Code generated by owngen. DO NOT EDIT."

// DefaultOutput is the default name of the generated file in each package.
const DefaultOutput = "owned_gen.go"

// LoaderConfig controls which packages are loaded and which declarations are
// selected for generation.
type LoaderConfig struct {
	// Dir is the working directory for package patterns.
	Dir string
	// Output is the base name of generated files. Existing generated files with
	// this name are ignored while loading.
	Output string
	// Types selects declarations in addition to //owngen:derive directives.
	// Entries are "Name" or "import/path.Name".
	Types []string
	// Positional selects structs whose fields are addressed by index, in
	// addition to //owngen:positional directives. Same format as Types.
	Positional []string
	// Tags are build tags passed to the go command.
	Tags []string
}

// Declaration is a type declaration selected for generation.
type Declaration struct {
	Obj *types.TypeName
	Pos token.Position
}

// Package holds a loaded package and its selected declarations.
type Package struct {
	Path  string // Import path
	Name  string // Package name
	Dir   string // Directory holding the package sources
	Types *types.Package
	Fset  *token.FileSet
	// Decls are the selected declarations in source order.
	Decls []Declaration
	// Generated lists previously generated files that were ignored.
	Generated []string

	positional map[*types.TypeName]bool
}

// Loader loads Go packages and selects annotated declarations.
type Loader struct {
	cfg LoaderConfig
	log *zap.Logger
}

// NewLoader creates a new Loader. A nil logger disables logging.
func NewLoader(cfg LoaderConfig, log *zap.Logger) *Loader {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Loader{cfg: cfg, log: log}
}

// Load loads the packages matching patterns.
// Patterns are standard Go package patterns (e.g., "./examples/borrowed").
func (l *Loader) Load(patterns ...string) ([]*Package, error) {
	overlay, err := l.generatedOverlay(patterns)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Mode:       LoadMode,
		Dir:        l.cfg.Dir,
		Overlay:    overlay,
		BuildFlags: l.buildFlags(),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Type errors are tolerated: hand-written code may still reference the
	// generated methods that were just blanked out.
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				l.log.Debug("ignoring type error", zap.String("package", pkg.PkgPath), zap.String("error", e.Msg))
				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			return nil, fmt.Errorf("package %s: no type information", pkg.PkgPath)
		}

		p := l.processPackage(pkg, overlay)
		l.log.Debug("loaded package",
			zap.String("package", p.Path),
			zap.Int("declarations", len(p.Decls)),
			zap.Strings("ignored", p.Generated))

		out = append(out, p)
	}

	l.reportUnmatched("types", l.cfg.Types, out)
	l.reportUnmatched("positional", l.cfg.Positional, out)

	return out, nil
}

// reportUnmatched warns about configuration entries that select no type of
// the loaded packages. Entries naming a package that was not loaded are
// skipped.
func (l *Loader) reportUnmatched(key string, entries []string, pkgs []*Package) {
	for _, e := range entries {
		pkgPath, name := "", e
		if i := strings.LastIndex(e, "."); i >= 0 {
			pkgPath, name = e[:i], e[i+1:]
		}

		var (
			found      bool
			searched   bool
			candidates []string
		)

		for _, p := range pkgs {
			if pkgPath != "" && p.Path != pkgPath {
				continue
			}

			searched = true

			if _, ok := p.Types.Scope().Lookup(name).(*types.TypeName); ok {
				found = true
				break
			}

			for _, n := range p.Types.Scope().Names() {
				if _, ok := p.Types.Scope().Lookup(n).(*types.TypeName); ok {
					candidates = append(candidates, n)
				}
			}
		}

		if found || !searched {
			continue
		}

		fields := []zap.Field{zap.String("key", key), zap.String("entry", e)}
		if s, ok := match.Closest(name, candidates, match.DefaultThreshold); ok {
			fields = append(fields, zap.String("suggestion", s))
		}

		l.log.Warn("configuration entry selects no type", fields...)
	}
}

// generatedOverlay replaces previously generated files with an empty package
// clause so stale output never takes part in type checking.
func (l *Loader) generatedOverlay(patterns []string) (map[string][]byte, error) {
	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        l.cfg.Dir,
		BuildFlags: l.buildFlags(),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	overlay := make(map[string][]byte)

	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			if filepath.Base(file) != l.cfg.Output {
				continue
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", file, err)
			}

			if !IsGenerated(data) {
				l.log.Warn("output file exists but was not generated by owngen", zap.String("file", file))
				continue
			}

			overlay[file] = []byte("package " + pkg.Name + "\n")
		}
	}

	return overlay, nil
}

func (l *Loader) buildFlags() []string {
	if len(l.cfg.Tags) == 0 {
		return nil
	}

	return []string{"-tags=" + strings.Join(l.cfg.Tags, ",")}
}

// processPackage selects the annotated declarations of a loaded package.
func (l *Loader) processPackage(pkg *packages.Package, overlay map[string][]byte) *Package {
	p := &Package{
		Path:       pkg.PkgPath,
		Name:       pkg.Name,
		Types:      pkg.Types,
		Fset:       pkg.Fset,
		positional: make(map[*types.TypeName]bool),
	}

	if len(pkg.GoFiles) > 0 {
		p.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.GoFiles {
		if _, ok := overlay[file]; ok {
			p.Generated = append(p.Generated, file)
		}
	}

	for _, as := range collectSpecs(pkg.Syntax) {
		obj, ok := pkg.TypesInfo.Defs[as.spec.Name].(*types.TypeName)
		if !ok {
			continue
		}

		if as.directives[DirectivePositional] || matches(l.cfg.Positional, pkg.PkgPath, obj.Name()) {
			p.positional[obj] = true
		}

		if as.directives[DirectiveDerive] || matches(l.cfg.Types, pkg.PkgPath, obj.Name()) {
			p.Decls = append(p.Decls, Declaration{Obj: obj, Pos: pkg.Fset.Position(obj.Pos())})
		}
	}

	return p
}

// matches reports whether a "Name" or "import/path.Name" entry selects a type.
func matches(entries []string, pkgPath, name string) bool {
	return slices.ContainsFunc(entries, func(e string) bool {
		i := strings.LastIndex(e, ".")
		if i < 0 {
			return e == name
		}

		return e[:i] == pkgPath && e[i+1:] == name
	})
}

// IsGenerated reports whether a file was written by the generator: the marker
// comment must appear before the package clause.
func IsGenerated(data []byte) bool {
	marker := []byte("// " + GeneratedMarker)

	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)

		switch {
		case bytes.HasPrefix(line, []byte("package ")):
			return false
		case bytes.Equal(line, marker):
			return true
		}
	}

	return false
}
