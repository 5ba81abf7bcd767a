package analyze

import (
	"go/ast"
	"go/token"
	"strings"
)

// Directive comments recognized on type declarations.
const (
	directivePrefix     = "//owngen:"
	DirectiveDerive     = "derive"
	DirectivePositional = "positional"
)

// directives returns the owngen directives attached to a type spec.
// A doc comment on a single-spec declaration applies to its spec.
func directives(decl *ast.GenDecl, spec *ast.TypeSpec) map[string]bool {
	out := make(map[string]bool)

	groups := []*ast.CommentGroup{spec.Doc}
	if len(decl.Specs) == 1 || !decl.Lparen.IsValid() {
		groups = append(groups, decl.Doc)
	}

	for _, cg := range groups {
		if cg == nil {
			continue
		}

		for _, c := range cg.List {
			name, ok := strings.CutPrefix(c.Text, directivePrefix)
			if !ok {
				continue
			}

			name, _, _ = strings.Cut(name, " ")
			out[strings.TrimSpace(name)] = true
		}
	}

	return out
}

// annotatedSpec is a type spec with its directives.
type annotatedSpec struct {
	spec       *ast.TypeSpec
	directives map[string]bool
}

// collectSpecs walks the type declarations of the given files.
func collectSpecs(files []*ast.File) []annotatedSpec {
	var out []annotatedSpec

	for _, file := range files {
		for _, d := range file.Decls {
			decl, ok := d.(*ast.GenDecl)
			if !ok || decl.Tok != token.TYPE {
				continue
			}

			for _, s := range decl.Specs {
				spec, ok := s.(*ast.TypeSpec)
				if !ok {
					continue
				}

				out = append(out, annotatedSpec{spec: spec, directives: directives(decl, spec)})
			}
		}
	}

	return out
}
