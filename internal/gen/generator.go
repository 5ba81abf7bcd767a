package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"owngen/internal/analyze"
	"owngen/internal/common"
	"owngen/internal/diagnostic"
	"owngen/internal/scope"
)

const generatedHeader = analyze.GeneratedMarker

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Output is the base name of the generated file in each package.
	Output string
	// GenerateComments enables doc comments on generated declarations.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Output:           analyze.DefaultOutput,
		GenerateComments: true,
	}
}

// Generator generates IntoOwned implementations for loaded packages.
type Generator struct {
	config GeneratorConfig
	log    *zap.Logger
}

// NewGenerator creates a new Generator with the given configuration.
// A nil logger disables logging.
func NewGenerator(config GeneratorConfig, log *zap.Logger) *Generator {
	if config.Output == "" {
		config.Output = analyze.DefaultOutput
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{config: config, log: log}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the package directory.
	Dir string
	// Filename is the base name of the file (e.g., "owned_gen.go").
	Filename string
	// Content is the formatted Go source code. Nil means the file is obsolete
	// and should not exist.
	Content []byte
}

// Path returns the full path of the file.
func (f GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Plan holds the descriptors of every selected declaration of a run.
type Plan struct {
	Packages    []*PackagePlan
	Diagnostics diagnostic.Diagnostics

	known knownSet
}

// PackagePlan holds the descriptors of one package, in source order.
type PackagePlan struct {
	Package     *analyze.Package
	Descriptors []*analyze.TypeDescriptor
}

// knownSet records the declarations that receive generated methods in this
// run. Their methods do not exist in the loaded type information yet.
type knownSet map[analyze.TypeID]analyze.Kind

func (k knownSet) lookup(t *types.Named) (analyze.Kind, bool) {
	kind, ok := k[analyze.IDOf(t.Origin().Obj())]
	return kind, ok
}

func (k knownSet) add(desc *analyze.TypeDescriptor) {
	k[desc.ID] = desc.Kind
	for _, v := range desc.Variants {
		k[analyze.IDOf(v.Obj)] = analyze.KindStruct
	}
}

// Plan extracts a descriptor for every selected declaration. The returned
// error, if any, joins every rejected declaration; the plan is returned either
// way so callers can report on it.
func (g *Generator) Plan(pkgs []*analyze.Package) (*Plan, error) {
	p := &Plan{known: make(knownSet)}

	for _, pkg := range pkgs {
		pp := &PackagePlan{Package: pkg}

		for _, decl := range pkg.Decls {
			desc, err := pkg.Extract(decl.Obj)
			if err != nil {
				p.Diagnostics.AddError(errorCode(err), analyze.IDOf(decl.Obj).String(), "", err)
				continue
			}

			if desc.Kind == analyze.KindEnum {
				if err := checkEnumFunc(pkg, desc); err != nil {
					p.Diagnostics.AddError(diagnostic.CodeAlreadyImplemented, desc.ID.String(), "", err)
					continue
				}
			}

			pp.Descriptors = append(pp.Descriptors, desc)
		}

		pp.Descriptors = g.dropVariants(pp.Descriptors, &p.Diagnostics)
		for _, desc := range pp.Descriptors {
			p.known.add(desc)
		}

		p.Packages = append(p.Packages, pp)
	}

	return p, p.Diagnostics.Error()
}

// dropVariants removes struct declarations that are also variants of an enum
// of the same package; the enum already generates their methods. A variant
// shared by two enums is an error.
func (g *Generator) dropVariants(descs []*analyze.TypeDescriptor, diags *diagnostic.Diagnostics) []*analyze.TypeDescriptor {
	variants := make(map[*types.TypeName]string)

	for _, desc := range descs {
		for _, v := range desc.Variants {
			if other, ok := variants[v.Obj]; ok {
				diags.AddError(diagnostic.CodeUnsupportedFeature, desc.ID.String(), "",
					fmt.Errorf("variant %s also belongs to %s: %w", v.Name, other, analyze.ErrUnsupportedFeature))

				continue
			}

			variants[v.Obj] = desc.Name
		}
	}

	out := descs[:0]

	for _, desc := range descs {
		if enum, ok := variants[desc.Obj]; ok && desc.Kind == analyze.KindStruct {
			g.log.Debug("skipping variant declaration",
				zap.String("type", desc.ID.String()), zap.String("enum", enum))
			diags.AddInfo(diagnostic.CodeSkipped, "generated as a variant of "+enum, desc.ID.String(), "")

			continue
		}

		out = append(out, desc)
	}

	return out
}

// Generate generates one file per package. Generation is all-or-nothing: on
// error no file is returned.
func (g *Generator) Generate(pkgs []*analyze.Package) ([]GeneratedFile, error) {
	p, err := g.Plan(pkgs)
	if err != nil {
		return nil, err
	}

	var (
		files []GeneratedFile
		errs  []error
	)

	for _, pp := range p.Packages {
		file, err := g.GeneratePackage(p, pp)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if file != nil {
			files = append(files, *file)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return files, nil
}

// GeneratePackage generates the file of one package of a plan. It returns nil
// when the package has nothing to generate and no previous output.
// Packages of the same plan may be generated concurrently.
func (g *Generator) GeneratePackage(p *Plan, pp *PackagePlan) (*GeneratedFile, error) {
	pkg := pp.Package

	file := &GeneratedFile{Dir: pkg.Dir, Filename: g.config.Output}

	if len(pp.Descriptors) == 0 {
		if len(pkg.Generated) == 0 {
			return nil, nil
		}

		g.log.Info("removing obsolete output", zap.String("file", file.Path()))

		return file, nil
	}

	imports := newImportSet(pkg.Path)
	for _, desc := range pp.Descriptors {
		reserveNames(imports, desc)
	}

	data := &fileData{Package: pkg.Name}

	var diags diagnostic.Diagnostics

	for _, desc := range pp.Descriptors {
		decls, err := g.synthesize(imports, p.known, desc)
		if err != nil {
			diags.AddError(errorCode(err), desc.ID.String(), fieldOf(err), err)
			continue
		}

		data.Decls = append(data.Decls, decls...)
	}

	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("package %s: %w", pkg.Path, err)
	}

	data.Imports = imports.sorted()

	content, err := g.render(pkg.Dir, data)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", pkg.Path, err)
	}

	file.Content = content

	g.log.Debug("generated package",
		zap.String("package", pkg.Path),
		zap.Int("declarations", len(pp.Descriptors)),
		zap.Int("bytes", len(content)))

	return file, nil
}

// Synthesize generates a standalone file holding the implementation for a
// single descriptor. Nothing is returned on error.
func (g *Generator) Synthesize(desc *analyze.TypeDescriptor) (string, error) {
	known := make(knownSet)
	known.add(desc)

	imports := newImportSet(desc.Pkg.Path())
	reserveNames(imports, desc)

	decls, err := g.synthesize(imports, known, desc)
	if err != nil {
		return "", err
	}

	content, err := g.render("", &fileData{
		Package: desc.Pkg.Name(),
		Imports: imports.sorted(),
		Decls:   decls,
	})
	if err != nil {
		return "", err
	}

	return string(content), nil
}

// synthesize returns the declarations implementing the capability for desc.
func (g *Generator) synthesize(imports *importSet, known knownSet, desc *analyze.TypeDescriptor) ([]string, error) {
	if consts := desc.ConstParams(); len(consts) > 0 {
		return nil, fmt.Errorf("const params are not yet supported (%s): %w", consts[0].Name, analyze.ErrUnsupportedFeature)
	}

	switch desc.Kind {
	case analyze.KindStruct:
		decl, err := g.synthesizeStruct(imports, known, desc.Obj, desc.Params, desc.Fields)
		if err != nil {
			return nil, err
		}

		return []string{decl}, nil
	case analyze.KindEnum:
		return g.synthesizeEnum(imports, known, desc)
	default:
		return nil, fmt.Errorf("%s has kind %s: %w", desc.ID, desc.Kind, analyze.ErrUnsupportedKind)
	}
}

// synthesizeStruct generates the IntoOwned method of a struct or a variant.
func (g *Generator) synthesizeStruct(
	imports *importSet,
	known knownSet,
	obj *types.TypeName,
	params []analyze.Param,
	fields analyze.Fields,
) (string, error) {
	roles, names := paramRoles(params)
	markers := eraseMarkers(imports, countScopes(roles))
	receiver, result := markers.Apply(roles, names)

	locals, taken := pickLocals(params)

	data := methodData{
		Comment:  g.config.GenerateComments,
		Recv:     locals.Recv,
		Receiver: obj.Name() + common.TypeArgs(receiver),
		Result:   obj.Name() + common.TypeArgs(result),
	}

	e := newEmitter(imports, known, markerParams(obj))
	e.reserved = taken

	var elems []string

	for _, f := range fields.List {
		e.path = analyze.NewTypePath(obj.Name()).Field(f.Name)

		conv, err := e.convert(locals.Recv+"."+f.Name, f.Type)
		if err != nil {
			return "", err
		}

		switch fields.Shape {
		case analyze.ShapeTuple:
			elems = append(elems, conv)
		default:
			elems = append(elems, f.Name+": "+conv)
		}
	}

	switch {
	case fields.Shape == analyze.ShapeUnit && len(params) == 0:
		data.Literal = locals.Recv
	case fields.Shape == analyze.ShapeNamed && len(elems) > 0:
		data.Literal = data.Result + "{\n" + strings.Join(elems, ",\n") + ",\n}"
	default:
		data.Literal = data.Result + "{" + strings.Join(elems, ", ") + "}"
	}

	data.Body = e.body.String()

	return execute(methodTemplate, data)
}

// synthesizeEnum generates the IntoOwned method of every variant and the
// conversion function of the enum.
func (g *Generator) synthesizeEnum(imports *importSet, known knownSet, desc *analyze.TypeDescriptor) ([]string, error) {
	roles, names := paramRoles(desc.Params)
	markers := eraseMarkers(imports, desc.ScopeMarkerCount())
	_, result := markers.Apply(roles, names)

	locals, _ := pickLocals(desc.Params)

	data := enumData{
		Comment:    g.config.GenerateComments,
		Locals:     locals,
		Enum:       desc.Name,
		Func:       enumFuncName(desc.Name),
		TypeParams: typeParamList(imports, desc.Params),
		Param:      desc.Name + common.TypeArgs(names),
		Result:     desc.Name + common.TypeArgs(result),
		Fmt:        imports.add("fmt", "fmt"),
	}

	var decls []string

	for _, v := range desc.Variants {
		decl, err := g.synthesizeStruct(imports, known, v.Obj, v.Params, v.Fields)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Name, err)
		}

		decls = append(decls, decl)

		c := caseData{Type: v.Name, Owned: v.Name, Pointer: v.Pointer}
		if v.Generic {
			c.Type += common.TypeArgs(names)
			c.Owned += common.TypeArgs(result)
		}

		if v.Pointer {
			c.Type = "*" + c.Type
		}

		data.Cases = append(data.Cases, c)
	}

	fn, err := execute(enumTemplate, data)
	if err != nil {
		return nil, err
	}

	return append([]string{fn}, decls...), nil
}

// render executes the file template and formats the result. On a format
// failure the unformatted code is kept next to the output for debugging; a
// later successful run removes it.
func (g *Generator) render(dir string, data *fileData) ([]byte, error) {
	var buf bytes.Buffer

	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if dir != "" {
			g.writeUnformatted(dir, buf.Bytes())
		}

		return nil, fmt.Errorf("formatting code: %w", err)
	}

	if dir != "" {
		g.removeUnformatted(dir)
	}

	return formatted, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}

	return buf.String(), nil
}

// typeParamList formats a type parameter list with its constraints.
func typeParamList(imports *importSet, params []analyze.Param) string {
	list := make([]string, len(params))
	for i, p := range params {
		list[i] = p.Name + " " + types.TypeString(p.Constraint, imports.qualifier())
	}

	return common.TypeArgs(list)
}

func paramRoles(params []analyze.Param) ([]analyze.Role, []string) {
	roles := make([]analyze.Role, len(params))
	names := make([]string, len(params))

	for i, p := range params {
		roles[i] = p.Role
		names[i] = p.Name
	}

	return roles, names
}

// eraseMarkers returns the markers of a declaration with n scope markers.
// The runtime package is imported only when a marker is substituted.
func eraseMarkers(imports *importSet, n int) scope.Markers {
	if n == 0 {
		return scope.Erase(0, "")
	}

	return scope.Erase(n, imports.owned("Static"))
}

// localNames are the identifiers a generated declaration introduces besides
// its temporaries.
type localNames struct {
	Recv string // method receiver, enum function parameter
	X    string // type switch variable
	O    string // owned form of a pointer variant
}

// pickLocals returns local names that shadow none of params, and the set of
// every name taken by params and locals.
func pickLocals(params []analyze.Param) (localNames, map[string]bool) {
	taken := make(map[string]bool, len(params)+3)
	for _, p := range params {
		taken[p.Name] = true
	}

	locals := localNames{
		Recv: unusedName("v", taken),
		X:    unusedName("x", taken),
		O:    unusedName("o", taken),
	}

	return locals, taken
}

func unusedName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}

	taken[name] = true

	return name
}

// reserveNames keeps the parameter and local names of desc from being used as
// import names, so no import is shadowed inside a generated declaration.
func reserveNames(imports *importSet, desc *analyze.TypeDescriptor) {
	lists := [][]analyze.Param{desc.Params}
	for _, v := range desc.Variants {
		lists = append(lists, v.Params)
	}

	for _, params := range lists {
		_, taken := pickLocals(params)
		for name := range taken {
			imports.reserve(name)
		}
	}
}

func countScopes(roles []analyze.Role) int {
	n := 0

	for _, r := range roles {
		if r == analyze.RoleScope {
			n++
		}
	}

	return n
}

// markerParams returns the scope-marker type parameters of a declaration.
func markerParams(obj *types.TypeName) map[*types.TypeParam]bool {
	markers := make(map[*types.TypeParam]bool)

	named, ok := obj.Type().(*types.Named)
	if !ok {
		return markers
	}

	tparams := named.TypeParams()
	for i := range tparams.Len() {
		if tp := tparams.At(i); analyze.IsScopeConstraint(tp.Constraint()) {
			markers[tp] = true
		}
	}

	return markers
}

// checkEnumFunc rejects an enum whose conversion function is already
// declared by hand.
func checkEnumFunc(pkg *analyze.Package, desc *analyze.TypeDescriptor) error {
	name := enumFuncName(desc.Name)
	if obj := pkg.Types.Scope().Lookup(name); obj != nil {
		return fmt.Errorf("%s: %s is already declared: %w", desc.Pos, name, analyze.ErrAlreadyImplemented)
	}

	return nil
}

// fieldError attributes a conversion failure to a field path.
type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string {
	return "field " + e.Field + ": " + e.Err.Error()
}

func (e *fieldError) Unwrap() error {
	return e.Err
}

func fieldOf(err error) string {
	var fe *fieldError
	if errors.As(err, &fe) {
		return fe.Field
	}

	return ""
}

// errorCode maps an error to its diagnostic code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, analyze.ErrUnsupportedKind):
		return diagnostic.CodeUnsupportedKind
	case errors.Is(err, analyze.ErrUnsupportedFeature):
		return diagnostic.CodeUnsupportedFeature
	case errors.Is(err, analyze.ErrAlreadyImplemented):
		return diagnostic.CodeAlreadyImplemented
	case errors.Is(err, ErrNotConvertible):
		return diagnostic.CodeNotConvertible
	default:
		return ""
	}
}
