package gen

import (
	"text/template"
)

// fileData holds all data needed for the file template.
type fileData struct {
	Package string
	Imports []importSpec
	Decls   []string
}

// methodData holds the data of one IntoOwned method.
type methodData struct {
	Comment  bool
	Recv     string
	Receiver string // e.g., "Foo[_, _, T]"
	Result   string // e.g., "Foo[owned.Static, owned.Static, T]"
	Body     string
	Literal  string
}

// enumData holds the data of the conversion function of an enum.
type enumData struct {
	Comment    bool
	Locals     localNames
	Enum       string
	Func       string
	TypeParams string // e.g., "[S owned.Scope, T any]"
	Param      string // e.g., "Enumeration[S, T]"
	Result     string // e.g., "Enumeration[owned.Static, T]"
	Fmt        string // Local name of package fmt
	Cases      []caseData
}

// caseData is one variant branch of the type switch.
type caseData struct {
	Type    string // Borrowed variant type, e.g., "*B[S, T]"
	Owned   string // Owned variant type without the pointer, e.g., "B[owned.Static, T]"
	Pointer bool
}

var fileTemplate = template.Must(template.New("file").Parse(`// ` + generatedHeader + `

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{end}}
{{- range .Decls}}
{{.}}
{{end}}`))

var methodTemplate = template.Must(template.New("method").Parse(
	`{{if .Comment}}// IntoOwned returns a copy of {{.Recv}} that borrows nothing.
{{end}}func ({{.Recv}} {{.Receiver}}) IntoOwned() {{.Result}} {
{{.Body}}	return {{.Literal}}
}
`))

var enumTemplate = template.Must(template.New("enum").Parse(
	`{{with .Locals}}{{if $.Comment}}// {{$.Func}} returns a copy of {{.Recv}} that borrows nothing.
// It panics if {{.Recv}} holds a type that is not a variant of {{$.Enum}}.
{{end}}func {{$.Func}}{{$.TypeParams}}({{.Recv}} {{$.Param}}) {{$.Result}} {
	switch {{.X}} := {{.Recv}}.(type) {
	case nil:
		return nil
{{- range $.Cases}}
	case {{.Type}}:
{{- if .Pointer}}
		if {{$.Locals.X}} == nil {
			return (*{{.Owned}})(nil)
		}

		{{$.Locals.O}} := {{$.Locals.X}}.IntoOwned()

		return &{{$.Locals.O}}
{{- else}}
		return {{$.Locals.X}}.IntoOwned()
{{- end}}
{{- end}}
	default:
		panic({{$.Fmt}}.Sprintf("owngen: %T is not a variant of {{$.Enum}}", {{.Recv}}))
	}
}
{{end}}`))
