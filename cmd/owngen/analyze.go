package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"owngen/internal/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [packages...]",
	Short: "Print the descriptors extracted from the selected declarations",
	Long: `Loads the packages and dumps one descriptor per selected declaration.
Rejected declarations are reported after the dump.`,
	RunE: runAnalyze,
}

// declSummary is the printable form of a TypeDescriptor.
type declSummary struct {
	Type     string
	Kind     string
	Shape    string
	Params   []string
	Fields   []string
	Variants []variantSummary
}

type variantSummary struct {
	Name    string
	Shape   string
	Pointer bool
	Fields  []string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd, args)
	if err != nil {
		return err
	}

	pkgs, err := p.loader.Load(p.patterns...)
	if err != nil {
		return err
	}

	plan, planErr := p.gen.Plan(pkgs)

	dump := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	out := cmd.OutOrStdout()

	for _, pp := range plan.Packages {
		for _, desc := range pp.Descriptors {
			dump.Fdump(out, summarize(desc))
		}
	}

	for _, d := range plan.Diagnostics.Infos {
		cmd.PrintErrln(d.String())
	}

	return planErr
}

func summarize(desc *analyze.TypeDescriptor) declSummary {
	s := declSummary{
		Type: desc.ID.String(),
		Kind: desc.Kind.String(),
	}

	for _, p := range desc.Params {
		s.Params = append(s.Params, p.Name+" "+p.Role.String())
	}

	switch desc.Kind {
	case analyze.KindStruct:
		s.Shape = desc.Fields.Shape.String()
		s.Fields = fieldStrings(desc.Fields)
	case analyze.KindEnum:
		for _, v := range desc.Variants {
			s.Variants = append(s.Variants, variantSummary{
				Name:    v.Name,
				Shape:   v.Fields.Shape.String(),
				Pointer: v.Pointer,
				Fields:  fieldStrings(v.Fields),
			})
		}
	}

	return s
}

func fieldStrings(fields analyze.Fields) []string {
	out := make([]string, 0, len(fields.List))

	for _, f := range fields.List {
		out = append(out, f.Selector(fields.Shape)+" "+analyze.TypeString(f.Type))
	}

	return out
}
