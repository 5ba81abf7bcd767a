package main

import (
	"context"
	"errors"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"owngen/internal/analyze"
	"owngen/internal/gen"
)

var genCmd = &cobra.Command{
	Use:   "gen [packages...]",
	Short: "Generate IntoOwned conversions",
	Long: `Loads the packages (default: the packages of the config file, or ./...),
extracts every selected declaration and writes one generated file per package.

Nothing is written when any declaration is rejected.`,
	RunE: runGen,
}

var checkCmd = &cobra.Command{
	Use:   "check [packages...]",
	Short: "Verify that generated files are up to date",
	Long: `Generates in memory and compares against the files on disk.
Fails when a generated file is missing, out of date or obsolete.`,
	RunE: runCheck,
}

func runGen(cmd *cobra.Command, args []string) error {
	files, err := generate(cmd, args)
	if err != nil {
		return err
	}

	if err := gen.WriteFiles(files); err != nil {
		return err
	}

	for _, f := range files {
		if f.Content == nil {
			logger.Info("removed", zap.String("file", f.Path()))
		} else {
			logger.Info("wrote", zap.String("file", f.Path()))
		}
	}

	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := generate(cmd, args)
	if err != nil {
		return err
	}

	if err := gen.Check(files); err != nil {
		return err
	}

	logger.Info("generated files are up to date", zap.Int("files", len(files)))

	return nil
}

// generate loads the project packages and generates their files.
func generate(cmd *cobra.Command, args []string) ([]gen.GeneratedFile, error) {
	p, err := loadProject(cmd, args)
	if err != nil {
		return nil, err
	}

	pkgs, err := p.loader.Load(p.patterns...)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return generatePackages(ctx, p.gen, pkgs)
}

// generatePackages plans every package, then generates them concurrently.
// It is all-or-nothing: on error no file is returned.
func generatePackages(ctx context.Context, g *gen.Generator, pkgs []*analyze.Package) ([]gen.GeneratedFile, error) {
	plan, err := g.Plan(pkgs)
	if err != nil {
		return nil, err
	}

	var (
		files = make([]*gen.GeneratedFile, len(plan.Packages))
		errs  = make([]error, len(plan.Packages))
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i, pp := range plan.Packages {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			files[i], errs[i] = g.GeneratePackage(plan, pp)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	out := make([]gen.GeneratedFile, 0, len(files))

	for _, f := range files {
		if f != nil {
			out = append(out, *f)
		}
	}

	return out, nil
}
