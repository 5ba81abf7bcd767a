// Command owngen generates IntoOwned conversions for annotated declarations.
//
// Typical use is a go:generate directive in the package holding the types:
//
//	//go:generate go tool owngen gen .
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"owngen/internal/analyze"
	"owngen/internal/config"
	"owngen/internal/gen"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workDir    string
	output     string
	tags       []string
	noComments bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "owngen",
	Short: "Generate IntoOwned conversions for borrowed Go types",
	Long: `owngen derives IntoOwned methods for structs and sealed interfaces
marked with //owngen:derive or listed in owngen.yaml.

The generated method returns a copy of the value with every scope marker
replaced by owned.Static, so the copy borrows nothing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		logger, err = newLogger(verbose, isatty.IsTerminal(os.Stderr.Fd()))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&configPath, "config", "c", "", "path to "+config.FileName+" (default: searched upward from --dir)")
	flags.StringVarP(&workDir, "dir", "C", ".", "working directory for package patterns")
	flags.StringVarP(&output, "output", "o", "", "generated file name (overrides the config file)")
	flags.StringSliceVar(&tags, "tags", nil, "build tags (overrides the config file)")
	flags.BoolVar(&noComments, "no-comments", false, "omit doc comments on generated declarations")

	rootCmd.AddCommand(initCmd, genCmd, checkCmd, analyzeCmd)
}

// newLogger builds a console logger for terminals and a JSON logger otherwise.
func newLogger(verbose, terminal bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if terminal {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return cfg.Build()
}

// project bundles the configuration of one invocation.
type project struct {
	file     *config.File
	patterns []string
	loader   *analyze.Loader
	gen      *gen.Generator
}

// loadProject reads the configuration and applies flag overrides.
func loadProject(cmd *cobra.Command, args []string) (*project, error) {
	var (
		file *config.File
		path string
		err  error
	)

	if configPath != "" {
		path = configPath
		file, err = config.LoadFile(configPath)
	} else {
		file, path, err = config.Find(workDir)
	}

	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("output") {
		file.Output = output
	}

	if cmd.Flags().Changed("tags") {
		file.Tags = tags
	}

	if noComments {
		comments := false
		file.Comments = &comments
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = file.Packages
	}

	logger.Debug("configuration",
		zap.String("file", path),
		zap.String("output", file.Output),
		zap.Strings("patterns", patterns))

	return &project{
		file:     file,
		patterns: patterns,
		loader: analyze.NewLoader(analyze.LoaderConfig{
			Dir:        workDir,
			Output:     file.Output,
			Types:      file.Types,
			Positional: file.Positional,
			Tags:       file.Tags,
		}, logger.Named("analyze")),
		gen: gen.NewGenerator(gen.GeneratorConfig{
			Output:           file.Output,
			GenerateComments: file.GenerateComments(),
		}, logger.Named("gen")),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
