package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"owngen/internal/config"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default " + config.FileName,
	Long: `Writes the default configuration to --dir (or to --config when set).
Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = filepath.Join(workDir, config.FileName)
	}

	_, err := os.Stat(path)

	switch {
	case err == nil && !force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", path, err)
	}

	f := config.Default()
	if cmd.Flags().Changed("output") {
		f.Output = output
	}

	if cmd.Flags().Changed("tags") {
		f.Tags = tags
	}

	if noComments {
		comments := false
		f.Comments = &comments
	}

	if err := f.Validate(); err != nil {
		return err
	}

	if err := config.WriteFile(f, path); err != nil {
		return err
	}

	logger.Info("wrote configuration", zap.String("file", path))

	return nil
}
