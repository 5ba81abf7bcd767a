package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"owngen/internal/diagnostic"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrStale is returned by Check when output on disk differs from what would
// be generated.
var ErrStale = errors.New("generated output is stale")

// WriteFiles writes all generated files into their package directories.
// Obsolete files (nil Content) are removed.
func WriteFiles(files []GeneratedFile) error {
	for _, file := range files {
		path := file.Path()

		if file.Content == nil {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing file %s: %w", path, err)
			}

			continue
		}

		// Create the package directory if it doesn't exist
		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		if err := os.WriteFile(path, file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", path, err)
		}
	}

	return nil
}

// Check compares generated files with the files on disk. Every missing,
// different or obsolete file is reported; the error matches ErrStale.
func Check(files []GeneratedFile) error {
	var diags diagnostic.Diagnostics

	for _, file := range files {
		path := file.Path()

		existing, err := os.ReadFile(path)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			if file.Content != nil {
				diags.AddError(diagnostic.CodeStale, path, "", fmt.Errorf("missing: %w", ErrStale))
			}
		case err != nil:
			return fmt.Errorf("reading file %s: %w", path, err)
		case file.Content == nil:
			diags.AddError(diagnostic.CodeStale, path, "", fmt.Errorf("obsolete: %w", ErrStale))
		case !bytes.Equal(existing, file.Content):
			diags.AddError(diagnostic.CodeStale, path, "", fmt.Errorf("out of date: %w", ErrStale))
		}
	}

	return diags.Error()
}
