package gen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// unformattedSuffix is appended to the output name of a package whose
// generated code does not parse. The sidecar is not a .go file, so it never
// takes part in the next build or load.
const unformattedSuffix = ".unformatted"

// sidecarPath returns the debug file kept next to the output in dir.
func (g *Generator) sidecarPath(dir string) string {
	return filepath.Join(dir, g.config.Output+unformattedSuffix)
}

// writeUnformatted keeps the code that failed to format for inspection.
// Failures are logged and otherwise ignored.
func (g *Generator) writeUnformatted(dir string, content []byte) {
	path := g.sidecarPath(dir)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		g.log.Warn("failed to write unformatted output", zap.String("file", path), zap.Error(err))
		return
	}

	g.log.Warn("generated code does not parse, unformatted output kept", zap.String("file", path))
}

// removeUnformatted deletes a sidecar left by an earlier failed run.
func (g *Generator) removeUnformatted(dir string) {
	path := g.sidecarPath(dir)

	err := os.Remove(path)

	switch {
	case err == nil:
		g.log.Debug("removed unformatted output", zap.String("file", path))
	case !errors.Is(err, fs.ErrNotExist):
		g.log.Warn("failed to remove unformatted output", zap.String("file", path), zap.Error(err))
	}
}
