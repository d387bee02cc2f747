// Package clean removes the generated artifacts, the collected static
// files and the project cache directory.
package clean

import (
	"context"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
)

type dependencies interface {
	Logger() log.Logger
}

// Run empties the static root and removes the cache directory.
// The static root directory itself is kept, it may be a mount point.
// A nil targetFs skips the static root, only the cache is cleaned then.
func Run(ctx context.Context, fs filesystem.Fs, targetFs filesystem.Fs, d dependencies) error {
	logger := d.Logger()

	if targetFs != nil {
		entries, err := targetFs.ReadDir(".")
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := targetFs.Remove(entry.Name()); err != nil {
				return err
			}
			logger.Debugf(`Removed "%s"`, entry.Name())
		}
		logger.Infof("Removed %d entries from the static root.", len(entries))
	}

	cacheDir := filesystem.Join(filesystem.MetadataDir, "cache")
	if fs.IsDir(cacheDir) {
		if err := fs.Remove(cacheDir); err != nil {
			return err
		}
		logger.Infof(`Removed the "%s" directory.`, cacheDir)
	}

	logger.Info("Clean done.")
	return nil
}
