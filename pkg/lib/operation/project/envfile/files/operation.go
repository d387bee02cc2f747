// Package files lists the env files found in the project, in the precedence order.
package files

import (
	"context"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
)

type dependencies interface {
	Logger() log.Logger
}

// Run prints the env files present in the project directory,
// the first listed file takes precedence when the envs are loaded.
func Run(ctx context.Context, fs filesystem.Fs, d dependencies) (found []string, err error) {
	logger := d.Logger()

	for _, file := range env.Files() {
		if fs.IsFile(file) {
			found = append(found, file)
		}
	}

	if len(found) == 0 {
		logger.Info("No env file found.")
		return found, nil
	}

	logger.Info("Env files in the precedence order:")
	for i, file := range found {
		logger.Infof("  %d. %s", i+1, file)
	}
	return found, nil
}
