// Package validate checks the whole project definition, the manifest and
// every unit, scene and schedule file, including the cross references.
package validate

import (
	"context"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project"
)

type dependencies interface {
	Logger() log.Logger
}

func Run(ctx context.Context, fs filesystem.Fs, d dependencies) error {
	logger := d.Logger()

	prj, err := project.Load(ctx, fs)
	if err != nil {
		return err
	}

	registry, err := prj.LoadRegistry(ctx)
	if err != nil {
		return err
	}

	logger.Infof(
		"Found %d units, %d scenes and %d schedules.",
		len(registry.Units()), len(registry.Scenes()), len(registry.Schedules()),
	)
	logger.Info("The project is valid.")
	return nil
}
