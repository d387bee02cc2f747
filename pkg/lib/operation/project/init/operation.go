// Package init creates a new project, the manifest, the definition
// directories and optionally a few sample definitions.
package init

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/project/manifest"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// DefaultStaticRoot is the project relative directory with the collected
// static files, referenced by the ".env.dist" template.
const DefaultStaticRoot = "data/static"

type Options struct {
	Name          string
	Location      manifest.Location
	CreateSamples bool
}

type dependencies interface {
	Logger() log.Logger
}

func Run(ctx context.Context, fs filesystem.Fs, o Options, d dependencies) error {
	logger := d.Logger()

	if o.Name == "" {
		return errors.New("the project name is not set")
	}
	if fs.Exists(manifest.Path()) {
		return errors.Errorf(`the project is already initialized, the manifest "%s" exists`, manifest.Path())
	}

	// Manifest
	m := manifest.New(o.Name)
	if o.Location != (manifest.Location{}) {
		m.SetLocation(o.Location)
	}
	if err := m.Save(ctx, fs); err != nil {
		return err
	}
	logger.Infof(`Created manifest "%s".`, manifest.Path())

	// Definition directories
	for _, dir := range []string{project.UnitsDir, project.ScenesDir, project.SchedulesDir, project.StaticDir} {
		if err := fs.Mkdir(dir); err != nil {
			return err
		}
	}
	logger.Info("Created the project directories.")

	// Local only and generated paths are kept out of the repository
	if _, err := fs.CreateOrUpdateFile(filesystem.NewFileDef(".gitignore"), []filesystem.FileLine{
		{Line: "/.env.local"},
		{Line: "/.x10/cache/"},
		{Line: "/data/"},
	}); err != nil {
		return err
	}
	logger.Info(`Created file ".gitignore".`)

	// Env file template
	envLine, err := godotenv.Marshal(map[string]string{env.StaticRootKey: DefaultStaticRoot})
	if err != nil {
		return errors.PrefixError(err, "cannot marshal the env file template")
	}
	if _, err := fs.CreateOrUpdateFile(filesystem.NewFileDef(".env.dist"), []filesystem.FileLine{
		{Regexp: "^" + env.StaticRootKey + "=.*$", Line: envLine},
	}); err != nil {
		return err
	}
	logger.Info(`Created file ".env.dist".`)

	if o.CreateSamples {
		if err := writeSamples(fs); err != nil {
			return err
		}
		logger.Info("Created the sample definitions.")
	}

	logger.Infof(`Project "%s" created.`, o.Name)
	return nil
}

func writeSamples(fs filesystem.Fs) error {
	samples := []*filesystem.RawFile{
		filesystem.NewRawFile(
			filesystem.Join(project.SchedulesDir, "night-off.json"),
			`{
  "name": "Night off",
  "crontab": "30 23 * * *"
}
`),
		filesystem.NewRawFile(
			filesystem.Join(project.UnitsDir, "porch-light.json"),
			`{
  "name": "Porch light",
  "house": "M",
  "number": 1,
  "autoManaged": true,
  "onSolarSchedules": [{"event": "sunset"}],
  "offSchedules": ["night-off"]
}
`),
		filesystem.NewRawFile(
			filesystem.Join(project.ScenesDir, "all-lights.json"),
			`{
  "name": "All lights",
  "units": ["*"]
}
`),
	}
	for _, file := range samples {
		if err := fs.WriteFile(file.SetDescription("sample")); err != nil {
			return err
		}
	}
	return nil
}
