// Package generate writes the project env file, a single line pointing
// X10_STATIC_ROOT to the directory with the collected static files.
package generate

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const DefaultOutput = ".env"

type Options struct {
	Output     string
	StaticRoot string
}

type dependencies interface {
	Logger() log.Logger
}

func Run(ctx context.Context, fs filesystem.Fs, o Options, d dependencies) error {
	if o.StaticRoot == "" {
		return errors.New("the static root path is not set")
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}

	line, err := godotenv.Marshal(map[string]string{env.StaticRootKey: o.StaticRoot})
	if err != nil {
		return errors.PrefixError(err, "cannot marshal the env file")
	}

	lines := []filesystem.FileLine{
		{Regexp: "^" + env.StaticRootKey + "=.*$", Line: line},
	}
	updated, err := fs.CreateOrUpdateFile(filesystem.NewFileDef(o.Output).SetDescription("env"), lines)
	if err != nil {
		return err
	}

	if updated {
		d.Logger().Infof(`Updated file "%s", %s points to "%s".`, o.Output, env.StaticRootKey, o.StaticRoot)
	} else {
		d.Logger().Infof(`Created file "%s", %s points to "%s".`, o.Output, env.StaticRootKey, o.StaticRoot)
	}
	return nil
}
