package cli

import (
	"os"
	"path/filepath"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/filesystem/aferofs"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	initOp "github.com/homewire/x10/pkg/lib/operation/project/init"
)

// ValidateMetadataFound checks that the command runs inside a project directory.
func ValidateMetadataFound(logger log.Logger, fs filesystem.Fs) error {
	errs := errors.NewMultiError()
	if !fs.IsDir(filesystem.MetadataDir) {
		errs.Append(errors.New(`none of this and parent directories is project dir`))
		logger.Info(`Project directory must contain the ".x10" metadata directory.`)
		logger.Info(`Please change working directory to a project directory or use the "init" command.`)
	}

	return errs.ErrorOrNil()
}

// staticRootFs returns a filesystem rooted at the static root directory,
// the directory is created if missing. A relative path is resolved
// against the project directory.
func (root *rootCommand) staticRootFs() (filesystem.Fs, error) {
	staticRoot := root.options.GetString(`static-root`)
	if staticRoot == "" {
		staticRoot = initOp.DefaultStaticRoot
	}

	if !filepath.IsAbs(staticRoot) {
		staticRoot = filepath.Join(root.fs.BasePath(), staticRoot)
	}

	// nolint: forbidigo
	if err := os.MkdirAll(staticRoot, 0o755); err != nil {
		return nil, errors.Errorf(`cannot create static root "%s": %w`, staticRoot, err)
	}

	return aferofs.NewLocalFs(root.logger, staticRoot, ``)
}
