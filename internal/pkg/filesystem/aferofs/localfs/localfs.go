// nolint: forbidigo
package localfs

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

type fs = afero.Fs

// LocalFs is an abstraction of the local filesystem implemented by the "os" package.
// All paths are relative to the basePath.
type LocalFs struct {
	fs
	utils    *afero.Afero
	basePath string
}

func New(basePath string) *LocalFs {
	if !filepath.IsAbs(basePath) {
		panic(errors.Errorf(`base path "%s" must be absolute`, basePath))
	}

	fs := afero.NewBasePathFs(afero.NewOsFs(), basePath)
	return &LocalFs{
		fs:       fs,
		utils:    &afero.Afero{Fs: fs},
		basePath: basePath,
	}
}

func (fs *LocalFs) Name() string {
	return `local`
}

func (fs *LocalFs) BasePath() string {
	return fs.basePath
}

func (fs *LocalFs) Walk(root string, walkFn filesystem.WalkFunc) error {
	return fs.utils.Walk(root, walkFn)
}

// FindProjectDir -> the nearest directory containing the metadata directory, scanning upwards.
// If no project directory is found, the working directory is returned.
func FindProjectDir(logger log.Logger, workingDir string) (string, error) {
	dir := workingDir
	for {
		metadataDir := filepath.Join(dir, filesystem.MetadataDir)
		if stat, err := os.Stat(metadataDir); err == nil && stat.IsDir() {
			return dir, nil
		} else if err != nil && !os.IsNotExist(err) {
			logger.Debugf(`Cannot check if path "%s" exists: %s`, metadataDir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	logger.Debugf(`Project directory not found, using working directory "%s".`, workingDir)
	return workingDir, nil
}
