// nolint: forbidigo
package aferofs

import (
	"os"
	"path/filepath"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/filesystem/aferofs/localfs"
	"github.com/homewire/x10/internal/pkg/filesystem/aferofs/memoryfs"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// NewLocalFsFindProjectDir creates a local filesystem rooted in the project directory.
// The project directory is searched upwards from the working directory.
func NewLocalFsFindProjectDir(logger log.Logger, workingDir string) (fs filesystem.Fs, err error) {
	if workingDir == "" {
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, errors.Errorf(`cannot get working dir from OS: %w`, err)
		}
	}

	// Convert working dir path to absolute
	workingDir, err = filepath.Abs(workingDir)
	if err != nil {
		return nil, err
	}

	// Find the project dir
	projectDir, err := localfs.FindProjectDir(logger, workingDir)
	if err != nil {
		return nil, err
	}

	workingDirRel, err := filepath.Rel(projectDir, workingDir)
	if err != nil {
		return nil, errors.Errorf(`cannot determine working dir relative path: %w`, err)
	}

	return New(logger, localfs.New(projectDir), workingDirRel), nil
}

func NewLocalFs(logger log.Logger, projectDir string, workingDirRel string) (fs filesystem.Fs, err error) {
	return New(logger, localfs.New(projectDir), workingDirRel), nil
}

func NewMemoryFs(logger log.Logger, workingDir string) (fs filesystem.Fs, err error) {
	return New(logger, memoryfs.New(), workingDir), nil
}
