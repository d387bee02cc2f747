package aferofs

import (
	"github.com/spf13/afero"
	"go.nhat.io/aferocopy/v2"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const CopyBufferSize uint = 512 * 1024 // 512 kB

// CopyFs2Fs copies a directory tree between two filesystems.
// A nil filesystem means the OS filesystem, so the copy can cross the project boundary.
func CopyFs2Fs(srcFs filesystem.Fs, srcPath string, dstFs filesystem.Fs, dstPath string) error {
	srcPath = filesystem.FromSlash(srcPath)
	dstPath = filesystem.FromSlash(dstPath)

	// Detect src filesystem
	var aferoSrc afero.Fs
	if srcFs == nil {
		// If nil, use OS filesystem
		aferoSrc = &afero.Afero{Fs: afero.NewOsFs()}
	} else if fs, ok := srcFs.(*Fs); ok {
		// If filesystem implemented by Afero lib -> get lib backend
		aferoSrc = fs.Backend()
	} else {
		return errors.Errorf(`unexpected type of src filesystem "%T"`, srcFs)
	}

	// Detect dst filesystem
	var aferoDst afero.Fs
	if dstFs == nil {
		// If nil, use OS filesystem
		aferoDst = &afero.Afero{Fs: afero.NewOsFs()}
	} else if fs, ok := dstFs.(*Fs); ok {
		// If filesystem implemented by Afero lib -> get lib backend
		aferoDst = fs.Backend()
	} else {
		return errors.Errorf(`unexpected type of dst filesystem "%T"`, dstFs)
	}

	// nolint: forbidigo
	return aferocopy.Copy(srcPath, dstPath, aferocopy.Options{
		SrcFs:          aferoSrc,
		DestFs:         aferoDst,
		Sync:           false,
		CopyBufferSize: CopyBufferSize,
		OnDirExists: func(srcFs afero.Fs, src string, destFs afero.Fs, dest string) aferocopy.DirExistsAction {
			return aferocopy.Replace
		},
	})
}
