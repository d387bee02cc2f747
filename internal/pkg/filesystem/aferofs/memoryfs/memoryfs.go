package memoryfs

import (
	"github.com/spf13/afero"

	"github.com/homewire/x10/internal/pkg/filesystem"
)

type fs = afero.Fs

// MemoryFs is an abstraction of a filesystem in the memory, used in tests.
type MemoryFs struct {
	fs
	utils *afero.Afero
}

func New() *MemoryFs {
	fs := afero.NewMemMapFs()
	return &MemoryFs{
		fs:    fs,
		utils: &afero.Afero{Fs: fs},
	}
}

func (fs *MemoryFs) Name() string {
	return `memory`
}

func (fs *MemoryFs) BasePath() string {
	return `__memory__`
}

func (fs *MemoryFs) Walk(root string, walkFn filesystem.WalkFunc) error {
	return fs.utils.Walk(root, walkFn)
}
