// Package cachefile keeps the static build cache, the ".x10/cache/static.json" file.
package cachefile

import (
	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const FileName = "static.json"

func Path() string {
	return filesystem.Join(filesystem.MetadataDir, "cache", FileName)
}

// File maps project relative paths of the static sources to their content hashes.
// The collectstatic operation skips files with an unchanged hash.
type File struct {
	Hashes map[string]string `json:"hashes"`
}

func New() *File {
	return &File{Hashes: make(map[string]string)}
}

func Load(fs filesystem.Fs) (*File, error) {
	content := New()

	path := Path()
	if fs.IsFile(path) {
		def := filesystem.NewFileDef(path).SetDescription("static cache")
		if err := fs.ReadJsonFileTo(def, content); err != nil {
			return nil, err
		}
		if content.Hashes == nil {
			content.Hashes = make(map[string]string)
		}
	}
	return content, nil
}

func (f *File) Save(fs filesystem.Fs) error {
	content, err := json.EncodeString(f, true)
	if err != nil {
		return errors.PrefixError(err, "cannot encode the static cache")
	}
	return fs.WriteFile(filesystem.NewRawFile(Path(), content+"\n").SetDescription("static cache"))
}

func (f *File) Hash(path string) (string, bool) {
	v, found := f.Hashes[path]
	return v, found
}

func (f *File) SetHash(path, hash string) {
	f.Hashes[path] = hash
}
