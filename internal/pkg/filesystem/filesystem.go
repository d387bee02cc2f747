// nolint: forbidigo
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/homewire/x10/internal/pkg/log"
)

// MetadataDir is the directory that marks the root of a project.
const MetadataDir = ".x10"

// WalkFunc is called for each file or directory visited by Walk.
type WalkFunc = filepath.WalkFunc

// Factory creates the filesystem the commands work on.
type Factory func(logger log.Logger, workingDir string) (fs Fs, err error)

// Fs is a filesystem abstraction, so the project can live
// on the local disk or in the memory, in tests.
type Fs interface {
	Name() string
	BasePath() string
	WorkingDir() string
	SetLogger(logger log.Logger)
	Walk(root string, walkFn WalkFunc) error
	Glob(pattern string) (matches []string, err error)
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Mkdir(path string) error
	Exists(path string) bool
	IsFile(path string) bool
	IsDir(path string) bool
	Create(name string) (afero.File, error)
	Open(name string) (afero.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (afero.File, error)
	Copy(src, dst string) error
	CopyForce(src, dst string) error
	Move(src, dst string) error
	MoveForce(src, dst string) error
	Remove(path string) error
	ReadFile(def *FileDef) (*RawFile, error)
	WriteFile(file File) error
	ReadJsonFile(def *FileDef) (*JsonFile, error)
	ReadJsonFileTo(def *FileDef, target any) error
	WriteJsonFile(file *JsonFile) error
	ReadYamlFileTo(def *FileDef, target any) error
	CreateOrUpdateFile(def *FileDef, lines []FileLine) (updated bool, err error)
}

// Rel returns relative path.
func Rel(base, path string) string {
	relPath, err := filepath.Rel(base, path)
	if err != nil {
		panic(err)
	}
	return relPath
}

// Join joins any number of path elements into a single path.
func Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Split splits path immediately following the final separator.
func Split(path string) (dir, file string) {
	return filepath.Split(path)
}

// Dir returns all but the last element of path, typically the path's directory.
func Dir(path string) string {
	return filepath.Dir(path)
}

// Base returns the last element of path.
func Base(path string) string {
	return filepath.Base(path)
}

// Match reports whether name matches the shell file name pattern.
func Match(pattern, name string) (matched bool, err error) {
	return filepath.Match(pattern, name)
}

// FromSlash returns the result of replacing each slash in path with the OS separator.
func FromSlash(path string) string {
	return filepath.FromSlash(path)
}

// ToSlash returns the result of replacing each OS separator in path with a slash.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}
