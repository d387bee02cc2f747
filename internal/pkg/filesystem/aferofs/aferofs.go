// nolint: forbidigo
package aferofs

import (
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/umisama/go-regexpcache"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/encoding/yaml"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Backend is one of the supported implementations: local, memory.
type Backend interface {
	afero.Fs
	Name() string
	BasePath() string
	Walk(root string, walkFn filesystem.WalkFunc) error
}

// Fs implements the filesystem.Fs interface on top of an Afero backend.
type Fs struct {
	logger     log.Logger
	backend    Backend
	utils      *afero.Afero
	workingDir string
}

func New(logger log.Logger, backend Backend, workingDir string) *Fs {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Fs{
		logger:     logger,
		backend:    backend,
		utils:      &afero.Afero{Fs: backend},
		workingDir: filesystem.ToSlash(workingDir),
	}
}

// Backend returns the underlying Afero filesystem.
func (fs *Fs) Backend() afero.Fs {
	return fs.backend
}

func (fs *Fs) Name() string {
	return fs.backend.Name()
}

func (fs *Fs) BasePath() string {
	return fs.backend.BasePath()
}

func (fs *Fs) WorkingDir() string {
	return fs.workingDir
}

func (fs *Fs) SetLogger(logger log.Logger) {
	fs.logger = logger
}

func (fs *Fs) Walk(root string, walkFn filesystem.WalkFunc) error {
	return fs.backend.Walk(root, walkFn)
}

func (fs *Fs) Glob(pattern string) (matches []string, err error) {
	return afero.Glob(fs.backend, pattern)
}

func (fs *Fs) Stat(path string) (os.FileInfo, error) {
	return fs.backend.Stat(filesystem.FromSlash(path))
}

func (fs *Fs) ReadDir(path string) ([]os.FileInfo, error) {
	return fs.utils.ReadDir(filesystem.FromSlash(path))
}

func (fs *Fs) Mkdir(path string) error {
	if err := fs.utils.MkdirAll(filesystem.FromSlash(path), 0o755); err != nil {
		return errors.Errorf(`cannot create directory "%s": %w`, path, err)
	}
	return nil
}

func (fs *Fs) Exists(path string) bool {
	if _, err := fs.backend.Stat(filesystem.FromSlash(path)); err == nil {
		return true
	}
	return false
}

func (fs *Fs) IsFile(path string) bool {
	if s, err := fs.backend.Stat(filesystem.FromSlash(path)); err == nil {
		return !s.IsDir()
	}
	return false
}

func (fs *Fs) IsDir(path string) bool {
	if s, err := fs.backend.Stat(filesystem.FromSlash(path)); err == nil {
		return s.IsDir()
	}
	return false
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return fs.backend.Create(filesystem.FromSlash(name))
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.backend.Open(filesystem.FromSlash(name))
}

func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return fs.backend.OpenFile(filesystem.FromSlash(name), flag, perm)
}

// Copy src to dst, the error occurs if the dst exists.
func (fs *Fs) Copy(src, dst string) error {
	if fs.Exists(dst) {
		return errors.Errorf(`cannot copy "%s": target "%s" already exists`, src, dst)
	}
	return fs.CopyForce(src, dst)
}

// CopyForce src to dst, the dst is overwritten if it exists.
func (fs *Fs) CopyForce(src, dst string) error {
	if fs.IsDir(src) {
		if err := fs.Remove(dst); err != nil {
			return err
		}
		return CopyFs2Fs(fs, src, fs, dst)
	}

	file, err := fs.ReadFile(filesystem.NewFileDef(src))
	if err != nil {
		return err
	}
	if err := fs.Remove(dst); err != nil {
		return err
	}
	return fs.WriteFile(filesystem.NewRawFile(dst, file.Content))
}

// Move src to dst, the error occurs if the dst exists.
func (fs *Fs) Move(src, dst string) error {
	if fs.Exists(dst) {
		return errors.Errorf(`cannot move "%s": target "%s" already exists`, src, dst)
	}
	return fs.MoveForce(src, dst)
}

// MoveForce src to dst, the dst is overwritten if it exists.
func (fs *Fs) MoveForce(src, dst string) error {
	if err := fs.Remove(dst); err != nil {
		return err
	}

	// Rename if possible, otherwise copy and delete
	if err := fs.backend.Rename(filesystem.FromSlash(src), filesystem.FromSlash(dst)); err == nil {
		return nil
	}
	if err := fs.CopyForce(src, dst); err != nil {
		return err
	}
	return fs.Remove(src)
}

func (fs *Fs) Remove(path string) error {
	if err := fs.utils.RemoveAll(filesystem.FromSlash(path)); err != nil {
		return errors.Errorf(`cannot remove "%s": %w`, path, err)
	}
	return nil
}

func (fs *Fs) ReadFile(def *filesystem.FileDef) (*filesystem.RawFile, error) {
	fileDesc := strings.TrimSpace(def.Description() + " file")
	content, err := fs.utils.ReadFile(filesystem.FromSlash(def.Path()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf(`missing %s "%s"`, fileDesc, def.Path())
		}
		return nil, errors.Errorf(`cannot read %s "%s": %w`, fileDesc, def.Path(), err)
	}

	file := def.ToEmptyFile()
	file.Content = string(content)
	fs.logger.Debugf(`Loaded "%s"`, def.Path())
	return file, nil
}

func (fs *Fs) WriteFile(file filesystem.File) error {
	rawFile, err := file.ToRawFile()
	if err != nil {
		return err
	}

	path := rawFile.Path()
	fileDesc := strings.TrimSpace(rawFile.Description() + " file")

	// Create the directory
	if dir := filesystem.Dir(path); !fs.Exists(dir) {
		if err := fs.Mkdir(dir); err != nil {
			return err
		}
	}

	if err := fs.utils.WriteFile(filesystem.FromSlash(path), []byte(rawFile.Content), 0o644); err != nil {
		return errors.Errorf(`cannot write %s "%s": %w`, fileDesc, path, err)
	}

	fs.logger.Debugf(`Saved "%s"`, path)
	return nil
}

func (fs *Fs) ReadJsonFile(def *filesystem.FileDef) (*filesystem.JsonFile, error) {
	file, err := fs.ReadFile(def)
	if err != nil {
		return nil, err
	}
	return file.ToJsonFile()
}

func (fs *Fs) ReadJsonFileTo(def *filesystem.FileDef, target any) error {
	file, err := fs.ReadFile(def)
	if err != nil {
		return err
	}

	if err := json.DecodeString(file.Content, target); err != nil {
		fileDesc := strings.TrimSpace(def.Description() + " file")
		return errors.PrefixErrorf(err, `%s "%s" is invalid`, fileDesc, def.Path())
	}
	return nil
}

func (fs *Fs) WriteJsonFile(file *filesystem.JsonFile) error {
	return fs.WriteFile(file)
}

func (fs *Fs) ReadYamlFileTo(def *filesystem.FileDef, target any) error {
	file, err := fs.ReadFile(def)
	if err != nil {
		return err
	}

	if err := yaml.DecodeString(file.Content, target); err != nil {
		fileDesc := strings.TrimSpace(def.Description() + " file")
		return errors.PrefixErrorf(err, `%s "%s" is invalid`, fileDesc, def.Path())
	}
	return nil
}

// CreateOrUpdateFile lines, if the regexp matches an existing line, the line is replaced,
// otherwise the line is appended to the end.
func (fs *Fs) CreateOrUpdateFile(def *filesystem.FileDef, lines []filesystem.FileLine) (updated bool, err error) {
	// Read the file if it exists
	updated = fs.IsFile(def.Path())
	content := ""
	if updated {
		file, err := fs.ReadFile(def)
		if err != nil {
			return false, err
		}
		content = file.Content
	}

	for _, line := range lines {
		newValue := strings.TrimSuffix(line.Line, "\n") + "\n"
		if line.Regexp == "" {
			// No regexp -> append if not present
			if !strings.Contains(content, newValue) {
				content = appendLine(content, newValue)
			}
			continue
		}

		regExp := regexpcache.MustCompile(`(?m)` + line.Regexp)
		if regExp.MatchString(content) {
			content = regExp.ReplaceAllString(content, strings.TrimSuffix(newValue, "\n"))
		} else {
			content = appendLine(content, newValue)
		}
	}

	file := def.ToEmptyFile()
	file.Content = content
	if err := fs.WriteFile(file); err != nil {
		return false, err
	}
	return updated, nil
}

func appendLine(content, line string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line
}
