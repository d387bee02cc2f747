// Package ignore reads the optional ".x10ignore" file, the patterns
// exclude static files from the collectstatic copy.
package ignore

import (
	"strings"

	"github.com/homewire/x10/internal/pkg/filesystem"
)

const FilePath = ".x10ignore"

type File struct {
	patterns []string
}

func newFile(content string) *File {
	patterns := make([]string, 0)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return &File{patterns: patterns}
}

// Load returns an empty file if the ignore file does not exist.
func Load(fs filesystem.Fs) (*File, error) {
	if !fs.Exists(FilePath) {
		return newFile(""), nil
	}

	content, err := fs.ReadFile(filesystem.NewFileDef(FilePath).SetDescription("ignore"))
	if err != nil {
		return nil, err
	}
	return newFile(content.Content), nil
}

func (f *File) Patterns() []string {
	return f.patterns
}

// IsIgnored matches the relative path and each of its segments against the patterns.
func (f *File) IsIgnored(path string) bool {
	path = filesystem.ToSlash(path)
	segments := strings.Split(path, "/")
	for _, pattern := range f.patterns {
		if match, _ := filesystem.Match(pattern, path); match {
			return true
		}
		for _, segment := range segments {
			if match, _ := filesystem.Match(pattern, segment); match {
				return true
			}
		}
	}
	return false
}
