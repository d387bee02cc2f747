package filesystem

import (
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/encoding/yaml"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// FileLine is a line added or replaced by the Fs.CreateOrUpdateFile method.
type FileLine struct {
	Line   string
	Regexp string
}

// FileDef describes a file by path and description, the description is used in error messages.
type FileDef struct {
	desc string
	path string
}

// File is a common abstraction for a file.
type File interface {
	Description() string
	SetDescription(v string) File
	Path() string
	ToRawFile() (*RawFile, error)
}

type RawFile struct {
	*FileDef
	Content string
}

type JsonFile struct {
	*FileDef
	Content *orderedmap.OrderedMap
}

type YamlFile struct {
	*FileDef
	Content any
}

func NewFileDef(path string) *FileDef {
	return &FileDef{path: path}
}

func (f *FileDef) Path() string {
	return f.path
}

func (f *FileDef) SetPath(v string) *FileDef {
	f.path = v
	return f
}

func (f *FileDef) Description() string {
	return f.desc
}

func (f *FileDef) SetDescription(v string) *FileDef {
	f.desc = v
	return f
}

// ToEmptyFile converts FileDef to a File with empty content.
func (f *FileDef) ToEmptyFile() *RawFile {
	file := NewRawFile(f.path, "")
	file.desc = f.desc
	return file
}

func NewRawFile(path, content string) *RawFile {
	file := &RawFile{FileDef: NewFileDef(path)}
	file.Content = content
	return file
}

func (f *RawFile) Description() string {
	return f.desc
}

func (f *RawFile) SetDescription(desc string) File {
	f.desc = desc
	return f
}

func (f *RawFile) Path() string {
	return f.path
}

func (f *RawFile) ToRawFile() (*RawFile, error) {
	return f, nil
}

func (f *RawFile) ToJsonFile() (*JsonFile, error) {
	jsonMap := orderedmap.New()
	if err := json.DecodeString(f.Content, jsonMap); err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `%s "%s" is invalid`, fileDesc, f.path)
	}

	file := NewJsonFile(f.path, jsonMap)
	file.SetDescription(f.desc)
	return file, nil
}

func (f *RawFile) ToYamlFile() (*YamlFile, error) {
	var content any
	if err := yaml.DecodeString(f.Content, &content); err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `%s "%s" is invalid`, fileDesc, f.path)
	}

	file := NewYamlFile(f.path, content)
	file.SetDescription(f.desc)
	return file, nil
}

func NewJsonFile(path string, content *orderedmap.OrderedMap) *JsonFile {
	file := &JsonFile{FileDef: NewFileDef(path)}
	file.Content = content
	return file
}

func (f *JsonFile) Description() string {
	return f.desc
}

func (f *JsonFile) SetDescription(desc string) File {
	f.desc = desc
	return f
}

func (f *JsonFile) Path() string {
	return f.path
}

func (f *JsonFile) ToRawFile() (*RawFile, error) {
	content, err := json.EncodeString(f.Content, true)
	if err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `cannot encode %s "%s"`, fileDesc, f.path)
	}

	file := NewRawFile(f.path, content+"\n")
	file.SetDescription(f.desc)
	return file, nil
}

func NewYamlFile(path string, content any) *YamlFile {
	file := &YamlFile{FileDef: NewFileDef(path)}
	file.Content = content
	return file
}

func (f *YamlFile) Description() string {
	return f.desc
}

func (f *YamlFile) SetDescription(desc string) File {
	f.desc = desc
	return f
}

func (f *YamlFile) Path() string {
	return f.path
}

func (f *YamlFile) ToRawFile() (*RawFile, error) {
	content, err := yaml.EncodeString(f.Content)
	if err != nil {
		fileDesc := strings.TrimSpace(f.desc + " file")
		return nil, errors.PrefixErrorf(err, `cannot encode %s "%s"`, fileDesc, f.path)
	}

	file := NewRawFile(f.path, content)
	file.SetDescription(f.desc)
	return file, nil
}
