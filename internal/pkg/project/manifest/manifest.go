// Package manifest reads and writes the project manifest, the ".x10/manifest.json" file.
package manifest

import (
	"context"
	"time"

	"github.com/homewire/x10/internal/pkg/build"
	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/validator"
)

const FileName = "manifest.json"

// Default location, the National Mall in Washington DC.
const (
	DefaultLatitude  = 38.889857
	DefaultLongitude = -77.009954
	DefaultTimeZone  = "America/New_York"
)

func Path() string {
	return filesystem.Join(filesystem.MetadataDir, FileName)
}

// Location of the home, solar schedules are computed for it.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	TimeZone  string  `json:"timeZone" validate:"required,timezone"`
}

func (l Location) TimeLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return nil, errors.Errorf(`invalid time zone "%s": %w`, l.TimeZone, err)
	}
	return loc, nil
}

type Project struct {
	Name string `json:"name" validate:"required"`
}

// Content of the project manifest.
type Content struct {
	Version  int      `json:"version" validate:"required,min=1,max=1"`
	Project  Project  `json:"project"`
	Location Location `json:"location"`
}

type Manifest struct {
	content *Content
}

func New(projectName string) *Manifest {
	return &Manifest{content: &Content{
		Version: build.MajorVersion,
		Project: Project{Name: projectName},
		Location: Location{
			Latitude:  DefaultLatitude,
			Longitude: DefaultLongitude,
			TimeZone:  DefaultTimeZone,
		},
	}}
}

func Load(ctx context.Context, fs filesystem.Fs) (*Manifest, error) {
	path := Path()
	if !fs.IsFile(path) {
		return nil, errors.Errorf(`manifest "%s" not found`, path)
	}

	content := &Content{}
	def := filesystem.NewFileDef(path).SetDescription("manifest")
	if err := fs.ReadJsonFileTo(def, content); err != nil {
		return nil, err
	}

	m := &Manifest{content: content}
	if err := m.validate(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) Save(ctx context.Context, fs filesystem.Fs) error {
	if err := m.validate(ctx); err != nil {
		return err
	}

	content, err := json.EncodeString(m.content, true)
	if err != nil {
		return errors.PrefixError(err, "cannot encode manifest")
	}
	return fs.WriteFile(filesystem.NewRawFile(Path(), content+"\n").SetDescription("manifest"))
}

func (m *Manifest) Path() string {
	return Path()
}

func (m *Manifest) ProjectName() string {
	return m.content.Project.Name
}

func (m *Manifest) Location() Location {
	return m.content.Location
}

func (m *Manifest) SetLocation(v Location) {
	m.content.Location = v
}

func (m *Manifest) validate(ctx context.Context) error {
	if err := validator.New().Validate(ctx, m.content); err != nil {
		return errors.PrefixError(err, "manifest is not valid")
	}
	return nil
}
