// Package project loads the project directory: the manifest and the definition files.
package project

import (
	"context"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/project/manifest"
)

type Manifest = manifest.Manifest

type Project struct {
	fs       filesystem.Fs
	manifest *Manifest
}

// Load reads the manifest from the project directory.
func Load(ctx context.Context, fs filesystem.Fs) (*Project, error) {
	m, err := manifest.Load(ctx, fs)
	if err != nil {
		return nil, err
	}
	return New(fs, m), nil
}

func New(fs filesystem.Fs, m *Manifest) *Project {
	return &Project{fs: fs, manifest: m}
}

func (p *Project) Fs() filesystem.Fs {
	return p.fs
}

func (p *Project) Manifest() *Manifest {
	return p.manifest
}

func (p *Project) LoadRegistry(ctx context.Context) (*Registry, error) {
	return LoadRegistry(ctx, p.fs)
}
