package testhelper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	. "github.com/homewire/x10/internal/pkg/utils/testhelper"
)

func TestReplaceEnvsString(t *testing.T) {
	t.Parallel()
	envs := env.Empty()
	envs.Set("PROJECT_DIR", "/my/project")
	assert.Equal(t, "root: /my/project", ReplaceEnvsString("root: %%PROJECT_DIR%%", envs))
}

func TestReplaceEnvsDir(t *testing.T) {
	t.Parallel()
	envs := env.Empty()
	envs.Set("STATIC_ROOT", "/srv/static")

	fs := NewMemoryFs()
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile("dir/.env.dist", "X10_STATIC_ROOT=%%STATIC_ROOT%%\n")))
	ReplaceEnvsDir(fs, "/", envs)

	file, err := fs.ReadFile(filesystem.NewFileDef("dir/.env.dist"))
	require.NoError(t, err)
	assert.Equal(t, "X10_STATIC_ROOT=/srv/static\n", file.Content)
}
