package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

type testDeps struct {
	logger log.DebugLogger
}

func newTestDeps() *testDeps {
	return &testDeps{logger: log.NewDebugLogger()}
}

func (d *testDeps) Logger() log.Logger {
	return d.logger
}

func TestGenerateCreate(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := newTestDeps()

	err := Run(context.Background(), fs, Options{StaticRoot: "/srv/static"}, d)
	assert.NoError(t, err)

	// The env file contains exactly one line, the static root key.
	file, err := fs.ReadFile(filesystem.NewFileDef(".env"))
	assert.NoError(t, err)
	assert.Equal(t, "X10_STATIC_ROOT=\"/srv/static\"\n", file.Content)
	assert.Contains(t, d.logger.AllMessages(), `Created file ".env"`)
}

func TestGenerateUpdate(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := newTestDeps()

	assert.NoError(t, fs.WriteFile(filesystem.NewRawFile(".env", "FOO=bar\nX10_STATIC_ROOT=\"/old\"\nBAZ=qux\n")))

	err := Run(context.Background(), fs, Options{StaticRoot: "/srv/static"}, d)
	assert.NoError(t, err)

	// Other lines are preserved, only the static root line is replaced.
	file, err := fs.ReadFile(filesystem.NewFileDef(".env"))
	assert.NoError(t, err)
	assert.Equal(t, "FOO=bar\nX10_STATIC_ROOT=\"/srv/static\"\nBAZ=qux\n", file.Content)
	assert.Contains(t, d.logger.AllMessages(), `Updated file ".env"`)
}

func TestGenerateCustomOutput(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := newTestDeps()

	err := Run(context.Background(), fs, Options{Output: ".env.production", StaticRoot: "/var/www/static"}, d)
	assert.NoError(t, err)

	file, err := fs.ReadFile(filesystem.NewFileDef(".env.production"))
	assert.NoError(t, err)
	assert.Equal(t, "X10_STATIC_ROOT=\"/var/www/static\"\n", file.Content)
}

func TestGenerateMissingStaticRoot(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := newTestDeps()

	err := Run(context.Background(), fs, Options{}, d)
	assert.Error(t, err)
	assert.Equal(t, "the static root path is not set", err.Error())
}
