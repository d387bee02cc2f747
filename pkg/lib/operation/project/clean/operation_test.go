package clean

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

type testDeps struct {
	logger log.DebugLogger
}

func (d *testDeps) Logger() log.Logger {
	return d.logger
}

func TestClean(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	targetFs := testhelper.NewMemoryFs()
	d := &testDeps{logger: log.NewDebugLogger()}

	// Project cache
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(".x10/cache/static.json", `{"hashes": {}}`)))
	// Collected static files
	require.NoError(t, targetFs.WriteFile(filesystem.NewRawFile("css/site.css", "body {}")))
	require.NoError(t, targetFs.WriteFile(filesystem.NewRawFile("index.html", "<html></html>")))

	require.NoError(t, Run(context.Background(), fs, targetFs, d))

	assert.False(t, fs.Exists(".x10/cache"))
	assert.False(t, targetFs.Exists("css"))
	assert.False(t, targetFs.Exists("index.html"))

	logs := d.logger.AllMessages()
	assert.Contains(t, logs, "Removed 2 entries from the static root.")
	assert.Contains(t, logs, `Removed the ".x10/cache" directory.`)
	assert.Contains(t, logs, "Clean done.")
}

func TestCleanNoStaticRoot(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := &testDeps{logger: log.NewDebugLogger()}

	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(".x10/cache/static.json", `{"hashes": {}}`)))

	require.NoError(t, Run(context.Background(), fs, nil, d))

	assert.False(t, fs.Exists(".x10/cache"))
	logs := d.logger.AllMessages()
	assert.NotContains(t, logs, "static root")
	assert.Contains(t, logs, "Clean done.")
}

func TestCleanNothingToDo(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	d := &testDeps{logger: log.NewDebugLogger()}

	require.NoError(t, Run(context.Background(), fs, nil, d))
	assert.Contains(t, d.logger.AllMessages(), "Clean done.")
}
