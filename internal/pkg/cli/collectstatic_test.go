package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/filesystem/aferofs"
	"github.com/homewire/x10/internal/pkg/log"
)

func TestCollectstaticAndCleanCommands(t *testing.T) {
	t.Parallel()

	// The static root is resolved against the project dir, a real directory is needed
	projectDir := t.TempDir()
	fs, err := aferofs.NewLocalFs(log.NewNopLogger(), projectDir, "")
	require.NoError(t, err)

	// Initialize the project and add a static file
	root1, _ := newTestRootCommandWithFs(fs)
	root1.cmd.SetArgs([]string{"init"})
	require.Equal(t, 0, root1.Execute())
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile("static/css/site.css", "body { color: #333; }\n")))

	// Collect
	root2, out := newTestRootCommandWithFs(fs)
	root2.cmd.SetArgs([]string{"collectstatic"})
	assert.Equal(t, 0, root2.Execute())
	assert.Contains(t, out.String(), "Copied 1 files")
	assert.FileExists(t, filepath.Join(projectDir, "data", "static", "css", "site.css"))
	assert.FileExists(t, filepath.Join(projectDir, "data", "static", "css", "site.css.gz"))

	// Second run skips the unchanged file
	root3, out3 := newTestRootCommandWithFs(fs)
	root3.cmd.SetArgs([]string{"collectstatic"})
	assert.Equal(t, 0, root3.Execute())
	assert.Contains(t, out3.String(), "1 unchanged")

	// Clean removes the collected files and the cache
	root4, out4 := newTestRootCommandWithFs(fs)
	root4.cmd.SetArgs([]string{"clean"})
	assert.Equal(t, 0, root4.Execute())
	assert.Contains(t, out4.String(), "Clean done.")
	assert.NoFileExists(t, filepath.Join(projectDir, "data", "static", "css", "site.css"))
	assert.NoDirExists(t, filepath.Join(projectDir, ".x10", "cache"))
}

func TestCollectstaticCommandCustomStaticRoot(t *testing.T) {
	t.Parallel()

	projectDir := t.TempDir()
	fs, err := aferofs.NewLocalFs(log.NewNopLogger(), projectDir, "")
	require.NoError(t, err)

	root1, _ := newTestRootCommandWithFs(fs)
	root1.cmd.SetArgs([]string{"init"})
	require.Equal(t, 0, root1.Execute())
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile("static/robots.txt", "User-agent: *\n")))

	staticRoot := t.TempDir()
	root2, _ := newTestRootCommandWithFs(fs)
	root2.cmd.SetArgs([]string{"collectstatic", "--static-root", staticRoot})
	assert.Equal(t, 0, root2.Execute())
	assert.FileExists(t, filepath.Join(staticRoot, "robots.txt"))
}
