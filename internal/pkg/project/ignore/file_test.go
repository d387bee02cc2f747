package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	file, err := Load(testhelper.NewMemoryFs())
	require.NoError(t, err)
	assert.Empty(t, file.Patterns())
	assert.False(t, file.IsIgnored("static/css/site.css"))
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	content := "# editor leftovers\n*.swp\n\n.sass-cache\nstatic/drafts/*\n"
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(FilePath, content)))

	file, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.swp", ".sass-cache", "static/drafts/*"}, file.Patterns())

	assert.True(t, file.IsIgnored("static/css/site.css.swp"))
	assert.True(t, file.IsIgnored("static/.sass-cache/entry"))
	assert.True(t, file.IsIgnored("static/drafts/wip.html"))
	assert.False(t, file.IsIgnored("static/css/site.css"))
	assert.False(t, file.IsIgnored("static/js/app.js"))
}
