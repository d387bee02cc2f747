package cachefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

func TestLoadEmpty(t *testing.T) {
	t.Parallel()
	file, err := Load(testhelper.NewMemoryFs())
	require.NoError(t, err)
	assert.Empty(t, file.Hashes)
	_, found := file.Hash("static/css/site.css")
	assert.False(t, found)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()

	file := New()
	file.SetHash("static/css/site.css", "d41d8cd98f00b204")
	file.SetHash("static/js/app.js", "9e107d9d372bb682")
	require.NoError(t, file.Save(fs))
	assert.True(t, fs.IsFile(filesystem.Join(".x10", "cache", "static.json")))

	loaded, err := Load(fs)
	require.NoError(t, err)
	hash, found := loaded.Hash("static/css/site.css")
	require.True(t, found)
	assert.Equal(t, "d41d8cd98f00b204", hash)
	assert.Len(t, loaded.Hashes, 2)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	fs := testhelper.NewMemoryFs()
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(Path(), `{`)))

	_, err := Load(fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `static cache file ".x10/cache/static.json" is invalid`)
}
