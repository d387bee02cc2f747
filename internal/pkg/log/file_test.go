// nolint: forbidigo
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLogFile_Path(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	file, err := NewLogFile(filepath.Join(tempDir, "log-file.txt"))
	assert.NoError(t, err)
	assert.False(t, file.IsTemp())
	assert.FileExists(t, file.Path())

	// User defined log file is preserved
	file.TearDown(false)
	assert.FileExists(t, file.Path())
}

func TestNewLogFile_Strftime(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	file, err := NewLogFile(filepath.Join(tempDir, "x10d-%Y-%m-%d.log"))
	assert.NoError(t, err)
	assert.False(t, file.IsTemp())
	assert.NotContains(t, file.Path(), "%")
	assert.Contains(t, file.Path(), fmt.Sprintf("x10d-%d", time.Now().Year()))
	assert.FileExists(t, file.Path())
	file.TearDown(false)
}

func TestNewLogFile_Temp(t *testing.T) {
	t.Parallel()
	file, err := NewLogFile("")
	assert.NoError(t, err)
	assert.True(t, file.IsTemp())
	assert.FileExists(t, file.Path())

	// Temp log file is removed if no error occurred
	file.TearDown(false)
	assert.NoFileExists(t, file.Path())
}

func TestNewLogFile_TempKeptOnError(t *testing.T) {
	t.Parallel()
	file, err := NewLogFile("")
	assert.NoError(t, err)
	assert.True(t, file.IsTemp())

	// Temp log file is kept on error, to help with debugging
	file.TearDown(true)
	assert.FileExists(t, file.Path())
	assert.NoError(t, os.Remove(file.Path()))
}
