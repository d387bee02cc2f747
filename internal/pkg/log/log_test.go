package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogFormat(t *testing.T) {
	t.Parallel()

	format, err := NewLogFormat("console")
	assert.NoError(t, err)
	assert.Equal(t, LogFormatConsole, format)

	format, err = NewLogFormat("json")
	assert.NoError(t, err)
	assert.Equal(t, LogFormatJSON, format)

	// Fallback to the console format
	format, err = NewLogFormat("invalid")
	assert.Error(t, err)
	assert.Equal(t, `log format must be "console" or "json"`, err.Error())
	assert.Equal(t, LogFormatConsole, format)
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `first\nsecond\nthird`, Sanitize("first\nsecond\rthird"))
}
