package ioutil

import (
	"bufio"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedReader(t *testing.T) {
	t.Parallel()
	reader := NewBufferedReader()
	reader.Buffer.WriteString("first\nsecond\n")

	scanner := bufio.NewScanner(reader)
	require.True(t, scanner.Scan())
	assert.Equal(t, "first", scanner.Text())
	require.True(t, scanner.Scan())
	assert.Equal(t, "second", scanner.Text())
	assert.False(t, scanner.Scan())
	assert.NoError(t, scanner.Err())

	// EOF after the buffer is drained, not an error
	_, err := reader.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, reader.Close())
}
