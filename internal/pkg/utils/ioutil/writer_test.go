package ioutil

import (
	"bufio"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/buffer"
)

func TestAtomicWriter(t *testing.T) {
	t.Parallel()
	writer := NewAtomicWriter()
	_, err := writer.WriteString("test")
	assert.NoError(t, err)
	assert.Equal(t, "test", writer.String())
}

func TestAtomicWriter_ConnectTo(t *testing.T) {
	t.Parallel()
	writer := NewAtomicWriter()
	otherBuffer := buffer.Buffer{}
	otherWriter := bufio.NewWriter(&otherBuffer)
	writer.ConnectTo(otherWriter)

	_, err := writer.WriteString("test")
	assert.NoError(t, err)
	assert.NoError(t, otherWriter.Flush())

	assert.Equal(t, "test", writer.String())
	assert.Equal(t, "test", otherBuffer.String())
}

func TestAtomicWriter_Truncate(t *testing.T) {
	t.Parallel()
	writer := NewAtomicWriter()
	_, err := writer.WriteString("test")
	assert.NoError(t, err)
	assert.Equal(t, "test", writer.StringAndTruncate())
	assert.Equal(t, "", writer.String())
}
