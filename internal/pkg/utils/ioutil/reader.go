package ioutil

import (
	"bufio"
	"bytes"
	"os"
)

// Reader is an in-memory stdin double for command tests.
// Tests write the input script into Buffer, the command under test
// reads it back. Fd makes it pass the survey terminal.FileReader check.
type Reader struct {
	Reader *bufio.Reader
	Buffer *bytes.Buffer
}

// NewBufferedReader creates an empty Reader, the content is added
// through the Buffer field.
func NewBufferedReader() *Reader {
	var buffer bytes.Buffer
	return &Reader{bufio.NewReader(&buffer), &buffer}
}

func (r *Reader) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (*Reader) Close() error { return nil }

// Fd fake terminal file descriptor.
func (*Reader) Fd() uintptr {
	return os.Stdin.Fd()
}
