package transport

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	t.Parallel()

	endpoint, err := ParseEndpoint("tcp://127.0.0.1:6666")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Network: "tcp", Address: "127.0.0.1:6666"}, endpoint)
	assert.Equal(t, "tcp://127.0.0.1:6666", endpoint.String())

	endpoint, err = ParseEndpoint("unix:///var/run/x10d.sock")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Network: "unix", Address: "/var/run/x10d.sock"}, endpoint)

	cases := []string{"", "6666", "127.0.0.1:6666", "tcp://127.0.0.1", "http://127.0.0.1:80", "tcp://"}
	for _, c := range cases {
		_, err = ParseEndpoint(c)
		assert.Error(t, err, c)
		assert.ErrorContains(t, err, "invalid endpoint", c)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	listener, err := Listen(Endpoint{Network: "tcp", Address: "127.0.0.1:0"})
	require.NoError(t, err)
	defer listener.Close()

	// Echo server, one line per stream
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		session, err := ServerSession(conn)
		if err != nil {
			return
		}
		for {
			stream, err := session.Accept()
			if err != nil {
				return
			}
			go func(stream net.Conn) {
				defer stream.Close()
				line, err := bufio.NewReader(stream).ReadString('\n')
				if err != nil {
					return
				}
				_, _ = stream.Write([]byte(line))
			}(stream)
		}
	}()

	endpoint, err := ParseEndpoint("tcp://" + listener.Addr().String())
	require.NoError(t, err)
	conn, err := Dial(endpoint, time.Second)
	require.NoError(t, err)
	session, err := ClientSession(conn)
	require.NoError(t, err)
	defer session.Close()

	// Two parallel streams over one connection
	for i := 0; i < 2; i++ {
		stream, err := session.Open()
		require.NoError(t, err)
		_, err = stream.Write([]byte("hello\n"))
		require.NoError(t, err)
		line, err := bufio.NewReader(stream).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "hello\n", line)
		require.NoError(t, stream.Close())
	}
}

func TestUnixSocket(t *testing.T) {
	t.Parallel()
	socket := filepath.Join(t.TempDir(), "x10d.sock")

	listener, err := Listen(Endpoint{Network: "unix", Address: socket})
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	// A stale socket file left by a crash does not block the next start
	require.NoError(t, os.WriteFile(socket, nil, 0o600))
	listener, err = Listen(Endpoint{Network: "unix", Address: socket})
	require.NoError(t, err)
	require.NoError(t, listener.Close())
}
