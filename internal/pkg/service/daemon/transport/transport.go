// Package transport carries the control protocol connections.
// An endpoint is "tcp://host:port" or "unix://path", every connection is
// wrapped in a yamux session and each request opens one short lived stream,
// so a subscription does not block other commands on the same connection.
package transport

import (
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/yamux"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const DefaultEndpoint = "tcp://127.0.0.1:6666"

type Endpoint struct {
	Network string // "tcp" or "unix"
	Address string
}

func ParseEndpoint(endpoint string) (Endpoint, error) {
	network, address, found := strings.Cut(endpoint, "://")
	if !found || address == "" {
		return Endpoint{}, errors.Errorf(`invalid endpoint "%s": expected the "tcp://host:port" or "unix://path" format`, endpoint)
	}

	switch network {
	case "tcp":
		if _, _, err := net.SplitHostPort(address); err != nil {
			return Endpoint{}, errors.Errorf(`invalid endpoint "%s": %w`, endpoint, err)
		}
	case "unix":
		// any non-empty path
	default:
		return Endpoint{}, errors.Errorf(`invalid endpoint "%s": unsupported scheme "%s"`, endpoint, network)
	}

	return Endpoint{Network: network, Address: address}, nil
}

func (e Endpoint) String() string {
	return e.Network + "://" + e.Address
}

// Listen opens the endpoint listener.
// A stale unix socket left by a crashed daemon is removed first.
func Listen(endpoint Endpoint) (net.Listener, error) {
	if endpoint.Network == "unix" {
		if err := os.Remove(endpoint.Address); err != nil && !os.IsNotExist(err) {
			return nil, errors.Errorf(`cannot remove the stale socket "%s": %w`, endpoint.Address, err)
		}
	}

	listener, err := net.Listen(endpoint.Network, endpoint.Address)
	if err != nil {
		return nil, errors.Errorf(`cannot listen on "%s": %w`, endpoint, err)
	}
	return listener, nil
}

// Dial connects to the endpoint.
func Dial(endpoint Endpoint, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout(endpoint.Network, endpoint.Address, timeout)
	if err != nil {
		return nil, errors.Errorf(`cannot connect to "%s": %w`, endpoint, err)
	}
	return conn, nil
}

// ServerSession wraps an accepted connection.
func ServerSession(conn net.Conn) (*yamux.Session, error) {
	session, err := yamux.Server(conn, sessionConfig())
	if err != nil {
		return nil, errors.PrefixError(err, "cannot create a server session")
	}
	return session, nil
}

// ClientSession wraps a dialed connection.
func ClientSession(conn net.Conn) (*yamux.Session, error) {
	session, err := yamux.Client(conn, sessionConfig())
	if err != nil {
		return nil, errors.PrefixError(err, "cannot create a client session")
	}
	return session, nil
}

func sessionConfig() *yamux.Config {
	config := yamux.DefaultConfig()
	// Session errors surface through the control package logging
	config.LogOutput = io.Discard
	return config
}
