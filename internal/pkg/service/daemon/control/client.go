package control

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/yamux"
	jsoniter "github.com/json-iterator/go"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/idgenerator"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	dialTimeout      = 3 * time.Second
	dialRetryTimeout = 5 * time.Second
)

// Client talks to a running daemon.
// The connection is a yamux session, every request opens one stream, so a
// subscription and commands share a single connection.
type Client struct {
	logger        log.Logger
	endpoint      transport.Endpoint
	session       *yamux.Session
	sessionID     string
	daemonVersion string
}

// Dial connects with an exponential backoff and shakes hands.
// A daemon with an incompatible protocol major version refuses the handshake.
func Dial(ctx context.Context, logger log.Logger, endpoint transport.Endpoint, clientName string) (*Client, error) {
	c := &Client{logger: logger, endpoint: endpoint}

	dial := func() error {
		conn, err := transport.Dial(endpoint, dialTimeout)
		if err != nil {
			return err
		}
		session, err := transport.ClientSession(conn)
		if err != nil {
			_ = conn.Close()
			return err
		}
		c.session = session
		return nil
	}
	if err := backoff.Retry(dial, backoff.WithContext(newDialBackOff(), ctx)); err != nil {
		return nil, errors.Errorf(`cannot connect to the daemon at "%s": %w`, endpoint, err)
	}

	result := &HandshakeResult{}
	if err := c.request(ctx, CommandHandshake, HandshakeArgs{Version: ProtocolVersion, Client: clientName}, result); err != nil {
		_ = c.session.Close()
		return nil, errors.PrefixError(err, "handshake failed")
	}
	c.sessionID = result.SessionID
	c.daemonVersion = result.Daemon

	c.logger.Debugf(`Connected to the daemon %s, session "%s".`, c.daemonVersion, c.sessionID)
	return c, nil
}

func newDialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = dialRetryTimeout
	return b
}

func (c *Client) Close() error {
	if err := c.session.Close(); err != nil {
		return errors.PrefixError(err, "cannot close the daemon connection")
	}
	return nil
}

// SessionID is assigned by the daemon during the handshake.
func (c *Client) SessionID() string {
	return c.sessionID
}

// DaemonVersion is the build version reported by the handshake.
func (c *Client) DaemonVersion() string {
	return c.daemonVersion
}

func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	out := &StatusResult{}
	if err := c.request(ctx, CommandStatus, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context) (*ListResult, error) {
	out := &ListResult{}
	if err := c.request(ctx, CommandList, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Signal(ctx context.Context, args SignalArgs) (*SignalResult, error) {
	out := &SignalResult{}
	if err := c.request(ctx, CommandSignal, args, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) House(ctx context.Context, args HouseArgs) (*SignalResult, error) {
	out := &SignalResult{}
	if err := c.request(ctx, CommandHouse, args, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Scene(ctx context.Context, args SceneArgs) (*SignalResult, error) {
	out := &SignalResult{}
	if err := c.request(ctx, CommandScene, args, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Arrive(ctx context.Context, person string) (*PresenceResult, error) {
	out := &PresenceResult{}
	if err := c.request(ctx, CommandArrive, ArriveArgs{Person: person}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Leave(ctx context.Context) (*PresenceResult, error) {
	out := &PresenceResult{}
	if err := c.request(ctx, CommandLeave, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) IsHome(ctx context.Context) (*PresenceResult, error) {
	out := &PresenceResult{}
	if err := c.request(ctx, CommandIsHome, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (*StatsResult, error) {
	out := &StatsResult{}
	if err := c.request(ctx, CommandStats, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Journal(ctx context.Context, args JournalArgs) (*JournalResult, error) {
	out := &JournalResult{}
	if err := c.request(ctx, CommandJournal, args, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Reload(ctx context.Context) (*ReloadResult, error) {
	out := &ReloadResult{}
	if err := c.request(ctx, CommandReload, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Quit(ctx context.Context) error {
	return c.request(ctx, CommandQuit, nil, nil)
}

// Subscribe opens the events stream.
// The channel closes when the stream ends, the cancel callback closes it.
func (c *Client) Subscribe(ctx context.Context) (<-chan events.Event, func(), error) {
	stream, err := c.session.Open()
	if err != nil {
		return nil, nil, errors.PrefixError(err, "cannot open a stream, is the daemon running?")
	}

	id := idgenerator.RequestId()
	if err := writeRequest(stream, Request{ID: id, Command: CommandEvents}, c.deadline(ctx)); err != nil {
		_ = stream.Close()
		return nil, nil, err
	}
	reader := bufio.NewReader(stream)
	if _, err := readResponse(reader, id, nil); err != nil {
		_ = stream.Close()
		return nil, nil, err
	}

	// The stream stays open as long as the subscription lives
	_ = stream.SetDeadline(time.Time{})

	out := make(chan events.Event, 16)
	go func() {
		defer close(out)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			event := events.Event{}
			if err := json.Decode(line, &event); err != nil {
				c.logger.Warnf(`Invalid event: %s`, err)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = stream.Close()
	}
	return out, cancel, nil
}

func (c *Client) request(ctx context.Context, command string, args any, result any) error {
	var rawArgs jsoniter.RawMessage
	if args != nil {
		raw, err := json.Encode(args, false)
		if err != nil {
			return err
		}
		rawArgs = raw
	}

	stream, err := c.session.Open()
	if err != nil {
		return errors.PrefixError(err, "cannot open a stream, is the daemon running?")
	}
	defer func() {
		_ = stream.Close()
	}()

	id := idgenerator.RequestId()
	if err := writeRequest(stream, Request{ID: id, Command: command, Args: rawArgs}, c.deadline(ctx)); err != nil {
		return err
	}
	if _, err := readResponse(bufio.NewReader(stream), id, result); err != nil {
		return err
	}
	return nil
}

// deadline of one request, the context may shorten the default.
func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

func writeRequest(stream net.Conn, req Request, deadline time.Time) error {
	line, err := json.Encode(req, false)
	if err != nil {
		return err
	}
	_ = stream.SetDeadline(deadline)
	if _, err := stream.Write(append(line, '\n')); err != nil {
		return errors.PrefixError(err, "cannot send the request")
	}
	return nil
}

func readResponse(reader *bufio.Reader, id string, result any) (*Response, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, errors.PrefixError(err, "cannot read the response")
	}

	response := &Response{}
	if err := json.Decode(line, response); err != nil {
		return nil, errors.PrefixError(err, "invalid response")
	}
	if response.ID != id {
		return nil, errors.Errorf(`response id "%s" does not match the request id "%s"`, response.ID, id)
	}
	if !response.OK {
		if response.Error == nil {
			return nil, errors.New("the daemon refused the request without an error")
		}
		return nil, response.Error
	}
	if result != nil && len(response.Result) > 0 {
		if err := json.Decode(response.Result, result); err != nil {
			return nil, errors.PrefixError(err, "invalid response result")
		}
	}
	return response, nil
}
