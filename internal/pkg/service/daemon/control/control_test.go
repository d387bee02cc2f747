package control

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

type fakeCommands struct {
	hub *events.Hub

	lock       sync.Mutex
	calls      []string
	signalArgs SignalArgs
	quitReason string
}

func (f *fakeCommands) record(name string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeCommands) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeCommands) SignalArgs() SignalArgs {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.signalArgs
}

func (f *fakeCommands) Status(_ context.Context) (*StatusResult, error) {
	f.record("status")
	return &StatusResult{Version: "test-daemon", Project: "myhome", Units: 3, Scenes: 1, Schedules: 2, Home: true, Person: "alice", OnUnits: []string{"porch-light"}}, nil
}

func (f *fakeCommands) List(_ context.Context) (*ListResult, error) {
	f.record("list")
	return &ListResult{Units: []UnitInfo{{Slug: "porch-light", Name: "Porch light", Address: "A1", State: "on"}}}, nil
}

func (f *fakeCommands) Signal(_ context.Context, args SignalArgs) (*SignalResult, error) {
	f.record("signal")
	f.lock.Lock()
	f.signalArgs = args
	f.lock.Unlock()
	if args.Unit == "no-such-unit" {
		return nil, errors.Errorf(`no unit matches "%s"`, args.Unit)
	}
	return &SignalResult{Tasks: []string{"task-1"}, Units: []string{args.Unit}}, nil
}

func (f *fakeCommands) House(_ context.Context, _ HouseArgs) (*SignalResult, error) {
	f.record("house")
	return &SignalResult{Tasks: []string{"task-2"}}, nil
}

func (f *fakeCommands) Scene(_ context.Context, _ SceneArgs) (*SignalResult, error) {
	f.record("scene")
	return &SignalResult{Tasks: []string{"task-3"}, Units: []string{"porch-light", "bedroom-lamp"}}, nil
}

func (f *fakeCommands) Arrive(_ context.Context, args ArriveArgs) (*PresenceResult, error) {
	f.record("arrive")
	return &PresenceResult{Home: true, Person: args.Person}, nil
}

func (f *fakeCommands) Leave(_ context.Context) (*PresenceResult, error) {
	f.record("leave")
	return &PresenceResult{Home: false}, nil
}

func (f *fakeCommands) IsHome(_ context.Context) (*PresenceResult, error) {
	f.record("is-home")
	return &PresenceResult{Home: true, Person: "alice"}, nil
}

func (f *fakeCommands) Stats(_ context.Context) (*StatsResult, error) {
	f.record("stats")
	return &StatsResult{Metrics: map[string]float64{"x10d_queue_depth": 0}}, nil
}

func (f *fakeCommands) Journal(_ context.Context, _ JournalArgs) (*JournalResult, error) {
	f.record("journal")
	return &JournalResult{Records: []journal.Record{}}, nil
}

func (f *fakeCommands) Reload(_ context.Context) (*ReloadResult, error) {
	f.record("reload")
	return &ReloadResult{Changed: true, Units: 3, Scenes: 1, Schedules: 2}, nil
}

func (f *fakeCommands) Subscribe() (<-chan events.Event, func()) {
	f.record("events")
	return f.hub.Subscribe()
}

func (f *fakeCommands) Quit(reason string) {
	f.record("quit")
	f.lock.Lock()
	f.quitReason = reason
	f.lock.Unlock()
}

type testServer struct {
	backend  *fakeCommands
	metrics  *metrics.Metrics
	hub      *events.Hub
	endpoint transport.Endpoint
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	hub := events.NewHub(log.NewNopLogger(), clockwork.NewRealClock())
	backend := &fakeCommands{hub: hub}
	m := metrics.New()

	server := NewServer(log.NewNopLogger(), backend, m, transport.Endpoint{Network: "tcp", Address: "127.0.0.1:0"}, "test-daemon")
	require.NoError(t, server.Start(servicectx.NewForTest(t)))

	return &testServer{
		backend:  backend,
		metrics:  m,
		hub:      hub,
		endpoint: transport.Endpoint{Network: "tcp", Address: server.Addr().String()},
	}
}

func rawStream(t *testing.T, endpoint transport.Endpoint) net.Conn {
	t.Helper()

	conn, err := transport.Dial(endpoint, time.Second)
	require.NoError(t, err)
	session, err := transport.ClientSession(conn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
	})

	stream, err := session.Open()
	require.NoError(t, err)
	return stream
}

func TestClientRoundTrip(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, log.NewNopLogger(), ts.endpoint, "test-client")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	assert.Equal(t, "test-daemon", c.DaemonVersion())
	assert.NotEmpty(t, c.SessionID())

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "myhome", status.Project)
	assert.Equal(t, 3, status.Units)
	assert.True(t, status.Home)
	assert.Equal(t, []string{"porch-light"}, status.OnUnits)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list.Units, 1)
	assert.Equal(t, "porch-light", list.Units[0].Slug)
	assert.Equal(t, "on", list.Units[0].State)

	signal, err := c.Signal(ctx, SignalArgs{Unit: "porch-light", Action: "on", OnlyIfHome: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, signal.Tasks)
	assert.Equal(t, SignalArgs{Unit: "porch-light", Action: "on", OnlyIfHome: true}, ts.backend.SignalArgs())

	arrived, err := c.Arrive(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, arrived.Home)
	assert.Equal(t, "bob", arrived.Person)

	reload, err := c.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, reload.Changed)

	// The response goes out before the shutdown starts
	require.NoError(t, c.Quit(ctx))
	assert.Eventually(t, func() bool {
		ts.backend.lock.Lock()
		defer ts.backend.lock.Unlock()
		return ts.backend.quitReason == "quit command received"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"status", "list", "signal", "arrive", "reload", "quit"}, ts.backend.Calls())

	snapshot, err := ts.metrics.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snapshot[`x10d_control_requests_total{command="handshake",result="ok"}`])
	assert.Equal(t, 1.0, snapshot[`x10d_control_requests_total{command="status",result="ok"}`])
	assert.Equal(t, 1.0, snapshot[`x10d_control_requests_total{command="quit",result="ok"}`])
}

func TestCommandError(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, log.NewNopLogger(), ts.endpoint, "test-client")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})

	_, err = c.Signal(ctx, SignalArgs{Unit: "no-such-unit", Action: "on"})
	require.Error(t, err)
	cmdErr := &Error{}
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrCodeCommandFailed, cmdErr.Code)
	assert.Contains(t, cmdErr.Message, `no unit matches "no-such-unit"`)

	snapshot, err := ts.metrics.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snapshot[`x10d_control_requests_total{command="signal",result="error"}`])
}

func TestHandshakeRequired(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)

	stream := rawStream(t, ts.endpoint)
	require.NoError(t, writeRequest(stream, Request{ID: "1", Command: CommandStatus}, time.Now().Add(time.Second)))

	_, err := readResponse(bufio.NewReader(stream), "1", nil)
	require.Error(t, err)
	cmdErr := &Error{}
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrCodeHandshakeRequired, cmdErr.Code)
	assert.Empty(t, ts.backend.Calls())
}

func TestHandshakeIncompatibleVersion(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)

	stream := rawStream(t, ts.endpoint)
	args := json.MustEncode(HandshakeArgs{Version: "99.0.0", Client: "future-client"}, false)
	require.NoError(t, writeRequest(stream, Request{ID: "1", Command: CommandHandshake, Args: args}, time.Now().Add(time.Second)))

	_, err := readResponse(bufio.NewReader(stream), "1", nil)
	require.Error(t, err)
	cmdErr := &Error{}
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrCodeIncompatible, cmdErr.Code)
	assert.Contains(t, cmdErr.Message, `"99.0.0" is not compatible`)
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, log.NewNopLogger(), ts.endpoint, "test-client")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})

	stream, err := c.session.Open()
	require.NoError(t, err)
	require.NoError(t, writeRequest(stream, Request{ID: "1", Command: "frobnicate"}, time.Now().Add(time.Second)))

	_, err = readResponse(bufio.NewReader(stream), "1", nil)
	require.Error(t, err)
	cmdErr := &Error{}
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrCodeUnknownCommand, cmdErr.Code)
	assert.Equal(t, `unknown command "frobnicate"`, cmdErr.Message)

	snapshot, err := ts.metrics.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snapshot[`x10d_control_requests_total{command="unknown",result="error"}`])
}

func TestEventsStream(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ctx := context.Background()

	c, err := Dial(ctx, log.NewNopLogger(), ts.endpoint, "test-client")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})

	feed, cancel, err := c.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	// Commands keep working while the subscription is open
	_, err = c.IsHome(ctx)
	require.NoError(t, err)

	ts.hub.Publish(events.NamespaceUnits, "set", "porch-light", map[string]any{"on": true, "origin": "test"})

	select {
	case event := <-feed:
		assert.Equal(t, events.NamespaceUnits, event.Namespace)
		assert.Equal(t, "set", event.Action)
		assert.Equal(t, "porch-light", event.ID)
		assert.False(t, event.Time.IsZero())
		assert.Equal(t, map[string]any{"on": true, "origin": "test"}, event.Payload)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case _, ok := <-feed:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("the feed is not closed")
	}
}

func TestDialNoDaemon(t *testing.T) {
	t.Parallel()

	// A closed port refuses the connection
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	endpoint := transport.Endpoint{Network: "tcp", Address: listener.Addr().String()}
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = Dial(ctx, log.NewNopLogger(), endpoint, "test-client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot connect to the daemon")
}
