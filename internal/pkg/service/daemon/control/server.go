package control

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Masterminds/semver"
	"github.com/gofrs/uuid/v5"
	"github.com/hashicorp/yamux"
	"github.com/valyala/fastjson"
	"go.uber.org/atomic"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	// requestTimeout limits waiting for the request line of an opened stream.
	requestTimeout = 30 * time.Second
	// writeTimeout drops a subscriber that stopped reading.
	writeTimeout = 10 * time.Second
)

// Commands is the daemon surface exposed over the protocol.
type Commands interface {
	Status(ctx context.Context) (*StatusResult, error)
	List(ctx context.Context) (*ListResult, error)
	Signal(ctx context.Context, args SignalArgs) (*SignalResult, error)
	House(ctx context.Context, args HouseArgs) (*SignalResult, error)
	Scene(ctx context.Context, args SceneArgs) (*SignalResult, error)
	Arrive(ctx context.Context, args ArriveArgs) (*PresenceResult, error)
	Leave(ctx context.Context) (*PresenceResult, error)
	IsHome(ctx context.Context) (*PresenceResult, error)
	Stats(ctx context.Context) (*StatsResult, error)
	Journal(ctx context.Context, args JournalArgs) (*JournalResult, error)
	Reload(ctx context.Context) (*ReloadResult, error)
	Subscribe() (<-chan events.Event, func())
	Quit(reason string)
}

type Server struct {
	logger   log.Logger
	commands Commands
	metrics  *metrics.Metrics
	endpoint transport.Endpoint
	version  string // daemon build version, reported by the handshake
	addr     net.Addr

	lock     sync.Mutex
	sessions map[*yamux.Session]struct{}
}

// clientSession is the per connection state.
type clientSession struct {
	id     string
	logger log.Logger
	ready  atomic.Bool // the handshake is done
}

func NewServer(logger log.Logger, commands Commands, m *metrics.Metrics, endpoint transport.Endpoint, version string) *Server {
	return &Server{
		logger:   logger.AddPrefix("[control]"),
		commands: commands,
		metrics:  m,
		endpoint: endpoint,
		version:  version,
		sessions: make(map[*yamux.Session]struct{}),
	}
}

// Start opens the listener, the accept loop stops with the process.
func (s *Server) Start(proc *servicectx.Process) error {
	listener, err := transport.Listen(s.endpoint)
	if err != nil {
		return err
	}
	s.addr = listener.Addr()

	proc.Add(func(ctx context.Context, errCh chan<- error) {
		s.serve(ctx, errCh, listener)
	})
	proc.OnShutdown(func() {
		if err := listener.Close(); err != nil {
			s.logger.Warnf(`%s`, err)
		}
		s.closeSessions()
	})

	s.logger.Infof(`Listening on %s.`, s.endpoint)
	return nil
}

// Addr is the bound listener address, set by Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

func (s *Server) serve(ctx context.Context, errCh chan<- error, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case errCh <- errors.PrefixError(err, "control listener failed"):
			case <-ctx.Done():
			}
			return
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	session, err := transport.ServerSession(conn)
	if err != nil {
		s.logger.Warnf(`%s`, err)
		_ = conn.Close()
		return
	}
	s.addSession(session)
	defer s.removeSession(session)

	id := uuid.Must(uuid.NewV4()).String()
	sess := &clientSession{id: id, logger: s.logger.AddPrefix(fmt.Sprintf("[%s]", id[:8]))}
	sess.logger.Infof(`Connected from "%s".`, conn.RemoteAddr())
	defer sess.logger.Info(`Disconnected.`)

	for {
		stream, err := session.Accept()
		if err != nil {
			return
		}
		go s.handleStream(ctx, sess, stream)
	}
}

func (s *Server) handleStream(ctx context.Context, sess *clientSession, stream net.Conn) {
	defer func() {
		_ = stream.Close()
	}()

	_ = stream.SetReadDeadline(time.Now().Add(requestTimeout))
	line, err := bufio.NewReader(stream).ReadBytes('\n')
	if err != nil {
		sess.logger.Warnf(`Cannot read the request: %s`, err)
		return
	}
	_ = stream.SetReadDeadline(time.Time{})

	// Route by the command name before the typed decode
	command := fastjson.GetString(line, "command")

	var req Request
	if err := json.Decode(line, &req); err != nil {
		s.countRequest(command, false)
		s.respond(sess, stream, errorResponse("", &Error{Code: ErrCodeBadRequest, Message: fmt.Sprintf("invalid request: %s", err)}))
		return
	}

	switch command {
	case CommandEvents:
		// The stream stays open, every event follows as one line
		s.streamEvents(ctx, sess, stream, req)
	case CommandQuit:
		if cmdErr := requireReady(sess); cmdErr != nil {
			s.countRequest(command, false)
			s.respond(sess, stream, errorResponse(req.ID, cmdErr))
			return
		}
		// The response goes out before the daemon stops
		s.countRequest(command, true)
		s.respond(sess, stream, okResponse(req.ID, &QuitResult{Stopping: true}))
		sess.logger.Info(`Quit requested.`)
		s.commands.Quit("quit command received")
	default:
		result, cmdErr := s.dispatch(ctx, sess, command, req)
		s.countRequest(command, cmdErr == nil)
		if cmdErr != nil {
			sess.logger.Warnf(`Command "%s" failed: %s`, command, cmdErr.Message)
			s.respond(sess, stream, errorResponse(req.ID, cmdErr))
			return
		}
		s.respond(sess, stream, okResponse(req.ID, result))
	}
}

func (s *Server) dispatch(ctx context.Context, sess *clientSession, command string, req Request) (any, *Error) {
	if command == CommandHandshake {
		return s.handshake(sess, req)
	}
	if cmdErr := requireReady(sess); cmdErr != nil {
		return nil, cmdErr
	}

	switch command {
	case CommandStatus:
		return s.result(s.commands.Status(ctx))
	case CommandList:
		return s.result(s.commands.List(ctx))
	case CommandSignal:
		args, argsErr := decodeArgs[SignalArgs](req)
		if argsErr != nil {
			return nil, argsErr
		}
		return s.result(s.commands.Signal(ctx, args))
	case CommandHouse:
		args, argsErr := decodeArgs[HouseArgs](req)
		if argsErr != nil {
			return nil, argsErr
		}
		return s.result(s.commands.House(ctx, args))
	case CommandScene:
		args, argsErr := decodeArgs[SceneArgs](req)
		if argsErr != nil {
			return nil, argsErr
		}
		return s.result(s.commands.Scene(ctx, args))
	case CommandArrive:
		args, argsErr := decodeArgs[ArriveArgs](req)
		if argsErr != nil {
			return nil, argsErr
		}
		return s.result(s.commands.Arrive(ctx, args))
	case CommandLeave:
		return s.result(s.commands.Leave(ctx))
	case CommandIsHome:
		return s.result(s.commands.IsHome(ctx))
	case CommandStats:
		return s.result(s.commands.Stats(ctx))
	case CommandJournal:
		args, argsErr := decodeArgs[JournalArgs](req)
		if argsErr != nil {
			return nil, argsErr
		}
		return s.result(s.commands.Journal(ctx, args))
	case CommandReload:
		return s.result(s.commands.Reload(ctx))
	default:
		return nil, &Error{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf(`unknown command "%s"`, command)}
	}
}

func (s *Server) handshake(sess *clientSession, req Request) (any, *Error) {
	args, argsErr := decodeArgs[HandshakeArgs](req)
	if argsErr != nil {
		return nil, argsErr
	}

	clientVersion, err := semver.NewVersion(args.Version)
	if err != nil {
		return nil, &Error{Code: ErrCodeBadRequest, Message: fmt.Sprintf(`invalid protocol version "%s"`, args.Version)}
	}

	serverVersion := semver.MustParse(ProtocolVersion)
	if clientVersion.Major() != serverVersion.Major() {
		return nil, &Error{Code: ErrCodeIncompatible, Message: fmt.Sprintf(`client protocol version "%s" is not compatible with the server "%s"`, args.Version, ProtocolVersion)}
	}
	if clientVersion.Minor() != serverVersion.Minor() {
		sess.logger.Infof(`Client protocol version "%s" differs from the server "%s".`, args.Version, ProtocolVersion)
	}

	sess.ready.Store(true)
	client := args.Client
	if client == "" {
		client = "unknown client"
	}
	sess.logger.Infof(`Handshake with %s, protocol "%s".`, client, args.Version)
	return &HandshakeResult{Version: ProtocolVersion, Daemon: s.version, SessionID: sess.id}, nil
}

func (s *Server) streamEvents(ctx context.Context, sess *clientSession, stream net.Conn, req Request) {
	if cmdErr := requireReady(sess); cmdErr != nil {
		s.countRequest(CommandEvents, false)
		s.respond(sess, stream, errorResponse(req.ID, cmdErr))
		return
	}

	feed, cancel := s.commands.Subscribe()
	defer cancel()

	s.countRequest(CommandEvents, true)
	if err := s.writeLine(stream, okResponse(req.ID, &EventsResult{Subscribed: true})); err != nil {
		sess.logger.Warnf(`Cannot write the response: %s`, err)
		return
	}
	sess.logger.Info(`Subscribed to events.`)
	defer sess.logger.Info(`Unsubscribed from events.`)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := s.writeLine(stream, event); err != nil {
				return
			}
		}
	}
}

func (s *Server) result(result any, err error) (any, *Error) {
	if err != nil {
		return nil, &Error{Code: ErrCodeCommandFailed, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) respond(sess *clientSession, stream net.Conn, response Response) {
	if err := s.writeLine(stream, response); err != nil {
		sess.logger.Warnf(`Cannot write the response: %s`, err)
	}
}

func (s *Server) writeLine(stream net.Conn, v any) error {
	line, err := json.Encode(v, false)
	if err != nil {
		return err
	}
	_ = stream.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = stream.Write(append(line, '\n'))
	return err
}

func (s *Server) countRequest(command string, ok bool) {
	if !knownCommands[command] {
		command = "unknown"
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	s.metrics.ControlRequests.WithLabelValues(command, result).Inc()
}

func (s *Server) addSession(session *yamux.Session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sessions[session] = struct{}{}
}

func (s *Server) removeSession(session *yamux.Session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, session)
}

func (s *Server) closeSessions() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for session := range s.sessions {
		_ = session.Close()
	}
}

func requireReady(sess *clientSession) *Error {
	if sess.ready.Load() {
		return nil
	}
	return &Error{Code: ErrCodeHandshakeRequired, Message: `the connection is not initialized, send the "handshake" command first`}
}

func decodeArgs[T any](req Request) (T, *Error) {
	var args T
	if len(req.Args) > 0 {
		if err := json.Decode(req.Args, &args); err != nil {
			return args, &Error{Code: ErrCodeBadRequest, Message: fmt.Sprintf(`invalid "%s" args: %s`, req.Command, err)}
		}
	}
	return args, nil
}

func okResponse(id string, result any) Response {
	return Response{ID: id, OK: true, Result: json.MustEncode(result, false)}
}

func errorResponse(id string, cmdErr *Error) Response {
	return Response{ID: id, OK: false, Error: cmdErr}
}

var knownCommands = map[string]bool{
	CommandHandshake: true,
	CommandStatus:    true,
	CommandList:      true,
	CommandSignal:    true,
	CommandHouse:     true,
	CommandScene:     true,
	CommandArrive:    true,
	CommandLeave:     true,
	CommandIsHome:    true,
	CommandEvents:    true,
	CommandStats:     true,
	CommandJournal:   true,
	CommandReload:    true,
	CommandQuit:      true,
}
