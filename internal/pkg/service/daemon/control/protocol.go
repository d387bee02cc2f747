// Package control implements the daemon control protocol.
//
// The transport is a yamux session over the configured endpoint, each request
// opens one stream. Frames are newline delimited JSON. A request carries an
// ID, a command name and command specific args, the response echoes the ID.
// The "events" command keeps its stream open, every published event follows
// as one more line.
package control

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
)

// ProtocolVersion is negotiated by the handshake.
// A client with a different major version is refused, a different minor
// version is only logged.
const ProtocolVersion = "1.0.0"

const (
	CommandHandshake = "handshake"
	CommandStatus    = "status"
	CommandList      = "list"
	CommandSignal    = "signal"
	CommandHouse     = "house"
	CommandScene     = "scene"
	CommandArrive    = "arrive"
	CommandLeave     = "leave"
	CommandIsHome    = "is-home"
	CommandEvents    = "events"
	CommandStats     = "stats"
	CommandJournal   = "journal"
	CommandReload    = "reload"
	CommandQuit      = "quit"
)

const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeUnknownCommand    = "unknown_command"
	ErrCodeHandshakeRequired = "handshake_required"
	ErrCodeIncompatible      = "incompatible_version"
	ErrCodeCommandFailed     = "command_failed"
)

type Request struct {
	ID      string              `json:"id"`
	Command string              `json:"command"`
	Args    jsoniter.RawMessage `json:"args,omitempty"`
}

type Response struct {
	ID     string              `json:"id"`
	OK     bool                `json:"ok"`
	Result jsoniter.RawMessage `json:"result,omitempty"`
	Error  *Error              `json:"error,omitempty"`
}

// Error is a command refused or failed by the daemon.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

type HandshakeArgs struct {
	Version string `json:"version"`
	Client  string `json:"client,omitempty"`
}

type HandshakeResult struct {
	Version   string `json:"version"`
	Daemon    string `json:"daemon"`
	SessionID string `json:"sessionId"`
}

type StatusResult struct {
	Version       string   `json:"version"`
	UptimeSeconds int64    `json:"uptimeSeconds"`
	Project       string   `json:"project"`
	Units         int      `json:"units"`
	Scenes        int      `json:"scenes"`
	Schedules     int      `json:"schedules"`
	Home          bool     `json:"home"`
	Person        string   `json:"person,omitempty"`
	OnUnits       []string `json:"onUnits"`
}

type UnitInfo struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Dimmable    bool   `json:"dimmable,omitempty"`
	AutoManaged bool   `json:"autoManaged,omitempty"`
	State       string `json:"state"` // "on", "off" or "unknown"
}

type SceneInfo struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Units int    `json:"units"`
}

type ScheduleInfo struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Crontab string `json:"crontab"`
}

type ListResult struct {
	Units     []UnitInfo     `json:"units"`
	Scenes    []SceneInfo    `json:"scenes"`
	Schedules []ScheduleInfo `json:"schedules"`
}

type SignalArgs struct {
	Unit       string `json:"unit"` // slug or glob
	Action     string `json:"action"`
	Multiplier int    `json:"multiplier,omitempty"`
	OnlyIfHome bool   `json:"onlyIfHome,omitempty"`
}

type HouseArgs struct {
	House      string `json:"house"`
	Action     string `json:"action"`
	Multiplier int    `json:"multiplier,omitempty"`
}

type SceneArgs struct {
	Scene      string `json:"scene"`
	Action     string `json:"action"`
	Multiplier int    `json:"multiplier,omitempty"`
	OnlyIfHome bool   `json:"onlyIfHome,omitempty"`
}

// SignalResult lists what was queued, the transmission itself is asynchronous.
type SignalResult struct {
	Tasks []string `json:"tasks"`
	Units []string `json:"units,omitempty"`
}

type ArriveArgs struct {
	Person string `json:"person,omitempty"`
}

type PresenceResult struct {
	Home      bool      `json:"home"`
	Person    string    `json:"person,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

type JournalArgs struct {
	Since string `json:"since,omitempty"` // ISO 8601
	Until string `json:"until,omitempty"` // ISO 8601
	Unit  string `json:"unit,omitempty"`  // slug or glob
	Limit int    `json:"limit,omitempty"`
}

type JournalResult struct {
	Records []journal.Record `json:"records"`
}

type StatsResult struct {
	Metrics map[string]float64 `json:"metrics"`
}

type ReloadResult struct {
	Changed   bool `json:"changed"`
	Units     int  `json:"units"`
	Scenes    int  `json:"scenes"`
	Schedules int  `json:"schedules"`
}

type EventsResult struct {
	Subscribed bool `json:"subscribed"`
}

type QuitResult struct {
	Stopping bool `json:"stopping"`
}
