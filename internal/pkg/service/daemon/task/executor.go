package task

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/service/daemon/state"
	"github.com/homewire/x10/internal/pkg/utils/errors"
	"github.com/homewire/x10/internal/pkg/x10/cm17a"
	"github.com/homewire/x10/internal/pkg/x10/portlock"
)

// ExecutorConfig collects the components an Executor drives.
type ExecutorConfig struct {
	Lock        *portlock.Lock
	Transmitter cm17a.Transmitter
	Registry    func() *project.Registry
	State       *state.Store
	Journal     *journal.Journal
	Hub         *events.Hub
	Metrics     *metrics.Metrics
}

// Executor runs one task at a time, transmission, state update,
// journal record, event and metrics for each signal.
type Executor struct {
	logger log.Logger
	clock  clockwork.Clock
	config ExecutorConfig
}

func NewExecutor(logger log.Logger, clock clockwork.Clock, config ExecutorConfig) *Executor {
	return &Executor{logger: logger, clock: clock, config: config}
}

// Run transmits the task signals sequentially and stops on the first failure.
// A task marked OnlyIfHome is skipped without an error when nobody is home.
func (e *Executor) Run(ctx context.Context, task Task) error {
	if task.OnlyIfHome && !e.config.State.IsHome() {
		e.config.Metrics.Skips.WithLabelValues("not-home").Inc()
		e.logger.Infof(`Task %s skipped, nobody is home.`, task.ID)
		return nil
	}

	for i, signal := range task.Signals {
		if err := e.transmit(ctx, task, signal); err != nil {
			if len(task.Signals) > 1 {
				return errors.PrefixErrorf(err, `stopped at signal %d of %d`, i+1, len(task.Signals))
			}
			return err
		}
	}
	return nil
}

func (e *Executor) transmit(ctx context.Context, task Task, signal Signal) error {
	lockStart := e.clock.Now()
	if err := e.config.Lock.Acquire(ctx); err != nil {
		e.record(ctx, task, signal, err)
		return err
	}
	e.config.Metrics.LockWaitSeconds.Observe(e.clock.Since(lockStart).Seconds())
	defer func() {
		if err := e.config.Lock.Release(); err != nil {
			e.logger.Warnf(`%s`, err)
		}
	}()

	transmitStart := e.clock.Now()
	err := e.config.Transmitter.Transmit(ctx, signal.Command)
	e.config.Metrics.TransmitSeconds.Observe(e.clock.Since(transmitStart).Seconds())

	e.record(ctx, task, signal, err)
	if err != nil {
		return err
	}

	e.publish(task, signal)
	e.apply(task, signal)
	return nil
}

// record writes the attempt to the journal and bumps the signal counter.
func (e *Executor) record(ctx context.Context, task Task, signal Signal, err error) {
	result := "ok"
	record := journal.Record{
		House:      signal.Command.House.String(),
		Number:     int(signal.Command.Number),
		Action:     signal.Command.Action.String(),
		Multiplier: signal.Command.Multiplier,
		Origin:     task.Origin,
		OK:         err == nil,
	}
	if signal.Unit != nil {
		record.Unit = signal.Unit.Slug
	}
	if err != nil {
		result = "error"
		record.Error = err.Error()
	}

	e.config.Metrics.Signals.WithLabelValues(record.Action, task.Origin, result).Inc()
	if journalErr := e.config.Journal.Append(ctx, record); journalErr != nil {
		e.logger.Errorf(`%s`, journalErr)
	}
}

// apply updates the stored on/off states, brt and dim keep the last state.
// A house wide command fans out to the units with the house letter,
// the lamps commands reach only the lamp modules, marked dimmable.
func (e *Executor) apply(task Task, signal Signal) {
	cmd := signal.Command
	if !cmd.Action.TurnsOn() && !cmd.Action.TurnsOff() {
		return
	}

	if signal.Unit != nil {
		e.setUnit(signal.Unit.Slug, cmd.Action.TurnsOn(), task.Origin)
		return
	}

	for _, unit := range e.config.Registry().Units() {
		if unit.House != cmd.House {
			continue
		}
		if (cmd.Action == model.ActionLampsOn || cmd.Action == model.ActionLampsOff) && !unit.Dimmable {
			continue
		}
		e.setUnit(unit.Slug, cmd.Action.TurnsOn(), task.Origin)
	}
}

func (e *Executor) setUnit(slug string, on bool, origin string) {
	if err := e.config.State.SetUnit(slug, on, origin); err != nil {
		e.logger.Errorf(`%s`, err)
		return
	}
	e.config.Hub.Publish(events.NamespaceUnits, "set", slug, map[string]any{
		"on":     on,
		"origin": origin,
	})
}

func (e *Executor) publish(task Task, signal Signal) {
	payload := map[string]any{
		"action":     signal.Command.Action.String(),
		"multiplier": signal.Command.Multiplier,
		"origin":     task.Origin,
		"house":      signal.Command.House.String(),
	}

	id := strings.ToLower(signal.Command.House.String())
	if signal.Unit != nil {
		id = signal.Unit.Slug
		payload["number"] = int(signal.Command.Number)
	}

	e.config.Hub.Publish(events.NamespaceUnits, "send_signal", id, payload)
}
