// Package dispatcher fires the scheduled events.
// It ticks on an interval and fires every binding whose occurrence falls into
// the window since the previous tick, so a missed tick is caught up on the
// next one, at most one interval late.
package dispatcher

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/schedule"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/service/daemon/task"
)

// Queue enqueues the fired tasks, the task.Runner satisfies the interface.
type Queue interface {
	Dispatch(task task.Task) error
}

type Dispatcher struct {
	logger   log.Logger
	clock    clockwork.Clock
	interval time.Duration
	registry func() *project.Registry
	calendar *schedule.Calendar
	queue    Queue
	metrics  *metrics.Metrics
	lastTick time.Time
}

func New(logger log.Logger, clock clockwork.Clock, interval time.Duration, registry func() *project.Registry, calendar *schedule.Calendar, queue Queue, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		logger:   logger.AddPrefix("[dispatcher]"),
		clock:    clock,
		interval: interval,
		registry: registry,
		calendar: calendar,
		queue:    queue,
		metrics:  m,
	}
}

// Start runs the tick loop, it stops with the process.
func (d *Dispatcher) Start(proc *servicectx.Process) {
	proc.Add(func(ctx context.Context, _ chan<- error) {
		d.run(ctx)
	})
	d.logger.Infof(`Started, interval %s.`, d.interval)
}

func (d *Dispatcher) run(ctx context.Context) {
	d.lastTick = d.clock.Now()
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			now := d.clock.Now()
			start := now
			d.pass(now)
			d.lastTick = now
			if took := d.clock.Since(start); took > d.interval {
				d.logger.Warnf(`Pass took %s, longer than the %s interval.`, took, d.interval)
			}
		}
	}
}

// pass fires the events due in the (lastTick, now] window.
func (d *Dispatcher) pass(now time.Time) {
	registry := d.registry()
	for _, unit := range registry.Units() {
		bindings := registry.UnitBindings(unit)
		if len(bindings) == 0 {
			continue
		}

		due, err := d.due(bindings, d.lastTick, now)
		if err != nil {
			d.logger.Errorf(`Unit "%s": %s`, unit.Slug, err)
			continue
		}
		for _, event := range due {
			d.fire(unit, event)
		}
	}
}

// due filters the unit events to the (from, to] window.
// The window may cross midnight, then both days are inspected.
func (d *Dispatcher) due(bindings []schedule.Binding, from, to time.Time) ([]schedule.Event, error) {
	events, err := d.calendar.DailyEvents(bindings, to)
	if err != nil {
		return nil, err
	}
	if !sameDay(from, to, d.calendar.Location()) {
		previous, err := d.calendar.DailyEvents(bindings, from)
		if err != nil {
			return nil, err
		}
		events = append(previous, events...)
	}

	out := make([]schedule.Event, 0)
	for _, event := range events {
		if event.Time.After(from) && !event.Time.After(to) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (d *Dispatcher) fire(unit *model.Unit, event schedule.Event) {
	d.metrics.ScheduleFires.Inc()
	d.logger.Infof(`Schedule "%s": %s %s`, event.Source, unit.Slug, event.Action)

	t, err := task.NewUnitTask(unit, event.Action, model.DefaultMultiplier, "schedule:"+event.Source, event.OnlyIfHome)
	if err != nil {
		d.logger.Errorf(`Cannot fire "%s" for "%s": %s`, event.Source, unit.Slug, err)
		return
	}
	if err := d.queue.Dispatch(t); err != nil {
		d.logger.Errorf(`Cannot fire "%s" for "%s": %s`, event.Source, unit.Slug, err)
	}
}

func sameDay(a, b time.Time, location *time.Location) bool {
	aYear, aDay := a.In(location).Year(), a.In(location).YearDay()
	bYear, bDay := b.In(location).Year(), b.In(location).YearDay()
	return aYear == bYear && aDay == bDay
}
