package daemon

import (
	"context"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/journal"
	"github.com/homewire/x10/internal/pkg/service/daemon/task"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// originControl marks the journal records of the control commands.
const originControl = "control"

func (s *Service) Status(_ context.Context) (*control.StatusResult, error) {
	registry := s.watcher.Registry()
	presence := s.state.Presence()
	return &control.StatusResult{
		Version:       s.version,
		UptimeSeconds: int64(s.clock.Since(s.startAt).Seconds()),
		Project:       s.project.Manifest().ProjectName(),
		Units:         len(registry.Units()),
		Scenes:        len(registry.Scenes()),
		Schedules:     len(registry.Schedules()),
		Home:          presence.Home,
		Person:        presence.Person,
		OnUnits:       s.state.OnUnits(),
	}, nil
}

func (s *Service) List(_ context.Context) (*control.ListResult, error) {
	registry := s.watcher.Registry()
	out := &control.ListResult{
		Units:     make([]control.UnitInfo, 0),
		Scenes:    make([]control.SceneInfo, 0),
		Schedules: make([]control.ScheduleInfo, 0),
	}

	for _, unit := range registry.Units() {
		info := control.UnitInfo{
			Slug:        unit.Slug,
			Name:        unit.Name,
			Address:     unit.Address().String(),
			Dimmable:    unit.Dimmable,
			AutoManaged: unit.AutoManaged,
			State:       "unknown",
		}
		if current, found := s.state.Unit(unit.Slug); found {
			if current.On {
				info.State = "on"
			} else {
				info.State = "off"
			}
		}
		out.Units = append(out.Units, info)
	}

	for _, scene := range registry.Scenes() {
		units, err := registry.SceneUnits(scene)
		if err != nil {
			return nil, err
		}
		out.Scenes = append(out.Scenes, control.SceneInfo{Slug: scene.Slug, Name: scene.Name, Units: len(units)})
	}

	for _, sched := range registry.Schedules() {
		out.Schedules = append(out.Schedules, control.ScheduleInfo{Slug: sched.Slug, Name: sched.Name, Crontab: sched.Crontab})
	}
	return out, nil
}

// Signal queues one task per unit matching the slug or glob pattern.
// All tasks are validated before the first one is queued.
func (s *Service) Signal(_ context.Context, args control.SignalArgs) (*control.SignalResult, error) {
	action, err := model.ParseAction(args.Action)
	if err != nil {
		return nil, err
	}

	registry := s.watcher.Registry()
	units := registry.MatchUnits(args.Unit)
	if len(units) == 0 {
		return nil, errors.Errorf(`no unit matches "%s"`, args.Unit)
	}

	tasks := make([]task.Task, 0, len(units))
	for _, unit := range units {
		t, err := task.NewUnitTask(unit, action, multiplierOrDefault(args.Multiplier), originControl, args.OnlyIfHome)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	result := &control.SignalResult{Tasks: make([]string, 0, len(tasks)), Units: make([]string, 0, len(units))}
	for i, t := range tasks {
		if err := s.runner.Dispatch(t); err != nil {
			return nil, err
		}
		result.Tasks = append(result.Tasks, t.ID)
		result.Units = append(result.Units, units[i].Slug)
	}
	return result, nil
}

func (s *Service) House(_ context.Context, args control.HouseArgs) (*control.SignalResult, error) {
	house, err := model.ParseHouse(args.House)
	if err != nil {
		return nil, err
	}
	action, err := model.ParseAction(args.Action)
	if err != nil {
		return nil, err
	}

	t, err := task.NewHouseTask(house, action, multiplierOrDefault(args.Multiplier), originControl)
	if err != nil {
		return nil, err
	}
	if err := s.runner.Dispatch(t); err != nil {
		return nil, err
	}
	return &control.SignalResult{Tasks: []string{t.ID}}, nil
}

func (s *Service) Scene(_ context.Context, args control.SceneArgs) (*control.SignalResult, error) {
	action, err := model.ParseAction(args.Action)
	if err != nil {
		return nil, err
	}

	registry := s.watcher.Registry()
	scene, found := registry.Scene(args.Scene)
	if !found {
		return nil, errors.Errorf(`scene "%s" not found`, args.Scene)
	}
	units, err := registry.SceneUnits(scene)
	if err != nil {
		return nil, err
	}

	t, err := task.NewSceneTask(registry, scene, action, multiplierOrDefault(args.Multiplier), originControl, args.OnlyIfHome)
	if err != nil {
		return nil, err
	}
	if err := s.runner.Dispatch(t); err != nil {
		return nil, err
	}

	result := &control.SignalResult{Tasks: []string{t.ID}, Units: make([]string, 0, len(units))}
	for _, unit := range units {
		result.Units = append(result.Units, unit.Slug)
	}
	return result, nil
}

func (s *Service) IsHome(_ context.Context) (*control.PresenceResult, error) {
	return s.presenceResult(), nil
}

func (s *Service) Stats(_ context.Context) (*control.StatsResult, error) {
	snapshot, err := s.metrics.Snapshot()
	if err != nil {
		return nil, err
	}
	return &control.StatsResult{Metrics: snapshot}, nil
}

func (s *Service) Journal(ctx context.Context, args control.JournalArgs) (*control.JournalResult, error) {
	q := journal.Query{Unit: args.Unit, Limit: args.Limit}

	var err error
	if q.Since, err = parseQueryTime(args.Since, "since"); err != nil {
		return nil, err
	}
	if q.Until, err = parseQueryTime(args.Until, "until"); err != nil {
		return nil, err
	}

	records, err := s.journal.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	return &control.JournalResult{Records: records}, nil
}

func (s *Service) Reload(ctx context.Context) (*control.ReloadResult, error) {
	changed, err := s.watcher.Reload(ctx, "control command")
	if err != nil {
		return nil, err
	}

	registry := s.watcher.Registry()
	return &control.ReloadResult{
		Changed:   changed,
		Units:     len(registry.Units()),
		Scenes:    len(registry.Scenes()),
		Schedules: len(registry.Schedules()),
	}, nil
}

func (s *Service) Subscribe() (<-chan events.Event, func()) {
	return s.hub.Subscribe()
}

func (s *Service) Quit(reason string) {
	s.proc.Shutdown(errors.New(reason))
}

func (s *Service) presenceResult() *control.PresenceResult {
	p := s.state.Presence()
	return &control.PresenceResult{Home: p.Home, Person: p.Person, ChangedAt: p.ChangedAt}
}

func multiplierOrDefault(multiplier int) int {
	if multiplier == 0 {
		return model.DefaultMultiplier
	}
	return multiplier
}

func parseQueryTime(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := iso8601.ParseString(value)
	if err != nil {
		return time.Time{}, errors.Errorf(`invalid "%s" time "%s": expected the ISO 8601 format`, field, value)
	}
	return t, nil
}
