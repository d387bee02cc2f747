package daemon

import (
	"context"

	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/events"
	"github.com/homewire/x10/internal/pkg/service/daemon/task"
)

// originPresence marks the journal records of the arrive/leave automation.
const originPresence = "presence"

// Arrive marks the home occupied, restores the sticky lights and brings
// every auto-managed unit to its scheduled state for the current time.
func (s *Service) Arrive(_ context.Context, args control.ArriveArgs) (*control.PresenceResult, error) {
	if err := s.state.SetPresence(true, args.Person); err != nil {
		return nil, err
	}
	s.hub.Publish(events.NamespacePerson, "arrive", args.Person, map[string]any{"person": args.Person})
	s.logger.Infof(`Arrive: "%s".`, personOrSomebody(args.Person))

	registry := s.watcher.Registry()

	// The sticky lights were on when everyone left
	restored := make(map[string]bool)
	for _, slug := range s.state.Sticky() {
		unit, found := registry.Unit(slug)
		if !found {
			// Removed from the project while away
			continue
		}
		if err := s.queueUnit(unit, model.ActionOn); err != nil {
			s.logger.Errorf(`Cannot restore "%s": %s`, slug, err)
			continue
		}
		restored[slug] = true
	}
	if err := s.state.SetSticky(nil); err != nil {
		return nil, err
	}

	for _, unit := range registry.Units() {
		if !unit.AutoManaged || restored[unit.Slug] {
			continue
		}
		bindings := registry.UnitBindings(unit)
		if len(bindings) == 0 {
			continue
		}

		intended, err := s.calendar.IntendedState(bindings, s.clock.Now())
		if err != nil {
			s.logger.Errorf(`Unit "%s": %s`, unit.Slug, err)
			continue
		}
		if current, known := s.state.Unit(unit.Slug); known && current.On == intended {
			continue
		}

		action := model.ActionOff
		if intended {
			action = model.ActionOn
		}
		if err := s.queueUnit(unit, action); err != nil {
			s.logger.Errorf(`Cannot adjust "%s": %s`, unit.Slug, err)
		}
	}

	return s.presenceResult(), nil
}

// Leave remembers the lights that are on as sticky, switches them off
// and marks the home empty.
func (s *Service) Leave(_ context.Context) (*control.PresenceResult, error) {
	registry := s.watcher.Registry()

	sticky := make([]string, 0)
	for _, slug := range s.state.OnUnits() {
		if _, found := registry.Unit(slug); found {
			sticky = append(sticky, slug)
		}
	}
	if err := s.state.SetSticky(sticky); err != nil {
		return nil, err
	}

	for _, slug := range sticky {
		unit, _ := registry.Unit(slug)
		if err := s.queueUnit(unit, model.ActionOff); err != nil {
			s.logger.Errorf(`Cannot switch off "%s": %s`, slug, err)
		}
	}

	if err := s.state.SetPresence(false, ""); err != nil {
		return nil, err
	}
	s.hub.Publish(events.NamespacePerson, "leave", "", map[string]any{"sticky": len(sticky)})
	s.logger.Infof(`Leave: %d units switched off.`, len(sticky))

	return s.presenceResult(), nil
}

func (s *Service) queueUnit(unit *model.Unit, action model.Action) error {
	t, err := task.NewUnitTask(unit, action, model.DefaultMultiplier, originPresence, false)
	if err != nil {
		return err
	}
	return s.runner.Dispatch(t)
}

func personOrSomebody(person string) string {
	if person == "" {
		return "somebody"
	}
	return person
}
