// Package events prints the scheduled on/off events of a calendar day,
// computed by the same calendar code the daemon dispatches from.
package events

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/schedule"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const dateFormat = "2006-01-02"

type Options struct {
	Date string // YYYY-MM-DD, empty means today
	Unit string // unit slug or glob, empty means all units
}

type dependencies interface {
	Logger() log.Logger
	Clock() clockwork.Clock
}

func Run(ctx context.Context, fs filesystem.Fs, o Options, d dependencies) error {
	logger := d.Logger()

	prj, err := project.Load(ctx, fs)
	if err != nil {
		return err
	}
	registry, err := prj.LoadRegistry(ctx)
	if err != nil {
		return err
	}

	manifestLoc := prj.Manifest().Location()
	location, err := manifestLoc.TimeLocation()
	if err != nil {
		return err
	}
	solar, err := schedule.NewSolarCalendar(manifestLoc.Latitude, manifestLoc.Longitude, location)
	if err != nil {
		return err
	}
	calendar := schedule.NewCalendar(solar)

	// Requested day, today by default
	now := d.Clock().Now().In(location)
	day := now
	if o.Date != "" {
		day, err = time.ParseInLocation(dateFormat, o.Date, location)
		if err != nil {
			return errors.Errorf(`invalid date "%s", expected the YYYY-MM-DD format`, o.Date)
		}
	}

	units := registry.Units()
	if o.Unit != "" {
		units = registry.MatchUnits(o.Unit)
		if len(units) == 0 {
			return errors.Errorf(`no unit matches "%s"`, o.Unit)
		}
	}

	// For today the intended state is evaluated now,
	// for any other day at the end of the day.
	var stateAt time.Time
	if now.Year() == day.Year() && now.YearDay() == day.YearDay() {
		stateAt = now
	} else {
		year, month, dayOfMonth := day.Date()
		stateAt = time.Date(year, month, dayOfMonth, 0, 0, 0, 0, location).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	logger.Infof("Events on %s:", day.Format(dateFormat))
	found := false
	for _, unit := range units {
		bindings := registry.UnitBindings(unit)
		if len(bindings) == 0 {
			continue
		}
		found = true

		events, err := calendar.DailyEvents(bindings, day)
		if err != nil {
			return errors.PrefixErrorf(err, `cannot compute the events of the unit "%s"`, unit.Slug)
		}
		state, err := calendar.IntendedState(bindings, stateAt)
		if err != nil {
			return errors.PrefixErrorf(err, `cannot compute the intended state of the unit "%s"`, unit.Slug)
		}

		logger.Infof("%s (%s), intended state: %s", unit.Slug, unit.Address(), onOff(state))
		for _, event := range events {
			suffix := ""
			if event.OnlyIfHome {
				suffix = ", only if home"
			}
			logger.Infof("  %s  %-3s  %s%s", event.Time.Format("15:04"), event.Action, event.Source, suffix)
		}
	}

	if !found {
		logger.Info("No unit has a schedule.")
	}
	return nil
}

func onOff(state bool) string {
	if state {
		return "on"
	}
	return "off"
}
