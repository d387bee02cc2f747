package schedule

import (
	"sort"
	"time"

	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Binding is one resolved on/off trigger of a unit,
// either a compiled crontab or a solar event.
type Binding struct {
	Action     model.Action
	Cron       *Cron
	Solar      SolarEvent
	Source     string
	OnlyIfHome bool
}

func NewCronBinding(action model.Action, c *Cron, source string) Binding {
	return Binding{Action: action, Cron: c, Source: source}
}

func NewSolarBinding(action model.Action, event SolarEvent, onlyIfHome bool) Binding {
	return Binding{Action: action, Solar: event, Source: event.String(), OnlyIfHome: onlyIfHome}
}

// Event is one scheduled switch of a unit on a calendar day.
type Event struct {
	Time       time.Time
	Action     model.Action
	Source     string
	OnlyIfHome bool
}

// Calendar merges cron and solar bindings into daily event lists.
type Calendar struct {
	solar    *SolarCalendar
	location *time.Location
}

func NewCalendar(solar *SolarCalendar) *Calendar {
	return &Calendar{solar: solar, location: solar.Location()}
}

func (c *Calendar) Location() *time.Location {
	return c.location
}

// DailyEvents returns the events of the calendar day of the given time, sorted.
// A crontab may fire several times a day, every occurrence is listed.
// Solar events that do not occur on the day are left out.
func (c *Calendar) DailyEvents(bindings []Binding, day time.Time) ([]Event, error) {
	dayStart := startOfDay(day.In(c.location))
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make([]Event, 0)
	for _, binding := range bindings {
		switch {
		case binding.Cron != nil:
			for at := binding.Cron.Next(dayStart.Add(-time.Nanosecond)); !at.IsZero() && at.Before(dayEnd); at = binding.Cron.Next(at) {
				out = append(out, Event{Time: at, Action: binding.Action, Source: binding.Source, OnlyIfHome: binding.OnlyIfHome})
			}
		case binding.Solar != "":
			at, err := c.solar.EventTime(binding.Solar, dayStart)
			notOccurring := &EventNotOccurringError{}
			if errors.As(err, &notOccurring) {
				continue
			} else if err != nil {
				return nil, err
			}
			out = append(out, Event{Time: at, Action: binding.Action, Source: binding.Source, OnlyIfHome: binding.OnlyIfHome})
		default:
			return nil, errors.New("empty binding: neither cron nor solar event is set")
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

// IntendedState folds the day's events up to the given time, inclusive.
// The state is the one after the last fired event, off when none fired yet.
func (c *Calendar) IntendedState(bindings []Binding, at time.Time) (bool, error) {
	events, err := c.DailyEvents(bindings, at)
	if err != nil {
		return false, err
	}

	state := false
	for _, event := range events {
		if event.Time.After(at) {
			break
		}
		state = event.Action.TurnsOn()
	}
	return state, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
