package schedule

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/nathan-osman/go-sunrise"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// SolarEvent is a named point of the solar day.
type SolarEvent string

const (
	DawnAstronomical = SolarEvent("dawn-astronomical")
	DawnNautical     = SolarEvent("dawn-nautical")
	DawnCivil        = SolarEvent("dawn-civil")
	Sunrise          = SolarEvent("sunrise")
	SolarNoon        = SolarEvent("solar-noon")
	Sunset           = SolarEvent("sunset")
	DuskCivil        = SolarEvent("dusk-civil")
	DuskNautical     = SolarEvent("dusk-nautical")
	DuskAstronomical = SolarEvent("dusk-astronomical")
)

// Sun center elevations, degrees below the horizon.
const (
	civilElevation        = -6.0
	nauticalElevation     = -12.0
	astronomicalElevation = -18.0
)

const cacheTTL = 48 * time.Hour

// SolarEvents returns all events in the order of a normal day.
func SolarEvents() []SolarEvent {
	return []SolarEvent{
		DawnAstronomical,
		DawnNautical,
		DawnCivil,
		Sunrise,
		SolarNoon,
		Sunset,
		DuskCivil,
		DuskNautical,
		DuskAstronomical,
	}
}

func ParseSolarEvent(str string) (SolarEvent, error) {
	v := SolarEvent(str)
	for _, event := range SolarEvents() {
		if v == event {
			return v, nil
		}
	}
	return "", errors.Errorf(`unknown solar event "%s"`, str)
}

func (v SolarEvent) String() string {
	return string(v)
}

// EventNotOccurringError - the event does not occur at the location and date,
// for example an astronomical dusk in a northern summer.
type EventNotOccurringError struct {
	Event SolarEvent
	Day   time.Time
}

func (e *EventNotOccurringError) Error() string {
	return fmt.Sprintf(`solar event "%s" does not occur on %s at the configured location`, e.Event, e.Day.Format("2006-01-02"))
}

// SolarCalendar computes solar event times for one location.
// Results are cached per (event, coordinates, day).
type SolarCalendar struct {
	latitude  float64
	longitude float64
	location  *time.Location
	cache     *ristretto.Cache[string, time.Time]
}

func NewSolarCalendar(latitude, longitude float64, location *time.Location) (*SolarCalendar, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, time.Time]{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Errorf("cannot create solar cache: %w", err)
	}
	return &SolarCalendar{latitude: latitude, longitude: longitude, location: location, cache: cache}, nil
}

func (c *SolarCalendar) Location() *time.Location {
	return c.location
}

// EventTime returns the event time on the calendar day of the given time,
// in the calendar's time zone.
func (c *SolarCalendar) EventTime(event SolarEvent, day time.Time) (time.Time, error) {
	day = day.In(c.location)
	key := fmt.Sprintf("%s:%.6f:%.6f:%s", event, c.latitude, c.longitude, day.Format("2006-01-02"))
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	v, err := c.compute(event, day)
	if err != nil {
		return time.Time{}, err
	}

	c.cache.SetWithTTL(key, v, 1, cacheTTL)
	return v, nil
}

func (c *SolarCalendar) compute(event SolarEvent, day time.Time) (time.Time, error) {
	year, month, dayOfMonth := day.Date()

	var at time.Time
	switch event {
	case Sunrise:
		at, _ = sunrise.SunriseSunset(c.latitude, c.longitude, year, month, dayOfMonth)
	case Sunset:
		_, at = sunrise.SunriseSunset(c.latitude, c.longitude, year, month, dayOfMonth)
	case SolarNoon:
		rise, set := sunrise.SunriseSunset(c.latitude, c.longitude, year, month, dayOfMonth)
		if !rise.IsZero() && !set.IsZero() {
			at = rise.Add(set.Sub(rise) / 2)
		}
	case DawnCivil:
		at, _ = sunrise.TimeOfElevation(c.latitude, c.longitude, civilElevation, year, month, dayOfMonth)
	case DuskCivil:
		_, at = sunrise.TimeOfElevation(c.latitude, c.longitude, civilElevation, year, month, dayOfMonth)
	case DawnNautical:
		at, _ = sunrise.TimeOfElevation(c.latitude, c.longitude, nauticalElevation, year, month, dayOfMonth)
	case DuskNautical:
		_, at = sunrise.TimeOfElevation(c.latitude, c.longitude, nauticalElevation, year, month, dayOfMonth)
	case DawnAstronomical:
		at, _ = sunrise.TimeOfElevation(c.latitude, c.longitude, astronomicalElevation, year, month, dayOfMonth)
	case DuskAstronomical:
		_, at = sunrise.TimeOfElevation(c.latitude, c.longitude, astronomicalElevation, year, month, dayOfMonth)
	default:
		return time.Time{}, errors.Errorf(`unknown solar event "%s"`, event)
	}

	if at.IsZero() {
		return time.Time{}, &EventNotOccurringError{Event: event, Day: day}
	}
	return at.In(c.location), nil
}
