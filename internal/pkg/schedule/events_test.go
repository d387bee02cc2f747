package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/model"
)

func TestDailyEventsCron(t *testing.T) {
	t.Parallel()
	calendar := utcCalendar(t)

	bindings := []Binding{
		NewCronBinding(model.ActionOff, parseCron(t, "30 22 * * *"), "night-off"),
		NewCronBinding(model.ActionOn, parseCron(t, "0 7 * * *"), "morning-on"),
		NewCronBinding(model.ActionOn, parseCron(t, "0 */6 * * *"), "refresh"),
	}

	// Any time within the day selects the whole calendar day
	day := time.Date(2021, 6, 21, 15, 4, 5, 0, time.UTC)
	events, err := calendar.DailyEvents(bindings, day)
	require.NoError(t, err)

	assert.Equal(t, []Event{
		{Time: time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC), Action: model.ActionOn, Source: "refresh"},
		{Time: time.Date(2021, 6, 21, 6, 0, 0, 0, time.UTC), Action: model.ActionOn, Source: "refresh"},
		{Time: time.Date(2021, 6, 21, 7, 0, 0, 0, time.UTC), Action: model.ActionOn, Source: "morning-on"},
		{Time: time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC), Action: model.ActionOn, Source: "refresh"},
		{Time: time.Date(2021, 6, 21, 18, 0, 0, 0, time.UTC), Action: model.ActionOn, Source: "refresh"},
		{Time: time.Date(2021, 6, 21, 22, 30, 0, 0, time.UTC), Action: model.ActionOff, Source: "night-off"},
	}, events)
}

func TestDailyEventsSolar(t *testing.T) {
	t.Parallel()

	edt := time.FixedZone("EDT", -4*60*60)
	solar, err := NewSolarCalendar(38.889857, -77.009954, edt)
	require.NoError(t, err)
	calendar := NewCalendar(solar)

	bindings := []Binding{
		NewSolarBinding(model.ActionOn, Sunset, true),
		NewCronBinding(model.ActionOff, parseCron(t, "0 23 * * *"), "night-off"),
	}

	day := time.Date(2021, 6, 21, 0, 0, 0, 0, edt)
	events, err := calendar.DailyEvents(bindings, day)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, model.ActionOn, events[0].Action)
	assert.Equal(t, "sunset", events[0].Source)
	assert.True(t, events[0].OnlyIfHome)
	assert.WithinRange(t, events[0].Time, day.Add(20*time.Hour), day.Add(21*time.Hour+30*time.Minute))

	assert.Equal(t, model.ActionOff, events[1].Action)
	assert.Equal(t, day.Add(23*time.Hour), events[1].Time)
}

func TestDailyEventsSolarNotOccurring(t *testing.T) {
	t.Parallel()

	// The sun does not set above the polar circle on the solstice,
	// the binding is skipped for the day
	solar, err := NewSolarCalendar(69.6492, 18.9553, time.UTC)
	require.NoError(t, err)
	calendar := NewCalendar(solar)

	bindings := []Binding{
		NewSolarBinding(model.ActionOn, Sunset, false),
		NewCronBinding(model.ActionOff, parseCron(t, "0 0 * * *"), "midnight-off"),
	}

	events, err := calendar.DailyEvents(bindings, time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Time: time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC), Action: model.ActionOff, Source: "midnight-off"},
	}, events)
}

func TestDailyEventsEmptyBinding(t *testing.T) {
	t.Parallel()
	calendar := utcCalendar(t)
	_, err := calendar.DailyEvents([]Binding{{Action: model.ActionOn}}, time.Now())
	require.Error(t, err)
	assert.Equal(t, "empty binding: neither cron nor solar event is set", err.Error())
}

func TestIntendedState(t *testing.T) {
	t.Parallel()
	calendar := utcCalendar(t)

	bindings := []Binding{
		NewCronBinding(model.ActionOn, parseCron(t, "0 7 * * *"), "morning-on"),
		NewCronBinding(model.ActionOff, parseCron(t, "30 22 * * *"), "night-off"),
	}

	cases := []struct {
		at       time.Time
		expected bool
	}{
		{time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2021, 6, 21, 6, 59, 0, 0, time.UTC), false},
		{time.Date(2021, 6, 21, 7, 0, 0, 0, time.UTC), true},
		{time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC), true},
		{time.Date(2021, 6, 21, 22, 30, 0, 0, time.UTC), false},
		{time.Date(2021, 6, 21, 23, 0, 0, 0, time.UTC), false},
	}
	for _, c := range cases {
		state, err := calendar.IntendedState(bindings, c.at)
		require.NoError(t, err)
		assert.Equal(t, c.expected, state, c.at.String())
	}
}

func utcCalendar(t *testing.T) *Calendar {
	t.Helper()
	solar, err := NewSolarCalendar(38.889857, -77.009954, time.UTC)
	require.NoError(t, err)
	return NewCalendar(solar)
}

func parseCron(t *testing.T, expr string) *Cron {
	t.Helper()
	c, err := ParseCron(expr)
	require.NoError(t, err)
	return c
}
