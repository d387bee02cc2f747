package events

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/project/manifest"
	"github.com/homewire/x10/internal/pkg/utils/testhelper"
)

type testDeps struct {
	logger log.DebugLogger
	clock  *clockwork.FakeClock
}

func (d *testDeps) Logger() log.Logger {
	return d.logger
}

func (d *testDeps) Clock() clockwork.Clock {
	return d.clock
}

func newTestDeps(now time.Time) *testDeps {
	return &testDeps{logger: log.NewDebugLogger(), clock: clockwork.NewFakeClockAt(now)}
}

func newTestProject(t *testing.T) filesystem.Fs {
	t.Helper()
	fs := testhelper.NewMemoryFs()

	m := manifest.New("myhome")
	m.SetLocation(manifest.Location{Latitude: 38.889857, Longitude: -77.009954, TimeZone: "UTC"})
	require.NoError(t, m.Save(context.Background(), fs))

	writeFile(t, fs, "schedules/morning-on.json", `{"name": "Morning on", "crontab": "0 7 * * *"}`)
	writeFile(t, fs, "schedules/night-off.json", `{"name": "Night off", "crontab": "30 22 * * *"}`)
	writeFile(t, fs, "units/bedroom-lamp.json", `{
		"name": "Bedroom lamp",
		"house": "A",
		"number": 3,
		"onSchedules": ["morning-on"],
		"offSchedules": ["night-off"]
	}`)
	writeFile(t, fs, "units/doorbell.json", `{"name": "Doorbell", "house": "A", "number": 9}`)
	return fs
}

func TestEventsToday(t *testing.T) {
	t.Parallel()
	fs := newTestProject(t)
	d := newTestDeps(time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC))

	require.NoError(t, Run(context.Background(), fs, Options{}, d))

	logs := d.logger.AllMessages()
	assert.Contains(t, logs, "Events on 2021-06-21:")
	// At noon the morning schedule has fired already.
	assert.Contains(t, logs, "bedroom-lamp (A3), intended state: on")
	assert.Contains(t, logs, "07:00  on   morning-on")
	assert.Contains(t, logs, "22:30  off  night-off")
	// A unit without a schedule is left out.
	assert.NotContains(t, logs, "doorbell")
}

func TestEventsExplicitDate(t *testing.T) {
	t.Parallel()
	fs := newTestProject(t)
	d := newTestDeps(time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC))

	require.NoError(t, Run(context.Background(), fs, Options{Date: "2021-12-24"}, d))

	logs := d.logger.AllMessages()
	assert.Contains(t, logs, "Events on 2021-12-24:")
	// For another day the intended state is evaluated at the end of the day.
	assert.Contains(t, logs, "bedroom-lamp (A3), intended state: off")
}

func TestEventsInvalidDate(t *testing.T) {
	t.Parallel()
	fs := newTestProject(t)
	d := newTestDeps(time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC))

	err := Run(context.Background(), fs, Options{Date: "24.12.2021"}, d)
	assert.Error(t, err)
	assert.Equal(t, `invalid date "24.12.2021", expected the YYYY-MM-DD format`, err.Error())
}

func TestEventsUnitFilter(t *testing.T) {
	t.Parallel()
	fs := newTestProject(t)
	d := newTestDeps(time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC))

	err := Run(context.Background(), fs, Options{Unit: "kitchen-*"}, d)
	assert.Error(t, err)
	assert.Equal(t, `no unit matches "kitchen-*"`, err.Error())

	require.NoError(t, Run(context.Background(), fs, Options{Unit: "doorbell"}, d))
	assert.Contains(t, d.logger.AllMessages(), "No unit has a schedule.")
}

func writeFile(t *testing.T, fs filesystem.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(filesystem.NewRawFile(path, content)))
}
