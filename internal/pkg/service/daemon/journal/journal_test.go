package journal

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/log"
)

func newTestJournal(t *testing.T, clock clockwork.Clock) *Journal {
	t.Helper()
	j, err := New(log.NewNopLogger(), clock, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, j.Close())
	})
	return j
}

func TestJournalAppendAndQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	j := newTestJournal(t, clock)

	require.NoError(t, j.Append(ctx, Record{
		Unit: "porch-light", House: "A", Number: 1,
		Action: "on", Multiplier: 1, Origin: "schedule:night-off", OK: true,
	}))
	require.NoError(t, j.Append(ctx, Record{
		Time: now.Add(1 * time.Minute),
		Unit: "bedroom-lamp", House: "A", Number: 3,
		Action: "brt", Multiplier: 2, Origin: "control", OK: false, Error: "port busy",
	}))
	require.NoError(t, j.Append(ctx, Record{
		Time:   now.Add(2 * time.Minute),
		House:  "A",
		Action: "all-off", Multiplier: 1, Origin: "presence", OK: true,
	}))

	// Newest first
	records, err := j.Records(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "all-off", records[0].Action)
	assert.Equal(t, "", records[0].Unit)
	assert.Equal(t, 0, records[0].Number)
	assert.Equal(t, "porch-light", records[2].Unit)
	assert.Equal(t, now, records[2].Time)
	assert.True(t, records[2].OK)
	assert.False(t, records[1].OK)
	assert.Equal(t, "port busy", records[1].Error)
}

func TestJournalQueryBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	j := newTestJournal(t, clockwork.NewFakeClockAt(now))

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, Record{
			Time: now.Add(time.Duration(i) * time.Hour),
			Unit: "porch-light", House: "A", Number: 1, Action: "on", Multiplier: 1, Origin: "control", OK: true,
		}))
	}

	// Inclusive bounds
	records, err := j.Records(ctx, Query{Since: now.Add(1 * time.Hour), Until: now.Add(3 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, now.Add(3*time.Hour), records[0].Time)
	assert.Equal(t, now.Add(1*time.Hour), records[2].Time)

	// Limit keeps the newest
	records, err = j.Records(ctx, Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, now.Add(4*time.Hour), records[0].Time)
}

func TestJournalQueryUnitGlob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	j := newTestJournal(t, clockwork.NewFakeClock())

	for _, unit := range []string{"porch-light", "bedroom-lamp", "bedroom-fan"} {
		require.NoError(t, j.Append(ctx, Record{
			Unit: unit, House: "A", Number: 1, Action: "on", Multiplier: 1, Origin: "control", OK: true,
		}))
	}

	records, err := j.Records(ctx, Query{Unit: "bedroom-*"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = j.Records(ctx, Query{Unit: "porch-light"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestJournalSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2021, 6, 21, 12, 0, 0, 0, time.UTC)
	logger := log.NewDebugLogger()
	j, err := New(logger, clockwork.NewFakeClockAt(now), ":memory:")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, j.Close())
	}()

	old := Record{Unit: "porch-light", House: "A", Number: 1, Action: "on", Multiplier: 1, Origin: "control", OK: true}
	old.Time = now.Add(-48 * time.Hour)
	require.NoError(t, j.Append(ctx, old))
	recent := old
	recent.Time = now.Add(-1 * time.Hour)
	require.NoError(t, j.Append(ctx, recent))

	removed, err := j.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Contains(t, logger.AllMessages(), "Journal sweep removed 1 records")

	records, err := j.Records(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, now.Add(-1*time.Hour), records[0].Time)

	// Zero retention keeps everything
	removed, err = j.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}
