package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCron(t *testing.T) {
	t.Parallel()

	c, err := ParseCron("30 7 * * 1-5")
	require.NoError(t, err)
	assert.Equal(t, "30 7 * * 1-5", c.String())

	_, err = ParseCron("not a crontab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid crontab "not a crontab"`)

	_, err = ParseCron("61 7 * * *")
	require.Error(t, err)
}

func TestCronNext(t *testing.T) {
	t.Parallel()

	c, err := ParseCron("0 7 * * *")
	require.NoError(t, err)

	ref := time.Date(2021, 6, 21, 6, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 6, 21, 7, 0, 0, 0, time.UTC), c.Next(ref))

	// Strictly after: an occurrence at the reference time is not returned
	ref = time.Date(2021, 6, 21, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 6, 22, 7, 0, 0, 0, time.UTC), c.Next(ref))
}
