// Package schedule turns unit bindings into concrete switch times:
// crontab occurrences and solar events on a calendar day.
package schedule

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Cron is a compiled five-field crontab expression.
type Cron struct {
	expr     string
	schedule cron.Schedule
}

func ParseCron(expr string) (*Cron, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Errorf(`invalid crontab "%s": %w`, expr, err)
	}
	return &Cron{expr: expr, schedule: schedule}, nil
}

// Next returns the first occurrence strictly after the given time,
// in the time zone of the given time.
func (c *Cron) Next(after time.Time) time.Time {
	return c.schedule.Next(after)
}

func (c *Cron) String() string {
	return c.expr
}
