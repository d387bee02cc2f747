package model

// Schedule is a named crontab expression, schedules/<slug>.json.
// Units reference schedules by slug in onSchedules/offSchedules.
type Schedule struct {
	Slug        string `json:"-" validate:"required,slug"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Crontab     string `json:"crontab" validate:"required,crontab"`
}
