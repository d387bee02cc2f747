// Package prompt defines the user interaction used by the dialogs.
// The interactive implementation is backed by the survey library,
// the nop implementation returns the defaults.
package prompt

import (
	"strings"

	"github.com/AlecAivazis/survey/v2/core"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

type Prompt interface {
	IsInteractive() bool
	Printf(format string, args ...any)
	Confirm(c *Confirm) bool
	Ask(q *Question) (result string, ok bool)
	Select(s *Select) (value string, ok bool)
	SelectIndex(s *SelectIndex) (index int, ok bool)
	MultiSelect(s *MultiSelect) (values []string, ok bool)
}

type Confirm struct {
	Label       string
	Description string
	Help        string
	Default     bool
}

type Question struct {
	Label       string
	Description string
	Help        string
	Default     string
	Hidden      bool
	Validator   func(val any) error
}

type Select struct {
	Label       string
	Description string
	Help        string
	Options     []string
	Default     string
	UseDefault  bool
	Validator   func(val any) error
}

type SelectIndex struct {
	Label       string
	Description string
	Help        string
	Options     []string
	Default     int
	UseDefault  bool
	Validator   func(val any) error
}

type MultiSelect struct {
	Label       string
	Description string
	Help        string
	Options     []string
	Default     []string
	Validator   func(val any) error
}

// ValueRequired is a validator, it rejects an empty or blank answer.
func ValueRequired(val any) error {
	str, _ := val.(string)
	if len(strings.TrimSpace(str)) == 0 {
		return errors.New("value is required")
	}
	return nil
}

// AtLeastOneRequired is a validator for multi-select answers.
func AtLeastOneRequired(val any) error {
	answers, _ := val.([]core.OptionAnswer)
	if len(answers) == 0 {
		return errors.New("at least one value is required")
	}
	return nil
}
