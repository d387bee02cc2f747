// Package interactive implements the prompt on top of the survey library.
package interactive

import (
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/core"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"

	"github.com/homewire/x10/internal/pkg/cli/prompt"
)

type Prompt struct {
	stdin       terminal.FileReader
	stdout      terminal.FileWriter
	stderr      io.Writer
	interactive bool
}

func New(stdin terminal.FileReader, stdout terminal.FileWriter, stderr io.Writer) *Prompt {
	return &Prompt{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: isatty.IsTerminal(stdin.Fd()) && isatty.IsTerminal(stdout.Fd()),
	}
}

func (p *Prompt) IsInteractive() bool {
	return p.interactive
}

func (p *Prompt) Printf(format string, args ...any) {
	fmt.Fprintf(p.stdout, format+"\n", args...)
}

func (p *Prompt) Confirm(c *prompt.Confirm) bool {
	p.printDescription(c.Description)
	result := c.Default
	if err := p.askOne(&survey.Confirm{Message: c.Label, Default: c.Default, Help: c.Help}, &result, nil); err != nil {
		return c.Default
	}
	return result
}

func (p *Prompt) Ask(q *prompt.Question) (result string, ok bool) {
	if q.Hidden {
		description := q.Description
		validator := q.Validator
		if len(q.Default) > 0 {
			// A hidden input cannot be pre-filled
			description = appendSentence(description, "Leave blank for default value.")
			validator = skipValidatorIfBlank(validator)
		}
		p.printDescription(description)
		if err := p.askOne(&survey.Password{Message: q.Label, Help: q.Help}, &result, validator); err != nil {
			return "", false
		}
		if len(result) == 0 {
			result = q.Default
		}
		return result, true
	}

	p.printDescription(q.Description)
	if err := p.askOne(&survey.Input{Message: q.Label, Default: q.Default, Help: q.Help}, &result, q.Validator); err != nil {
		return "", false
	}
	return result, true
}

func (p *Prompt) Select(s *prompt.Select) (value string, ok bool) {
	p.printDescription(s.Description)
	question := &survey.Select{Message: s.Label, Options: s.Options, Help: s.Help}
	if s.UseDefault {
		question.Default = s.Default
	}
	if err := p.askOne(question, &value, s.Validator); err != nil {
		return "", false
	}
	return value, true
}

func (p *Prompt) SelectIndex(s *prompt.SelectIndex) (index int, ok bool) {
	p.printDescription(s.Description)
	question := &survey.Select{Message: s.Label, Options: s.Options, Help: s.Help}
	if s.UseDefault {
		question.Default = s.Default
	}
	answer := core.OptionAnswer{}
	if err := p.askOne(question, &answer, s.Validator); err != nil {
		return 0, false
	}
	return answer.Index, true
}

func (p *Prompt) MultiSelect(s *prompt.MultiSelect) (values []string, ok bool) {
	p.printDescription(s.Description)
	question := &survey.MultiSelect{Message: s.Label, Options: s.Options, Help: s.Help}
	if len(s.Default) > 0 {
		question.Default = s.Default
	}
	if err := p.askOne(question, &values, s.Validator); err != nil {
		return nil, false
	}
	return values, true
}

func (p *Prompt) askOne(question survey.Prompt, result any, validator func(val any) error) error {
	opts := []survey.AskOpt{survey.WithStdio(p.stdin, p.stdout, p.stderr), survey.WithShowCursor(true)}
	if validator != nil {
		opts = append(opts, survey.WithValidator(survey.Validator(validator)))
	}

	if err := survey.AskOne(question, result, opts...); err != nil {
		if err == terminal.InterruptErr {
			p.Printf("Aborted.")
		} else {
			fmt.Fprintf(p.stderr, "Error: %s\n", err)
		}
		return err
	}
	return nil
}

func (p *Prompt) printDescription(description string) {
	if len(description) > 0 {
		p.Printf("%s", description)
	}
}

func appendSentence(str, sentence string) string {
	if len(str) == 0 {
		return sentence
	}
	return str + " " + sentence
}

// skipValidatorIfBlank wraps the validator,
// a blank answer means the default value and is always valid.
func skipValidatorIfBlank(validator func(val any) error) func(val any) error {
	if validator == nil {
		return nil
	}
	return func(val any) error {
		if str, ok := val.(string); ok && len(str) == 0 {
			return nil
		}
		return validator(val)
	}
}
