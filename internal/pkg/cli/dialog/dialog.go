// Package dialog collects the interactive questions used by the commands.
package dialog

import (
	"github.com/homewire/x10/internal/pkg/cli/prompt"
)

type Dialogs struct {
	prompt.Prompt
}

func New(p prompt.Prompt) *Dialogs {
	return &Dialogs{Prompt: p}
}
