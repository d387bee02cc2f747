package main

import (
	"os"

	"github.com/homewire/x10/internal/pkg/cli"
	"github.com/homewire/x10/internal/pkg/cli/prompt/interactive"
	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem/aferofs"
)

func main() {
	// Load os envs
	envs, err := env.FromOs()
	if err != nil {
		panic(err)
	}

	// Run command
	prompt := interactive.New(os.Stdin, os.Stdout, os.Stderr)
	cmd := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr, prompt, envs, aferofs.NewLocalFsFindProjectDir)
	os.Exit(cmd.Execute())
}
