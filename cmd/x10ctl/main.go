package main

import (
	"os"

	"github.com/homewire/x10/internal/pkg/ctl"
	"github.com/homewire/x10/internal/pkg/env"
)

func main() {
	// Load os envs
	envs, err := env.FromOs()
	if err != nil {
		panic(err)
	}

	// Run command
	cmd := ctl.NewRootCommand(os.Stdin, os.Stdout, os.Stderr, envs)
	os.Exit(cmd.Execute())
}
