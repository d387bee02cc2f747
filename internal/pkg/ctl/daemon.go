package ctl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const statsShortDescription = `Show the daemon metrics`
const reloadShortDescription = `Reload the project definitions`
const eventsShortDescription = `Stream the daemon events`
const quitShortDescription = `Stop the daemon`

func statsCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: statsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runStats(root.ctx)
		},
	}
}

func reloadCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: reloadShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runReload(root.ctx)
		},
	}
}

func eventsCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: eventsShortDescription,
		Long: `Command "events"

Print the daemon events as they happen, one per line.
The stream runs until the connection is closed.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runEvents(root.ctx)
		},
	}
}

func quitCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: quitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runQuit(root.ctx)
		},
	}
}

func (root *rootCommand) runStats(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	return root.renderer().Stats(result)
}

func (root *rootCommand) runReload(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Reload(ctx)
	if err != nil {
		return err
	}
	return root.renderer().Reload(result)
}

func (root *rootCommand) runEvents(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	ch, stop, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer stop()

	r := root.renderer()
	for event := range ch {
		if err := r.Event(event); err != nil {
			return err
		}
	}
	return nil
}

func (root *rootCommand) runQuit(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	if err := client.Quit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(root.stdout, "The daemon is stopping.")
	return nil
}
