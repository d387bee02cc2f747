package ctl

import (
	"context"

	"github.com/spf13/cobra"
)

const arriveShortDescription = `Mark somebody as home`
const leaveShortDescription = `Mark the home as empty`
const ishomeShortDescription = `Show the presence state`

func arriveCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "arrive [person]",
		Short: arriveShortDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			person := ""
			if len(args) > 0 {
				person = args[0]
			}
			return root.runArrive(root.ctx, person)
		},
	}
}

func leaveCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: leaveShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runLeave(root.ctx)
		},
	}
}

func ishomeCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "ishome",
		Short: ishomeShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runIsHome(root.ctx)
		},
	}
}

func (root *rootCommand) runArrive(ctx context.Context, person string) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Arrive(ctx, person)
	if err != nil {
		return err
	}
	return root.renderer().Presence(result)
}

func (root *rootCommand) runLeave(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Leave(ctx)
	if err != nil {
		return err
	}
	return root.renderer().Presence(result)
}

func (root *rootCommand) runIsHome(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.IsHome(ctx)
	if err != nil {
		return err
	}
	return root.renderer().Presence(result)
}
