package ctl

import (
	"context"

	"github.com/spf13/cobra"
)

const listShortDescription = `List the units, scenes and schedules`

func listCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: listShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runList(root.ctx)
		},
	}
}

func (root *rootCommand) runList(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.List(ctx)
	if err != nil {
		return err
	}
	return root.renderer().List(result)
}
