package ctl

import (
	"context"

	"github.com/spf13/cobra"
)

const statusShortDescription = `Show the daemon status`

func statusCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: statusShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runStatus(root.ctx)
		},
	}
}

func (root *rootCommand) runStatus(ctx context.Context) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Status(ctx)
	if err != nil {
		return err
	}
	return root.renderer().Status(result)
}
