package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/pkg/lib/operation/project/status"
)

const statusShortDescription = `Show the project summary and the daemon state`
const statusLongDescription = `Command "status"

Print a summary of the local project:
the counts of units, scenes and schedules
and the X10 address table.

The daemon control endpoint is probed too,
a stopped daemon is reported, not an error.
`

func statusCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDescription,
		Long:  statusLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			return status.Run(root.ctx, root.fs, status.Options{
				Endpoint: root.options.GetString(`endpoint`),
			}, root)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().StringP("endpoint", "e", transport.DefaultEndpoint, "daemon control endpoint")
	return cmd
}
