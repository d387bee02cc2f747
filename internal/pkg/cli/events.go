package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/pkg/lib/operation/project/events"
)

const eventsShortDescription = `Preview the scheduled events for a day`
const eventsLongDescription = `Command "events"

Print the events the daemon would fire on the given day,
per unit and with the intended end-of-day state.
The same calendar code as in the daemon is used,
solar events are resolved from the manifest location.
`

func eventsCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: eventsShortDescription,
		Long:  eventsLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			return events.Run(root.ctx, root.fs, events.Options{
				Date: root.options.GetString(`date`),
				Unit: root.options.GetString(`unit`),
			}, root)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("date", "", "preview another day, YYYY-MM-DD")
	cmd.Flags().String("unit", "", "only the matching units, glob allowed")
	return cmd
}
