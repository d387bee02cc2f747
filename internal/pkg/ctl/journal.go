package ctl

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/service/daemon/control"
)

const defaultJournalLimit = 50

const journalShortDescription = `Show the transmitted signals`
const journalLongDescription = `Command "journal"

Show the signals the daemon transmitted, the newest first.
The time bounds accept the ISO 8601 format,
eg. "--since 2026-08-23T06:00:00Z" or "--since 2026-08-23".
`

func journalCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: journalShortDescription,
		Long:  journalLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt(`limit`)
			since, _ := cmd.Flags().GetString(`since`)
			until, _ := cmd.Flags().GetString(`until`)
			unit, _ := cmd.Flags().GetString(`unit`)
			return root.runJournal(root.ctx, control.JournalArgs{
				Since: since,
				Until: until,
				Unit:  unit,
				Limit: limit,
			})
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("since", "", "lower time bound, ISO 8601")
	cmd.Flags().String("until", "", "upper time bound, ISO 8601")
	cmd.Flags().String("unit", "", "only the matching units, glob allowed")
	cmd.Flags().IntP("limit", "n", defaultJournalLimit, "maximum number of records")
	return cmd
}

func (root *rootCommand) runJournal(ctx context.Context, args control.JournalArgs) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Journal(ctx, args)
	if err != nil {
		return err
	}
	return root.renderer().Journal(result)
}
