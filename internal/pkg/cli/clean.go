package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/pkg/lib/operation/project/clean"
)

const cleanShortDescription = `Remove the generated artifacts`
const cleanLongDescription = `Command "clean"

Remove the collected static files and the project cache directory.
The static root directory itself is kept, it may be a mount point.
`

func cleanCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: cleanShortDescription,
		Long:  cleanLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			targetFs, err := root.staticRootFs()
			if err != nil {
				return err
			}

			return clean.Run(root.ctx, root.fs, targetFs, root)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("static-root", "", "static root directory, overrides X10_STATIC_ROOT")
	return cmd
}
