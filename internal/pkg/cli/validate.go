package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/pkg/lib/operation/project/validate"
)

const validateShortDescription = `Validate the local project directory`
const validateLongDescription = `Command "validate"

Validate existence and contents of all files in the local project dir.
Every config must match its JSON schema, every X10 address must be
unique and every crontab and referenced scene must compile.
`

func validateCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: validateShortDescription,
		Long:  validateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			return validate.Run(root.ctx, root.fs, root)
		},
	}

	return cmd
}
