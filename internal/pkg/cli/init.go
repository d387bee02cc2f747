package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	initOp "github.com/homewire/x10/pkg/lib/operation/project/init"
)

const initShortDescription = `Initialize a new project directory`
const initLongDescription = `Command "init"

Initialize a new project in the current directory:
the manifest with the home location, the directories
for units, scenes, schedules and static files,
".gitignore" and the ".env.dist" template.

Optionally a sample unit, scene and schedule
are created, they show the definition format.
`

func initCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDescription,
		Long:  initLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default project name is the directory name
			defaultName := filepath.Base(root.fs.BasePath())
			if defaultName == "." || defaultName == string(filepath.Separator) || defaultName == "" {
				defaultName = "home"
			}

			// Ask for the name, the location and the samples
			options, err := root.dialogs.AskInitOptions(defaultName)
			if err != nil {
				return err
			}

			return initOp.Run(root.ctx, root.fs, options, root)
		},
	}

	return cmd
}
