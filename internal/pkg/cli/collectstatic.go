package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/pkg/lib/operation/project/collectstatic"
)

const collectstaticShortDescription = `Collect the static files into the static root`
const collectstaticLongDescription = `Command "collectstatic"

Copy the project "static" directory into the static root,
the directory the web server serves the files from.

Unchanged files are skipped using a content hash cache,
compressible files get a ".gz" sibling for the web server.
`

func collectstaticCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collectstatic",
		Short: collectstaticShortDescription,
		Long:  collectstaticLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			targetFs, err := root.staticRootFs()
			if err != nil {
				return err
			}

			_, err = collectstatic.Run(root.ctx, root.fs, targetFs, collectstatic.Options{
				Force:    root.options.GetBool(`force`),
				Gzip:     root.options.GetBool(`gzip`),
				Progress: root.prompt.IsInteractive(),
			}, root)
			return err
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().Bool("force", false, "copy all files, ignore the hash cache")
	cmd.Flags().Bool("gzip", true, "write \".gz\" siblings for compressible files")
	cmd.Flags().String("static-root", "", "target directory, overrides X10_STATIC_ROOT")
	return cmd
}
