package cli

import (
	"github.com/spf13/cobra"

	listEnvFiles "github.com/homewire/x10/pkg/lib/operation/project/envfile/files"
	generateEnvFile "github.com/homewire/x10/pkg/lib/operation/project/envfile/generate"
	initOp "github.com/homewire/x10/pkg/lib/operation/project/init"
)

const envfileShortDescription = `Manage the deployment env files`
const envfileLongDescription = `Command "envfile"

Generate and inspect the ".env" files consumed
by the CLI and the daemon.
`

const envfileGenerateShortDescription = `Generate the deployment env file`
const envfileGenerateLongDescription = `Command "envfile generate"

Write the env file for a deployment. The file contains
exactly one line, it sets X10_STATIC_ROOT to the directory
the web server serves the static files from.

An existing file is updated in place,
other lines are preserved.
`

const envfileFilesShortDescription = `List the env files in the precedence order`
const envfileFilesLongDescription = `Command "envfile files"

List the env files present in the project directory.
When a variable is defined in more of them,
the first listed file wins.
`

func envfileCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envfile",
		Short: envfileShortDescription,
		Long:  envfileLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print help if no sub-command specified
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		envfileGenerateCommand(root),
		envfileFilesCommand(root),
	)
	return cmd
}

func envfileGenerateCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: envfileGenerateShortDescription,
		Long:  envfileGenerateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			staticRoot := root.options.GetString(`static-root`)
			if staticRoot == "" {
				staticRoot = initOp.DefaultStaticRoot
			}

			return generateEnvFile.Run(root.ctx, root.fs, generateEnvFile.Options{
				Output:     root.options.GetString(`output`),
				StaticRoot: staticRoot,
			}, root)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().StringP("output", "o", generateEnvFile.DefaultOutput, "path of the generated file, relative to the project")
	cmd.Flags().String("static-root", "", "static root the file points to")
	return cmd
}

func envfileFilesCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: envfileFilesShortDescription,
		Long:  envfileFilesLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate project directory
			if err := ValidateMetadataFound(root.logger, root.fs); err != nil {
				return err
			}

			_, err := listEnvFiles.Run(root.ctx, root.fs, root)
			return err
		},
	}

	return cmd
}
