package cli

import (
	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/build"
	"github.com/homewire/x10/internal/pkg/version"
)

const versionShortDescription = `Print the version`
const versionLongDescription = `Command "version"

Print the build version, the git commit and the build date.
With the "--check" flag the latest GitHub release is
compared with the running build.
`

func versionCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: versionShortDescription,
		Long:  versionLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			root.logger.Info(version.Version())

			if check, _ := cmd.Flags().GetBool(`check`); check {
				checker := version.NewGitHubChecker(root.ctx, root.logger)
				if err := checker.CheckIfLatest(build.BuildVersion); err != nil {
					root.logger.Infof(`Version check: %s.`, err.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().Bool("check", false, "compare with the latest GitHub release")
	return cmd
}
