package cli

import (
	"context"
	"io"
	"os"
	"path"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/build"
	"github.com/homewire/x10/internal/pkg/cli/dialog"
	"github.com/homewire/x10/internal/pkg/cli/options"
	"github.com/homewire/x10/internal/pkg/cli/prompt"
	"github.com/homewire/x10/internal/pkg/cli/prompt/nop"
	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/version"
)

const description = `
X10 home automation CLI

Manage an X10 home automation project
from your local machine or CI pipeline.

The project defines units, scenes and schedules.
They are executed by the "x10d" daemon
through a CM17A Firecracker interface.

Start by running the "init" sub-command in a new empty directory.
`

const usageTemplate = `Usage:{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{else if .Runnable}}
  {{.UseLine}}{{end}}{{if gt (len .Aliases) 0}}

Aliases:`

// Check before the warning is printed, can be disabled by "false" or "0".
const versionCheckEnv = "X10_VERSION_CHECK"

type rootCommand struct {
	cmd         *cobra.Command
	fsFactory   filesystem.Factory
	fs          filesystem.Fs    // project directory or the working directory
	envs        *env.Map         // ENVs from the OS
	options     *options.Options // parsed flags, ENVs and ".env" files
	prompt      prompt.Prompt    // user interaction
	dialogs     *dialog.Dialogs  // questions composed from the prompt
	clock       clockwork.Clock
	stderr      io.Writer // original stderr, the progress bar writes there
	ctx         context.Context
	start       time.Time // cmd start time
	initialized bool      // init method was called
	logFile     *log.File // log file instance
	logger      log.Logger
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer, prompt prompt.Prompt, envs *env.Map, fsFactory filesystem.Factory) *rootCommand {
	root := &rootCommand{
		fsFactory: fsFactory,
		envs:      envs,
		options:   options.NewOptions(),
		prompt:    prompt,
		clock:     clockwork.NewRealClock(),
		stderr:    stderr,
		ctx:       context.Background(),
		start:     time.Now(),
	}

	// Command definition
	root.cmd = &cobra.Command{
		Use:          path.Base(os.Args[0]), // name of the binary
		Version:      version.Version(),
		Short:        description,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print help if no command specified
			return root.cmd.Help()
		},
	}

	// Setup in/out
	root.cmd.SetIn(stdin)
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)

	// Setup templates
	root.cmd.SetVersionTemplate("{{.Version}}")
	root.cmd.SetUsageTemplate(
		regexp.MustCompile(`Usage:(.|\n)*Aliases:`).ReplaceAllString(root.cmd.UsageTemplate(), usageTemplate),
	)

	// Persistent flags for all sub-commands
	flags := root.cmd.PersistentFlags()
	flags.SortFlags = true
	flags.BoolP("help", "h", false, "print help for command")
	flags.StringP("log-file", "l", "", "path to a log file for details")
	flags.StringP("working-dir", "d", "", "use other working directory")
	flags.BoolP("verbose", "v", false, "print details")
	flags.Bool("non-interactive", false, "disable dialogs, use the default answers")

	// Root command flags
	root.cmd.Flags().SortFlags = true
	root.cmd.Flags().BoolP("version", "V", false, "print version")

	// Init when flags are parsed
	root.cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return root.init(cmd)
	}

	// Sub-commands
	root.cmd.AddCommand(
		statusCommand(root),
		initCommand(root),
		validateCommand(root),
		eventsCommand(root),
		envfileCommand(root),
		collectstaticCommand(root),
		cleanCommand(root),
		versionCommand(root),
	)

	return root
}

// Execute command or sub-command.
func (root *rootCommand) Execute() (exitCode int) {
	defer root.tearDown()
	cmd, err := root.cmd.ExecuteC()
	if err != nil {
		// Init, it can be uninitialized, if error occurred before PersistentPreRun call
		_ = root.init(root.cmd)
		// Error is already logged
		return 1
	}

	// Notify about a new release, the version command reports it itself
	if root.initialized && cmd.Name() != "version" {
		root.checkLatestVersion()
	}
	return 0
}

func (root *rootCommand) GetCommandByName(name string) *cobra.Command {
	for _, cmd := range root.cmd.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// Logger for the sub-commands operations.
func (root *rootCommand) Logger() log.Logger {
	return root.logger
}

// Clock for the sub-commands operations.
func (root *rootCommand) Clock() clockwork.Clock {
	return root.clock
}

// Stderr is the original stream, not routed through the logger.
func (root *rootCommand) Stderr() io.Writer {
	return root.stderr
}

func (root *rootCommand) checkLatestVersion() {
	if value := root.envs.Get(versionCheckEnv); value == "false" || value == "0" {
		return
	}
	if err := version.NewGitHubChecker(root.ctx, root.logger).CheckIfLatest(build.BuildVersion); err != nil {
		// Ignore error, send to logs
		root.logger.Debugf(`Version check: %s.`, err.Error())
	}
}

// tearDown makes clean-up after command execution.
func (root *rootCommand) tearDown() {
	if err := recover(); err == nil {
		root.logFile.TearDown(false)
	} else {
		if root.logger == nil {
			root.setupLogger()
		}
		logFilePath := ""
		if root.logFile != nil {
			logFilePath = root.logFile.Path()
		}
		exitCode := processPanic(err, root.logger, logFilePath)
		root.logFile.TearDown(true)
		os.Exit(exitCode) // nolint: forbidigo
	}
}

// init sets logger and options after flags are parsed.
func (root *rootCommand) init(cmd *cobra.Command) (err error) {
	if root.initialized {
		return
	}

	// Run only once
	root.initialized = true

	// Logger must always be set up, even if there is a panic somewhere
	defer func() {
		if root.logger == nil {
			root.setupLogger()
		}
	}()

	// Temporary logger, the options are not loaded yet
	tmpLogger := log.NewNopLogger()

	// Create filesystem abstraction
	workingDir, _ := cmd.Flags().GetString(`working-dir`)
	if root.fs, err = root.fsFactory(tmpLogger, workingDir); err != nil {
		return err
	}

	// Load values from flags, ENVs and ".env" files
	if err = root.options.Load(tmpLogger, root.envs, root.fs, cmd.Flags()); err != nil {
		return err
	}

	// Setup logger according to the options
	root.setupLogger()
	root.fs.SetLogger(root.logger)
	root.logDebugInfo()

	// Use the default answers on a non-interactive terminal
	if root.options.GetBool(`non-interactive`) || !root.prompt.IsInteractive() {
		root.prompt = nop.New()
	}
	root.dialogs = dialog.New(root.prompt)

	return nil
}

// setupLogger according to the options.
func (root *rootCommand) setupLogger() {
	logFile, logFileErr := log.NewLogFile(root.options.GetString(`log-file`))
	root.logFile = logFile
	root.logger = log.NewCliLogger(root.cmd.OutOrStdout(), root.cmd.ErrOrStderr(), logFile, root.options.GetBool(`verbose`))
	root.cmd.SetOut(root.logger.InfoWriter())
	root.cmd.SetErr(root.logger.WarnWriter())

	// Warn if user specified log file and it cannot be opened
	if logFileErr != nil {
		root.logger.Warnf("Cannot open log file: %s", logFileErr)
	}
}

func (root *rootCommand) logDebugInfo() {
	// Version
	root.logger.DebugWriter().WriteStringNoErr(root.cmd.Version)

	// Command
	root.logger.Debugf("Running command %v", os.Args)

	// Options
	root.logger.Debug(root.options.Dump())
}
