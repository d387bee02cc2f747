// Package ctl implements the "x10ctl" tool, a terminal client
// of the daemon control endpoint.
package ctl

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/env"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/service/daemon/transport"
	"github.com/homewire/x10/internal/pkg/version"
)

const description = `
X10 daemon control

Drive a running "x10d" daemon: send signals,
switch scenes, manage presence and inspect
the signal journal.

Without a sub-command an interactive prompt is started.
`

// clientName is reported to the daemon by the handshake.
const clientName = "x10ctl"

const endpointEnv = "X10_ENDPOINT"

type rootCommand struct {
	cmd    *cobra.Command
	envs   *env.Map
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger log.Logger
	client *control.Client // lazy, shared by the prompt commands
	ctx    context.Context
}

// NewRootCommand creates parent of all sub-commands.
func NewRootCommand(stdin io.Reader, stdout io.Writer, stderr io.Writer, envs *env.Map) *rootCommand {
	root := &rootCommand{
		envs:   envs,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		ctx:    context.Background(),
	}

	// Command definition
	root.cmd = &cobra.Command{
		Use:          path.Base(os.Args[0]), // name of the binary
		Version:      version.Version(),
		Short:        description,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No sub-command starts the interactive prompt
			return root.repl()
		},
	}

	// Setup in/out
	root.cmd.SetIn(stdin)
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)
	root.cmd.SetVersionTemplate("{{.Version}}")

	// Persistent flags for all sub-commands
	flags := root.cmd.PersistentFlags()
	flags.SortFlags = true
	flags.StringP("endpoint", "e", transport.DefaultEndpoint, "daemon control endpoint")
	flags.Bool("json", false, "print the raw JSON responses")
	flags.BoolP("verbose", "v", false, "print details")

	// Logger when flags are parsed
	root.cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		root.setup(cmd)
	}

	// Sub-commands
	root.cmd.AddCommand(
		statusCommand(root),
		listCommand(root),
		signalCommand(root),
		houseCommand(root),
		sceneCommand(root),
		arriveCommand(root),
		leaveCommand(root),
		ishomeCommand(root),
		statsCommand(root),
		journalCommand(root),
		reloadCommand(root),
		eventsCommand(root),
		quitCommand(root),
	)

	return root
}

// Execute command or sub-command.
func (root *rootCommand) Execute() (exitCode int) {
	defer func() {
		if root.client != nil {
			_ = root.client.Close()
		}
	}()

	if err := root.cmd.Execute(); err != nil {
		// Error is already printed by cobra
		return 1
	}
	return 0
}

func (root *rootCommand) setup(cmd *cobra.Command) {
	if root.logger != nil {
		return
	}
	verbose, _ := cmd.Flags().GetBool(`verbose`)
	root.logger = log.NewCliLogger(root.stdout, root.stderr, nil, verbose)
}

// endpoint resolution: the flag, the X10_ENDPOINT variable, the default.
func (root *rootCommand) endpoint() (transport.Endpoint, error) {
	flag := root.cmd.PersistentFlags().Lookup(`endpoint`)
	value := flag.Value.String()
	if !flag.Changed {
		if v := root.envs.Get(endpointEnv); v != "" {
			value = v
		}
	}
	return transport.ParseEndpoint(value)
}

// connect dials the daemon on the first command, the prompt reuses the connection.
func (root *rootCommand) connect(ctx context.Context) (*control.Client, error) {
	if root.client != nil {
		return root.client, nil
	}

	endpoint, err := root.endpoint()
	if err != nil {
		return nil, err
	}

	client, err := control.Dial(ctx, root.logger, endpoint, clientName)
	if err != nil {
		return nil, err
	}

	root.client = client
	return client, nil
}

func (root *rootCommand) renderer() *renderer {
	rawJSON, _ := root.cmd.PersistentFlags().GetBool(`json`)
	return &renderer{out: root.stdout, rawJSON: rawJSON}
}
