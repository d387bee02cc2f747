package ctl

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/shlex"
	"github.com/mattn/go-isatty"

	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const replPrompt = "x10ctl> "

// errReplExit stops the prompt loop, it never reaches the user.
var errReplExit = errors.New("exit")

// repl reads commands from stdin until EOF or "exit".
// The prompt is printed only on a terminal, so commands can be piped in.
func (root *rootCommand) repl() error {
	interactive := false
	if f, ok := root.stdin.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd())
	}

	if interactive {
		fmt.Fprintf(root.stdout, "X10 daemon control, type \"help\" for the commands, \"exit\" to leave.\n")
	}

	scanner := bufio.NewScanner(root.stdin)
	for {
		if interactive {
			fmt.Fprint(root.stdout, replPrompt)
		}
		if !scanner.Scan() {
			if interactive {
				fmt.Fprintln(root.stdout)
			}
			break
		}

		tokens, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(root.stderr, "Error: %s\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		if err := root.dispatch(tokens); err != nil {
			if errors.Is(err, errReplExit) {
				return nil
			}
			fmt.Fprintf(root.stderr, "Error: %s\n", err)
		}
	}
	return scanner.Err()
}

// dispatch runs one prompt line, the commands take positional arguments only.
func (root *rootCommand) dispatch(tokens []string) error {
	ctx := root.ctx
	verb, args := tokens[0], tokens[1:]

	switch verb {
	case "exit":
		return errReplExit
	case "help":
		root.printReplHelp()
		return nil
	case "status":
		return root.runStatus(ctx)
	case "list":
		return root.runList(ctx)
	case "signal":
		if len(args) < 2 {
			return errors.New(`usage: signal <unit> <action> [multiplier]`)
		}
		signalArgs, err := parseSignalTokens(args)
		if err != nil {
			return err
		}
		return root.runSignal(ctx, signalArgs)
	case "house":
		if len(args) < 2 {
			return errors.New(`usage: house <house> <action> [multiplier]`)
		}
		houseArgs, err := parseHouseTokens(args)
		if err != nil {
			return err
		}
		return root.runHouse(ctx, houseArgs)
	case "scene":
		if len(args) < 2 {
			return errors.New(`usage: scene <scene> <action> [multiplier]`)
		}
		sceneArgs, err := parseSceneTokens(args)
		if err != nil {
			return err
		}
		return root.runScene(ctx, sceneArgs)
	case "arrive":
		person := ""
		if len(args) > 0 {
			person = args[0]
		}
		return root.runArrive(ctx, person)
	case "leave":
		return root.runLeave(ctx)
	case "ishome":
		return root.runIsHome(ctx)
	case "stats":
		return root.runStats(ctx)
	case "journal":
		journalArgs := control.JournalArgs{Limit: defaultJournalLimit}
		if len(args) > 0 {
			limit, err := strconv.Atoi(args[0])
			if err != nil || limit < 1 {
				return errors.Errorf(`invalid limit "%s", expected a positive number`, args[0])
			}
			journalArgs.Limit = limit
		}
		return root.runJournal(ctx, journalArgs)
	case "reload":
		return root.runReload(ctx)
	case "events":
		return root.runEvents(ctx)
	case "quit":
		return root.runQuit(ctx)
	default:
		return errors.Errorf(`unknown command "%s", type "help"`, verb)
	}
}

func (root *rootCommand) printReplHelp() {
	w := tabwriter.NewWriter(root.stdout, 0, 4, 2, ' ', 0)
	rows := []struct{ usage, help string }{
		{"status", statusShortDescription},
		{"list", listShortDescription},
		{"signal <unit> <action> [multiplier]", signalShortDescription},
		{"house <house> <action> [multiplier]", houseShortDescription},
		{"scene <scene> <action> [multiplier]", sceneShortDescription},
		{"arrive [person]", arriveShortDescription},
		{"leave", leaveShortDescription},
		{"ishome", ishomeShortDescription},
		{"stats", statsShortDescription},
		{"journal [limit]", journalShortDescription},
		{"reload", reloadShortDescription},
		{"events", eventsShortDescription},
		{"quit", quitShortDescription},
		{"exit", "Leave the prompt"},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\n", row.usage, row.help)
	}
	_ = w.Flush()
}
