package ctl

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/homewire/x10/internal/pkg/service/daemon/control"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const signalShortDescription = `Queue a signal for the matching units`
const signalLongDescription = `Command "signal"

Queue a signal for the units matching the slug or glob,
eg. "signal porch-light on" or "signal *-light off".
The "brt" and "dim" actions accept a multiplier,
eg. "signal bedroom-lamp dim 3".
`

const houseShortDescription = `Queue a whole house signal`
const sceneShortDescription = `Queue a signal for a scene`

func signalCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal <unit> <action> [multiplier]",
		Short: signalShortDescription,
		Long:  signalLongDescription,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			signalArgs, err := parseSignalTokens(args)
			if err != nil {
				return err
			}
			signalArgs.OnlyIfHome, _ = cmd.Flags().GetBool(`only-if-home`)
			return root.runSignal(root.ctx, signalArgs)
		},
	}

	cmd.Flags().Bool("only-if-home", false, "skip the signal when nobody is home")
	return cmd
}

func houseCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "house <house> <action> [multiplier]",
		Short: houseShortDescription,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			houseArgs, err := parseHouseTokens(args)
			if err != nil {
				return err
			}
			return root.runHouse(root.ctx, houseArgs)
		},
	}
}

func sceneCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene <scene> <action> [multiplier]",
		Short: sceneShortDescription,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneArgs, err := parseSceneTokens(args)
			if err != nil {
				return err
			}
			sceneArgs.OnlyIfHome, _ = cmd.Flags().GetBool(`only-if-home`)
			return root.runScene(root.ctx, sceneArgs)
		},
	}

	cmd.Flags().Bool("only-if-home", false, "skip the signal when nobody is home")
	return cmd
}

func (root *rootCommand) runSignal(ctx context.Context, args control.SignalArgs) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Signal(ctx, args)
	if err != nil {
		return err
	}
	return root.renderer().Signal(result)
}

func (root *rootCommand) runHouse(ctx context.Context, args control.HouseArgs) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.House(ctx, args)
	if err != nil {
		return err
	}
	return root.renderer().Signal(result)
}

func (root *rootCommand) runScene(ctx context.Context, args control.SceneArgs) error {
	client, err := root.connect(ctx)
	if err != nil {
		return err
	}

	result, err := client.Scene(ctx, args)
	if err != nil {
		return err
	}
	return root.renderer().Signal(result)
}

func parseSignalTokens(args []string) (control.SignalArgs, error) {
	multiplier, err := parseMultiplier(args)
	if err != nil {
		return control.SignalArgs{}, err
	}
	return control.SignalArgs{Unit: args[0], Action: args[1], Multiplier: multiplier}, nil
}

func parseHouseTokens(args []string) (control.HouseArgs, error) {
	multiplier, err := parseMultiplier(args)
	if err != nil {
		return control.HouseArgs{}, err
	}
	return control.HouseArgs{House: args[0], Action: args[1], Multiplier: multiplier}, nil
}

func parseSceneTokens(args []string) (control.SceneArgs, error) {
	multiplier, err := parseMultiplier(args)
	if err != nil {
		return control.SceneArgs{}, err
	}
	return control.SceneArgs{Scene: args[0], Action: args[1], Multiplier: multiplier}, nil
}

func parseMultiplier(args []string) (int, error) {
	if len(args) < 3 {
		return 0, nil
	}
	value, err := strconv.Atoi(args[2])
	if err != nil || value < 1 {
		return 0, errors.Errorf(`invalid multiplier "%s", expected a positive number`, args[2])
	}
	return value, nil
}
