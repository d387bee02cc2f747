// Package task runs the transmit queue of the daemon.
// Every signal request becomes a Task, the workers pull tasks from a buffered
// queue and drive the transmitter one signal at a time, the serial port allows
// no parallelism anyway.
package task

import (
	"github.com/homewire/x10/internal/pkg/idgenerator"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/project"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Signal is one transmission within a task.
// Unit is nil for a house wide command.
type Signal struct {
	Unit    *model.Unit
	Command model.Command
}

// Task is a queued unit of work, one or more signals sent in order.
// A multi signal task stops on the first failed signal.
type Task struct {
	ID         string
	Origin     string
	OnlyIfHome bool
	Signals    []Signal
}

// NewUnitTask creates a task with a single signal for the unit.
func NewUnitTask(unit *model.Unit, action model.Action, multiplier int, origin string, onlyIfHome bool) (Task, error) {
	cmd, err := unit.Command(action)
	if err != nil {
		return Task{}, err
	}

	cmd = cmd.WithMultiplier(multiplier)
	if err := cmd.Validate(); err != nil {
		return Task{}, err
	}

	return Task{
		ID:         idgenerator.TaskId(),
		Origin:     origin,
		OnlyIfHome: onlyIfHome,
		Signals:    []Signal{{Unit: unit, Command: cmd}},
	}, nil
}

// NewHouseTask creates a task with a single house wide signal.
func NewHouseTask(house model.House, action model.Action, multiplier int, origin string) (Task, error) {
	if !action.IsHouseAction() {
		return Task{}, errors.Errorf(`action "%s" targets a single unit, not a whole house`, action)
	}

	cmd := model.NewHouseCommand(house, action).WithMultiplier(multiplier)
	if err := cmd.Validate(); err != nil {
		return Task{}, err
	}

	return Task{
		ID:      idgenerator.TaskId(),
		Origin:  origin,
		Signals: []Signal{{Command: cmd}},
	}, nil
}

// NewSceneTask expands the scene to sequential signals, one per unit.
// The whole scene is refused when the action is invalid for any of the units.
func NewSceneTask(registry *project.Registry, scene *model.Scene, action model.Action, multiplier int, origin string, onlyIfHome bool) (Task, error) {
	units, err := registry.SceneUnits(scene)
	if err != nil {
		return Task{}, err
	}
	if len(units) == 0 {
		return Task{}, errors.Errorf(`scene "%s" matches no unit`, scene.Slug)
	}

	signals := make([]Signal, 0, len(units))
	for _, unit := range units {
		cmd, err := unit.Command(action)
		if err != nil {
			return Task{}, errors.PrefixErrorf(err, `scene "%s" cannot run`, scene.Slug)
		}

		cmd = cmd.WithMultiplier(multiplier)
		if err := cmd.Validate(); err != nil {
			return Task{}, errors.PrefixErrorf(err, `scene "%s" cannot run`, scene.Slug)
		}

		signals = append(signals, Signal{Unit: unit, Command: cmd})
	}

	return Task{
		ID:         idgenerator.TaskId(),
		Origin:     origin,
		OnlyIfHome: onlyIfHome,
		Signals:    signals,
	}, nil
}
