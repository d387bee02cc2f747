package model

import (
	"fmt"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	MinMultiplier     = 1
	MaxMultiplier     = 16
	DefaultMultiplier = 1
)

// Command is one transmit request for the Firecracker.
// A unit action addresses a single unit, a house action addresses the whole house,
// the Number field is then zero. The frame is sent Multiplier times.
type Command struct {
	House      House
	Number     UnitNumber
	Action     Action
	Multiplier int
}

func NewUnitCommand(house House, number UnitNumber, action Action) Command {
	return Command{House: house, Number: number, Action: action, Multiplier: DefaultMultiplier}
}

func NewHouseCommand(house House, action Action) Command {
	return Command{House: house, Action: action, Multiplier: DefaultMultiplier}
}

func (v Command) WithMultiplier(multiplier int) Command {
	v.Multiplier = multiplier
	return v
}

func (v Command) Address() Address {
	return Address{House: v.House, Number: v.Number}
}

func (v Command) Validate() error {
	if err := v.House.Validate(); err != nil {
		return err
	}
	if err := v.Action.Validate(); err != nil {
		return err
	}
	if v.Action.IsUnitAction() {
		if err := v.Number.Validate(); err != nil {
			return err
		}
	} else if v.Number != 0 {
		return errors.Errorf(`action "%s" addresses the whole house, the unit number must not be set`, v.Action)
	}
	if v.Multiplier < MinMultiplier || v.Multiplier > MaxMultiplier {
		return errors.Errorf(`invalid multiplier "%d": must be in range 1-16`, v.Multiplier)
	}
	return nil
}

func (v Command) String() string {
	var out string
	if v.Action.IsUnitAction() {
		out = fmt.Sprintf("%s %s", v.Address(), v.Action)
	} else {
		out = fmt.Sprintf("%s %s", v.House, v.Action)
	}
	if v.Multiplier > 1 {
		out += fmt.Sprintf(" x%d", v.Multiplier)
	}
	return out
}
