package model

import (
	"fmt"
	"sort"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Unit is one X10 receiver defined in the project, units/<slug>.json.
type Unit struct {
	Slug              string      `json:"-" validate:"required,slug"`
	Name              string      `json:"name" validate:"required"`
	Description       string      `json:"description,omitempty"`
	House             House       `json:"house" validate:"required,x10-house"`
	Number            UnitNumber  `json:"number" validate:"required,x10-unit"`
	Dimmable          bool        `json:"dimmable,omitempty"`
	Order             int         `json:"order,omitempty"`
	AutoManaged       bool        `json:"autoManaged,omitempty"`
	OnSchedules       []string    `json:"onSchedules,omitempty" validate:"dive,slug"`
	OffSchedules      []string    `json:"offSchedules,omitempty" validate:"dive,slug"`
	OnSolarSchedules  []SolarRule `json:"onSolarSchedules,omitempty" validate:"dive"`
	OffSolarSchedules []SolarRule `json:"offSolarSchedules,omitempty" validate:"dive"`
}

// SolarRule binds a unit to a solar event, see the schedule package for the event names.
type SolarRule struct {
	Event      string `json:"event" validate:"required,solar-event"`
	OnlyIfHome bool   `json:"onlyIfHome,omitempty"`
}

func (v *Unit) Address() Address {
	return Address{House: v.House, Number: v.Number}
}

// Command creates a transmit request for the unit,
// the brightness actions are refused for non-dimmable units.
func (v *Unit) Command(action Action) (Command, error) {
	if !action.IsUnitAction() {
		return Command{}, errors.Errorf(`action "%s" addresses the whole house, not the unit "%s"`, action, v.Slug)
	}
	if action.IsDimAction() && !v.Dimmable {
		return Command{}, &InvalidSignalError{UnitSlug: v.Slug, Action: action}
	}
	return NewUnitCommand(v.House, v.Number, action), nil
}

// SortUnits sorts by the order field, units with the same order by name.
func SortUnits(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Order != units[j].Order {
			return units[i].Order < units[j].Order
		}
		return units[i].Name < units[j].Name
	})
}

// InvalidSignalError is a brightness action requested for a non-dimmable unit.
type InvalidSignalError struct {
	UnitSlug string
	Action   Action
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf(`action "%s" is not allowed for the unit "%s": the unit is not dimmable`, e.Action, e.UnitSlug)
}
