package model

import (
	"strings"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Action is an X10 operation, either for a single unit or for a whole house.
type Action string

const (
	ActionOn       = Action("on")
	ActionOff      = Action("off")
	ActionBrighten = Action("brt")
	ActionDim      = Action("dim")
	ActionAllOn    = Action("all-on")
	ActionAllOff   = Action("all-off")
	ActionLampsOn  = Action("lamps-on")
	ActionLampsOff = Action("lamps-off")
)

func UnitActions() []Action {
	return []Action{ActionOn, ActionOff, ActionBrighten, ActionDim}
}

func HouseActions() []Action {
	return []Action{ActionAllOn, ActionAllOff, ActionLampsOn, ActionLampsOff}
}

func ParseAction(str string) (Action, error) {
	v := Action(strings.ToLower(strings.TrimSpace(str)))
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v Action) Validate() error {
	if !v.IsUnitAction() && !v.IsHouseAction() {
		return errors.Errorf(`invalid action "%s": must be one of %s`, string(v), actionsList())
	}
	return nil
}

// IsUnitAction returns true if the action targets a single unit.
func (v Action) IsUnitAction() bool {
	switch v {
	case ActionOn, ActionOff, ActionBrighten, ActionDim:
		return true
	}
	return false
}

// IsHouseAction returns true if the action targets a whole house.
func (v Action) IsHouseAction() bool {
	switch v {
	case ActionAllOn, ActionAllOff, ActionLampsOn, ActionLampsOff:
		return true
	}
	return false
}

// IsDimAction returns true for the brightness actions, they are valid only for dimmable units.
func (v Action) IsDimAction() bool {
	return v == ActionBrighten || v == ActionDim
}

// TurnsOn returns true if the action switches the target on.
func (v Action) TurnsOn() bool {
	return v == ActionOn || v == ActionAllOn || v == ActionLampsOn
}

// TurnsOff returns true if the action switches the target off.
func (v Action) TurnsOff() bool {
	return v == ActionOff || v == ActionAllOff || v == ActionLampsOff
}

func (v Action) String() string {
	return string(v)
}

func actionsList() string {
	all := make([]string, 0)
	for _, action := range UnitActions() {
		all = append(all, string(action))
	}
	for _, action := range HouseActions() {
		all = append(all, string(action))
	}
	return strings.Join(all, ", ")
}
