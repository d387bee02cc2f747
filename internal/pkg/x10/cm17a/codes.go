// Package cm17a drives the CM17A "Firecracker" X10 transmitter.
// The device has no data path, commands are bit-banged
// over the DTR and RTS control lines of a serial port.
package cm17a

import (
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Code tables from the CM17A protocol. The sequences are not monotonic,
// the ordering is the device's own.

var houseCodes = map[model.House]uint16{
	"A": 0x6000, "B": 0x7000, "C": 0x4000, "D": 0x5000,
	"E": 0x8000, "F": 0x9000, "G": 0xA000, "H": 0xB000,
	"I": 0xE000, "J": 0xF000, "K": 0xC000, "L": 0xD000,
	"M": 0x0000, "N": 0x1000, "O": 0x2000, "P": 0x3000,
}

var unitCodes = map[model.UnitNumber]uint16{
	1: 0x0000, 2: 0x0010, 3: 0x0008, 4: 0x0018,
	5: 0x0040, 6: 0x0050, 7: 0x0048, 8: 0x0058,
	9: 0x0400, 10: 0x0410, 11: 0x0408, 12: 0x0418,
	13: 0x0440, 14: 0x0450, 15: 0x0448, 16: 0x0458,
}

var actionCodes = map[model.Action]uint16{
	model.ActionOn:       0x0000,
	model.ActionOff:      0x0020,
	model.ActionBrighten: 0x0088,
	model.ActionDim:      0x0098,
	model.ActionAllOn:    0x0091,
	model.ActionAllOff:   0x0080,
	model.ActionLampsOn:  0x0094,
	model.ActionLampsOff: 0x0084,
}

// CommandWord builds the 16-bit command word, house | unit | action.
// House-wide actions carry no unit bits.
func CommandWord(cmd model.Command) (uint16, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	word, ok := houseCodes[cmd.House]
	if !ok {
		return 0, errors.Errorf(`no house code for "%s"`, cmd.House)
	}

	// Brighten and dim frames carry no unit bits, the device applies
	// them to the last addressed unit.
	if cmd.Action.IsUnitAction() && !cmd.Action.IsDimAction() {
		unit, ok := unitCodes[cmd.Number]
		if !ok {
			return 0, errors.Errorf(`no unit code for "%d"`, cmd.Number)
		}
		word |= unit
	}

	action, ok := actionCodes[cmd.Action]
	if !ok {
		return 0, errors.Errorf(`no action code for "%s"`, cmd.Action)
	}
	word |= action

	return word, nil
}
