package model

import (
	"strconv"
	"strings"

	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	DefaultHouse = House("M")
	MinUnit      = UnitNumber(1)
	MaxUnit      = UnitNumber(16)
)

// House is an X10 house code, "A" through "P".
type House string

func ParseHouse(str string) (House, error) {
	v := House(strings.ToUpper(strings.TrimSpace(str)))
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v House) Validate() error {
	if len(v) != 1 || v[0] < 'A' || v[0] > 'P' {
		return errors.Errorf(`invalid house code "%s": must be A through P`, string(v))
	}
	return nil
}

func (v House) String() string {
	return string(v)
}

// UnitNumber is an X10 unit number, 1 through 16.
type UnitNumber int

func ParseUnitNumber(str string) (UnitNumber, error) {
	number, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, errors.Errorf(`invalid unit number "%s"`, str)
	}
	v := UnitNumber(number)
	if err := v.Validate(); err != nil {
		return 0, err
	}
	return v, nil
}

func (v UnitNumber) Validate() error {
	if v < MinUnit || v > MaxUnit {
		return errors.Errorf(`invalid unit number "%d": must be in range 1-16`, int(v))
	}
	return nil
}

func (v UnitNumber) String() string {
	return strconv.Itoa(int(v))
}

// Address is a house code and unit number pair, for example "A3".
type Address struct {
	House  House
	Number UnitNumber
}

func ParseAddress(str string) (Address, error) {
	str = strings.TrimSpace(str)
	if len(str) < 2 {
		return Address{}, errors.Errorf(`invalid address "%s": expected a house code followed by a unit number, for example "A3"`, str)
	}

	house, err := ParseHouse(str[0:1])
	if err != nil {
		return Address{}, errors.PrefixErrorf(err, `invalid address "%s"`, str)
	}

	number, err := ParseUnitNumber(str[1:])
	if err != nil {
		return Address{}, errors.PrefixErrorf(err, `invalid address "%s"`, str)
	}

	return Address{House: house, Number: number}, nil
}

func (v Address) Validate() error {
	if err := v.House.Validate(); err != nil {
		return err
	}
	return v.Number.Validate()
}

func (v Address) String() string {
	return v.House.String() + v.Number.String()
}
