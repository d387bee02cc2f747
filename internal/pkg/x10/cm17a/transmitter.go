package cm17a

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.bug.st/serial"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

const (
	// halfBitDelay follows each line transition, a data sheet minimum is 0.5ms.
	halfBitDelay = 1 * time.Millisecond
	// startupDelay lets the device charge after entering standby.
	startupDelay = 150 * time.Millisecond
	// commitDelay holds standby after the last bit, the device transmits meanwhile.
	commitDelay = 500 * time.Millisecond
)

// Port is the serial line control the transmitter drives.
// go.bug.st/serial.Port satisfies the interface.
type Port interface {
	SetDTR(on bool) error
	SetRTS(on bool) error
	Close() error
}

// Opener opens the serial port for one transmission.
type Opener func() (Port, error)

// OpenSerial returns an Opener for the named serial port.
// The baud rate does not matter, only the control lines are used.
func OpenSerial(portName string) Opener {
	return func() (Port, error) {
		port, err := serial.Open(portName, &serial.Mode{})
		if err != nil {
			return nil, errors.Errorf(`cannot open serial port "%s": %w`, portName, err)
		}
		return port, nil
	}
}

// Transmitter sends commands to the power line.
type Transmitter interface {
	Transmit(ctx context.Context, cmd model.Command) error
}

type transmitter struct {
	logger log.Logger
	clock  clockwork.Clock
	open   Opener
}

func NewTransmitter(logger log.Logger, clock clockwork.Clock, open Opener) Transmitter {
	return &transmitter{logger: logger, clock: clock, open: open}
}

// Transmit opens the port, sends the frame Multiplier times and closes the port.
// In standby both lines are high, a one drops DTR, a zero drops RTS.
func (t *transmitter) Transmit(ctx context.Context, cmd model.Command) error {
	frame, err := NewFrame(cmd)
	if err != nil {
		return err
	}

	port, err := t.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			t.logger.Warnf(`Cannot close serial port: %s`, err)
		}
	}()

	for i := 0; i < cmd.Multiplier; i++ {
		if err := t.send(ctx, port, frame); err != nil {
			return err
		}
	}

	t.logger.Debugf(`Sent "%s", frame %s`, cmd, frame)
	return nil
}

func (t *transmitter) send(ctx context.Context, port Port, frame Frame) error {
	// Reset, then standby
	if err := t.setLines(port, false, false); err != nil {
		return err
	}
	if err := t.setLines(port, true, true); err != nil {
		return err
	}
	if err := t.wait(ctx, startupDelay); err != nil {
		return err
	}

	for _, bit := range frame.Bits() {
		if err := t.sendBit(ctx, port, bit); err != nil {
			return err
		}
	}

	if err := t.wait(ctx, commitDelay); err != nil {
		return err
	}

	// Lines down until the next transmission
	return t.setLines(port, false, false)
}

func (t *transmitter) sendBit(ctx context.Context, port Port, bit bool) error {
	var err error
	if bit {
		err = port.SetDTR(false)
	} else {
		err = port.SetRTS(false)
	}
	if err != nil {
		return errors.Errorf("cannot drop line: %w", err)
	}
	if err := t.wait(ctx, halfBitDelay); err != nil {
		return err
	}

	if err := t.setLines(port, true, true); err != nil {
		return err
	}
	return t.wait(ctx, halfBitDelay)
}

func (t *transmitter) setLines(port Port, dtr, rts bool) error {
	if err := port.SetDTR(dtr); err != nil {
		return errors.Errorf("cannot set DTR line: %w", err)
	}
	if err := port.SetRTS(rts); err != nil {
		return errors.Errorf("cannot set RTS line: %w", err)
	}
	return nil
}

func (t *transmitter) wait(ctx context.Context, delay time.Duration) error {
	timer := t.clock.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
