package cm17a

import (
	"context"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
)

// dryRun logs frames instead of opening a port.
type dryRun struct {
	logger log.Logger
}

// NewDryRun returns a transmitter for the serial.dry mode and tests.
func NewDryRun(logger log.Logger) Transmitter {
	return &dryRun{logger: logger}
}

func (t *dryRun) Transmit(ctx context.Context, cmd model.Command) error {
	frame, err := NewFrame(cmd)
	if err != nil {
		return err
	}
	t.logger.Infof(`Dry run: "%s", frame %s`, cmd, frame)
	return nil
}
