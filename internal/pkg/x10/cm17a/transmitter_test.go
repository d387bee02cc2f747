package cm17a

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/model"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

type fakePort struct {
	ops    []string
	closed int
}

func (p *fakePort) SetDTR(on bool) error {
	p.ops = append(p.ops, fmt.Sprintf("dtr:%t", on))
	return nil
}

func (p *fakePort) SetRTS(on bool) error {
	p.ops = append(p.ops, fmt.Sprintf("rts:%t", on))
	return nil
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

// advanceClock fires transmitter delays until the context is canceled.
func advanceClock(ctx context.Context, clk *clockwork.FakeClock) {
	for {
		if err := clk.BlockUntilContext(ctx, 1); err != nil {
			return
		}
		clk.Advance(time.Second)
	}
}

func TestTransmitterFrame(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clockwork.NewFakeClock()
	go advanceClock(ctx, clk)

	port := &fakePort{}
	tr := NewTransmitter(log.NewNopLogger(), clk, func() (Port, error) { return port, nil })
	require.NoError(t, tr.Transmit(ctx, model.NewUnitCommand("A", 1, model.ActionOn)))
	cancel()

	// Reset, standby, 40 bits (drop + return to standby), both lines down
	require.Len(t, port.ops, 4+3*FrameBits+2)
	assert.Equal(t, []string{"dtr:false", "rts:false", "dtr:true", "rts:true"}, port.ops[0:4])
	assert.Equal(t, []string{"dtr:false", "rts:false"}, port.ops[len(port.ops)-2:])
	assert.Equal(t, 1, port.closed)

	// A dropped DTR is a one, a dropped RTS is a zero
	sent := ""
	for i := 0; i < FrameBits; i++ {
		drop := port.ops[4+3*i]
		switch drop {
		case "dtr:false":
			sent += "1"
		case "rts:false":
			sent += "0"
		default:
			t.Fatalf(`unexpected op "%s" at bit %d`, drop, i)
		}
		assert.Equal(t, []string{"dtr:true", "rts:true"}, port.ops[4+3*i+1:4+3*i+3])
	}
	assert.Equal(t, "1101010110101010"+"0110000000000000"+"10101101", sent)
}

func TestTransmitterMultiplier(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clockwork.NewFakeClock()
	go advanceClock(ctx, clk)

	port := &fakePort{}
	tr := NewTransmitter(log.NewNopLogger(), clk, func() (Port, error) { return port, nil })
	cmd := model.NewHouseCommand("M", model.ActionAllOff).WithMultiplier(3)
	require.NoError(t, tr.Transmit(ctx, cmd))
	cancel()

	// The whole sequence repeats per multiplier, the port opens and closes once
	assert.Len(t, port.ops, 3*(4+3*FrameBits+2))
	assert.Equal(t, 1, port.closed)
}

func TestTransmitterContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := &fakePort{}
	tr := NewTransmitter(log.NewNopLogger(), clockwork.NewFakeClock(), func() (Port, error) { return port, nil })
	err := tr.Transmit(ctx, model.NewUnitCommand("A", 1, model.ActionOn))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, port.closed)
}

func TestTransmitterOpenError(t *testing.T) {
	t.Parallel()

	tr := NewTransmitter(log.NewNopLogger(), clockwork.NewFakeClock(), func() (Port, error) {
		return nil, errors.New(`cannot open serial port "/dev/ttyS0": no such device`)
	})
	err := tr.Transmit(context.Background(), model.NewUnitCommand("A", 1, model.ActionOn))
	require.Error(t, err)
	assert.Equal(t, `cannot open serial port "/dev/ttyS0": no such device`, err.Error())
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	logger := log.NewDebugLogger()
	tr := NewDryRun(logger)

	require.NoError(t, tr.Transmit(context.Background(), model.NewUnitCommand("A", 3, model.ActionOn).WithMultiplier(2)))
	logger.AssertMessages(t, `INFO  Dry run: "A3 on x2", frame 0x6008`)

	require.Error(t, tr.Transmit(context.Background(), model.NewUnitCommand("Z", 1, model.ActionOn)))
}
