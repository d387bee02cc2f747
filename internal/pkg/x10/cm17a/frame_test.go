package cm17a

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/model"
)

func TestFrameBits(t *testing.T) {
	t.Parallel()

	// Header 0xD5AA, command word, footer 0xAD, MSB first
	frame, err := NewFrame(model.NewUnitCommand("A", 1, model.ActionOn))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x6000), frame.Word())
	assert.Equal(t, "0x6000", frame.String())
	assert.Equal(
		t,
		"1101010110101010"+"0110000000000000"+"10101101",
		bitsString(frame.Bits()),
	)

	frame, err = NewFrame(model.NewHouseCommand("M", model.ActionAllOff))
	require.NoError(t, err)
	assert.Equal(
		t,
		"1101010110101010"+"0000000010000000"+"10101101",
		bitsString(frame.Bits()),
	)
}

func TestFrameLength(t *testing.T) {
	t.Parallel()

	frame, err := NewFrame(model.NewUnitCommand("P", 16, model.ActionDim))
	require.NoError(t, err)
	assert.Len(t, frame.Bits(), FrameBits)
}

func TestFrameInvalidCommand(t *testing.T) {
	t.Parallel()

	_, err := NewFrame(model.NewUnitCommand("Z", 1, model.ActionOn))
	require.Error(t, err)
}

func bitsString(bits []bool) string {
	out := strings.Builder{}
	for _, bit := range bits {
		if bit {
			out.WriteString("1")
		} else {
			out.WriteString("0")
		}
	}
	return out.String()
}
