package cm17a

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/x10/internal/pkg/model"
)

func TestCommandWord(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cmd      model.Command
		expected uint16
	}{
		{model.NewUnitCommand("A", 1, model.ActionOn), 0x6000},
		{model.NewUnitCommand("A", 2, model.ActionOn), 0x6010},
		{model.NewUnitCommand("A", 3, model.ActionOn), 0x6008},
		{model.NewUnitCommand("A", 3, model.ActionOff), 0x6028},
		{model.NewUnitCommand("E", 12, model.ActionOff), 0x8438},
		{model.NewUnitCommand("I", 9, model.ActionOn), 0xE400},
		{model.NewUnitCommand("M", 1, model.ActionOn), 0x0000},
		{model.NewHouseCommand("A", model.ActionAllOn), 0x6091},
		{model.NewHouseCommand("M", model.ActionAllOff), 0x0080},
		{model.NewHouseCommand("P", model.ActionLampsOn), 0x3094},
		{model.NewHouseCommand("B", model.ActionLampsOff), 0x7084},
	}

	for _, c := range cases {
		word, err := CommandWord(c.cmd)
		require.NoError(t, err, c.cmd.String())
		assert.Equal(t, c.expected, word, fmt.Sprintf("%s: expected 0x%04X, got 0x%04X", c.cmd, c.expected, word))
	}
}

// Brighten and dim apply to the last addressed unit,
// the frame must not carry unit bits.
func TestCommandWordDimActions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cmd      model.Command
		expected uint16
	}{
		{model.NewUnitCommand("M", 5, model.ActionBrighten), 0x0088},
		{model.NewUnitCommand("K", 5, model.ActionBrighten), 0xC088},
		{model.NewUnitCommand("P", 16, model.ActionDim), 0x3098},
		{model.NewUnitCommand("A", 1, model.ActionDim), 0x6098},
	}

	for _, c := range cases {
		word, err := CommandWord(c.cmd)
		require.NoError(t, err, c.cmd.String())
		assert.Equal(t, c.expected, word, fmt.Sprintf("%s: expected 0x%04X, got 0x%04X", c.cmd, c.expected, word))
	}

	// Same frame regardless of the addressed unit
	a, err := CommandWord(model.NewUnitCommand("M", 2, model.ActionDim))
	require.NoError(t, err)
	b, err := CommandWord(model.NewUnitCommand("M", 9, model.ActionDim))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCommandWordInvalid(t *testing.T) {
	t.Parallel()

	_, err := CommandWord(model.NewUnitCommand("Z", 1, model.ActionOn))
	require.Error(t, err)

	_, err = CommandWord(model.NewUnitCommand("A", 17, model.ActionOn))
	require.Error(t, err)

	_, err = CommandWord(model.NewUnitCommand("A", 1, "toggle"))
	require.Error(t, err)
}
