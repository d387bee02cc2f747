package cm17a

import (
	"fmt"

	"github.com/homewire/x10/internal/pkg/model"
)

const (
	frameHeader = uint16(0xD5AA)
	frameFooter = uint8(0xAD)

	// FrameBits is the length of one message: header + command word + footer.
	FrameBits = 16 + 16 + 8
)

// Frame is one 40-bit Firecracker message.
type Frame struct {
	word uint16
}

func NewFrame(cmd model.Command) (Frame, error) {
	word, err := CommandWord(cmd)
	if err != nil {
		return Frame{}, err
	}
	return Frame{word: word}, nil
}

// Word returns the 16-bit command word.
func (f Frame) Word() uint16 {
	return f.word
}

// Bits returns all frame bits in wire order, MSB first.
func (f Frame) Bits() []bool {
	out := make([]bool, 0, FrameBits)
	for i := 15; i >= 0; i-- {
		out = append(out, frameHeader&(1<<i) != 0)
	}
	for i := 15; i >= 0; i-- {
		out = append(out, f.word&(1<<i) != 0)
	}
	for i := 7; i >= 0; i-- {
		out = append(out, frameFooter&(1<<i) != 0)
	}
	return out
}

func (f Frame) String() string {
	return fmt.Sprintf("0x%04X", f.word)
}
