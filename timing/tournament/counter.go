package tournament

import "fmt"

// MaxCounterBits is the widest saturating counter supported.
const MaxCounterBits = 8

// SaturatingCounter is an unsigned counter that clamps at 0 and 2^W-1
// instead of wrapping. The most significant bit is the prediction:
// set means taken.
type SaturatingCounter struct {
	value uint8
	max   uint8
}

// NewSaturatingCounter creates a zeroed counter of the given bit width.
// It panics if width is outside 1..MaxCounterBits.
func NewSaturatingCounter(width uint) SaturatingCounter {
	if width == 0 || width > MaxCounterBits {
		panic(fmt.Sprintf("tournament: invalid counter width %d", width))
	}

	return SaturatingCounter{max: uint8(uint16(1)<<width - 1)}
}

// Value returns the current counter value.
func (c SaturatingCounter) Value() uint8 {
	return c.value
}

// Max returns the saturation limit, 2^W-1.
func (c SaturatingCounter) Max() uint8 {
	return c.max
}

// Bump moves the counter one step toward taken (increment) or not taken
// (decrement). It is a no-op at the respective limit.
func (c *SaturatingCounter) Bump(taken bool) {
	if taken {
		if c.value < c.max {
			c.value++
		}
		return
	}

	if c.value > 0 {
		c.value--
	}
}

// PredictTaken reports whether the most significant bit is set.
func (c SaturatingCounter) PredictTaken() bool {
	return c.value > c.max>>1
}

// Reset sets the counter back to zero.
func (c *SaturatingCounter) Reset() {
	c.value = 0
}
