package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsHasSetClear(t *testing.T) {
	var f Flags
	assert.False(t, f.Has(Rest))

	f = f.Set(Rest)
	assert.True(t, f.Has(Rest))

	f = f.Clear(Rest)
	assert.False(t, f.Has(Rest))
}

func TestFlagsWith(t *testing.T) {
	f := Flags(0).With(VibOn, true)
	assert.True(t, f.Has(VibOn))

	f = f.With(VibOn, false)
	assert.False(t, f.Has(VibOn))
}

func TestNestDepth(t *testing.T) {
	f := Flags(0).WithNestDepth(3)
	assert.Equal(t, uint8(3), f.NestDepth())

	f = f.WithNestDepth(10)
	assert.Equal(t, uint8(MaxNestDeep), f.NestDepth(), "nest depth clamps at MaxNestDeep")
}

func TestNestDepthPreservesOtherBits(t *testing.T) {
	f := Flags(0).Set(Rest).Set(Tie).WithNestDepth(2)
	assert.True(t, f.Has(Rest))
	assert.True(t, f.Has(Tie))
	assert.Equal(t, uint8(2), f.NestDepth())
}

func TestCombineLowHigh(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
}

func TestSignExtend8To16(t *testing.T) {
	// Always negative: the short loop-back operand is a backwards
	// magnitude, never a forward offset.
	assert.Equal(t, int16(-3), SignExtend8To16(3))
	assert.Equal(t, int16(-1), SignExtend8To16(1))
	assert.Equal(t, int16(-255), SignExtend8To16(0xFF))
	assert.Equal(t, int16(0), SignExtend8To16(0))
}
