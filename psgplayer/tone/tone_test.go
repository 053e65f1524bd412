package tone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriod(t *testing.T) {
	tests := []struct {
		name           string
		octave, pitch  uint8
		expectedPeriod uint16
	}{
		{"rest is always zero", 4, 0, 0},
		{"octave 1 C", 1, 1, table[1] >> 1},
		{"octave 4 middle C", 4, 1, table[1] >> 4},
		{"octave 8 B halves to near zero", 8, 12, table[12] >> 8},
		{"octave zero is out of range", 0, 1, 0},
		{"octave nine is out of range", 9, 1, 0},
		{"pitch out of range", 4, 13, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedPeriod, Period(tt.octave, tt.pitch))
		})
	}
}

func TestApplyDetune(t *testing.T) {
	tests := []struct {
		name     string
		period   uint16
		detune   int8
		expected uint16
	}{
		{"zero detune is a no-op", 0x100, 0, 0x100},
		{"positive detune raises pitch by subtracting", 0x100, 0x10, 0x100 - 0x10},
		// raw byte 0x90: bit 7 set (add), magnitude 0x10; as int8 that's -112.
		{"negative detune (bit 7 set) lowers pitch by adding", 0x100, -112, 0x100 + 0x10},
		{"clamps at the floor", 0x05, 0x7F, 1},
		// raw byte 0xFF: bit 7 set (add), magnitude 0x7F; as int8 that's -1.
		{"clamps at the ceiling", 0x0FF0, -1, 0x0FFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyDetune(tt.period, tt.detune))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint16(1), Clamp(0))
	assert.Equal(t, uint16(1), Clamp(-5))
	assert.Equal(t, uint16(0x0FFF), Clamp(0x1000))
	assert.Equal(t, uint16(0x0800), Clamp(0x0800))
}

func TestAddSignMagnitude(t *testing.T) {
	tests := []struct {
		name     string
		detune   uint8
		delta    int8
		expected uint8
	}{
		{"positive stays positive", 0x10, 5, 0x15},
		{"positive crossing to negative", 0x02, -5, 0x83},
		{"negative magnitude grows", 0x85, -5, 0x8A},
		{"positive crossing past zero into negative", 0x05, -10, 0x85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddSignMagnitude(tt.detune, tt.delta))
		})
	}
}
