package regs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelRegisters(t *testing.T) {
	tests := []struct {
		ch                uint8
		fine, coarse, vol uint8
	}{
		{0, 0, 1, 8},
		{1, 2, 3, 9},
		{2, 4, 5, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.fine, AFine(tt.ch))
		assert.Equal(t, tt.coarse, ACoarse(tt.ch))
		assert.Equal(t, tt.vol, AVol(tt.ch))
	}
}

func TestSharedRegisters(t *testing.T) {
	assert.Equal(t, uint8(6), NoisePeriod)
	assert.Equal(t, uint8(7), Mixer)
}
