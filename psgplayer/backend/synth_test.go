package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthDefaultMixerEnablesToneDisablesNoise(t *testing.T) {
	s := NewSynth(44100)
	for i, ch := range s.chans {
		assert.False(t, ch.toneOff, "channel %d should start with tone on", i)
		assert.True(t, ch.noiseOff, "channel %d should start with noise off", i)
	}
}

func TestSynthWriteRegDecodesChannelRegisters(t *testing.T) {
	s := NewSynth(44100)
	s.WriteReg(0, 0x34) // channel A fine tune
	s.WriteReg(1, 0x02) // channel A coarse tune
	s.WriteReg(8, 0x0C) // channel A volume

	assert.Equal(t, uint8(0x34), s.chans[0].fine)
	assert.Equal(t, uint8(0x02), s.chans[0].coarse)
	assert.Equal(t, uint8(0x0C), s.chans[0].volume)
	assert.Equal(t, uint16(0x0234), s.chans[0].period())
}

func TestSynthWriteRegMixerEnablesTone(t *testing.T) {
	s := NewSynth(44100)
	// Channel A's tone bit (bit 0) clear and noise bit (bit 3) set: tone on,
	// noise off, matching the P2 preset.
	s.WriteReg(7, 0xF8&^uint8(0x01))
	assert.False(t, s.chans[0].toneOff)
	assert.True(t, s.chans[0].noiseOff)
}

func TestSynthReaderProducesSilenceWithZeroPeriod(t *testing.T) {
	s := NewSynth(44100)
	r := &synthReader{synth: s}

	buf := make([]byte, 64)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)
	for _, b := range buf {
		assert.Equal(t, byte(0), b, "no channel has a period or is unmuted, output must be silent")
	}
}

func TestSynthReaderProducesNonSilentOutputWhenToneEnabled(t *testing.T) {
	s := NewSynth(44100)
	s.WriteReg(0, 0x00)              // fine
	s.WriteReg(1, 0x02)              // coarse -> period 0x0200
	s.WriteReg(8, 0x0F)              // full volume
	s.WriteReg(7, 0xF8&^uint8(0x01)) // enable channel A tone

	r := &synthReader{synth: s}
	buf := make([]byte, 4096)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)

	nonZero := false
	for _, b := range buf {
		if b != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "an enabled tone channel with a real period should produce audible samples")
}
