package backend

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// psgClockHz is the PC-6001mk2's PSG input clock, before the chip's
// internal /16 prescaler; Synth applies that /16 itself when computing a
// channel's audible frequency from its 12-bit period (spec.md glossary:
// f = clock / (16 * period)).
const psgClockHz = 1996800.0

// ymVolumeTable converts a 4-bit PSG volume into a linear amplitude,
// grounded in the YM2149/AY-3-8910 logarithmic volume steps used by
// other_examples' stsound-derived YM2149 emulation.
var ymVolumeTable = [16]float64{
	0, 0.00999, 0.01445, 0.02105, 0.03215, 0.04461, 0.06401, 0.08676,
	0.1257, 0.1715, 0.2485, 0.339, 0.4898, 0.6692, 0.9662, 1.0,
}

type synthChannel struct {
	fine, coarse uint8
	volume       uint8
	toneOff      bool
	noiseOff     bool
	phase        float64
	square       float64
}

func (sc *synthChannel) period() uint16 {
	return uint16(sc.fine) | (uint16(sc.coarse&0x0F) << 8)
}

// Synth is a Backend that renders register writes into an audible
// square-wave + noise mix and plays it through the host's audio device via
// oto. It is a best-effort demo sink, not a claim of cycle-accurate PSG
// synthesis (spec.md's Non-goals explicitly exclude audio-synthesis
// fidelity from the core).
type Synth struct {
	mu       sync.Mutex
	chans    [3]synthChannel
	noiseReg uint8
	mixer    uint8

	noiseShift uint16
	noisePhase float64
	noiseBit   float64

	sampleRate int
	volume     float64

	otoCtx  *oto.Context
	player  *oto.Player
	enabled bool
	lastErr string
}

// NewSynth constructs a software PSG synthesizer backend. sampleRate is
// typically 44100 or 48000.
func NewSynth(sampleRate int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		volume:     0.3,
		mixer:      0xF8,
		noiseShift: 0x1FFFF,
		noiseBit:   1,
	}
	s.applyMixer()
	return s
}

func (s *Synth) Init() error {
	op := &oto.NewContextOptions{
		SampleRate:   s.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		s.lastErr = truncateError(fmt.Sprintf("synth backend: open audio device: %v", err))
		return err
	}
	<-ready
	s.otoCtx = ctx
	s.player = ctx.NewPlayer(&synthReader{synth: s})
	return nil
}

func (s *Synth) Enable() error {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	if s.player != nil {
		s.player.Play()
	}
	return nil
}

func (s *Synth) Disable() error {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
	if s.player != nil {
		return s.player.Pause()
	}
	return nil
}

func (s *Synth) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chans = [3]synthChannel{}
	s.noiseReg = 0
	s.mixer = 0xF8
	s.noiseShift = 0x1FFFF
	s.applyMixer()
	return nil
}

func (s *Synth) Fini() error {
	if s.player != nil {
		_ = s.player.Close()
	}
	return nil
}

func (s *Synth) LastError() string { return s.lastErr }

// WriteReg updates the channel/noise/mixer state the reader mixes down on
// its next Read. Matches the AY-3-8910 register map: 0/2/4 fine tune,
// 1/3/5 coarse tune, 6 noise period, 7 mixer, 8/9/10 volume.
func (s *Synth) WriteReg(reg, val uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case reg == 6:
		s.noiseReg = val & 0x1F
	case reg == 7:
		s.mixer = val
	case reg >= 8 && reg <= 10:
		s.chans[reg-8].volume = val & 0x0F
	case reg <= 5:
		ch := reg / 2
		if reg%2 == 0 {
			s.chans[ch].fine = val
		} else {
			s.chans[ch].coarse = val & 0x0F
		}
	}
	s.applyMixer()
}

// applyMixer recomputes each channel's tone/noise enable bits from the
// current mixer shadow. Must be called with s.mu held.
func (s *Synth) applyMixer() {
	s.chans[0].toneOff = s.mixer&0x01 != 0
	s.chans[1].toneOff = s.mixer&0x02 != 0
	s.chans[2].toneOff = s.mixer&0x04 != 0
	s.chans[0].noiseOff = s.mixer&0x08 != 0
	s.chans[1].noiseOff = s.mixer&0x10 != 0
	s.chans[2].noiseOff = s.mixer&0x20 != 0
}

type synthReader struct{ synth *Synth }

func (r *synthReader) Read(buf []byte) (int, error) {
	s := r.synth
	s.mu.Lock()
	defer s.mu.Unlock()

	numSamples := len(buf) / 2
	for i := 0; i < numSamples; i++ {
		var mix float64

		for ci := range s.chans {
			ch := &s.chans[ci]
			period := ch.period()
			if period == 0 {
				continue
			}
			freq := psgClockHz / (16.0 * float64(period))
			ch.phase += freq / float64(s.sampleRate)
			if ch.phase >= 1.0 {
				ch.phase -= 1.0
			}
			square := 1.0
			if ch.phase >= 0.5 {
				square = -1.0
			}

			amp := ymVolumeTable[ch.volume]
			if !ch.toneOff {
				mix += square * amp
			}
			if !ch.noiseOff {
				mix += s.noiseBit * amp
			}
		}

		if s.noiseReg > 0 {
			noiseFreq := psgClockHz / (16.0 * 2 * float64(s.noiseReg))
			s.noisePhase += noiseFreq / float64(s.sampleRate)
			for s.noisePhase >= 1.0 {
				s.noisePhase -= 1.0
				feedback := (s.noiseShift ^ (s.noiseShift >> 3)) & 1
				s.noiseShift = (s.noiseShift >> 1) | (feedback << 16)
				if s.noiseShift&1 != 0 {
					s.noiseBit = 1
				} else {
					s.noiseBit = -1
				}
			}
		}

		mix *= s.volume / 3.0
		if mix > 1 {
			mix = 1
		} else if mix < -1 {
			mix = -1
		}

		sample := int16(mix * 32767)
		buf[i*2] = byte(sample)
		buf[i*2+1] = byte(sample >> 8)
	}

	return numSamples * 2, nil
}
