// Package channel implements one PSG voice: its bytecode cursor, the
// command/note interpreter, and the per-tick voicing engine (note gating,
// software envelope, LFO vibrato, detune and ties).
package channel

import (
	"log/slog"

	"github.com/pc6001/psgplayer/bitfield"
	"github.com/pc6001/psgplayer/regs"
)

// Default cursor/tempo/voicing values a freshly constructed driver uses,
// per the documented channel defaults.
const (
	DefaultLength     = 24
	DefaultLengthPlus = 192
	DefaultVolume     = 12
	DefaultOctave     = 4
)

// VibratoTiePolicy controls whether a tied note restarts the vibrato LFO.
type VibratoTiePolicy int

const (
	// KeepVibrato lets the LFO continue running across a tie (the default).
	KeepVibrato VibratoTiePolicy = iota
	// RestartVibrato re-initializes the LFO on every note, tied or not.
	RestartVibrato
)

// Shared holds the PSG state that all three channels read and mutate:
// the noise-period and mixer register shadows (registers 6 and 7), the
// host-readable scratch byte, and the song tempo.
type Shared struct {
	Reg6     uint8
	Reg7     uint8
	IValue   uint8
	TempoVal uint8
	BPMx10   uint16
}

// NoteEvent is emitted once per note/rest decode, never once per tick.
type NoteEvent struct {
	Channel uint8
	Octave  uint8
	Pitch   uint8 // 0 = rest, 1..12 = C..B
	Volume  uint8
	Length  uint16
	IsRest  bool
	BPMx10  uint16
}

// WriteRegFunc delivers a single PSG register write.
type WriteRegFunc func(reg, val uint8)

// NoteEventFunc delivers a decoded note or rest.
type NoteEventFunc func(NoteEvent)

// Hooks bundles the callbacks a channel tick invokes synchronously.
type Hooks struct {
	WriteReg  WriteRegFunc
	NoteEvent NoteEventFunc
}

// Channel is one PSG voice's mutable state. It is owned by a single driver
// and must not be shared across goroutines; every tick is driven by the
// host calling Tick once per channel tick.
type Channel struct {
	index uint8
	log   *slog.Logger

	data   []byte
	offset int

	waitCounter uint16
	qCounter    uint8

	lDefault, lPlusDefault uint8
	qDefault               uint8
	volume                 uint8
	octave                 uint8
	detune                 uint8 // sign-magnitude

	nestFlag         [bitfield.MaxNestDeep]uint8
	lBackup          uint8
	lPlusBackup      uint8
	nestOctaveBackup uint8

	jReturnOffset    uint16
	jumpOctaveBackup uint8

	vibWaitBase, vibCountBase, vibAmpBase uint8
	vibDeltaBase                          uint8 // bit7 = initial phase, low7 = step
	vibWaitWork, vibCountWork, vibAmpWork uint8
	vibOffset                             int16

	egWidthBase, egDeltaBase, eg2WidthBase int8
	egCountBase, eg2CountBase              uint8
	egCountWork                            uint8
	egWidthWork                            int8
	volumeAdjust                           int8

	flags     bitfield.Flags
	freqValue uint16
	active    bool

	unknownOpcodes uint64
}

// New constructs a channel with the documented defaults. Channels start
// inactive; Load assigns bytecode and activates it.
func New(index uint8, log *slog.Logger) *Channel {
	if log == nil {
		log = slog.Default()
	}
	return &Channel{
		index:         index,
		log:           log,
		lDefault:      DefaultLength,
		lPlusDefault:  DefaultLengthPlus,
		volume:        DefaultVolume,
		octave:        DefaultOctave,
		jReturnOffset: 0,
	}
}

// Load assigns the channel's bytecode slice (borrowed, read-only) and
// resets its cursor, leaving all programmable defaults (length, volume,
// octave, EG/LFO programs) untouched — a driver is reset-free between
// songs beyond this.
func (c *Channel) Load(data []byte) {
	c.data = data
	c.offset = 0
	c.waitCounter = 1
	c.active = true
}

// Active reports whether the channel is still playing (has not hit an
// unconditional End marker or run off the end of its bytecode).
func (c *Channel) Active() bool { return c.active }

// Index returns the channel's voice number (0=A, 1=B, 2=C).
func (c *Channel) Index() uint8 { return c.index }

// UnknownOpcodes returns the count of unrecognized command bytes seen.
func (c *Channel) UnknownOpcodes() uint64 { return c.unknownOpcodes }

// Mute silences the channel and marks it inactive; used by the driver's
// Stop operation.
func (c *Channel) Mute(write WriteRegFunc) {
	write(regs.AVol(c.index), 0)
	c.active = false
}

func (c *Channel) readByte() (uint8, bool) {
	if c.offset >= len(c.data) {
		return 0, false
	}
	b := c.data[c.offset]
	c.offset++
	return b, true
}

func clampVolume(v int16) uint8 {
	if v < 0 {
		return 0
	}
	if v > 15 {
		return 15
	}
	return uint8(v)
}

func satAdd(v, n uint8, max uint8) uint8 {
	r := uint16(v) + uint16(n)
	if r > uint16(max) {
		return max
	}
	return uint8(r)
}

func satSub(v, n uint8) uint8 {
	if uint16(n) > uint16(v) {
		return 0
	}
	return v - n
}
