// Package driver ties three PSG channels together: the 2 ms tick dispatch
// that derives the song's tempo from the host's tick cadence, and the
// fanout of register writes and note events to a backend and a UI sink.
package driver

import (
	"log/slog"

	"github.com/pc6001/psgplayer/channel"
	"github.com/pc6001/psgplayer/tempo"
)

const numChannels = 3

// defaultTempoVal is the tempo byte a freshly initialized driver uses
// (10 host ticks per 96th note), matching the documented idempotence
// properties of driver_init.
const defaultTempoVal = 10

// defaultReg7 is the mixer register's reset shadow: tone bits 0-2 clear
// (tones enabled), noise bits 3-5 and the I/O port bits set (noise
// disabled), matching the worked mixer-independence example.
const defaultReg7 = 0xF8

// Stats exposes best-effort counters for monitoring a running driver.
// None of them affect playback; they exist purely for observability.
type Stats struct {
	HostTicks      uint64
	ChannelTicks   uint64
	RegisterWrites uint64
	NotesPlayed    uint64
}

// Config configures a Driver at construction time.
type Config struct {
	// VibratoTiePolicy controls whether a tied note restarts the LFO.
	// Zero value is channel.KeepVibrato, matching the documented default.
	VibratoTiePolicy channel.VibratoTiePolicy
	// Logger receives per-channel diagnostics (unknown opcodes, etc).
	// Defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// Driver is the bytecode sequencer for all three PSG voices. One Driver is
// owned by one host thread; Tick must not be called concurrently.
type Driver struct {
	channels [numChannels]*channel.Channel
	shared   channel.Shared

	tempoCounter uint8
	policy       channel.VibratoTiePolicy
	log          *slog.Logger

	write channel.WriteRegFunc
	note  channel.NoteEventFunc
	hooks channel.Hooks

	stats Stats
}

// New constructs a driver with the documented defaults (l=24, lplus=192,
// volume=12, octave=4, tempo_val=10) and wires the given register-write and
// note-event callbacks. Both callbacks are invoked synchronously from Tick;
// neither may block.
func New(write channel.WriteRegFunc, note channel.NoteEventFunc, cfg Config) *Driver {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	d := &Driver{
		policy: cfg.VibratoTiePolicy,
		log:    log,
		write:  write,
		note:   note,
	}
	for i := range d.channels {
		d.channels[i] = channel.New(uint8(i), log)
	}
	d.hooks = channel.Hooks{
		WriteReg: func(reg, val uint8) {
			d.stats.RegisterWrites++
			d.write(reg, val)
		},
		NoteEvent: func(ev channel.NoteEvent) {
			d.stats.NotesPlayed++
			d.note(ev)
		},
	}
	d.Init()
	return d
}

// Init resets the driver's tempo and every channel back to the documented
// defaults (l=24, lplus=192, volume=12, octave=4, tempo_val=10), discarding
// any loaded song in the process. Calling Init twice is idempotent; LoadSong
// must be called again afterward to resume playback.
func (d *Driver) Init() {
	d.shared = channel.Shared{
		TempoVal: defaultTempoVal,
		BPMx10:   tempo.BPMx10(defaultTempoVal),
		Reg7:     defaultReg7,
	}
	d.tempoCounter = defaultTempoVal
	for i := range d.channels {
		d.channels[i] = channel.New(uint8(i), d.log)
	}
}

// LoadSong assigns each channel's bytecode slice (borrowed, read-only) and
// activates all three. Channels beyond index 2 are silently ignored, as are
// nil slices (spec.md §7's "out-of-range channel index" rule).
func (d *Driver) LoadSong(a, b, c []byte) {
	data := [numChannels][]byte{a, b, c}
	for i, bytes := range data {
		if bytes == nil {
			continue
		}
		d.channels[i].Load(bytes)
	}
}

// Tick is the host's 2 ms entry point. The driver's own tempo divider
// fires a channel tick (all three voices, in order A, B, C) every
// tempo_val host ticks. Calling Tick repeatedly back-to-back (catch-up) is
// safe and identical to that many ticks elapsing in real time.
func (d *Driver) Tick() {
	d.stats.HostTicks++
	d.tempoCounter--
	if d.tempoCounter != 0 {
		return
	}
	for _, ch := range d.channels {
		ch.Tick(&d.shared, d.hooks, d.policy)
	}
	d.stats.ChannelTicks++
	d.tempoCounter = d.shared.TempoVal
}

// Stop writes volume 0 to all three voices and marks every channel
// inactive. The driver is otherwise reset-free between songs.
func (d *Driver) Stop() {
	for _, ch := range d.channels {
		ch.Mute(d.write)
	}
}

// Active reports whether any channel is still decoding bytecode.
func (d *Driver) Active() bool {
	for _, ch := range d.channels {
		if ch.Active() {
			return true
		}
	}
	return false
}

// IValue returns the scratch byte last written by an I command.
func (d *Driver) IValue() uint8 { return d.shared.IValue }

// BPMx10 returns the current tempo, derived from the song's T command.
func (d *Driver) BPMx10() uint16 { return d.shared.BPMx10 }

// Reg6 returns the shared noise-period register shadow.
func (d *Driver) Reg6() uint8 { return d.shared.Reg6 }

// Reg7 returns the shared mixer register shadow.
func (d *Driver) Reg7() uint8 { return d.shared.Reg7 }

// Stats returns a snapshot of the driver's observability counters.
func (d *Driver) Stats() Stats { return d.stats }

// UnknownOpcodes returns the per-channel count of unrecognized opcodes
// encountered since the song was loaded.
func (d *Driver) UnknownOpcodes() [numChannels]uint64 {
	var out [numChannels]uint64
	for i, ch := range d.channels {
		out[i] = ch.UnknownOpcodes()
	}
	return out
}
