package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pc6001/psgplayer/channel"
)

type fakeSink struct {
	writes []struct{ reg, val uint8 }
	events []channel.NoteEvent
}

func (s *fakeSink) write(reg, val uint8) {
	s.writes = append(s.writes, struct{ reg, val uint8 }{reg, val})
}
func (s *fakeSink) note(ev channel.NoteEvent) { s.events = append(s.events, ev) }

func newTestDriver() (*Driver, *fakeSink) {
	sink := &fakeSink{}
	return New(sink.write, sink.note, Config{}), sink
}

func TestNewAppliesDocumentedDefaults(t *testing.T) {
	d, _ := newTestDriver()
	assert.Equal(t, uint16(1250), d.BPMx10())
	assert.Equal(t, uint8(0xF8), d.Reg7())
	assert.False(t, d.Active(), "a driver with no loaded song has nothing to play")
}

func TestInitIsIdempotent(t *testing.T) {
	d, _ := newTestDriver()
	d.LoadSong([]byte{0x01, 0xFF}, nil, nil)
	d.Tick()
	assert.True(t, d.Active())

	d.Init()
	assert.False(t, d.Active(), "Init should reset channels back to inactive")
	assert.Equal(t, uint16(1250), d.BPMx10())
	assert.Equal(t, uint8(0xF8), d.Reg7())
}

func TestLoadSongIgnoresNilChannels(t *testing.T) {
	d, _ := newTestDriver()
	d.LoadSong([]byte{0x01, 0xFF}, nil, []byte{0x02, 0xFF})

	// tempoCounter starts at defaultTempoVal(10); run a full tempo period.
	for i := 0; i < defaultTempoVal; i++ {
		d.Tick()
	}
	assert.True(t, d.Active(), "channels A and C were loaded and should be active")
}

func TestTempoDividerFiresChannelTicksOnSchedule(t *testing.T) {
	d, sink := newTestDriver()
	d.LoadSong([]byte{0x01, 0xFF}, []byte{0x01, 0xFF}, []byte{0x01, 0xFF})

	for i := 0; i < defaultTempoVal-1; i++ {
		d.Tick()
	}
	assert.Empty(t, sink.events, "no channel tick should fire before tempoVal host ticks elapse")

	d.Tick() // the defaultTempoVal-th host tick fires all three channel ticks
	assert.Len(t, sink.events, 3, "all three channels should decode their first note together")
	assert.Equal(t, uint64(1), d.Stats().ChannelTicks)
	assert.Equal(t, uint64(defaultTempoVal), d.Stats().HostTicks)
}

func TestCatchUpTicksAreEquivalentToRealTime(t *testing.T) {
	// Calling Tick defaultTempoVal times back-to-back (catch-up) must land
	// in the same state as defaultTempoVal ticks spread over real time.
	d1, sink1 := newTestDriver()
	d1.LoadSong([]byte{0x01, 0xFF}, nil, nil)
	for i := 0; i < defaultTempoVal; i++ {
		d1.Tick()
	}

	d2, sink2 := newTestDriver()
	d2.LoadSong([]byte{0x01, 0xFF}, nil, nil)
	d2.Tick()
	for i := 1; i < defaultTempoVal; i++ {
		d2.Tick()
	}

	assert.Equal(t, d1.Stats().ChannelTicks, d2.Stats().ChannelTicks)
	assert.Equal(t, len(sink1.events), len(sink2.events))
}

func TestStopMutesAndDeactivatesAllChannels(t *testing.T) {
	d, sink := newTestDriver()
	d.LoadSong([]byte{0x01, 0xFF}, []byte{0x01, 0xFF}, []byte{0x01, 0xFF})
	for i := 0; i < defaultTempoVal; i++ {
		d.Tick()
	}
	assert.True(t, d.Active())

	sink.writes = nil
	d.Stop()
	assert.False(t, d.Active())
	assert.Len(t, sink.writes, 3, "Stop should write volume 0 to all three channels")
	for _, w := range sink.writes {
		assert.Equal(t, uint8(0), w.val)
	}
}

func TestUnknownOpcodesAggregatesPerChannel(t *testing.T) {
	d, _ := newTestDriver()
	d.LoadSong([]byte{0xE0, 0x01, 0xFF}, []byte{0x01, 0xFF}, nil)
	for i := 0; i < defaultTempoVal; i++ {
		d.Tick()
	}
	counts := d.UnknownOpcodes()
	assert.Equal(t, uint64(1), counts[0])
	assert.Equal(t, uint64(0), counts[1])
	assert.Equal(t, uint64(0), counts[2])
}
