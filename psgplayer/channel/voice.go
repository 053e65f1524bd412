package channel

import (
	"github.com/pc6001/psgplayer/bitfield"
	"github.com/pc6001/psgplayer/regs"
	"github.com/pc6001/psgplayer/tone"
)

// Tick advances the channel by one channel tick (already scaled to the
// song's tempo by the driver's dispatch). It either runs one step of the
// current note's envelope/vibrato, or — once wait_counter reaches zero —
// decodes bytecode until the next note object.
func (c *Channel) Tick(shared *Shared, hooks Hooks, policy VibratoTiePolicy) {
	if !c.active {
		return
	}

	c.waitCounter--
	if c.waitCounter > 0 {
		if c.flags.Has(bitfield.Rest) {
			return
		}
		if c.waitCounter == uint16(c.qCounter) {
			hooks.WriteReg(regs.AVol(c.index), 0)
			c.flags = c.flags.Set(bitfield.Rest)
			return
		}
		c.runVibratoStep(hooks)
		c.runEGStep(hooks)
		return
	}

	c.decodeUntilNote(shared, hooks, policy)
}

// initLFO (re)starts the vibrato LFO from its programmed base values.
func (c *Channel) initLFO() {
	c.vibWaitWork = c.vibWaitBase
	c.vibCountWork = c.vibCountBase
	c.vibAmpWork = c.vibAmpBase
	c.vibOffset = 0
	c.flags = c.flags.With(bitfield.VibPM, c.vibDeltaBase&0x80 != 0)
}

func (c *Channel) runVibratoStep(hooks Hooks) {
	if !c.flags.Has(bitfield.VibOn) {
		return
	}
	if c.vibWaitWork > 0 {
		c.vibWaitWork--
		return
	}
	c.vibCountWork--
	if c.vibCountWork > 0 {
		return
	}
	reload := c.vibCountBase
	if reload == 0 {
		reload = 1
	}
	c.vibCountWork = reload

	step := int16(c.vibDeltaBase & 0x7F)
	if c.flags.Has(bitfield.VibPM) {
		c.vibOffset -= step
	} else {
		c.vibOffset += step
	}

	target := tone.Clamp(int32(c.freqValue) + int32(c.vibOffset))
	hooks.WriteReg(regs.AFine(c.index), bitfield.Low(target))
	hooks.WriteReg(regs.ACoarse(c.index), bitfield.High(target)&0x0F)

	if c.vibAmpBase != 0 {
		c.vibAmpWork--
		if c.vibAmpWork == 0 {
			c.vibAmpWork = c.vibAmpBase
			c.flags = c.flags.With(bitfield.VibPM, !c.flags.Has(bitfield.VibPM))
		}
	}
}

func (c *Channel) runEGStep(hooks Hooks) {
	if c.egWidthBase == 0 {
		return
	}

	if !c.flags.Has(bitfield.EGStage2) {
		c.egCountWork--
		if c.egCountWork != 0 {
			return
		}
		if c.egWidthWork != c.egWidthBase {
			c.egCountWork = c.egCountBase
			c.egWidthWork += c.egDeltaBase
			c.volumeAdjust = c.egWidthWork
			hooks.WriteReg(regs.AVol(c.index), clampVolume(int16(c.volume)+int16(c.volumeAdjust)))
			return
		}
		c.flags = c.flags.Set(bitfield.EGStage2)
		c.egWidthWork = 0
		c.egCountWork = c.eg2CountBase & 0x7F
		if c.eg2WidthBase != 0 {
			c.volumeAdjust = c.eg2WidthBase + c.egWidthBase
			hooks.WriteReg(regs.AVol(c.index), clampVolume(int16(c.volume)+int16(c.volumeAdjust)))
		}
		return
	}

	if c.eg2WidthBase == 0 {
		return
	}
	c.egCountWork--
	if c.egCountWork != 0 {
		return
	}
	c.egCountWork = c.eg2CountBase & 0x7F
	if c.egWidthWork < 15 {
		c.egWidthWork++
	}
	var delta int8
	if c.eg2CountBase&0x80 != 0 {
		delta = -c.egWidthWork
	} else {
		delta = c.egWidthWork
	}
	c.volumeAdjust = delta + c.egWidthBase + c.eg2WidthBase
	hooks.WriteReg(regs.AVol(c.index), clampVolume(int16(c.volume)+int16(c.volumeAdjust)))
}
