package channel

import (
	"github.com/pc6001/psgplayer/bitfield"
	"github.com/pc6001/psgplayer/regs"
	"github.com/pc6001/psgplayer/tempo"
	"github.com/pc6001/psgplayer/tone"
)

// decodeUntilNote consumes command objects until it decodes a note object
// (or the channel runs off the end of its bytecode / hits an unconditional
// End marker). It never consumes more than one note per call.
func (c *Channel) decodeUntilNote(shared *Shared, hooks Hooks, policy VibratoTiePolicy) {
	for c.active {
		op, ok := c.readByte()
		if !ok {
			// Running off the end without a trailing 0xFF is treated as an
			// End marker with no return offset set (spec.md §5, §9).
			c.active = false
			return
		}
		if op&0x80 == 0 {
			c.decodeNote(op, shared, hooks, policy)
			return
		}
		if !c.decodeCommand(op, shared, hooks) {
			return
		}
	}
}

// decodeNote processes a note/rest object, the only thing that advances
// wait_counter and ends decoding for the current tick.
func (c *Channel) decodeNote(op uint8, shared *Shared, hooks Hooks, policy VibratoTiePolicy) {
	tieBit := op&0x40 != 0
	lengthCode := (op >> 4) & 0x03
	pitch := op & 0x0F

	var length uint16
	switch lengthCode {
	case 0:
		length = uint16(c.lDefault)
	case 1:
		length = uint16(c.lPlusDefault)
	case 2:
		b, ok := c.readByte()
		if !ok {
			c.active = false
			return
		}
		length = uint16(b)
	case 3:
		lo, ok1 := c.readByte()
		hi, ok2 := c.readByte()
		if !ok1 || !ok2 {
			c.active = false
			return
		}
		length = bitfield.Combine(hi, lo)
	}
	if length == 0 {
		length = 1
	}
	c.waitCounter = length

	prevTie := c.flags.Has(bitfield.Tie)

	qc := c.qDefault
	if tieBit {
		qc = 0
	}
	if uint16(qc) >= length {
		qc = uint8(length - 1)
	}
	c.qCounter = qc

	if pitch == 0 {
		c.flags = c.flags.Set(bitfield.Rest)
		hooks.WriteReg(regs.AVol(c.index), 0)
		hooks.NoteEvent(NoteEvent{
			Channel: c.index,
			Octave:  c.octave,
			Pitch:   0,
			Volume:  0,
			Length:  length,
			IsRest:  true,
			BPMx10:  shared.BPMx10,
		})
		c.flags = c.flags.With(bitfield.Tie, tieBit)
		return
	}

	c.flags = c.flags.Clear(bitfield.Rest)

	if !prevTie && c.egWidthBase != 0 {
		c.flags = c.flags.Clear(bitfield.EGStage2)
		c.egCountWork = c.egCountBase
		c.egWidthWork = 0
	}

	if c.flags.Has(bitfield.VibOn) {
		skipReinit := policy == KeepVibrato && prevTie
		if !skipReinit {
			c.initLFO()
		}
	}

	period := tone.ApplyDetune(tone.Period(c.octave, pitch), int8(c.detune))
	c.freqValue = period

	if !prevTie {
		hooks.WriteReg(regs.AVol(c.index), 0)
	}
	hooks.WriteReg(regs.AFine(c.index), bitfield.Low(period))
	hooks.WriteReg(regs.ACoarse(c.index), bitfield.High(period)&0x0F)

	var vol uint8
	if prevTie {
		vol = clampVolume(int16(c.volume) + int16(c.volumeAdjust))
	} else {
		vol = c.volume
	}
	hooks.WriteReg(regs.AVol(c.index), vol)

	hooks.NoteEvent(NoteEvent{
		Channel: c.index,
		Octave:  c.octave,
		Pitch:   pitch,
		Volume:  vol,
		Length:  length,
		IsRest:  false,
		BPMx10:  shared.BPMx10,
	})

	c.flags = c.flags.With(bitfield.Tie, tieBit)
}

// decodeCommand executes one command object. It returns false when the
// channel should stop decoding for this tick (an unconditional End).
func (c *Channel) decodeCommand(op uint8, shared *Shared, hooks Hooks) bool {
	switch {
	case op >= 0x80 && op <= 0x8F:
		c.octave = op & 0x0F
		return true
	case op >= 0x90 && op <= 0x9F:
		c.volume = op & 0x0F
		return true
	case op >= 0xA0 && op <= 0xAF:
		c.volume = satAdd(c.volume, op&0x0F, 15)
		return true
	case op >= 0xB0 && op <= 0xBF:
		c.volume = satSub(c.volume, op&0x0F)
		return true
	}

	switch op {
	case 0xEA: // S — program software envelope
		p1, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.egWidthBase = int8(p1)
		if p1 != 0 {
			p2, ok2 := c.readByte()
			p3, ok3 := c.readByte()
			p4, ok4 := c.readByte()
			p5, ok5 := c.readByte()
			if !ok2 || !ok3 || !ok4 || !ok5 {
				c.active = false
				return false
			}
			c.egCountBase = p2
			c.egDeltaBase = int8(p3)
			c.eg2WidthBase = int8(p4)
			c.eg2CountBase = p5
		}
		return true

	case 0xEB: // W — set noise period
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		shared.Reg6 = v
		hooks.WriteReg(regs.NoisePeriod, shared.Reg6)
		return true

	case 0xEC: // W± — adjust noise period
		d, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		shared.Reg6 = clampNoisePeriod(int16(shared.Reg6) + int16(int8(d)))
		hooks.WriteReg(regs.NoisePeriod, shared.Reg6)
		return true

	case 0xED, 0xEE, 0xEF: // P1/P2/P3 — mixer preset for this channel
		code := op - 0xED
		toneOn := code&0x01 != 0
		noiseOn := (code>>1)&0x01 != 0
		tbit := uint8(1) << c.index
		nbit := uint8(1) << (c.index + 3)
		reg7 := shared.Reg7
		if toneOn {
			reg7 &^= tbit
		} else {
			reg7 |= tbit
		}
		if noiseOn {
			reg7 &^= nbit
		} else {
			reg7 |= nbit
		}
		shared.Reg7 = reg7
		hooks.WriteReg(regs.Mixer, reg7)
		return true

	case 0xF0: // [ — enter loop nest
		count, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		depth := c.flags.NestDepth()
		if depth < bitfield.MaxNestDeep {
			c.nestFlag[depth] = count
			c.lBackup = c.lDefault
			c.lPlusBackup = c.lPlusDefault
			c.nestOctaveBackup = c.octave
			c.flags = c.flags.WithNestDepth(depth + 1)
		}
		return true

	case 0xF1: // ] short — loop back with an 8-bit (always backwards) offset
		// base is the cursor position right after the F1 opcode byte,
		// before this command's own operand: the offset is counted from
		// there, not from after the operand has been consumed.
		base := c.offset
		off8, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.loopBack(base, bitfield.SignExtend8To16(off8))
		return true

	case 0xF2: // ] long — loop back/forward with a 16-bit offset
		base := c.offset
		lo, ok1 := c.readByte()
		hi, ok2 := c.readByte()
		if !ok1 || !ok2 {
			c.active = false
			return false
		}
		c.loopBack(base, int16(bitfield.Combine(hi, lo)))
		return true

	case 0xF3: // : — skip the last iteration's remainder
		lo, ok1 := c.readByte()
		hi, ok2 := c.readByte()
		if !ok1 || !ok2 {
			c.active = false
			return false
		}
		depth := c.flags.NestDepth()
		if depth > 0 && c.nestFlag[depth-1] == 1 {
			c.flags = c.flags.WithNestDepth(depth - 1)
			c.offset += int(int16(bitfield.Combine(hi, lo)))
		}
		return true

	case 0xF4: // I — host-readable scratch value
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		shared.IValue = v
		return true

	case 0xF5: // M — program vibrato LFO and re-initialize it now
		p1, ok1 := c.readByte()
		p2, ok2 := c.readByte()
		p3, ok3 := c.readByte()
		p4, ok4 := c.readByte()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			c.active = false
			return false
		}
		c.vibWaitBase = p1
		c.vibCountBase = p2
		c.vibAmpBase = 2 * p3
		c.vibDeltaBase = p4
		c.flags = c.flags.With(bitfield.VibOn, p4 != 0)
		c.initLFO()
		return true

	case 0xF6: // N — LFO on/off toggle: reserved, current policy is no-op
		return true

	case 0xF7: // L+
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.lPlusDefault = v
		return true

	case 0xF8: // T — set tempo
		t96, ok1 := c.readByte()
		_, ok2 := c.readByte() // legacy port value, discarded but consumed
		if !ok1 || !ok2 {
			c.active = false
			return false
		}
		shared.TempoVal = t96
		shared.BPMx10 = tempo.BPMx10(t96)
		return true

	case 0xF9: // L
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.lDefault = v
		return true

	case 0xFA: // Q
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.qDefault = v
		return true

	case 0xFB: // U% — set detune
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.detune = v
		return true

	case 0xFC: // U± — signed-add into sign-magnitude detune
		d, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.detune = tone.AddSignMagnitude(c.detune, int8(d))
		return true

	case 0xFD: // M% — set vibrato step/direction only
		v, ok := c.readByte()
		if !ok {
			c.active = false
			return false
		}
		c.vibDeltaBase = v
		c.flags = c.flags.With(bitfield.VibOn, v != 0)
		return true

	case 0xFE: // J — save jump-back point
		c.jReturnOffset = uint16(c.offset)
		c.jumpOctaveBackup = c.octave
		return true

	case 0xFF: // End
		if c.jReturnOffset != 0 {
			c.offset = int(c.jReturnOffset)
			c.octave = c.jumpOctaveBackup
			return true
		}
		c.active = false
		return false

	default:
		c.unknownOpcodes++
		c.log.Debug("unknown PSG bytecode opcode", "channel", c.index, "opcode", op, "offset", c.offset-1)
		return true
	}
}

// loopBack implements the shared decrement/jump logic for the short and
// long forms of "]". base is the cursor position right after the opcode
// byte and before this command's own operand bytes; delta is counted from
// there, matching spec.md's worked nested-loop example.
func (c *Channel) loopBack(base int, delta int16) {
	depth := c.flags.NestDepth()
	if depth == 0 {
		return
	}
	top := depth - 1
	if c.nestFlag[top] > 0 {
		c.nestFlag[top]--
	}
	if c.nestFlag[top] != 0 {
		c.offset = base + int(delta)
		c.lDefault = c.lBackup
		c.lPlusDefault = c.lPlusBackup
		c.octave = c.nestOctaveBackup
		return
	}
	c.flags = c.flags.WithNestDepth(top)
}

func clampNoisePeriod(v int16) uint8 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}
