// Package regs names the AY-3-8910/YM2149 PSG register numbers the driver
// writes to. Register indices match the chip's standard map; channel-scoped
// registers are computed with the helper functions below.
package regs

const (
	// NoisePeriod is register 6, the shared 5-bit noise generator period.
	NoisePeriod uint8 = 6
	// Mixer is register 7, the shared tone/noise enable bits for all three
	// channels plus I/O port direction bits the driver never touches.
	Mixer uint8 = 7
)

// AFine returns the fine-tune tone register (R0/R2/R4) for channel ch (0..2).
func AFine(ch uint8) uint8 { return ch * 2 }

// ACoarse returns the coarse-tune tone register (R1/R3/R5) for channel ch.
func ACoarse(ch uint8) uint8 { return ch*2 + 1 }

// AVol returns the amplitude register (R8/R9/R10) for channel ch.
func AVol(ch uint8) uint8 { return 8 + ch }
