package backend

import "sync"

// RegisterWrite records one WriteReg call, for batch validation or test
// harnesses that want to assert on the exact write sequence (spec.md §8's
// scenarios are all phrased this way).
type RegisterWrite struct {
	Reg uint8
	Val uint8
}

// Headless is a Backend that performs no I/O: it just records every
// register write, adapted from the teacher's headless backend used for
// automated testing and batch processing.
type Headless struct {
	mu      sync.Mutex
	writes  []RegisterWrite
	enabled bool
	lastErr string
}

// NewHeadless constructs a Headless backend with an empty write log.
func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Init() error    { return nil }
func (h *Headless) Enable() error  { h.enabled = true; return nil }
func (h *Headless) Disable() error { h.enabled = false; return nil }
func (h *Headless) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = h.writes[:0]
	return nil
}
func (h *Headless) Fini() error { return nil }

// WriteReg records the write regardless of Enable/Disable state — a real
// chip would ignore writes while disabled, but a test harness usually
// wants the full trace.
func (h *Headless) WriteReg(reg, val uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, RegisterWrite{Reg: reg, Val: val})
}

func (h *Headless) LastError() string { return h.lastErr }

// Writes returns a copy of every register write recorded since the last
// Reset.
func (h *Headless) Writes() []RegisterWrite {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RegisterWrite, len(h.writes))
	copy(out, h.writes)
	return out
}
