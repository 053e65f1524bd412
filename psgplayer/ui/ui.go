// Package ui defines the UI sink contract (C10): a pure consumer of
// register-write and note-event callbacks with no feedback into the core.
// A sink must never block the driver tick that feeds it.
package ui

import "github.com/pc6001/psgplayer/channel"

// Sink receives every register write and note event the driver emits. It
// renders them however it likes (a scrolling log, a VU meter, nothing at
// all) but never calls back into the driver or a backend.
type Sink interface {
	NoteEvent(ev channel.NoteEvent)
	RegisterWrite(reg, val uint8)
	Close() error
}

// Null is a Sink that discards everything, for headless runs with no UI.
type Null struct{}

func (Null) NoteEvent(channel.NoteEvent) {}
func (Null) RegisterWrite(uint8, uint8)  {}
func (Null) Close() error                { return nil }
