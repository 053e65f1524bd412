// Package terminal implements a ui.Sink that renders note events to a
// scrolling tcell screen, adapted from the teacher's tcell-based terminal
// backend. Register writes are accepted but not displayed.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pc6001/psgplayer/channel"
)

var noteNames = [...]string{"--", "C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// Sink renders driver events to the terminal. It implements ui.Sink and
// never calls back into the driver.
type Sink struct {
	screen tcell.Screen
	log    *logBuffer
	style  tcell.Style
}

// New opens a tcell screen and returns a ready-to-use Sink.
func New() (*Sink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal sink: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal sink: init screen: %w", err)
	}
	screen.Clear()

	return &Sink{
		screen: screen,
		log:    newLogBuffer(200),
		style:  tcell.StyleDefault,
	}, nil
}

// NoteEvent renders one decoded note or rest as a log line and redraws.
func (s *Sink) NoteEvent(ev channel.NoteEvent) {
	var line string
	if ev.IsRest {
		line = fmt.Sprintf("ch%d  rest        len=%-4d bpm=%.1f", ev.Channel, ev.Length, float64(ev.BPMx10)/10)
	} else {
		line = fmt.Sprintf("ch%d  %so%d vol=%-2d len=%-4d bpm=%.1f",
			ev.Channel, noteNames[ev.Pitch], ev.Octave, ev.Volume, ev.Length, float64(ev.BPMx10)/10)
	}
	s.log.add(line)
	s.redraw()
}

// RegisterWrite is a no-op for display purposes: the note-event log is
// already a faithful summary, and echoing every register write would
// flood a three-voice, 500 Hz event stream.
func (s *Sink) RegisterWrite(reg, val uint8) {}

// Close tears down the tcell screen.
func (s *Sink) Close() error {
	s.screen.Fini()
	return nil
}

func (s *Sink) redraw() {
	s.screen.Clear()
	_, height := s.screen.Size()

	lines := s.log.recent(height)
	for i, e := range lines {
		row := len(lines) - 1 - i
		drawText(s.screen, 0, row, s.style, e.text)
	}
	s.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
