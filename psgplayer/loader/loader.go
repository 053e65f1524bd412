// Package loader reads a PC-6001 PSG song file and splits it into the three
// channel bytecode slices the driver expects. This is the external
// collaborator spec.md describes in §6: the driver never touches a file,
// only the three borrowed slices this package produces.
package loader

import "fmt"

// Song holds the three channel bytecode slices extracted from a song file,
// each a read-only view into the file's bytes.
type Song struct {
	A, B, C []byte
}

// Load parses a song file's raw bytes. The 8-byte header begins with three
// little-endian 16-bit offsets (a, b, c) into the same buffer, giving the
// start of each channel's bytecode; 8 <= a < b < c <= len(data). Each
// channel's slice runs from its offset to the start of the next channel's
// (or to the end of the buffer for channel C), and is expected to end with
// an 0xFF End marker, though Load does not require the full song to be
// well-formed since the driver itself handles a missing End marker.
func Load(data []byte) (Song, error) {
	if len(data) < 8 {
		return Song{}, fmt.Errorf("psgplayer: song file too short for header (%d bytes)", len(data))
	}

	a := le16(data, 0)
	b := le16(data, 2)
	c := le16(data, 4)

	if a < 8 {
		return Song{}, fmt.Errorf("psgplayer: channel A offset %d overlaps the header", a)
	}
	if !(a < b && b < c) {
		return Song{}, fmt.Errorf("psgplayer: channel offsets not strictly increasing (a=%d b=%d c=%d)", a, b, c)
	}
	if int(c) > len(data) {
		return Song{}, fmt.Errorf("psgplayer: channel C offset %d exceeds file size %d", c, len(data))
	}

	return Song{
		A: data[a:b],
		B: data[b:c],
		C: data[c:],
	}, nil
}

func le16(data []byte, offset int) uint16 {
	return uint16(data[offset]) | uint16(data[offset+1])<<8
}
