package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadlessRecordsWrites(t *testing.T) {
	h := NewHeadless()
	assert.NoError(t, h.Init())
	assert.NoError(t, h.Enable())

	h.WriteReg(0, 0x34)
	h.WriteReg(8, 0x0C)

	writes := h.Writes()
	assert.Equal(t, []RegisterWrite{{Reg: 0, Val: 0x34}, {Reg: 8, Val: 0x0C}}, writes)
}

func TestHeadlessResetClearsLog(t *testing.T) {
	h := NewHeadless()
	h.WriteReg(0, 1)
	assert.Len(t, h.Writes(), 1)

	assert.NoError(t, h.Reset())
	assert.Empty(t, h.Writes())
}

func TestHeadlessWritesAreIndependentCopies(t *testing.T) {
	h := NewHeadless()
	h.WriteReg(0, 1)
	first := h.Writes()
	h.WriteReg(1, 2)
	assert.Len(t, first, 1, "a previously returned snapshot must not see later writes")
}

func TestTruncateError(t *testing.T) {
	long := make([]byte, MaxErrorLength+10)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateError(string(long))
	assert.Len(t, got, MaxErrorLength)

	short := "boom"
	assert.Equal(t, short, truncateError(short))
}
