package dut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pulseWrite asserts wr with data for exactly one write edge.
func pulseWrite(f *FIFO, b *Bus, data byte) {
	b.Wr = true
	b.DataIn = data
	f.WriteEdge()
	b.Wr = false
}

// pulseRead asserts rd for exactly one read edge and returns the registered
// data_out after the edge.
func pulseRead(f *FIFO, b *Bus) byte {
	b.Rd = true
	f.ReadEdge()
	b.Rd = false
	return b.DataOut
}

// idleEdges advances both domains with strobes low, letting the pointer
// synchronizers settle.
func idleEdges(f *FIFO, n int) {
	for i := 0; i < n; i++ {
		f.WriteEdge()
		f.ReadEdge()
	}
}

func TestNewFIFO_RejectsNonPositiveDepth(t *testing.T) {
	b := NewBus()
	_, err := NewFIFO(b, 0)
	require.Error(t, err)
	_, err = NewFIFO(b, -1)
	require.Error(t, err)
}

func TestFIFO_QuiescentState(t *testing.T) {
	b := NewBus()
	_, err := NewFIFO(b, 8)
	require.NoError(t, err)

	assert.True(t, b.Empty)
	assert.False(t, b.Full)
}

func TestFIFO_EmptyDeassertsTwoReadEdgesAfterWrite(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 8)
	require.NoError(t, err)

	pulseWrite(f, b, 0xAB)

	// One read edge: the crossed write pointer is still in the first
	// synchronizer stage.
	f.ReadEdge()
	assert.True(t, b.Empty)

	// Second read edge: the pointer lands, empty deasserts.
	f.ReadEdge()
	assert.False(t, b.Empty)
}

func TestFIFO_ReadsBackInOrder(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 8)
	require.NoError(t, err)

	payload := []byte{0x11, 0x22, 0x33, 0x44}
	for _, v := range payload {
		pulseWrite(f, b, v)
	}

	f.ReadEdge()
	f.ReadEdge()
	require.False(t, b.Empty)

	for _, want := range payload {
		assert.Equal(t, want, pulseRead(f, b))
	}
	assert.True(t, b.Empty)
}

func TestFIFO_DataOutIsRegistered(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 8)
	require.NoError(t, err)

	pulseWrite(f, b, 0x5A)
	f.ReadEdge()
	f.ReadEdge()

	// The pre-edge snapshot at the accepting edge still holds the old
	// data_out; the new value is only observable at the following edge.
	b.Rd = true
	f.ReadEdge()
	b.Rd = false
	assert.Equal(t, byte(0), b.ReadSample().DataOut)

	f.ReadEdge()
	assert.Equal(t, byte(0x5A), b.ReadSample().DataOut)
}

func TestFIFO_FullAtDepthAndRejectsOverflow(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		pulseWrite(f, b, byte(0x10+i))
	}
	assert.True(t, b.Full)

	// Overflow attempt while full must not be stored.
	pulseWrite(f, b, 0xEE)

	f.ReadEdge()
	f.ReadEdge()
	for i := 0; i < 4; i++ {
		assert.Equal(t, byte(0x10+i), pulseRead(f, b))
	}
	assert.True(t, b.Empty)
}

func TestFIFO_FullDeassertsAfterReadsPropagate(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		pulseWrite(f, b, byte(i))
	}
	require.True(t, b.Full)

	f.ReadEdge()
	f.ReadEdge()
	pulseRead(f, b)

	// The freed slot becomes visible to the write domain two write edges
	// after the read.
	f.WriteEdge()
	assert.True(t, b.Full)
	f.WriteEdge()
	assert.False(t, b.Full)
}

func TestFIFO_ResetClearsBothDomains(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 8)
	require.NoError(t, err)

	pulseWrite(f, b, 0xAA)
	pulseWrite(f, b, 0xBB)
	idleEdges(f, 2)
	require.False(t, b.Empty)

	b.RstWr = true
	b.RstRd = true
	idleEdges(f, 2)
	b.RstWr = false
	b.RstRd = false
	idleEdges(f, 2)

	assert.True(t, b.Empty)
	assert.False(t, b.Full)
	assert.Equal(t, byte(0), b.DataOut)

	// Post-reset traffic flows normally.
	pulseWrite(f, b, 0x77)
	f.ReadEdge()
	f.ReadEdge()
	assert.Equal(t, byte(0x77), pulseRead(f, b))
}

func TestFIFO_PerDomainReset(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 8)
	require.NoError(t, err)

	pulseWrite(f, b, 0x01)

	// Resetting only the write side clears write state but leaves the read
	// domain's registered view untouched until its own edges run.
	b.RstWr = true
	f.WriteEdge()
	b.RstWr = false
	assert.False(t, b.Full)

	b.RstRd = true
	f.ReadEdge()
	b.RstRd = false
	assert.True(t, b.Empty)
}

func TestBus_SamplesArePreEdge(t *testing.T) {
	b := NewBus()
	f, err := NewFIFO(b, 1)
	require.NoError(t, err)

	// The edge that fills the FIFO: the snapshot shows full=false (the
	// value that gated acceptance), the live flag shows full=true.
	b.Wr = true
	b.DataIn = 0x42
	f.WriteEdge()
	b.Wr = false

	assert.False(t, b.WriteSample().Full)
	assert.True(t, b.WriteSample().Wr)
	assert.Equal(t, byte(0x42), b.WriteSample().DataIn)
	assert.True(t, b.Full)
}
