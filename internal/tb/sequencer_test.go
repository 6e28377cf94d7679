package tb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer_DeliversInOrder(t *testing.T) {
	s := NewSequencer()
	s.Enqueue(NewWrite(0x11), NewWrite(0x22), NewRead())

	tx, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, NewWrite(0x11), tx)
	require.NoError(t, s.Complete(tx))

	tx, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, NewWrite(0x22), tx)
	require.NoError(t, s.Complete(tx))

	tx, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, KindRead, tx.Kind)
	require.NoError(t, s.Complete(tx))

	assert.Equal(t, 3, s.Completed())
}

func TestSequencer_NextEmptyReturnsFalse(t *testing.T) {
	s := NewSequencer()
	_, ok := s.Next()
	assert.False(t, ok)
	assert.False(t, s.Exhausted(), "open stream is not exhausted, only idle")
}

func TestSequencer_NextPanicsWithTransactionInFlight(t *testing.T) {
	s := NewSequencer()
	s.Enqueue(NewWrite(0x01), NewWrite(0x02))

	_, ok := s.Next()
	require.True(t, ok)

	assert.Panics(t, func() { s.Next() })
}

func TestSequencer_CompleteChecksIdentity(t *testing.T) {
	s := NewSequencer()

	err := s.Complete(NewRead())
	require.Error(t, err, "complete with nothing in flight")

	s.Enqueue(NewWrite(0xAA))
	tx, ok := s.Next()
	require.True(t, ok)

	err = s.Complete(NewWrite(0xBB))
	require.Error(t, err, "complete with the wrong transaction")

	require.NoError(t, s.Complete(tx))
}

func TestSequencer_ExhaustedAndDrained(t *testing.T) {
	s := NewSequencer()
	s.Enqueue(NewWrite(0x01))

	assert.False(t, s.Drained())
	assert.False(t, s.Exhausted())

	tx, _ := s.Next()
	assert.False(t, s.Drained(), "in-flight transaction is not drained")

	require.NoError(t, s.Complete(tx))
	assert.True(t, s.Drained())
	assert.False(t, s.Exhausted(), "stream still open")

	s.Close()
	assert.True(t, s.Exhausted())
}

func TestTransaction_String(t *testing.T) {
	assert.Equal(t, "write(0xab)", NewWrite(0xAB).String())
	assert.Equal(t, "read", NewRead().String())
	assert.Equal(t, "reset", KindReset.String())
}
