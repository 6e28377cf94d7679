package tb

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runScoreboard feeds events through a queue into a scoreboard and returns
// the drained verdict.
func runScoreboard(t *testing.T, events ...Event) (*Scoreboard, Verdict) {
	t.Helper()

	q := NewEventQueue()
	sb := NewScoreboard(q, testLogger())
	go sb.Run()

	for _, ev := range events {
		q.Enqueue(ev)
	}
	q.Close()
	<-sb.Done()

	return sb, sb.Verdict()
}

func TestScoreboard_MatchingRun(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0x11},
		Event{Kind: KindWrite, Data: 0x22},
		Event{Kind: KindRead, Data: 0x11},
		Event{Kind: KindRead, Data: 0x22},
	)

	assert.True(t, v.Pass)
	assert.Equal(t, 2, v.Writes)
	assert.Equal(t, 2, v.Reads)
	assert.Equal(t, 0, v.Pending)
	assert.Empty(t, v.Mismatches)
	assert.Nil(t, v.Fatal)
}

func TestScoreboard_DataMismatchAccumulates(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0x11},
		Event{Kind: KindWrite, Data: 0x22},
		Event{Kind: KindRead, Data: 0xFF}, // corrupted
		Event{Kind: KindRead, Data: 0x22}, // still checked
	)

	assert.False(t, v.Pass)
	require.Len(t, v.Mismatches, 1)
	assert.Equal(t, 0, v.Mismatches[0].Index)
	assert.Equal(t, byte(0x11), v.Mismatches[0].Expected)
	assert.Equal(t, byte(0xFF), v.Mismatches[0].Observed)
	assert.Nil(t, v.Fatal)
	assert.Equal(t, 2, v.Reads)
}

func TestScoreboard_ReadWithNoPendingWriteIsFatal(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindRead, Data: 0x00},
		Event{Kind: KindRead, Data: 0x01},
	)

	assert.False(t, v.Pass)
	require.NotNil(t, v.Fatal)
	assert.Equal(t, ErrCodeProtocolViolation, v.Fatal.Code)
	assert.Equal(t, 0, v.Fatal.Index)
	// Reads are still counted after the fatal violation, but no longer
	// checked against the reference queue.
	assert.Equal(t, 2, v.Reads)
	assert.Empty(t, v.Mismatches)
}

func TestScoreboard_ResetClearsReferenceQueue(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0xAA},
		Event{Kind: KindWrite, Data: 0xBB},
		Event{Kind: KindReset},
	)

	assert.True(t, v.Pass)
	assert.Equal(t, 2, v.Writes)
	assert.Equal(t, 0, v.Pending)
}

func TestScoreboard_ReadAfterResetIsViolation(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0xAA},
		Event{Kind: KindReset},
		Event{Kind: KindRead, Data: 0xAA},
	)

	assert.False(t, v.Pass)
	require.NotNil(t, v.Fatal)
	assert.Equal(t, ErrCodeProtocolViolation, v.Fatal.Code)
}

func TestScoreboard_TracePreservesArrivalOrder(t *testing.T) {
	sb, _ := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0x01},
		Event{Kind: KindRead, Data: 0x01},
		Event{Kind: KindWrite, Data: 0x02},
	)

	trace := sb.Trace()
	require.Len(t, trace, 3)
	assert.Equal(t, []Kind{KindWrite, KindRead, KindWrite},
		[]Kind{trace[0].Kind, trace[1].Kind, trace[2].Kind})
	assert.Equal(t, int64(1), trace[0].Seq)
	assert.Equal(t, int64(3), trace[2].Seq)
}

func TestScoreboard_PendingCountsUnreadWrites(t *testing.T) {
	_, v := runScoreboard(t,
		Event{Kind: KindWrite, Data: 0x01},
		Event{Kind: KindWrite, Data: 0x02},
		Event{Kind: KindRead, Data: 0x01},
	)

	assert.True(t, v.Pass)
	assert.Equal(t, 1, v.Pending)
}
