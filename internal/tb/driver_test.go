package tb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvtb/fifovh/internal/sim"
)

// waitDrained polls a sequencer at write-domain edge granularity.
func waitDrained(tk *sim.Task, b *testBench, seqrs ...*Sequencer) {
	for {
		drained := true
		for _, s := range seqrs {
			if !s.Drained() {
				drained = false
			}
		}
		if drained {
			return
		}
		if _, ok := tk.WaitEdge(b.wr); !ok {
			return
		}
	}
}

func TestDriver_SequentialWritesThenReads(t *testing.T) {
	b := newTestBench(t, 8)
	b.startMonitors()

	seqr := NewSequencer()
	payload := []byte{0x11, 0x22, 0x33, 0x44}
	for _, v := range payload {
		seqr.Enqueue(NewWrite(v))
	}
	for range payload {
		seqr.Enqueue(NewRead())
	}
	seqr.Close()

	b.sched.Go("driver", NewDriver(b.bus, b.wr, b.rd, seqr, 0, testLogger()).Run)
	b.sched.Main("scenario", func(tk *sim.Task) error {
		waitDrained(tk, b, seqr)
		tk.WaitEdges(b.wr, 4)
		tk.WaitEdges(b.rd, 4)
		return nil
	})

	require.NoError(t, b.sched.Run())

	events := b.drainQueue()
	require.Len(t, events, 8)
	for i, v := range payload {
		assert.Equal(t, KindWrite, events[i].Kind)
		assert.Equal(t, v, events[i].Data)
	}
	for i, v := range payload {
		assert.Equal(t, KindRead, events[4+i].Kind)
		assert.Equal(t, v, events[4+i].Data, "read %d", i)
	}
	assert.Equal(t, 8, seqr.Completed())
}

func TestDriver_WaitTimeoutWhenFIFOStaysFull(t *testing.T) {
	b := newTestBench(t, 1)

	seqr := NewSequencer()
	seqr.Enqueue(NewWrite(0x01), NewWrite(0x02)) // second write can never land
	seqr.Close()

	b.sched.Go("driver", NewDriver(b.bus, b.wr, b.rd, seqr, 8, testLogger()).Run)
	b.sched.Main("scenario", func(tk *sim.Task) error {
		tk.WaitEdges(b.wr, 30)
		return nil
	})

	err := b.sched.Run()
	require.Error(t, err)
	assert.True(t, IsWaitTimeout(err))
}

func TestDriver_ExitsWhenSequencerExhausted(t *testing.T) {
	b := newTestBench(t, 8)

	seqr := NewSequencer()
	seqr.Enqueue(NewWrite(0xAB))
	seqr.Close()

	driver := b.sched.Go("driver", NewDriver(b.bus, b.wr, b.rd, seqr, 0, testLogger()).Run)
	b.sched.Main("scenario", func(tk *sim.Task) error {
		waitDrained(tk, b, seqr)
		tk.WaitEdges(b.wr, 2)
		return nil
	})

	require.NoError(t, b.sched.Run())
	assert.True(t, driver.Done())
	assert.NoError(t, driver.Err())
}

// Two independent driver loops over two sequencers model concurrent
// write-side and read-side agents. The depth-4 device backpressures the
// writer while the reader drains, so full/empty gating is exercised from
// both sides at once.
func TestDriver_ConcurrentWriteAndReadStreams(t *testing.T) {
	b := newTestBench(t, 4)
	b.startMonitors()

	const total = 12
	wseq := NewSequencer()
	rseq := NewSequencer()
	var payload []byte
	for i := 0; i < total; i++ {
		v := byte(0xB0 + i)
		payload = append(payload, v)
		wseq.Enqueue(NewWrite(v))
		rseq.Enqueue(NewRead())
	}
	wseq.Close()
	rseq.Close()

	sb := NewScoreboard(b.queue, testLogger())
	go sb.Run()

	b.sched.Go("writer", NewDriver(b.bus, b.wr, b.rd, wseq, 0, testLogger()).Run)
	b.sched.Go("reader", NewDriver(b.bus, b.wr, b.rd, rseq, 0, testLogger()).Run)
	b.sched.Main("scenario", func(tk *sim.Task) error {
		waitDrained(tk, b, wseq, rseq)
		tk.WaitEdges(b.wr, 4)
		tk.WaitEdges(b.rd, 4)
		return nil
	})

	require.NoError(t, b.sched.Run())
	b.queue.Close()
	<-sb.Done()

	v := sb.Verdict()
	assert.True(t, v.Pass, "mismatches: %v, fatal: %v", v.Mismatches, v.Fatal)
	assert.Equal(t, total, v.Writes)
	assert.Equal(t, total, v.Reads)
	assert.Equal(t, 0, v.Pending)

	// FIFO order holds even under concurrent streams.
	var reads []byte
	for _, ev := range sb.Trace() {
		if ev.Kind == KindRead {
			reads = append(reads, ev.Data)
		}
	}
	assert.Equal(t, payload, reads)
}
