package tb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openvtb/fifovh/internal/dut"
	"github.com/openvtb/fifovh/internal/sim"
)

// testBench is the minimal wiring for pin-level tests: scheduler, bus,
// device and the two clock domains. Monitors, drivers and scoreboards are
// added per test.
type testBench struct {
	sched *sim.Scheduler
	bus   *dut.Bus
	fifo  *dut.FIFO
	wr    *sim.Domain
	rd    *sim.Domain
	queue *EventQueue
}

func newTestBench(t *testing.T, depth int) *testBench {
	t.Helper()

	sched := sim.New(sim.WithEdgeBudget(100_000), sim.WithLogger(testLogger()))
	bus := dut.NewBus()

	fifo, err := dut.NewFIFO(bus, depth)
	require.NoError(t, err)

	wr, err := sched.NewDomain("clk_wr", 10, 0, fifo.WriteEdge)
	require.NoError(t, err)
	rd, err := sched.NewDomain("clk_rd", 14, 0, fifo.ReadEdge)
	require.NoError(t, err)

	return &testBench{
		sched: sched,
		bus:   bus,
		fifo:  fifo,
		wr:    wr,
		rd:    rd,
		queue: NewEventQueue(),
	}
}

// startMonitors spawns both monitor daemons feeding tb.queue.
func (b *testBench) startMonitors() {
	b.sched.Go("monitor_wr", NewWriteMonitor(b.bus, b.wr, b.queue, testLogger()).Run)
	b.sched.Go("monitor_rd", NewReadMonitor(b.bus, b.rd, b.queue, testLogger()).Run)
}

// drainQueue closes the queue and collects everything enqueued so far.
func (b *testBench) drainQueue() []Event {
	b.queue.Close()
	var events []Event
	for {
		ev, ok := b.queue.Dequeue()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}
