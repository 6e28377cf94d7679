package tb

import (
	"log/slog"

	"github.com/openvtb/fifovh/internal/dut"
	"github.com/openvtb/fifovh/internal/sim"
)

// WriteMonitor passively observes the write-side interface on every clk_wr
// edge. A transfer is accepted when wr was asserted and full deasserted at
// the edge; the monitor then emits a write event carrying the sampled
// data_in. This is a same-edge, zero-latency observation. Observation is
// suppressed while rst_wr is asserted.
type WriteMonitor struct {
	bus    *dut.Bus
	dom    *sim.Domain
	out    *EventQueue
	logger *slog.Logger
}

// NewWriteMonitor wires a write-side observer.
func NewWriteMonitor(bus *dut.Bus, dom *sim.Domain, out *EventQueue, logger *slog.Logger) *WriteMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteMonitor{bus: bus, dom: dom, out: out, logger: logger}
}

// Run is the monitor task body.
func (m *WriteMonitor) Run(t *sim.Task) error {
	for {
		if _, ok := t.WaitEdge(m.dom); !ok {
			return nil
		}
		s := m.bus.WriteSample()

		if s.RstWr {
			continue
		}
		if s.Wr && !s.Full {
			m.logger.Debug("observed write", "data", s.DataIn)
			m.out.Enqueue(Event{Kind: KindWrite, Data: s.DataIn})
		}
	}
}

// ReadMonitor passively observes the read-side interface on every clk_rd
// edge. The device is pipelined: the rd strobe and empty flag at edge N
// decide whether a transfer happens, but data_out only holds the value at
// edge N+1. The monitor bridges that gap with one edge of alignment state:
//
//	edge N:   record (rd, empty) as the pending request
//	edge N+1: if a request was pending (rd asserted, empty deasserted at N),
//	          sample data_out now and emit the read event
//
// Sampling data_out at the same edge as the request would read stale or
// not-yet-valid data. Reset forces the alignment state to "no pending
// request".
type ReadMonitor struct {
	bus    *dut.Bus
	dom    *sim.Domain
	out    *EventQueue
	logger *slog.Logger
}

// NewReadMonitor wires a read-side observer.
func NewReadMonitor(bus *dut.Bus, dom *sim.Domain, out *EventQueue, logger *slog.Logger) *ReadMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadMonitor{bus: bus, dom: dom, out: out, logger: logger}
}

// Run is the monitor task body.
func (m *ReadMonitor) Run(t *sim.Task) error {
	prevRd := false
	prevEmpty := true

	for {
		if _, ok := t.WaitEdge(m.dom); !ok {
			return nil
		}
		s := m.bus.ReadSample()

		if s.RstRd {
			prevRd = false
			prevEmpty = true
			continue
		}

		if prevRd && !prevEmpty {
			m.logger.Debug("observed read", "data", s.DataOut)
			m.out.Enqueue(Event{Kind: KindRead, Data: s.DataOut})
		}

		prevRd = s.Rd
		prevEmpty = s.Empty
	}
}
