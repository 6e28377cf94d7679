package dut

import "fmt"

// FIFO is a behavioral dual-clock FIFO. It models the externally visible
// contract of an async FIFO design: per-domain pointers, two-stage pointer
// synchronizers into the opposite domain, registered flags and registered
// read data. Capacity is the configured depth.
type FIFO struct {
	bus   *Bus
	depth uint32
	mem   []byte

	// Write domain state.
	wrPtr   uint32    // free-running write pointer
	rdPtrWr [2]uint32 // rdPtr crossed into the write domain (2-flop sync)
	full    bool

	// Read domain state.
	rdPtr   uint32    // free-running read pointer
	wrPtrRd [2]uint32 // wrPtr crossed into the read domain (2-flop sync)
	empty   bool
	dataOut byte
}

// NewFIFO builds a FIFO of the given depth attached to bus.
func NewFIFO(bus *Bus, depth int) (*FIFO, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("fifo depth must be positive, got %d", depth)
	}
	return &FIFO{
		bus:   bus,
		depth: uint32(depth),
		mem:   make([]byte, depth),
		empty: true,
	}, nil
}

// Depth returns the logical capacity.
func (f *FIFO) Depth() int { return int(f.depth) }

// WriteEdge is the clocked update for one clk_wr edge. It latches the
// pre-edge pin snapshot for monitors, then applies write-domain logic:
// accept the write if wr was asserted and full deasserted at the edge,
// advance the read-pointer synchronizer, and register full.
func (f *FIFO) WriteEdge() {
	s := f.bus.latch()
	f.bus.wrSample = s

	if s.RstWr {
		f.wrPtr = 0
		f.rdPtrWr = [2]uint32{}
		f.full = false
		f.bus.Full = false
		return
	}

	if s.Wr && !f.full {
		f.mem[f.wrPtr%f.depth] = s.DataIn
		f.wrPtr++
	}

	// Synchronizer shift: the write domain sees rdPtr two edges late.
	f.rdPtrWr[1] = f.rdPtrWr[0]
	f.rdPtrWr[0] = f.rdPtr

	f.full = f.wrPtr-f.rdPtrWr[1] >= f.depth
	f.bus.Full = f.full
}

// ReadEdge is the clocked update for one clk_rd edge. An accepted read
// request (rd asserted, empty deasserted at the edge) pops the head into
// the data_out register, which is why read data is only valid one edge
// after the request.
func (f *FIFO) ReadEdge() {
	s := f.bus.latch()
	f.bus.rdSample = s

	if s.RstRd {
		f.rdPtr = 0
		f.wrPtrRd = [2]uint32{}
		f.empty = true
		f.dataOut = 0
		f.bus.Empty = true
		f.bus.DataOut = 0
		return
	}

	if s.Rd && !f.empty {
		f.dataOut = f.mem[f.rdPtr%f.depth]
		f.rdPtr++
		f.bus.DataOut = f.dataOut
	}

	// Synchronizer shift: the read domain sees wrPtr two edges late.
	f.wrPtrRd[1] = f.wrPtrRd[0]
	f.wrPtrRd[0] = f.wrPtr

	f.empty = f.rdPtr == f.wrPtrRd[1]
	f.bus.Empty = f.empty
}
