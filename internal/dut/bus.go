package dut

// Bus is the pin bundle shared between the harness and the device.
//
// Harness-driven pins: RstWr, RstRd, Wr, Rd, DataIn.
// Device-driven pins: Full, Empty, DataOut.
//
// Ownership convention (enforced by the cooperative scheduler, one task at
// a time): only the write-domain driver mutates Wr/DataIn, only the
// read-domain driver mutates Rd, and only the device mutates Full, Empty
// and DataOut. Monitors have read-only access.
type Bus struct {
	// Write-side interface (clk_wr domain).
	RstWr  bool // rst_wr: domain reset, active high
	Wr     bool // wr: write strobe, one edge pulse
	DataIn byte // data_in: write payload, valid while Wr asserted
	Full   bool // full: write-side backpressure indicator

	// Read-side interface (clk_rd domain).
	RstRd   bool // rst_rd: domain reset, active high
	Rd      bool // rd: read strobe, one edge pulse
	DataOut byte // data_out: read payload, valid one edge after accepted read
	Empty   bool // empty: read-side availability indicator

	// Pre-edge snapshots, latched by the device's edge hooks before any
	// clocked update. Monitors sample these: they are the values that
	// actually gated acceptance at the edge.
	wrSample Sample
	rdSample Sample
}

// Sample is a settled snapshot of all pins as they stood when an edge
// fired, before the device's clocked update for that edge.
type Sample struct {
	RstWr, RstRd bool
	Wr, Rd       bool
	DataIn       byte
	DataOut      byte
	Full, Empty  bool
}

// NewBus returns a bus in its quiescent state. Empty reads true before the
// first edge so that a pre-reset poll does not observe phantom data.
func NewBus() *Bus {
	return &Bus{Empty: true}
}

// latch captures the current pin values.
func (b *Bus) latch() Sample {
	return Sample{
		RstWr:   b.RstWr,
		RstRd:   b.RstRd,
		Wr:      b.Wr,
		Rd:      b.Rd,
		DataIn:  b.DataIn,
		DataOut: b.DataOut,
		Full:    b.Full,
		Empty:   b.Empty,
	}
}

// WriteSample returns the pre-edge snapshot taken at the most recent
// write-domain edge.
func (b *Bus) WriteSample() Sample { return b.wrSample }

// ReadSample returns the pre-edge snapshot taken at the most recent
// read-domain edge.
func (b *Bus) ReadSample() Sample { return b.rdSample }
