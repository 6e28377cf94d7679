package tb

import (
	"log/slog"

	"github.com/openvtb/fifovh/internal/dut"
	"github.com/openvtb/fifovh/internal/sim"
)

// DefaultMaxWaitEdges bounds every readiness poll. An unbounded
// while-not-ready loop is a latent hang; exceeding the bound is a hard
// failure (ErrCodeWaitTimeout).
const DefaultMaxWaitEdges = 1000

// Driver consumes transactions from the Sequencer in one continuous loop
// and translates each into the clocked handshake against the device:
//
//   - Write: wait write-domain edges until full is deasserted, present the
//     payload and assert wr for exactly one edge, then deassert.
//   - Read: wait read-domain edges until empty is deasserted, assert rd for
//     exactly one edge, then deassert.
//
// The Driver never inspects data_out; observation belongs to the monitors.
// Because the loop is single-threaded across both kinds, writes and reads
// from one sequencer stream interleave at transaction granularity only.
// Scenarios wanting truly concurrent write/read traffic run two driver
// loops over two sequencers, one per sub-interface.
type Driver struct {
	bus     *dut.Bus
	wrDom   *sim.Domain
	rdDom   *sim.Domain
	seqr    *Sequencer
	maxWait int
	logger  *slog.Logger
}

// NewDriver wires a driver to its bus, domains and sequencer. maxWait <= 0
// selects DefaultMaxWaitEdges.
func NewDriver(bus *dut.Bus, wrDom, rdDom *sim.Domain, seqr *Sequencer, maxWait int, logger *slog.Logger) *Driver {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitEdges
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		bus:     bus,
		wrDom:   wrDom,
		rdDom:   rdDom,
		seqr:    seqr,
		maxWait: maxWait,
		logger:  logger,
	}
}

// Run is the driver task body. It exits cleanly when the sequencer stream
// is exhausted or the scheduler tears down, and fatally on a bounded-poll
// timeout.
func (d *Driver) Run(t *sim.Task) error {
	d.logger.Debug("driver starting")

	for {
		tx, ok := d.seqr.Next()
		if !ok {
			if d.seqr.Exhausted() {
				d.logger.Debug("driver stopping: sequencer exhausted")
				return nil
			}
			// Idle: poll again after the next write-domain edge.
			if _, ok := t.WaitEdge(d.wrDom); !ok {
				return nil
			}
			continue
		}

		d.logger.Debug("driving transaction", "tx", tx.String())

		var err error
		switch tx.Kind {
		case KindWrite:
			err = d.driveWrite(t, tx.Payload)
		case KindRead:
			err = d.driveRead(t)
		default:
			// NewWrite/NewRead make this unreachable; keep the check so a
			// hand-rolled Transaction fails loudly.
			panic("tb: invalid transaction kind in driver")
		}
		if err != nil {
			return err
		}

		if err := d.seqr.Complete(tx); err != nil {
			return err
		}
	}
}

// driveWrite performs the write-domain handshake for one payload byte.
func (d *Driver) driveWrite(t *sim.Task, payload byte) error {
	for waited := 0; d.bus.Full; waited++ {
		if waited >= d.maxWait {
			return NewWaitTimeout(d.wrDom.Name(), d.maxWait)
		}
		if _, ok := t.WaitEdge(d.wrDom); !ok {
			return nil
		}
	}

	d.bus.DataIn = payload
	d.bus.Wr = true
	_, ok := t.WaitEdge(d.wrDom) // write accepted at this edge
	d.bus.Wr = false
	if !ok {
		return nil
	}
	return nil
}

// driveRead performs the read-domain handshake.
func (d *Driver) driveRead(t *sim.Task) error {
	for waited := 0; d.bus.Empty; waited++ {
		if waited >= d.maxWait {
			return NewWaitTimeout(d.rdDom.Name(), d.maxWait)
		}
		if _, ok := t.WaitEdge(d.rdDom); !ok {
			return nil
		}
	}

	d.bus.Rd = true
	_, ok := t.WaitEdge(d.rdDom) // read accepted at this edge
	d.bus.Rd = false
	if !ok {
		return nil
	}
	return nil
}
