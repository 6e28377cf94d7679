// Package tb implements the verification testbench for the dual-clock FIFO:
// transaction modeling, sequencing, pin-level driving, dual-domain passive
// monitoring, and the scoreboard reference model.
//
// Data flow:
//
//	Sequencer → Transaction → Driver → device pins
//	                                     │
//	              write Monitor ─────────┤ (pin sampling, per domain)
//	              read Monitor ──────────┘
//	                    │
//	              EventQueue (single ordered merge of both domains)
//	                    │
//	              Scoreboard → verdict
//
// The two monitors are independently timed producers; the scoreboard is the
// single consumer. Correctness never depends on pairing events across
// domains by time: the device is a single ordered queue, so write-arrival
// order and read-arrival order are two projections of one total order, and
// the scoreboard checks exactly that.
//
// Every component receives its collaborators (bus, domains, queue) at
// construction. There is no ambient device handle.
package tb
