// Package harness runs verification scenarios against the dual-clock FIFO
// bench and validates the observed transfer trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: basic_write_read
//	description: "Write four bytes, read them back in order"
//	config:
//	  depth: 8
//	flow:
//	  - write: { values: [0x11, 0x22, 0x33, 0x44] }
//	  - wait:  { domain: read, edges: 10 }
//	  - read:  { count: 4 }
//	assertions:
//	  - type: read_sequence
//	    values: [0x11, 0x22, 0x33, 0x44]
//
// Flow steps: write (enqueue write transactions), read (enqueue read
// transactions), wait (advance one domain a number of edges), reset
// (drain the sequencer, then run the reset coordinator).
//
// # Assertion Types
//
//   - read_sequence: observed read data equals the given values, in order
//   - event_count: a kind appears exactly N times in the trace
//   - flag_state: a device flag (empty/full) has the given final value
//   - no_pending: the reference queue is empty at the end of the run
//
// The scoreboard verdict (no data mismatch, no protocol violation) is
// enforced on every run in addition to the listed assertions.
//
// # Deterministic Execution
//
// A scenario runs on a fresh bench with the cooperative scheduler, so the
// event trace is identical across runs and suitable for golden snapshot
// comparison (see RunWithGolden).
package harness
