// Package dut holds the pin-level surface of the device under test and a
// behavioral dual-clock FIFO model behind it.
//
// The harness talks to the device ONLY through the Bus pins (rst_wr, wr,
// data_in, full on the write side; rst_rd, rd, data_out, empty on the read
// side). The FIFO model is a stand-in for real silicon: it keeps
// free-running pointers per domain, crosses each pointer into the opposite
// domain through a two-stage synchronizer, and registers its outputs on
// clock edges. That gives it the two properties the harness exists to
// verify against:
//
//   - full/empty settle a few edges after opposite-side activity, never in
//     the same instant
//   - data_out is valid exactly one edge after an accepted read request
//
// Nothing in the harness may reach past the Bus into FIFO internals.
package dut
