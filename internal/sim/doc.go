// Package sim implements the cooperative edge-driven scheduler the harness
// runs on.
//
// The scheduler is the shared scheduling primitive for every logical task in
// a bench: clock generation, transaction driving, passive monitoring, and
// scenario bodies. It provides virtual clock domains with independent periods
// and phases, and advances them in virtual-time order.
//
// ARCHITECTURE:
//
// Single-Runner Cooperative Loop:
// Exactly one task executes at any instant. The scheduler resumes a task,
// the task runs until its next suspension point, and control returns to the
// scheduler. Suspension points are clock edges only (Task.WaitEdge). This
// ensures:
//   - Deterministic interleaving (runnable tasks resume in FIFO order)
//   - All tasks observing edge N of a domain see the same settled pin values
//   - No data races on shared pins despite multiple logical tasks
//
// Edge Processing Flow:
//  1. All runnable tasks execute until suspended on an edge (or finished)
//  2. The scheduler picks the domain with the earliest next edge time
//     (ties resolved by domain registration order)
//  3. The domain's edge hook runs (device clocked update and pin latching)
//  4. Tasks waiting on that domain become runnable, carrying the edge
//
// Across domains no relative ordering is guaranteed beyond virtual time;
// within one domain edge indexes are strictly monotonic and every waiting
// task observes every edge it awaits. This mirrors the dual-clock device
// under test: the two domains are logically asynchronous.
//
// Teardown:
// When the main task finishes (or the edge budget is exhausted) the
// scheduler stops delivering edges. Pending and future WaitEdge calls
// return ok=false, and daemon loops are expected to unwind promptly. There
// is no forced preemption mid-edge.
package sim
