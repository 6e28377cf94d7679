package sim

import "fmt"

// Domain is one virtual clock domain: an unbounded, ordered sequence of
// edges at a fixed period. Two domains created with unrelated periods have
// no fixed phase relationship beyond virtual-time ordering, which is the
// property the device under test is built around.
//
// A Domain is owned by the Scheduler that created it. All mutation happens
// on the scheduler goroutine or on the currently-running task, never
// concurrently.
type Domain struct {
	name    string
	period  uint64
	next    uint64 // virtual time of the next edge
	edges   uint64 // count of edges fired so far
	hook    func() // clocked update, runs before waiters resume
	waiters []*Task
}

// Edge identifies one delivered clock edge.
type Edge struct {
	// Index is the 1-based edge count within the domain. Strictly
	// monotonically increasing; every waiting task observes every edge.
	Index uint64

	// Time is the virtual timestamp the edge fired at.
	Time uint64
}

// NewDomain registers a clock domain with the scheduler.
//
// period is the virtual-time distance between edges and must be positive.
// phase delays the first edge: edges fire at phase+period, phase+2*period, ...
//
// hook, if non-nil, runs at every edge BEFORE waiting tasks resume. Benches
// use it for the device's clocked update and pre-edge pin latching, so that
// every task resumed for the edge observes the same settled values.
func (s *Scheduler) NewDomain(name string, period, phase uint64, hook func()) (*Domain, error) {
	if period == 0 {
		return nil, fmt.Errorf("domain %s: period must be positive", name)
	}
	d := &Domain{
		name:   name,
		period: period,
		next:   phase + period,
		hook:   hook,
	}
	s.domains = append(s.domains, d)
	return d, nil
}

// Name returns the domain name (e.g. "clk_wr").
func (d *Domain) Name() string { return d.name }

// Period returns the virtual-time distance between edges.
func (d *Domain) Period() uint64 { return d.period }

// Edges returns the number of edges fired so far.
func (d *Domain) Edges() uint64 { return d.edges }
