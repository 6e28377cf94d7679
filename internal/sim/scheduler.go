package sim

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultEdgeBudget bounds the total number of edges a scheduler will fire.
// This converts an accidental unbounded poll (a stuck readiness loop, a
// scenario that never finishes) into a hard failure instead of a hang.
const DefaultEdgeBudget = 1_000_000

// ErrEdgeBudget is returned (wrapped) by Run when the edge budget is
// exhausted before the main task finishes.
var ErrEdgeBudget = errors.New("edge budget exhausted")

// Scheduler runs a set of cooperative tasks against virtual clock domains.
// See the package documentation for the scheduling model.
//
// Thread-safety model:
//   - NewDomain, Go, Main: call before Run, or from a running task
//   - Run: must be called from exactly one goroutine, exactly once
//   - Task handles: Done/Err are safe to read from other tasks
type Scheduler struct {
	domains  []*Domain
	tasks    []*Task
	runnable []*Task
	main     *Task

	yield chan struct{}

	now        uint64
	edgesFired uint64
	budget     uint64

	stopping  bool
	budgetHit bool

	logger *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithEdgeBudget overrides DefaultEdgeBudget. A budget of 0 disables the
// bound (not recommended outside focused unit tests).
func WithEdgeBudget(n uint64) Option {
	return func(s *Scheduler) { s.budget = n }
}

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		yield:  make(chan struct{}),
		budget: DefaultEdgeBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Task is the handle to one logical task. The task function receives its
// own handle and suspends through it; other tasks may poll Done at edge
// granularity to join.
type Task struct {
	name    string
	s       *Scheduler
	resume  chan edgeMsg
	pending Edge
	done    bool
	err     error
}

type edgeMsg struct {
	edge Edge
	ok   bool
}

// Func is a task body. Returning a non-nil error fails the whole run.
type Func func(*Task) error

// Go spawns a daemon task. Daemons run until their function returns; when
// the main task finishes they are resumed with ok=false and must unwind.
func (s *Scheduler) Go(name string, fn Func) *Task {
	return s.spawn(name, fn, false)
}

// Main spawns the task whose completion terminates the run. At most one
// main task may be registered.
func (s *Scheduler) Main(name string, fn Func) *Task {
	if s.main != nil {
		panic("sim: main task already registered")
	}
	return s.spawn(name, fn, true)
}

func (s *Scheduler) spawn(name string, fn Func, main bool) *Task {
	t := &Task{name: name, s: s, resume: make(chan edgeMsg)}
	s.tasks = append(s.tasks, t)
	s.runnable = append(s.runnable, t)
	if main {
		s.main = t
	}
	go func() {
		msg := <-t.resume
		if msg.ok {
			t.err = fn(t)
		}
		t.done = true
		s.yield <- struct{}{}
	}()
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Done reports whether the task function has returned. Safe to poll from
// other tasks (the scheduler serializes all task execution).
func (t *Task) Done() bool { return t.done }

// Err returns the task's error. Only meaningful once Done reports true.
func (t *Task) Err() error { return t.err }

// WaitEdge suspends the calling task until the next edge of d fires.
// It returns ok=false when the scheduler is tearing down; the task must
// then unwind without touching pins further.
func (t *Task) WaitEdge(d *Domain) (Edge, bool) {
	if t.s.stopping {
		return Edge{}, false
	}
	d.waiters = append(d.waiters, t)
	t.s.yield <- struct{}{}
	msg := <-t.resume
	return msg.edge, msg.ok
}

// WaitEdges suspends for n consecutive edges of d. Returns false if the
// scheduler tore down before all n edges were observed.
func (t *Task) WaitEdges(d *Domain, n int) bool {
	for i := 0; i < n; i++ {
		if _, ok := t.WaitEdge(d); !ok {
			return false
		}
	}
	return true
}

// Now returns the current virtual time.
func (s *Scheduler) Now() uint64 { return s.now }

// EdgesFired returns the total number of edges fired across all domains.
func (s *Scheduler) EdgesFired() uint64 { return s.edgesFired }

// Run executes tasks until the main task finishes, every task finishes, or
// the edge budget is exhausted. It returns the joined errors of all tasks,
// plus ErrEdgeBudget (wrapped) on budget exhaustion.
//
// Must be called exactly once, from the goroutine that owns the scheduler.
func (s *Scheduler) Run() error {
	s.logger.Debug("scheduler starting",
		"domains", len(s.domains),
		"tasks", len(s.tasks),
		"budget", s.budget,
	)

	for {
		// Let every runnable task execute until its next suspension point.
		for len(s.runnable) > 0 {
			t := s.runnable[0]
			s.runnable = s.runnable[1:]
			t.resume <- edgeMsg{edge: t.pending, ok: !s.stopping}
			<-s.yield
			if s.main != nil && s.main.done && !s.stopping {
				s.logger.Debug("main task finished, stopping", "task", s.main.name)
				s.stopping = true
			}
		}

		if s.stopping {
			if s.allDone() {
				return s.collectErrors()
			}
			s.releaseWaiters()
			continue
		}

		if s.allDone() {
			return s.collectErrors()
		}

		d := s.nextDomain()
		if d == nil {
			return errors.New("sim: tasks are waiting but no clock domain is registered")
		}

		if s.budget > 0 && s.edgesFired >= s.budget {
			s.logger.Error("edge budget exhausted", "edges", s.edgesFired)
			s.budgetHit = true
			s.stopping = true
			continue
		}

		s.fireEdge(d)
	}
}

// fireEdge advances virtual time to d's next edge, runs the clocked update
// hook, and makes the domain's waiters runnable.
func (s *Scheduler) fireEdge(d *Domain) {
	s.now = d.next
	d.next += d.period
	d.edges++
	s.edgesFired++

	if d.hook != nil {
		d.hook()
	}

	edge := Edge{Index: d.edges, Time: s.now}
	for _, w := range d.waiters {
		w.pending = edge
		s.runnable = append(s.runnable, w)
	}
	d.waiters = d.waiters[:0]
}

// nextDomain picks the domain with the earliest pending edge. Ties resolve
// in registration order, which keeps runs deterministic.
func (s *Scheduler) nextDomain() *Domain {
	var best *Domain
	for _, d := range s.domains {
		if best == nil || d.next < best.next {
			best = d
		}
	}
	return best
}

// releaseWaiters resumes every edge-blocked task so it can observe the
// shutdown (WaitEdge returns ok=false) and unwind.
func (s *Scheduler) releaseWaiters() {
	for _, d := range s.domains {
		for _, w := range d.waiters {
			w.pending = Edge{}
			s.runnable = append(s.runnable, w)
		}
		d.waiters = d.waiters[:0]
	}
}

func (s *Scheduler) allDone() bool {
	for _, t := range s.tasks {
		if !t.done {
			return false
		}
	}
	return true
}

func (s *Scheduler) collectErrors() error {
	errs := make([]error, 0, len(s.tasks)+1)
	if s.budgetHit {
		errs = append(errs, fmt.Errorf("%w after %d edges", ErrEdgeBudget, s.edgesFired))
	}
	for _, t := range s.tasks {
		if t.err != nil {
			errs = append(errs, fmt.Errorf("task %s: %w", t.name, t.err))
		}
	}
	return errors.Join(errs...)
}
