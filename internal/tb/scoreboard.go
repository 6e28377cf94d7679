package tb

import "log/slog"

// Scoreboard consumes the merged event stream and checks it against a
// reference model of correct FIFO behavior: an ordered queue of pending
// writes.
//
//   - Write event: append its data to the tail of the reference queue.
//   - Read event: if the reference queue is empty, the device completed a
//     read the model never expected — a fatal protocol violation.
//     Otherwise pop the head and compare; inequality is a data-integrity
//     mismatch, reported and accumulated so later mismatches still surface.
//   - Reset event: a verified reset clears the reference queue; pre-reset
//     writes must never be observable afterwards.
//
// The scoreboard never pairs events by timestamp. Write-arrival order and
// read-arrival order are two independently-timed projections of the
// device's single total order, and the reference queue checks exactly that
// invariant.
type Scoreboard struct {
	queue  *EventQueue
	logger *slog.Logger
	done   chan struct{}

	// State below is owned by the consumer goroutine until done closes;
	// Verdict/Trace must only be called after Done.
	expected   []byte
	trace      []Event
	mismatches []*CheckError
	fatal      *CheckError
	writes     int
	reads      int
}

// Verdict is the outcome of a run, read after the scoreboard drains.
type Verdict struct {
	// Pass is true when no mismatch and no fatal violation was recorded.
	Pass bool

	// Writes and Reads count accepted transfers since the start of the run.
	Writes int
	Reads  int

	// Pending is the reference queue length at the end of the run: writes
	// accepted and not yet read back (or cleared by reset).
	Pending int

	// Mismatches holds every accumulated data-integrity failure.
	Mismatches []*CheckError

	// Fatal holds the first protocol violation, if any.
	Fatal *CheckError
}

// NewScoreboard creates a scoreboard consuming queue.
func NewScoreboard(queue *EventQueue, logger *slog.Logger) *Scoreboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scoreboard{
		queue:  queue,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run consumes events until the queue closes and drains. Run it on its own
// goroutine; it suspends only on the queue, never on clock edges.
func (sb *Scoreboard) Run() {
	defer close(sb.done)

	for {
		ev, ok := sb.queue.Dequeue()
		if !ok {
			sb.logger.Debug("scoreboard stopping: queue closed",
				"writes", sb.writes,
				"reads", sb.reads,
				"pending", len(sb.expected),
			)
			return
		}
		sb.process(ev)
	}
}

// Done closes once the scoreboard has drained a closed queue.
func (sb *Scoreboard) Done() <-chan struct{} { return sb.done }

func (sb *Scoreboard) process(ev Event) {
	sb.trace = append(sb.trace, ev)

	switch ev.Kind {
	case KindWrite:
		sb.writes++
		sb.expected = append(sb.expected, ev.Data)

	case KindRead:
		index := sb.reads
		sb.reads++

		if sb.fatal != nil {
			// Already in fatal state; keep counting but stop checking.
			return
		}
		if len(sb.expected) == 0 {
			sb.fatal = NewProtocolViolation(index)
			sb.logger.Error("protocol violation",
				"index", index,
				"observed", ev.Data,
			)
			return
		}

		want := sb.expected[0]
		sb.expected = sb.expected[1:]
		if want != ev.Data {
			mm := NewDataMismatch(index, want, ev.Data)
			sb.mismatches = append(sb.mismatches, mm)
			sb.logger.Error("data mismatch",
				"index", index,
				"expected", want,
				"observed", ev.Data,
			)
		}

	case KindReset:
		if n := len(sb.expected); n > 0 {
			sb.logger.Info("reset cleared pending writes", "dropped", n)
		}
		sb.expected = sb.expected[:0]
	}
}

// Verdict returns the run outcome. Call only after Done.
func (sb *Scoreboard) Verdict() Verdict {
	return Verdict{
		Pass:       sb.fatal == nil && len(sb.mismatches) == 0,
		Writes:     sb.writes,
		Reads:      sb.reads,
		Pending:    len(sb.expected),
		Mismatches: sb.mismatches,
		Fatal:      sb.fatal,
	}
}

// Trace returns every consumed event in arrival order. Call only after Done.
func (sb *Scoreboard) Trace() []Event { return sb.trace }
