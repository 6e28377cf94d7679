package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/openvtb/fifovh/internal/config"
	"github.com/openvtb/fifovh/internal/sim"
	"github.com/openvtb/fifovh/internal/tb"
)

// flushEdges is how many extra edges each domain gets after the sequencer
// drains, so trailing monitor samples (the one-edge read latency in
// particular) land in the trace before teardown.
const flushEdges = 4

// Runner executes scenarios. The zero value is not usable; use NewRunner.
type Runner struct {
	base   config.Bench
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBaseConfig replaces the schema defaults as the base every scenario
// override is applied on top of.
func WithBaseConfig(cfg config.Bench) RunnerOption {
	return func(r *Runner) { r.base = cfg }
}

// WithRunnerLogger sets the structured logger threaded through the bench.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner builds a Runner with schema-default configuration and a
// discarding logger.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		base:   config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one scenario on a dedicated bench and returns its Result.
// An error is returned only for setup failures (bad configuration); check
// failures, timeouts and assertion failures are reported through the
// Result so a caller can render all of them.
func (r *Runner) Run(sc *Scenario) (*Result, error) {
	cfg := r.base
	if sc.Config != nil {
		cfg = sc.Config.Apply(cfg)
	}

	logger := r.logger.With("scenario", CanonicalName(sc.Name))

	b, err := NewBench(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	verdict, events, runErr := b.Run(func(t *sim.Task) error {
		return r.execute(t, b, sc)
	})

	result := NewResult()
	result.Trace = traceFromEvents(events)
	result.Writes = verdict.Writes
	result.Reads = verdict.Reads
	result.Pending = verdict.Pending

	if runErr != nil {
		result.AddError(runErr.Error())
	}
	if verdict.Fatal != nil {
		result.AddError(verdict.Fatal.Error())
	}
	for _, m := range verdict.Mismatches {
		result.AddError(m.Error())
	}
	for _, msg := range EvaluateAssertions(result, sc.Assertions, verdict, b.Bus) {
		result.AddError(msg)
	}

	result.Pass = len(result.Errors) == 0
	return result, nil
}

// execute is the scenario's main task body. It applies the initial reset,
// walks the flow, then drains and flushes so every in-flight transaction
// is observed before the scheduler stops.
func (r *Runner) execute(t *sim.Task, b *Bench, sc *Scenario) error {
	if err := b.Reset.Apply(t); err != nil {
		return err
	}

	for i, step := range sc.Flow {
		switch {
		case step.Write != nil:
			for _, v := range step.Write.Values {
				b.Seqr.Enqueue(tb.NewWrite(byte(v)))
			}
		case step.Read != nil:
			for n := 0; n < step.Read.Count; n++ {
				b.Seqr.Enqueue(tb.NewRead())
			}
		case step.Wait != nil:
			dom := b.WrDom
			if step.Wait.Domain == "read" {
				dom = b.RdDom
			}
			if !t.WaitEdges(dom, step.Wait.Edges) {
				return nil
			}
		case step.Reset != nil:
			if err := b.WaitDrained(t); err != nil {
				return err
			}
			if err := b.Reset.Apply(t); err != nil {
				return err
			}
		default:
			return fmt.Errorf("flow step %d: empty step", i)
		}
	}

	b.Seqr.Close()
	if err := b.WaitDrained(t); err != nil {
		return err
	}

	t.WaitEdges(b.WrDom, flushEdges)
	t.WaitEdges(b.RdDom, flushEdges)
	return nil
}
