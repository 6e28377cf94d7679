package harness

import (
	"fmt"
	"log/slog"

	"github.com/openvtb/fifovh/internal/config"
	"github.com/openvtb/fifovh/internal/dut"
	"github.com/openvtb/fifovh/internal/sim"
	"github.com/openvtb/fifovh/internal/tb"
)

// Bench is one fully wired testbench instance: scheduler, clock domains,
// device, driver/sequencer, the two monitors, the merged event queue and
// the scoreboard. Every component receives its collaborators here; nothing
// is global.
type Bench struct {
	Cfg   config.Bench
	Sched *sim.Scheduler
	Bus   *dut.Bus
	FIFO  *dut.FIFO
	WrDom *sim.Domain
	RdDom *sim.Domain
	Queue *tb.EventQueue
	Board *tb.Scoreboard
	Seqr  *tb.Sequencer
	Drv   *tb.Driver
	Reset *tb.ResetCoordinator

	logger *slog.Logger
}

// NewBench builds a fresh bench from cfg. Each scenario gets its own bench
// for isolation.
func NewBench(cfg config.Bench, logger *slog.Logger) (*Bench, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sched := sim.New(
		sim.WithEdgeBudget(cfg.EdgeBudget),
		sim.WithLogger(logger),
	)

	bus := dut.NewBus()
	fifo, err := dut.NewFIFO(bus, cfg.Depth)
	if err != nil {
		return nil, fmt.Errorf("build device: %w", err)
	}

	wrDom, err := sched.NewDomain("clk_wr", cfg.WrPeriod, 0, fifo.WriteEdge)
	if err != nil {
		return nil, fmt.Errorf("build write domain: %w", err)
	}
	rdDom, err := sched.NewDomain("clk_rd", cfg.RdPeriod, 0, fifo.ReadEdge)
	if err != nil {
		return nil, fmt.Errorf("build read domain: %w", err)
	}

	queue := tb.NewEventQueue()
	seqr := tb.NewSequencer()

	return &Bench{
		Cfg:    cfg,
		Sched:  sched,
		Bus:    bus,
		FIFO:   fifo,
		WrDom:  wrDom,
		RdDom:  rdDom,
		Queue:  queue,
		Board:  tb.NewScoreboard(queue, logger),
		Seqr:   seqr,
		Drv:    tb.NewDriver(bus, wrDom, rdDom, seqr, cfg.MaxWaitEdges, logger),
		Reset:  tb.NewResetCoordinator(bus, wrDom, rdDom, cfg.ResetEdges, cfg.SettleEdges, queue, logger),
		logger: logger,
	}, nil
}

// Run spawns the monitors and the driver as daemons, runs body as the main
// task, then drains the scoreboard. It returns the verdict, the full event
// trace, and any task error (driver timeout, scenario failure, exhausted
// edge budget).
func (b *Bench) Run(body sim.Func) (tb.Verdict, []tb.Event, error) {
	b.Sched.Go("monitor_wr", tb.NewWriteMonitor(b.Bus, b.WrDom, b.Queue, b.logger).Run)
	b.Sched.Go("monitor_rd", tb.NewReadMonitor(b.Bus, b.RdDom, b.Queue, b.logger).Run)
	b.Sched.Go("driver", b.Drv.Run)
	b.Sched.Main("scenario", body)

	go b.Board.Run()

	err := b.Sched.Run()

	b.Queue.Close()
	<-b.Board.Done()

	return b.Board.Verdict(), b.Board.Trace(), err
}

// WaitDrained polls at write-domain edge granularity until everything
// enqueued on the sequencer has completed. The poll is bounded by the
// configured wait budget; exceeding it is a hard failure.
func (b *Bench) WaitDrained(t *sim.Task) error {
	for waited := 0; !b.Seqr.Drained(); waited++ {
		if waited >= b.Cfg.MaxWaitEdges {
			return tb.NewWaitTimeout(b.WrDom.Name(), b.Cfg.MaxWaitEdges)
		}
		if _, ok := t.WaitEdge(b.WrDom); !ok {
			return nil
		}
	}
	return nil
}
