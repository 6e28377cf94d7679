package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Run is one persisted scenario execution.
type Run struct {
	ID       string
	Scenario string
	Pass     bool
	Writes   int
	Reads    int
	Pending  int
	Events   []Event
	Failures []string
}

// Event is one trace entry of a persisted run, in scoreboard arrival order.
type Event struct {
	Seq  int64
	Kind string
	Data int
}

// WriteRun persists a run with its full trace and failure messages in a
// single transaction. It assigns and returns a fresh UUIDv7 run ID; IDs
// therefore sort by creation time.
func (s *Store) WriteRun(ctx context.Context, run Run) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("write run: generate id: %w", err)
	}
	runID := id.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pass, writes, reads, pending)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		runID,
		run.Scenario,
		boolToInt(run.Pass),
		run.Writes,
		run.Reads,
		run.Pending,
	)
	if err != nil {
		return "", fmt.Errorf("write run: insert run: %w", err)
	}

	for _, ev := range run.Events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (run_id, seq, kind, data)
			VALUES (?, ?, ?, ?)
		`, runID, ev.Seq, ev.Kind, ev.Data)
		if err != nil {
			return "", fmt.Errorf("write run: insert event seq %d: %w", ev.Seq, err)
		}
	}

	for i, msg := range run.Failures {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO failures (run_id, idx, message)
			VALUES (?, ?, ?)
		`, runID, i, msg)
		if err != nil {
			return "", fmt.Errorf("write run: insert failure %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}

	return runID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
