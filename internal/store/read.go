package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RunSummary is the listing view of a persisted run, without its trace.
type RunSummary struct {
	ID       string
	Scenario string
	Pass     bool
	Writes   int
	Reads    int
	Pending  int
}

// ListRuns returns summaries of all persisted runs, newest first.
// UUIDv7 IDs sort by creation time, so ordering by ID is chronological.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]RunSummary, error) {
	query := `
		SELECT id, scenario, pass, writes, reads, pending
		FROM runs
	`
	var args []any
	if scenario != "" {
		query += " WHERE scenario = ?"
		args = append(args, scenario)
	}
	query += " ORDER BY id COLLATE BINARY DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var rs RunSummary
		var pass int
		if err := rows.Scan(&rs.ID, &rs.Scenario, &pass, &rs.Writes, &rs.Reads, &rs.Pending); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.Pass = pass != 0
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return summaries, nil
}

// ReadRun retrieves one run with its full trace and failure messages.
// Returns sql.ErrNoRows (wrapped) if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var pass int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, pass, writes, reads, pending
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Scenario, &pass, &run.Writes, &run.Reads, &run.Pending)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.Pass = pass != 0

	run.Events, err = s.readEvents(ctx, id)
	if err != nil {
		return Run{}, err
	}

	run.Failures, err = s.readFailures(ctx, id)
	if err != nil {
		return Run{}, err
	}

	return run, nil
}

// readEvents returns a run's trace in arrival order.
func (s *Store) readEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, data
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Seq, &ev.Kind, &ev.Data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// readFailures returns a run's failure messages in recorded order.
func (s *Store) readFailures(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message
		FROM failures
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	failures := []string{}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}

	return failures, nil
}

// HasRun reports whether a run with the given ID exists.
func (s *Store) HasRun(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM runs WHERE id = ?
	`, id).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("check run: %w", err)
	}
	return count > 0, nil
}
