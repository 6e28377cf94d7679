package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.ListRuns(context.Background(), "")
	assert.NoError(t, err)
}

func TestWriteRun_ReadRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := Run{
		Scenario: "fifo-basic",
		Pass:     false,
		Writes:   4,
		Reads:    3,
		Pending:  1,
		Events: []Event{
			{Seq: 1, Kind: "reset", Data: 0},
			{Seq: 2, Kind: "write", Data: 0x11},
			{Seq: 3, Kind: "read", Data: 0x11},
		},
		Failures: []string{
			"DATA_MISMATCH: transfer 2: expected 0x22, observed 0x33",
			"Assertion failed: no_pending",
		},
	}

	id, err := s.WriteRun(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	out, err := s.ReadRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, out.ID)
	assert.Equal(t, "fifo-basic", out.Scenario)
	assert.False(t, out.Pass)
	assert.Equal(t, 4, out.Writes)
	assert.Equal(t, 3, out.Reads)
	assert.Equal(t, 1, out.Pending)
	assert.Equal(t, in.Events, out.Events)
	assert.Equal(t, in.Failures, out.Failures)
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.WriteRun(ctx, Run{Scenario: "a", Pass: true})
	require.NoError(t, err)
	second, err := s.WriteRun(ctx, Run{Scenario: "b", Pass: false})
	require.NoError(t, err)
	third, err := s.WriteRun(ctx, Run{Scenario: "a", Pass: true})
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third, all[0].ID)
	assert.Equal(t, second, all[1].ID)
	assert.Equal(t, first, all[2].ID)
}

func TestListRuns_FilterByScenario(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, Run{Scenario: "a", Pass: true})
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, Run{Scenario: "b", Pass: true})
	require.NoError(t, err)

	got, err := s.ListRuns(ctx, "b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Scenario)
}

func TestListRuns_EmptyIsNotNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHasRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.WriteRun(ctx, Run{Scenario: "a", Pass: true})
	require.NoError(t, err)

	ok, err := s.HasRun(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteRun_EmptyTraceAndFailures(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.WriteRun(ctx, Run{Scenario: "empty", Pass: true})
	require.NoError(t, err)

	out, err := s.ReadRun(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, out.Events)
	assert.Empty(t, out.Failures)
}
