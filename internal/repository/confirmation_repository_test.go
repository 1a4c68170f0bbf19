package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeExecer struct {
    rows  int64
    err   error
    query string
    args  []any
}

func (f *fakeExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
    f.query = query
    f.args = args
    if f.err != nil {
        return nil, f.err
    }
    return fakeResult{rows: f.rows}, nil
}

func TestConsumeTokenWinnerUpdatesRow(t *testing.T) {
    f := &fakeExecer{rows: 1}
    notes := "running late"
    err := consumeToken(context.Background(), f, 7, "confirm", &notes)
    require.NoError(t, err)
    // The pending-only guard is what serializes concurrent submissions.
    assert.Contains(t, f.query, "used_at IS NULL")
    assert.Equal(t, []any{"confirm", &notes, uint64(7)}, f.args)
}

func TestConsumeTokenConcurrentLoserGetsErrTokenUsed(t *testing.T) {
    // Zero affected rows means another request consumed the token first.
    f := &fakeExecer{rows: 0}
    err := consumeToken(context.Background(), f, 7, "decline", nil)
    assert.ErrorIs(t, err, ErrTokenUsed)
}

func TestConsumeTokenPropagatesExecError(t *testing.T) {
    boom := errors.New("connection reset")
    f := &fakeExecer{err: boom}
    err := consumeToken(context.Background(), f, 7, "confirm", nil)
    assert.ErrorIs(t, err, boom)
}
