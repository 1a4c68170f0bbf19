package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// ConfirmationRepo provides data access to the confirmation_tokens table.
// Consumption is guarded by a conditional update on used_at so that two
// near-simultaneous submissions of the same token are serialized by the
// database: exactly one caller wins, the other observes ErrTokenUsed.
type ConfirmationRepo struct{ db *sql.DB }

// NewConfirmationRepo returns a new ConfirmationRepo bound to the database.
func NewConfirmationRepo(db *sql.DB) *ConfirmationRepo { return &ConfirmationRepo{db: db} }

const confirmationColumns = "id, schedule_entry_id, token, expires_at, used_at, action_taken, notes, created_at"

func scanConfirmation(row interface{ Scan(...any) error }) (*model.ConfirmationToken, error) {
    t := &model.ConfirmationToken{}
    var usedAt sql.NullTime
    var action, notes sql.NullString
    if err := row.Scan(&t.ID, &t.ScheduleEntryID, &t.Token, &t.ExpiresAt, &usedAt, &action, &notes, &t.CreatedAt); err != nil {
        return nil, err
    }
    if usedAt.Valid {
        at := usedAt.Time
        t.UsedAt = &at
    }
    if action.Valid {
        t.ActionTaken = &action.String
    }
    if notes.Valid {
        t.Notes = &notes.String
    }
    return t, nil
}

// CreateTx inserts a token row for a schedule entry within the provided
// transaction.  One token per issuance; resends re-use the pending token.
func (r *ConfirmationRepo) CreateTx(ctx context.Context, tx *sql.Tx, entryID uint64, token string, expiresAt time.Time) (uint64, error) {
    res, err := tx.ExecContext(ctx,
        "INSERT INTO confirmation_tokens (schedule_entry_id, token, expires_at) VALUES (?,?,?)",
        entryID, token, expiresAt)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByToken looks a token up by its opaque string.
func (r *ConfirmationRepo) GetByToken(ctx context.Context, token string) (*model.ConfirmationToken, error) {
    t, err := scanConfirmation(r.db.QueryRowContext(ctx,
        "SELECT "+confirmationColumns+" FROM confirmation_tokens WHERE token=? LIMIT 1", token))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return t, nil
}

// GetByTokenTx is GetByToken inside an open transaction, used to re-read
// the row after losing a consumption race.
func (r *ConfirmationRepo) GetByTokenTx(ctx context.Context, tx *sql.Tx, token string) (*model.ConfirmationToken, error) {
    t, err := scanConfirmation(tx.QueryRowContext(ctx,
        "SELECT "+confirmationColumns+" FROM confirmation_tokens WHERE token=? LIMIT 1", token))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return t, nil
}

// ConsumeTx atomically marks the token consumed with the given action and
// note.  The WHERE clause is the race guard: when zero rows are affected
// the token was consumed by a concurrent request (or never existed) and
// ErrTokenUsed/ErrNotFound is derived from a re-read.  Expiry is NOT
// checked here; callers reject expired tokens before opening the
// transaction so that expired rows are never mutated.
func (r *ConfirmationRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, tokenID uint64, action string, notes *string) error {
    return consumeToken(ctx, tx, tokenID, action, notes)
}

// execer is the slice of *sql.Tx the conditional consume needs.
type execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func consumeToken(ctx context.Context, ex execer, tokenID uint64, action string, notes *string) error {
    res, err := ex.ExecContext(ctx,
        "UPDATE confirmation_tokens SET used_at=NOW(), action_taken=?, notes=? WHERE id=? AND used_at IS NULL",
        action, notes, tokenID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrTokenUsed
    }
    return nil
}

// PendingByEntry returns the newest still-pending token for a schedule
// entry, or ErrNotFound when every issued token is consumed or expired.
// Used by the resend flow, which re-sends the same link rather than
// reissuing.
func (r *ConfirmationRepo) PendingByEntry(ctx context.Context, entryID uint64) (*model.ConfirmationToken, error) {
    t, err := scanConfirmation(r.db.QueryRowContext(ctx,
        "SELECT "+confirmationColumns+` FROM confirmation_tokens
          WHERE schedule_entry_id=? AND used_at IS NULL AND expires_at > UTC_TIMESTAMP()
          ORDER BY id DESC LIMIT 1`, entryID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return t, nil
}
