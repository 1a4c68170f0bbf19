package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// CalendarConnectionRepo provides data access to the calendar_connections
// table.  A volunteer has at most one active connection; connecting again
// replaces the stored credentials in place.
type CalendarConnectionRepo struct{ db *sql.DB }

// NewCalendarConnectionRepo returns a repo bound to the provided database.
func NewCalendarConnectionRepo(db *sql.DB) *CalendarConnectionRepo {
    return &CalendarConnectionRepo{db: db}
}

const connectionColumns = `id, tenant_id, volunteer_id, access_token, refresh_token, token_expiry,
    calendar_id, email, is_active, last_sync_at, created_at, updated_at`

func scanConnection(row interface{ Scan(...any) error }) (*model.CalendarConnection, error) {
    c := &model.CalendarConnection{}
    var volunteerID sql.NullInt64
    var lastSync sql.NullTime
    if err := row.Scan(&c.ID, &c.TenantID, &volunteerID, &c.AccessToken, &c.RefreshToken, &c.TokenExpiry,
        &c.CalendarID, &c.Email, &c.IsActive, &lastSync, &c.CreatedAt, &c.UpdatedAt); err != nil {
        return nil, err
    }
    if volunteerID.Valid {
        id := uint64(volunteerID.Int64)
        c.VolunteerID = &id
    }
    if lastSync.Valid {
        t := lastSync.Time
        c.LastSyncAt = &t
    }
    return c, nil
}

// Upsert stores OAuth credentials after a completed callback.  An existing
// connection for the volunteer is overwritten and reactivated; otherwise a
// new row is inserted.
func (r *CalendarConnectionRepo) Upsert(ctx context.Context, c *model.CalendarConnection) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE calendar_connections
            SET access_token=?, refresh_token=?, token_expiry=?, calendar_id=?, email=?, is_active=1
          WHERE tenant_id=? AND volunteer_id=?`,
        c.AccessToken, c.RefreshToken, c.TokenExpiry, c.CalendarID, c.Email, c.TenantID, c.VolunteerID)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n > 0 {
        return nil
    }
    var one int
    err = r.db.QueryRowContext(ctx,
        "SELECT 1 FROM calendar_connections WHERE tenant_id=? AND volunteer_id=?",
        c.TenantID, c.VolunteerID).Scan(&one)
    if err == nil {
        return nil // row existed, update was a no-op
    }
    if err != sql.ErrNoRows {
        return err
    }
    ins, err := r.db.ExecContext(ctx,
        `INSERT INTO calendar_connections
            (tenant_id, volunteer_id, access_token, refresh_token, token_expiry, calendar_id, email, is_active)
         VALUES (?,?,?,?,?,?,?,1)`,
        c.TenantID, c.VolunteerID, c.AccessToken, c.RefreshToken, c.TokenExpiry, c.CalendarID, c.Email)
    if err != nil {
        return err
    }
    id, err := ins.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

// GetActiveByVolunteer returns the volunteer's active connection, or
// ErrNotFound when the volunteer never connected or was deactivated.
func (r *CalendarConnectionRepo) GetActiveByVolunteer(ctx context.Context, tenantID, volunteerID uint64) (*model.CalendarConnection, error) {
    c, err := scanConnection(r.db.QueryRowContext(ctx,
        "SELECT "+connectionColumns+` FROM calendar_connections
          WHERE tenant_id=? AND volunteer_id=? AND is_active=1 LIMIT 1`, tenantID, volunteerID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return c, nil
}

// UpdateTokens persists a refreshed access token.  Concurrent refreshes are
// last-writer-wins: both produce equivalent credentials, so no guard beyond
// the row id is needed.
func (r *CalendarConnectionRepo) UpdateTokens(ctx context.Context, id uint64, accessToken, refreshToken string, expiry time.Time) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE calendar_connections SET access_token=?, refresh_token=?, token_expiry=? WHERE id=?",
        accessToken, refreshToken, expiry, id)
    return err
}

// Deactivate marks a connection inactive, either on explicit disconnect or
// after a failed token refresh (revoked consent).  The row is kept so the
// volunteer can reconnect later.
func (r *CalendarConnectionRepo) Deactivate(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE calendar_connections SET is_active=0 WHERE id=?", id)
    return err
}

// TouchLastSync records the time of the latest successful free/busy query.
func (r *CalendarConnectionRepo) TouchLastSync(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE calendar_connections SET last_sync_at=NOW() WHERE id=?", id)
    return err
}
