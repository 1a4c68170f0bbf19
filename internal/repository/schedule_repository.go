package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// ScheduleRepo provides data access to the schedule_entries table.  Bulk
// creation happens inside the schedule-generation transaction; later status
// changes come either from a consumed confirmation token (transactional,
// *Tx methods) or from a manual administrator override.
type ScheduleRepo struct{ db *sql.DB }

// NewScheduleRepo returns a new ScheduleRepo bound to the provided database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span the schedule and confirmation repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

const scheduleColumns = `id, tenant_id, service_date, service_name, role, volunteer_id,
    start_time, end_time, status, notes, confirmed_at, confirmed_by, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }) (*model.ScheduleEntry, error) {
    e := &model.ScheduleEntry{}
    var startTime, endTime, notes, confirmedBy sql.NullString
    var confirmedAt sql.NullTime
    if err := row.Scan(&e.ID, &e.TenantID, &e.ServiceDate, &e.ServiceName, &e.Role, &e.VolunteerID,
        &startTime, &endTime, &e.Status, &notes, &confirmedAt, &confirmedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
        return nil, err
    }
    if startTime.Valid {
        e.StartTime = &startTime.String
    }
    if endTime.Valid {
        e.EndTime = &endTime.String
    }
    if notes.Valid {
        e.Notes = &notes.String
    }
    if confirmedAt.Valid {
        t := confirmedAt.Time
        e.ConfirmedAt = &t
    }
    if confirmedBy.Valid {
        e.ConfirmedBy = &confirmedBy.String
    }
    return e, nil
}

// CreateTx inserts a schedule entry within the provided transaction and
// fills in the generated id.  The caller commits or rolls back.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.ScheduleEntry) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO schedule_entries
            (tenant_id, service_date, service_name, role, volunteer_id, start_time, end_time, status)
         VALUES (?,?,?,?,?,?,?,?)`,
        e.TenantID, e.ServiceDate.UTC().Format("2006-01-02"), e.ServiceName, e.Role, e.VolunteerID,
        e.StartTime, e.EndTime, e.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// GetByID loads a schedule entry visible to the given tenant.
func (r *ScheduleRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.ScheduleEntry, error) {
    e, err := scanSchedule(r.db.QueryRowContext(ctx,
        "SELECT "+scheduleColumns+" FROM schedule_entries WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return e, nil
}

// GetByIDAnyTenant loads a schedule entry by id alone.  The public
// confirmation endpoint reaches rows through a token, not a session, so no
// tenant filter applies there; the token's one-to-one binding is the
// authorization.
func (r *ScheduleRepo) GetByIDAnyTenant(ctx context.Context, id uint64) (*model.ScheduleEntry, error) {
    e, err := scanSchedule(r.db.QueryRowContext(ctx,
        "SELECT "+scheduleColumns+" FROM schedule_entries WHERE id=? LIMIT 1", id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return e, nil
}

// ListByDateRange returns the tenant's entries with service_date in
// [from, to], ordered by date then id.
func (r *ScheduleRepo) ListByDateRange(ctx context.Context, tenantID uint64, from, to time.Time) ([]model.ScheduleEntry, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT "+scheduleColumns+` FROM schedule_entries
          WHERE tenant_id=? AND service_date BETWEEN ? AND ?
          ORDER BY service_date, id`,
        tenantID, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.ScheduleEntry
    for rows.Next() {
        e, err := scanSchedule(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *e)
    }
    return out, rows.Err()
}

// UpdateStatus applies a manual administrator override.  confirmed_at and
// confirmed_by are set only when moving to confirmed and cleared otherwise,
// keeping the confirm-only invariant that token consumption also obeys.
func (r *ScheduleRepo) UpdateStatus(ctx context.Context, tenantID, id uint64, status, updatedBy string) error {
    var res sql.Result
    var err error
    if status == model.StatusConfirmed {
        res, err = r.db.ExecContext(ctx,
            "UPDATE schedule_entries SET status=?, confirmed_at=NOW(), confirmed_by=? WHERE id=? AND tenant_id=?",
            status, updatedBy, id, tenantID)
    } else {
        res, err = r.db.ExecContext(ctx,
            "UPDATE schedule_entries SET status=?, confirmed_at=NULL, confirmed_by=NULL WHERE id=? AND tenant_id=?",
            status, id, tenantID)
    }
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var one int
        if err := r.db.QueryRowContext(ctx,
            "SELECT 1 FROM schedule_entries WHERE id=? AND tenant_id=?", id, tenantID).Scan(&one); err != nil {
            if err == sql.ErrNoRows {
                return ErrNotFound
            }
            return err
        }
    }
    return nil
}

// ApplyActionTx records the outcome of a consumed confirmation token inside
// the consumption transaction.  confirmed_at/confirmed_by are written only
// for a confirm action; for decline and substitute requests the entry keeps
// a null confirmation timestamp.
func (r *ScheduleRepo) ApplyActionTx(ctx context.Context, tx *sql.Tx, entryID uint64, status string, confirm bool, confirmedBy string, notes *string) error {
    if confirm {
        _, err := tx.ExecContext(ctx,
            "UPDATE schedule_entries SET status=?, confirmed_at=NOW(), confirmed_by=?, notes=COALESCE(?, notes) WHERE id=?",
            status, confirmedBy, notes, entryID)
        return err
    }
    _, err := tx.ExecContext(ctx,
        "UPDATE schedule_entries SET status=?, notes=COALESCE(?, notes) WHERE id=?",
        status, notes, entryID)
    return err
}

// Delete removes a single entry.  Explicit administrator action is the only
// path to physical deletion.
func (r *ScheduleRepo) Delete(ctx context.Context, tenantID, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        "DELETE FROM schedule_entries WHERE id=? AND tenant_id=?", id, tenantID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// DeleteByDate removes all of the tenant's entries for a service date and
// returns how many rows were removed.  Zero is not an error; the admin may
// clear an already-empty date.
func (r *ScheduleRepo) DeleteByDate(ctx context.Context, tenantID uint64, date time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        "DELETE FROM schedule_entries WHERE tenant_id=? AND service_date=?",
        tenantID, date.UTC().Format("2006-01-02"))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
