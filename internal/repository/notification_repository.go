package repository

import (
    "context"
    "database/sql"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// NotificationRepo provides data access to the notifications and
// delivery_logs tables.  Notifications are append-only except for the read
// flag; delivery logs are strictly append-only.
type NotificationRepo struct{ db *sql.DB }

// NewNotificationRepo returns a repo bound to the provided database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// InsertNotification writes an in-app notification record and returns its id.
func (r *NotificationRepo) InsertNotification(ctx context.Context, n *model.NotificationRecord) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO notifications (tenant_id, type, recipient_id, title, message, schedule_id, is_read)
         VALUES (?,?,?,?,?,?,0)`,
        n.TenantID, n.Type, n.RecipientID, n.Title, n.Message, n.ScheduleID)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, tenantID, recipientID uint64, unreadOnly bool) ([]model.NotificationRecord, error) {
    q := `SELECT id, tenant_id, type, recipient_id, title, message, schedule_id, is_read, created_at
            FROM notifications WHERE tenant_id=? AND recipient_id=?`
    if unreadOnly {
        q += " AND is_read=0"
    }
    q += " ORDER BY id DESC"
    rows, err := r.db.QueryContext(ctx, q, tenantID, recipientID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.NotificationRecord
    for rows.Next() {
        var n model.NotificationRecord
        var scheduleID sql.NullInt64
        if err := rows.Scan(&n.ID, &n.TenantID, &n.Type, &n.RecipientID, &n.Title, &n.Message,
            &scheduleID, &n.IsRead, &n.CreatedAt); err != nil {
            return nil, err
        }
        if scheduleID.Valid {
            id := uint64(scheduleID.Int64)
            n.ScheduleID = &id
        }
        out = append(out, n)
    }
    return out, rows.Err()
}

// MarkRead flips the read flag, the only mutation notifications permit.
func (r *NotificationRepo) MarkRead(ctx context.Context, tenantID, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE notifications SET is_read=1 WHERE id=? AND tenant_id=?", id, tenantID)
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
            "SELECT 1 FROM notifications WHERE id=? AND tenant_id=?", id, tenantID).Scan(&one); err != nil {
            if err == sql.ErrNoRows {
                return ErrNotFound
            }
            return err
        }
    }
    return nil
}

// InsertDeliveryLog appends one channel-attempt row to the audit trail.
func (r *NotificationRepo) InsertDeliveryLog(ctx context.Context, d *model.DeliveryLogEntry) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO delivery_logs (tenant_id, type, schedule_id, recipient, channel, status, error)
         VALUES (?,?,?,?,?,?,?)`,
        d.TenantID, d.Type, d.ScheduleID, d.Recipient, d.Channel, d.Status, d.Error)
    return err
}
