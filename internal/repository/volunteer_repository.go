package repository

import (
    "context"
    "database/sql"
    "fmt"
    "strings"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// VolunteerRepo provides data access to the volunteers table.  Every query
// is scoped by tenant id; a volunteer belonging to another tenant behaves
// exactly like a missing row.
type VolunteerRepo struct{ DB *sql.DB }

// NewVolunteerRepo returns a new VolunteerRepo bound to the provided database.
func NewVolunteerRepo(db *sql.DB) *VolunteerRepo { return &VolunteerRepo{DB: db} }

const volunteerColumns = "id, tenant_id, name, email, phone, primary_role, is_active, created_at, updated_at"

func scanVolunteer(row interface{ Scan(...any) error }) (*model.Volunteer, error) {
    v := &model.Volunteer{}
    var email, phone sql.NullString
    if err := row.Scan(&v.ID, &v.TenantID, &v.Name, &email, &phone, &v.PrimaryRole, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
        return nil, err
    }
    if email.Valid {
        v.Email = &email.String
    }
    if phone.Valid {
        v.Phone = &phone.String
    }
    return v, nil
}

// Create inserts a volunteer and returns the new id.  An empty primary role
// is stored as "general" so the engine's bucket partitioning never sees an
// empty string.
func (r *VolunteerRepo) Create(ctx context.Context, v *model.Volunteer) (uint64, error) {
    role := strings.TrimSpace(v.PrimaryRole)
    if role == "" {
        role = string(model.RoleGeneral)
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO volunteers (tenant_id, name, email, phone, primary_role, is_active) VALUES (?,?,?,?,?,1)",
        v.TenantID, v.Name, v.Email, v.Phone, role)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID loads a volunteer visible to the given tenant.
func (r *VolunteerRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Volunteer, error) {
    v, err := scanVolunteer(r.DB.QueryRowContext(ctx,
        "SELECT "+volunteerColumns+" FROM volunteers WHERE id=? AND tenant_id=? LIMIT 1", id, tenantID))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return v, nil
}

// List returns the tenant's volunteers ordered by id.  When activeOnly is
// set, deactivated volunteers are excluded.
func (r *VolunteerRepo) List(ctx context.Context, tenantID uint64, activeOnly bool) ([]model.Volunteer, error) {
    q := "SELECT " + volunteerColumns + " FROM volunteers WHERE tenant_id=?"
    if activeOnly {
        q += " AND is_active=1"
    }
    q += " ORDER BY id"
    rows, err := r.DB.QueryContext(ctx, q, tenantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Volunteer
    for rows.Next() {
        v, err := scanVolunteer(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *v)
    }
    return out, rows.Err()
}

// ListActiveByIDs returns the tenant's active volunteers restricted to the
// given id subset, preserving database order.  Unknown or inactive ids are
// silently dropped; the assignment engine treats the returned pool as the
// ground truth.
func (r *VolunteerRepo) ListActiveByIDs(ctx context.Context, tenantID uint64, ids []uint64) ([]model.Volunteer, error) {
    if len(ids) == 0 {
        return []model.Volunteer{}, nil
    }
    placeholders := strings.Repeat("?,", len(ids))
    placeholders = placeholders[:len(placeholders)-1]
    args := make([]any, 0, len(ids)+1)
    args = append(args, tenantID)
    for _, id := range ids {
        args = append(args, id)
    }
    q := fmt.Sprintf("SELECT %s FROM volunteers WHERE tenant_id=? AND is_active=1 AND id IN (%s) ORDER BY id",
        volunteerColumns, placeholders)
    rows, err := r.DB.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Volunteer
    for rows.Next() {
        v, err := scanVolunteer(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *v)
    }
    return out, rows.Err()
}

// Update rewrites the mutable volunteer fields.  Returns ErrNotFound when
// the row does not exist for this tenant.
func (r *VolunteerRepo) Update(ctx context.Context, v *model.Volunteer) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE volunteers SET name=?, email=?, phone=?, primary_role=?, is_active=? WHERE id=? AND tenant_id=?",
        v.Name, v.Email, v.Phone, v.PrimaryRole, v.IsActive, v.ID, v.TenantID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // RowsAffected is also 0 for a no-op update; check existence before
        // reporting not found.
        var one int
        if err := r.DB.QueryRowContext(ctx,
            "SELECT 1 FROM volunteers WHERE id=? AND tenant_id=?", v.ID, v.TenantID).Scan(&one); err != nil {
            if err == sql.ErrNoRows {
                return ErrNotFound
            }
            return err
        }
    }
    return nil
}

// Deactivate soft-deletes a volunteer.  Rows referenced by schedule history
// must never be physically removed, so DELETE maps to this.
func (r *VolunteerRepo) Deactivate(ctx context.Context, tenantID, id uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE volunteers SET is_active=0 WHERE id=? AND tenant_id=? AND is_active=1",
        id, tenantID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var one int
        if err := r.DB.QueryRowContext(ctx,
            "SELECT 1 FROM volunteers WHERE id=? AND tenant_id=?", id, tenantID).Scan(&one); err != nil {
            if err == sql.ErrNoRows {
                return ErrNotFound
            }
            return err
        }
    }
    return nil
}
