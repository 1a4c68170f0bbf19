package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/utils"
)

// UserRepo provides data access to the users table.  Users are scheduling
// administrators; a user's id doubles as the tenant id for every other
// table.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new administrator with a bcrypt-hashed password and
// returns the new user id.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, role, churchName string, bcryptCost int) (uint64, error) {
    var exists int
    err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(1) FROM users WHERE email=?", email).Scan(&exists)
    if err != nil {
        return 0, err
    }
    if exists > 0 {
        return 0, ErrEmailExists
    }

    hash, err := utils.HashPassword(password, bcryptCost)
    if err != nil {
        return 0, err
    }

    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (email, password_hash, role, church_name, is_active) VALUES (?,?,?,?,1)",
        email, hash, role, churchName)
    if err != nil {
        // The unique index on email may still fire under a race; report it
        // the same way as the pre-check.
        if strings.Contains(err.Error(), "Duplicate entry") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail loads a user by email address.  sql.ErrNoRows is passed
// through so callers can answer "invalid credentials" uniformly.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
    u := &model.User{}
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, email, password_hash, role, church_name, is_active, created_at, updated_at
           FROM users WHERE email=? LIMIT 1`, email).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ChurchName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return u, nil
}

// GetByID loads a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    u := &model.User{}
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, email, password_hash, role, church_name, is_active, created_at, updated_at
           FROM users WHERE id=? LIMIT 1`, id).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.ChurchName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return u, nil
}
