package model

import "time"

// Volunteer represents a serving member of the congregation as stored in the
// `volunteers` table.  Volunteers belong to a tenant (the scheduling
// administrator) and carry a primary role used for first-tier matching by the
// assignment engine.  Volunteers referenced by schedule history are never
// physically deleted; they are soft-deactivated via IsActive instead.
//
// Fields:
//  ID         – primary key identifier.
//  TenantID   – owning administrator's user ID.
//  Name       – display name shown in rosters and notifications.
//  Email      – contact email (nullable; required for the email channel).
//  Phone      – contact phone (nullable).
//  PrimaryRole – volunteer's default specialty, defaults to "general".
//  IsActive   – whether the volunteer can be scheduled.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Volunteer struct {
    ID          uint64    // volunteers.id
    TenantID    uint64    // volunteers.tenant_id
    Name        string    // volunteers.name
    Email       *string   // volunteers.email (nullable)
    Phone       *string   // volunteers.phone (nullable)
    PrimaryRole string    // volunteers.primary_role
    IsActive    bool      // volunteers.is_active
    CreatedAt   time.Time // volunteers.created_at
    UpdatedAt   time.Time // volunteers.updated_at
}
