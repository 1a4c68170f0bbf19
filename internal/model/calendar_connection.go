package model

import "time"

// CalendarConnection stores a volunteer's OAuth link to an external calendar
// in the `calendar_connections` table.  The connection belongs to the
// volunteer, not the tenant administrator who initiated it.  Access tokens
// are refreshed transparently before free/busy queries; when a refresh fails
// (revoked consent and the like) the connection is deactivated rather than
// deleted so that availability checks degrade to "not connected".
//
// Fields:
//  ID           – primary key identifier.
//  TenantID     – administrator who initiated the connection.
//  VolunteerID  – volunteer the calendar belongs to (nullable).
//  AccessToken  – current OAuth access token.
//  RefreshToken – OAuth refresh token used to renew access.
//  TokenExpiry  – when the access token expires.
//  CalendarID   – identifier of the calendar queried for free/busy.
//  Email        – email address of the connected account.
//  IsActive     – false after disconnect or a failed refresh.
//  LastSyncAt   – timestamp of the most recent successful query (nullable).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type CalendarConnection struct {
    ID           uint64     // calendar_connections.id
    TenantID     uint64     // calendar_connections.tenant_id
    VolunteerID  *uint64    // calendar_connections.volunteer_id (nullable)
    AccessToken  string     // calendar_connections.access_token
    RefreshToken string     // calendar_connections.refresh_token
    TokenExpiry  time.Time  // calendar_connections.token_expiry
    CalendarID   string     // calendar_connections.calendar_id
    Email        string     // calendar_connections.email
    IsActive     bool       // calendar_connections.is_active
    LastSyncAt   *time.Time // calendar_connections.last_sync_at (nullable)
    CreatedAt    time.Time  // calendar_connections.created_at
    UpdatedAt    time.Time  // calendar_connections.updated_at
}
