package model

import "time"

// Schedule entry statuses.  An entry starts as StatusScheduled when the
// assignment engine creates it and moves to exactly one of the other states,
// either through a consumed confirmation token or a manual administrator
// override.  Cancelled entries are kept for history; by convention they are
// excluded from "active" listings.
const (
    StatusScheduled   = "scheduled"
    StatusConfirmed   = "confirmed"
    StatusAbsent      = "absent"
    StatusSubstituted = "substituted"
    StatusCancelled   = "cancelled"
)

// ValidStatus reports whether s is one of the known schedule statuses.
func ValidStatus(s string) bool {
    switch s {
    case StatusScheduled, StatusConfirmed, StatusAbsent, StatusSubstituted, StatusCancelled:
        return true
    }
    return false
}

// ScheduleEntry is one row per (service instance, role, volunteer) in the
// `schedule_entries` table.  Duplicate roles per service date are legal (two
// camera operators, for example); the store does not enforce uniqueness on
// (tenant, date, role).
//
// Fields:
//  ID          – primary key identifier.
//  TenantID    – owning administrator's user ID.
//  ServiceDate – date of the service instance.
//  ServiceName – label such as "Sunday Service" (optional).
//  Role        – role the volunteer is staffed for.
//  VolunteerID – assigned volunteer.
//  StartTime   – optional time-of-day the duty starts ("HH:MM").
//  EndTime     – optional time-of-day the duty ends.
//  Status      – one of the Status* constants above.
//  Notes       – free-text note, usually from a confirmation response.
//  ConfirmedAt – when the volunteer confirmed (nullable, confirm only).
//  ConfirmedBy – identity recorded at confirmation (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type ScheduleEntry struct {
    ID          uint64     // schedule_entries.id
    TenantID    uint64     // schedule_entries.tenant_id
    ServiceDate time.Time  // schedule_entries.service_date
    ServiceName string     // schedule_entries.service_name
    Role        string     // schedule_entries.role
    VolunteerID uint64     // schedule_entries.volunteer_id
    StartTime   *string    // schedule_entries.start_time (nullable)
    EndTime     *string    // schedule_entries.end_time (nullable)
    Status      string     // schedule_entries.status
    Notes       *string    // schedule_entries.notes (nullable)
    ConfirmedAt *time.Time // schedule_entries.confirmed_at (nullable)
    ConfirmedBy *string    // schedule_entries.confirmed_by (nullable)
    CreatedAt   time.Time  // schedule_entries.created_at
    UpdatedAt   time.Time  // schedule_entries.updated_at
}
