package model

import "time"

// Volunteer response actions accepted by the public confirmation endpoint.
const (
    ActionConfirm           = "confirm"
    ActionDecline           = "decline"
    ActionRequestSubstitute = "request_substitute"
)

// Token lifecycle states.  A token is consumable exactly once: once UsedAt is
// set it is permanently terminal regardless of the recorded action, and a
// pending token past its expiry is rejected without being mutated.
const (
    TokenPending  = "pending"
    TokenConsumed = "consumed"
    TokenExpired  = "expired"
)

// ConfirmationToken is a single-use capability bound to one schedule entry,
// stored in the `confirmation_tokens` table.  The opaque Token string is the
// only credential a volunteer needs to respond to an assignment.
//
// Fields:
//  ID              – primary key identifier.
//  ScheduleEntryID – schedule row this token acts upon (one per issuance).
//  Token           – opaque random token string embedded in the link.
//  ExpiresAt       – expiry timestamp; pending tokens past this are rejected.
//  UsedAt          – consumption timestamp (null while pending).
//  ActionTaken     – the action recorded at consumption (null while pending).
//  Notes           – free-text note supplied with the response (nullable).
//  CreatedAt       – creation timestamp.
type ConfirmationToken struct {
    ID              uint64     // confirmation_tokens.id
    ScheduleEntryID uint64     // confirmation_tokens.schedule_entry_id
    Token           string     // confirmation_tokens.token
    ExpiresAt       time.Time  // confirmation_tokens.expires_at
    UsedAt          *time.Time // confirmation_tokens.used_at (nullable)
    ActionTaken     *string    // confirmation_tokens.action_taken (nullable)
    Notes           *string    // confirmation_tokens.notes (nullable)
    CreatedAt       time.Time  // confirmation_tokens.created_at
}

// State derives the lifecycle state of the token at the given instant.
// Consumption always wins over expiry: a token used before its expiry stays
// consumed forever.
func (t *ConfirmationToken) State(now time.Time) string {
    if t.UsedAt != nil {
        return TokenConsumed
    }
    if now.After(t.ExpiresAt) {
        return TokenExpired
    }
    return TokenPending
}

// ValidAction reports whether a is one of the accepted response actions.
func ValidAction(a string) bool {
    switch a {
    case ActionConfirm, ActionDecline, ActionRequestSubstitute:
        return true
    }
    return false
}

// StatusForAction maps a volunteer response action onto the schedule entry
// status it produces.  The boolean result is false for unknown actions.
func StatusForAction(action string) (string, bool) {
    switch action {
    case ActionConfirm:
        return StatusConfirmed, true
    case ActionDecline:
        return StatusAbsent, true
    case ActionRequestSubstitute:
        return StatusSubstituted, true
    }
    return "", false
}
