package model

import "time"

// Notification types understood by the dispatcher's template map.
const (
    NotifyScheduleCreated      = "schedule_created"
    NotifyReminder24h          = "reminder_24h"
    NotifyReminder2h           = "reminder_2h"
    NotifyConfirmationRequest  = "confirmation_request"
    NotifyScheduleChanged      = "schedule_changed"
    NotifyConfirmationReceived = "confirmation_received"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
    switch t {
    case NotifyScheduleCreated, NotifyReminder24h, NotifyReminder2h,
        NotifyConfirmationRequest, NotifyScheduleChanged, NotifyConfirmationReceived:
        return true
    }
    return false
}

// Delivery channels supported by the dispatcher.
const (
    ChannelApp   = "app"
    ChannelEmail = "email"
)

// Delivery outcomes recorded in the delivery log.
const (
    DeliverySent   = "sent"
    DeliveryFailed = "failed"
)

// NotificationRecord is an in-app notification row in the `notifications`
// table.  Records are append-only; the only permitted mutation is flipping
// the read flag.
//
// Fields:
//  ID          – primary key identifier.
//  TenantID    – tenant the notification belongs to.
//  Type        – one of the Notify* constants.
//  RecipientID – volunteer or administrator user the record is addressed to.
//  Title       – rendered title.
//  Message     – rendered body.
//  ScheduleID  – related schedule entry (nullable).
//  IsRead      – whether the recipient has seen it.
//  CreatedAt   – creation timestamp.
type NotificationRecord struct {
    ID          uint64    // notifications.id
    TenantID    uint64    // notifications.tenant_id
    Type        string    // notifications.type
    RecipientID uint64    // notifications.recipient_id
    Title       string    // notifications.title
    Message     string    // notifications.message
    ScheduleID  *uint64   // notifications.schedule_id (nullable)
    IsRead      bool      // notifications.is_read
    CreatedAt   time.Time // notifications.created_at
}

// DeliveryLogEntry is the append-only audit trail in the `delivery_logs`
// table: one row per channel attempt, successful or not.
//
// Fields:
//  ID         – primary key identifier.
//  TenantID   – tenant the attempt belongs to.
//  Type       – notification type that was dispatched.
//  ScheduleID – related schedule entry (nullable).
//  Recipient  – recipient identity for the channel (user id or email).
//  Channel    – ChannelApp or ChannelEmail.
//  Status     – DeliverySent or DeliveryFailed.
//  Error      – provider error message when the attempt failed (nullable).
//  CreatedAt  – attempt timestamp.
type DeliveryLogEntry struct {
    ID         uint64    // delivery_logs.id
    TenantID   uint64    // delivery_logs.tenant_id
    Type       string    // delivery_logs.type
    ScheduleID *uint64   // delivery_logs.schedule_id (nullable)
    Recipient  string    // delivery_logs.recipient
    Channel    string    // delivery_logs.channel
    Status     string    // delivery_logs.status
    Error      *string   // delivery_logs.error (nullable)
    CreatedAt  time.Time // delivery_logs.created_at
}
