// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationDispatchedEvent is published after the dispatcher finishes a
// fan-out. It carries enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type NotificationDispatchedEvent struct {
    TenantID     uint64   `json:"tenant_id"`
    Type         string   `json:"type"`
    Channels     []string `json:"channels"`
    DispatchedAt string   `json:"dispatched_at"`
}
