package notify

import (
    "context"
    "fmt"
    "log"
    "strconv"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// Store is the slice of the notification repository the dispatcher needs.
type Store interface {
    InsertNotification(ctx context.Context, n *model.NotificationRecord) (uint64, error)
    InsertDeliveryLog(ctx context.Context, d *model.DeliveryLogEntry) error
}

// Publisher emits a dispatch event to the message broker for downstream
// consumers.  Publishing is best effort.
type Publisher interface {
    PublishDispatched(ctx context.Context, tenantID uint64, notifType string, channels []string) error
}

// Request describes one notification to fan out.
type Request struct {
    TenantID    uint64
    Type        string            // one of the model.Notify* constants
    ScheduleID  *uint64           // related schedule entry, when any
    RecipientID uint64            // in-app recipient (volunteer or admin user id)
    Email       *string           // email address; nil skips the email channel
    Values      map[string]string // template placeholder values
}

// Dispatcher fans one notification out to the in-app and email channels and
// appends one delivery log row per attempt.
type Dispatcher struct {
    store     Store
    sender    Sender    // nil disables the email channel
    publisher Publisher // nil disables broker events
}

// NewDispatcher wires a dispatcher.  sender and publisher may be nil when
// the corresponding backend is not configured.
func NewDispatcher(store Store, sender Sender, publisher Publisher) *Dispatcher {
    return &Dispatcher{store: store, sender: sender, publisher: publisher}
}

// Dispatch renders the notification and attempts every applicable channel.
// Channel errors are logged and recorded in the delivery log, never
// returned: the triggering operation must not fail because a notification
// could not be delivered.  Only a failure to write the in-app record itself
// is reported.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
    title, body := Render(req.Type, req.Values)

    var channels []string

    // In-app channel: the notification record is the delivery.
    _, err := d.store.InsertNotification(ctx, &model.NotificationRecord{
        TenantID:    req.TenantID,
        Type:        req.Type,
        RecipientID: req.RecipientID,
        Title:       title,
        Message:     body,
        ScheduleID:  req.ScheduleID,
    })
    d.logAttempt(ctx, req, model.ChannelApp, strconv.FormatUint(req.RecipientID, 10), err)
    if err != nil {
        log.Printf("notify: in-app record failed type=%s recipient=%d: %v", req.Type, req.RecipientID, err)
        return err
    }
    channels = append(channels, model.ChannelApp)

    if d.sender != nil && req.Email != nil && *req.Email != "" {
        sendErr := d.sender.Send(ctx, *req.Email, title, htmlEnvelope(title, body))
        d.logAttempt(ctx, req, model.ChannelEmail, *req.Email, sendErr)
        if sendErr != nil {
            log.Printf("notify: email failed type=%s to=%s: %v", req.Type, *req.Email, sendErr)
        } else {
            channels = append(channels, model.ChannelEmail)
        }
    }

    if d.publisher != nil {
        if err := d.publisher.PublishDispatched(ctx, req.TenantID, req.Type, channels); err != nil {
            log.Printf("notify: broker publish failed type=%s: %v", req.Type, err)
        }
    }
    return nil
}

func (d *Dispatcher) logAttempt(ctx context.Context, req Request, channel, recipient string, attemptErr error) {
    entry := &model.DeliveryLogEntry{
        TenantID:   req.TenantID,
        Type:       req.Type,
        ScheduleID: req.ScheduleID,
        Recipient:  recipient,
        Channel:    channel,
        Status:     model.DeliverySent,
    }
    if attemptErr != nil {
        entry.Status = model.DeliveryFailed
        msg := attemptErr.Error()
        entry.Error = &msg
    }
    if err := d.store.InsertDeliveryLog(ctx, entry); err != nil {
        log.Printf("notify: delivery log write failed channel=%s: %v", channel, err)
    }
}

func htmlEnvelope(title, body string) string {
    return fmt.Sprintf(
        "<html><body><h2>%s</h2><p>%s</p><p style=\"color:#888;font-size:12px\">Sent by your volunteer scheduling team.</p></body></html>",
        title, body)
}
