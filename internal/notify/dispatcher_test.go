package notify

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

type fakeStore struct {
    notifications []model.NotificationRecord
    logs          []model.DeliveryLogEntry
    insertErr     error
}

func (f *fakeStore) InsertNotification(_ context.Context, n *model.NotificationRecord) (uint64, error) {
    if f.insertErr != nil {
        return 0, f.insertErr
    }
    f.notifications = append(f.notifications, *n)
    return uint64(len(f.notifications)), nil
}

func (f *fakeStore) InsertDeliveryLog(_ context.Context, d *model.DeliveryLogEntry) error {
    f.logs = append(f.logs, *d)
    return nil
}

type fakeSender struct {
    err  error
    sent []string
}

func (f *fakeSender) Send(_ context.Context, to, _ string, _ string) error {
    if f.err != nil {
        return f.err
    }
    f.sent = append(f.sent, to)
    return nil
}

func email(s string) *string { return &s }

func TestDispatchBothChannels(t *testing.T) {
    store := &fakeStore{}
    sender := &fakeSender{}
    d := NewDispatcher(store, sender, nil)

    err := d.Dispatch(context.Background(), Request{
        TenantID:    1,
        Type:        model.NotifyConfirmationRequest,
        RecipientID: 42,
        Email:       email("ana@example.com"),
        Values:      map[string]string{"volunteer_name": "Ana", "role": "camera"},
    })
    require.NoError(t, err)

    require.Len(t, store.notifications, 1)
    assert.Equal(t, uint64(42), store.notifications[0].RecipientID)
    assert.Equal(t, []string{"ana@example.com"}, sender.sent)

    require.Len(t, store.logs, 2)
    assert.Equal(t, model.ChannelApp, store.logs[0].Channel)
    assert.Equal(t, model.DeliverySent, store.logs[0].Status)
    assert.Equal(t, model.ChannelEmail, store.logs[1].Channel)
    assert.Equal(t, model.DeliverySent, store.logs[1].Status)
}

func TestDispatchEmailFailureIsIsolated(t *testing.T) {
    store := &fakeStore{}
    sender := &fakeSender{err: errors.New("provider down")}
    d := NewDispatcher(store, sender, nil)

    err := d.Dispatch(context.Background(), Request{
        TenantID:    1,
        Type:        model.NotifyScheduleCreated,
        RecipientID: 42,
        Email:       email("ana@example.com"),
    })
    require.NoError(t, err, "email failure must not surface to the caller")

    require.Len(t, store.notifications, 1, "in-app record still written")
    require.Len(t, store.logs, 2)
    assert.Equal(t, model.DeliveryFailed, store.logs[1].Status)
    require.NotNil(t, store.logs[1].Error)
    assert.Contains(t, *store.logs[1].Error, "provider down")
}

func TestDispatchSkipsEmailWithoutAddress(t *testing.T) {
    store := &fakeStore{}
    sender := &fakeSender{}
    d := NewDispatcher(store, sender, nil)

    err := d.Dispatch(context.Background(), Request{
        TenantID:    1,
        Type:        model.NotifyScheduleCreated,
        RecipientID: 42,
    })
    require.NoError(t, err)
    assert.Empty(t, sender.sent)
    require.Len(t, store.logs, 1)
    assert.Equal(t, model.ChannelApp, store.logs[0].Channel)
}

func TestDispatchInAppFailureReturnsError(t *testing.T) {
    store := &fakeStore{insertErr: errors.New("db gone")}
    d := NewDispatcher(store, &fakeSender{}, nil)

    err := d.Dispatch(context.Background(), Request{TenantID: 1, Type: model.NotifyReminder24h, RecipientID: 7})
    require.Error(t, err)
    require.Len(t, store.logs, 1)
    assert.Equal(t, model.DeliveryFailed, store.logs[0].Status)
}
