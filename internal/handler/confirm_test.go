package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
)

func TestResponseNotificationConfirmCarriesNote(t *testing.T) {
    note := "arriving 10 minutes early"
    notifType, message := responseNotification(model.ActionConfirm, &note)
    assert.Equal(t, model.NotifyConfirmationReceived, notifType)
    assert.Equal(t, "Note: arriving 10 minutes early", message)

    // The note must survive template rendering, not just the message field.
    _, body := notify.Render(notifType, map[string]string{
        "volunteer_name": "Ana",
        "role":           "camera",
        "service_name":   "Sunday Service",
        "service_date":   "2026-03-01",
        "message":        message,
    })
    assert.Contains(t, body, "arriving 10 minutes early")
}

func TestResponseNotificationConfirmWithoutNote(t *testing.T) {
    notifType, message := responseNotification(model.ActionConfirm, nil)
    assert.Equal(t, model.NotifyConfirmationReceived, notifType)
    assert.Empty(t, message)
}

func TestResponseNotificationDeclineAndSubstitute(t *testing.T) {
    note := "out of town"
    notifType, message := responseNotification(model.ActionDecline, &note)
    assert.Equal(t, model.NotifyScheduleChanged, notifType)
    assert.Equal(t, "declined (out of town)", message)

    notifType, message = responseNotification(model.ActionRequestSubstitute, nil)
    assert.Equal(t, model.NotifyScheduleChanged, notifType)
    assert.Equal(t, "requested a substitute", message)
}
