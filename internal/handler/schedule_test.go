package handler

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
)

func TestAssignmentNotificationsFanOut(t *testing.T) {
    email := "ana@example.com"
    e := &model.ScheduleEntry{
        ID:          42,
        TenantID:    7,
        ServiceDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
        ServiceName: "Sunday Service",
        Role:        "camera",
        VolunteerID: 9,
        Status:      model.StatusScheduled,
    }

    reqs := assignmentNotifications(7, e, "Ana", &email, "https://serve.example.com/confirm/abc123")
    require.Len(t, reqs, 2)

    created, confirm := reqs[0], reqs[1]
    assert.Equal(t, model.NotifyScheduleCreated, created.Type)
    assert.Equal(t, uint64(9), created.RecipientID)
    require.NotNil(t, created.ScheduleID)
    assert.Equal(t, uint64(42), *created.ScheduleID)
    assert.Equal(t, "Ana", created.Values["volunteer_name"])
    assert.Equal(t, "camera", created.Values["role"])

    assert.Equal(t, model.NotifyConfirmationRequest, confirm.Type)
    assert.Equal(t, &email, confirm.Email)
    assert.Equal(t, "https://serve.example.com/confirm/abc123", confirm.Values["message"])
}

func TestAssignmentNotificationLinkRenders(t *testing.T) {
    e := &model.ScheduleEntry{
        ID:          42,
        TenantID:    7,
        ServiceDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
        ServiceName: "Sunday Service",
        Role:        "camera",
        VolunteerID: 9,
    }
    reqs := assignmentNotifications(7, e, "Ana", nil, "https://serve.example.com/confirm/abc123")
    require.Len(t, reqs, 2)
    _, body := notify.Render(reqs[1].Type, reqs[1].Values)
    assert.Contains(t, body, "https://serve.example.com/confirm/abc123")
}
