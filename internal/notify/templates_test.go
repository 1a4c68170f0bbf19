package notify

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
    title, body := Render("schedule_created", map[string]string{
        "volunteer_name": "Ana",
        "role":           "camera",
        "service_name":   "Sunday Service",
        "service_date":   "2026-03-01",
    })
    assert.Equal(t, "You have been scheduled", title)
    assert.Equal(t, "Hi Ana, you are scheduled as camera for Sunday Service on 2026-03-01.", body)
}

func TestRenderMissingValuesRenderEmpty(t *testing.T) {
    _, body := Render("schedule_created", map[string]string{"volunteer_name": "Ana"})
    assert.Equal(t, "Hi Ana, you are scheduled as  for  on .", body)
    assert.NotContains(t, body, "{")
}

func TestRenderUnknownTypeFallsBack(t *testing.T) {
    title, body := Render("something_new", map[string]string{"message": "hello"})
    assert.Equal(t, "Notification", title)
    assert.Equal(t, "hello", body)
}

func TestRenderConfirmationRequestIncludesLink(t *testing.T) {
    _, body := Render("confirmation_request", map[string]string{
        "volunteer_name": "Ana",
        "role":           "camera",
        "service_name":   "Sunday Service",
        "service_date":   "2026-03-01",
        "message":        "https://serve.example.com/confirm/abc123",
    })
    assert.Contains(t, body, "https://serve.example.com/confirm/abc123")
}

func TestRenderConfirmationReceivedCarriesNote(t *testing.T) {
    _, body := Render("confirmation_received", map[string]string{
        "volunteer_name": "Beto",
        "role":           "som",
        "service_name":   "Evening Service",
        "service_date":   "2026-03-08",
        "message":        "Note: arriving 10 minutes early",
    })
    assert.Contains(t, body, "Note: arriving 10 minutes early")
}

func TestRenderTrimsEmptyTrailingMessage(t *testing.T) {
    _, body := Render("confirmation_received", map[string]string{
        "volunteer_name": "Beto",
        "role":           "som",
        "service_name":   "Evening Service",
        "service_date":   "2026-03-08",
    })
    assert.Equal(t, "Beto confirmed the som assignment for Evening Service on 2026-03-08.", body)
}

func TestRenderLeavesUserBracesAlone(t *testing.T) {
    _, body := Render("schedule_changed", map[string]string{
        "volunteer_name": "Beto",
        "role":           "som",
        "service_name":   "Evening Service",
        "service_date":   "2026-03-08",
        "message":        "out of town {sorry}",
    })
    assert.Contains(t, body, "out of town {sorry}")
}
