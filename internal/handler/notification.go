package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// NotificationHandler exposes manual sends and the in-app notification
// feed.  Scheduled sends (reminders) reuse the same dispatcher through the
// send endpoint, driven by an external cron.
type NotificationHandler struct {
    Notifications *repository.NotificationRepo
    Volunteers    *repository.VolunteerRepo
    Schedules     *repository.ScheduleRepo
    Dispatcher    *notify.Dispatcher
}

func NewNotificationHandler(n *repository.NotificationRepo, v *repository.VolunteerRepo,
    s *repository.ScheduleRepo, d *notify.Dispatcher) *NotificationHandler {
    return &NotificationHandler{Notifications: n, Volunteers: v, Schedules: s, Dispatcher: d}
}

type sendReq struct {
    Type        string  `json:"type"`
    VolunteerID uint64  `json:"volunteer_id"`
    ScheduleID  *uint64 `json:"schedule_id"`
    Message     string  `json:"message"`
}

// Send dispatches one notification to a volunteer.  When a schedule id is
// given its role and service fill the template; the free-form message rides
// along in the {message} placeholder.
func (h *NotificationHandler) Send(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req sendReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if !model.ValidNotificationType(req.Type) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown notification type"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    v, err := h.Volunteers.GetByID(ctx, tenantID, req.VolunteerID)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    values := map[string]string{
        "volunteer_name": v.Name,
        "message":        strings.TrimSpace(req.Message),
    }
    if req.ScheduleID != nil {
        e, err := h.Schedules.GetByID(ctx, tenantID, *req.ScheduleID)
        if err != nil {
            if err == repository.ErrNotFound {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule entry not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load entry failed"})
        }
        values["role"] = e.Role
        values["service_name"] = e.ServiceName
        values["service_date"] = e.ServiceDate.UTC().Format("2006-01-02")
    }

    if err := h.Dispatcher.Dispatch(c.Request().Context(), notify.Request{
        TenantID:    tenantID,
        Type:        req.Type,
        ScheduleID:  req.ScheduleID,
        RecipientID: v.ID,
        Email:       v.Email,
        Values:      values,
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dispatch failed"})
    }
    return c.JSON(http.StatusAccepted, echo.Map{"status": "dispatched"})
}

type notificationResp struct {
    ID         uint64  `json:"id"`
    Type       string  `json:"type"`
    Title      string  `json:"title"`
    Message    string  `json:"message"`
    ScheduleID *uint64 `json:"schedule_id,omitempty"`
    IsRead     bool    `json:"is_read"`
    CreatedAt  string  `json:"created_at"`
}

// ListForVolunteer returns a volunteer's in-app notifications, newest
// first.  ?unread=true restricts to unseen records.
func (h *NotificationHandler) ListForVolunteer(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    volunteerID, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    unreadOnly := c.QueryParam("unread") == "true"

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Volunteers.GetByID(ctx, tenantID, volunteerID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    list, err := h.Notifications.ListByRecipient(ctx, tenantID, volunteerID, unreadOnly)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notifications failed"})
    }
    out := make([]notificationResp, 0, len(list))
    for _, n := range list {
        out = append(out, notificationResp{
            ID:         n.ID,
            Type:       n.Type,
            Title:      n.Title,
            Message:    n.Message,
            ScheduleID: n.ScheduleID,
            IsRead:     n.IsRead,
            CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, out)
}

// MarkRead flips the read flag on one notification.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Notifications.MarkRead(ctx, tenantID, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
