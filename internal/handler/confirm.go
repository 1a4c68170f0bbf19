package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// ConfirmHandler serves the public confirmation endpoint.  There is no
// session here: the opaque token in the URL is the whole authorization, so
// the handler never filters by tenant and must treat an unknown token and a
// token from another tenant identically (404).
type ConfirmHandler struct {
    Schedules     *repository.ScheduleRepo
    Confirmations *repository.ConfirmationRepo
    Volunteers    *repository.VolunteerRepo
    Users         *repository.UserRepo
    Dispatcher    *notify.Dispatcher
}

func NewConfirmHandler(s *repository.ScheduleRepo, ct *repository.ConfirmationRepo,
    v *repository.VolunteerRepo, u *repository.UserRepo, d *notify.Dispatcher) *ConfirmHandler {
    return &ConfirmHandler{Schedules: s, Confirmations: ct, Volunteers: v, Users: u, Dispatcher: d}
}

type confirmReq struct {
    Action string  `json:"action"` // confirm | decline | request_substitute
    Notes  *string `json:"notes"`
}

// Respond consumes a confirmation token and applies the volunteer's answer
// to the schedule entry.  The token is single-use: consumption and the
// schedule update happen in one transaction guarded by a conditional
// update, so concurrent submissions resolve to exactly one winner and the
// loser learns which action was recorded first.
func (h *ConfirmHandler) Respond(c echo.Context) error {
    raw := strings.TrimSpace(c.Param("token"))
    if raw == "" {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown token"})
    }
    var req confirmReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if !model.ValidAction(req.Action) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be confirm, decline or request_substitute"})
    }
    status, _ := model.StatusForAction(req.Action)

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    tok, err := h.Confirmations.GetByToken(ctx, raw)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load token failed"})
    }

    // Expired pending tokens are rejected without mutation, so the row can
    // still be inspected; consumed tokens stay consumed past their expiry.
    switch tok.State(time.Now().UTC()) {
    case model.TokenExpired:
        return c.JSON(http.StatusGone, echo.Map{"error": "token expired"})
    case model.TokenConsumed:
        return c.JSON(http.StatusConflict, echo.Map{
            "error":        "token already used",
            "action_taken": tok.ActionTaken,
        })
    }

    entry, err := h.Schedules.GetByIDAnyTenant(ctx, tok.ScheduleEntryID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load entry failed"})
    }
    volunteer, err := h.Volunteers.GetByID(ctx, entry.TenantID, entry.VolunteerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    tx, err := h.Schedules.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Confirmations.ConsumeTx(ctx, tx, tok.ID, req.Action, req.Notes); err != nil {
        if err == repository.ErrTokenUsed {
            // Lost the race: report what the winner recorded.
            prior, rerr := h.Confirmations.GetByTokenTx(ctx, tx, raw)
            if rerr != nil {
                return c.JSON(http.StatusConflict, echo.Map{"error": "token already used"})
            }
            return c.JSON(http.StatusConflict, echo.Map{
                "error":        "token already used",
                "action_taken": prior.ActionTaken,
            })
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "consume token failed"})
    }
    isConfirm := req.Action == model.ActionConfirm
    if err := h.Schedules.ApplyActionTx(ctx, tx, entry.ID, status, isConfirm, volunteer.Name, req.Notes); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update entry failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    h.notifyAdmin(c.Request().Context(), entry, volunteer, req.Action, req.Notes)

    updated, err := h.Schedules.GetByIDAnyTenant(ctx, entry.ID)
    if err != nil {
        // The write committed; answer from what we know.
        entry.Status = status
        updated = entry
    }
    return c.JSON(http.StatusOK, echo.Map{
        "action":   req.Action,
        "schedule": toEntryResp(updated),
    })
}

// responseNotification maps a volunteer's action to the notification type
// and message the administrator sees.  Confirmations get their own type,
// with the volunteer's note carried along; declines and substitute
// requests arrive as schedule changes that need action.
func responseNotification(action string, notes *string) (notifType, message string) {
    notifType = model.NotifyScheduleChanged
    switch action {
    case model.ActionConfirm:
        notifType = model.NotifyConfirmationReceived
        if notes != nil && *notes != "" {
            message = "Note: " + *notes
        }
        return notifType, message
    case model.ActionRequestSubstitute:
        message = "requested a substitute"
    default:
        message = "declined"
    }
    if notes != nil && *notes != "" {
        message += " (" + *notes + ")"
    }
    return notifType, message
}

// notifyAdmin tells the owning administrator how the volunteer responded.
func (h *ConfirmHandler) notifyAdmin(ctx context.Context, e *model.ScheduleEntry, v *model.Volunteer, action string, notes *string) {
    notifType, message := responseNotification(action, notes)

    var adminEmail *string
    admin, err := h.Users.GetByID(ctx, e.TenantID)
    if err == nil {
        adminEmail = &admin.Email
    }

    values := notifyValues(e, v.Name)
    values["message"] = message
    if err := h.Dispatcher.Dispatch(ctx, notify.Request{
        TenantID:    e.TenantID,
        Type:        notifType,
        ScheduleID:  &e.ID,
        RecipientID: e.TenantID,
        Email:       adminEmail,
        Values:      values,
    }); err != nil {
        log.Printf("confirm: admin dispatch for entry %d failed: %v", e.ID, err)
    }
}
