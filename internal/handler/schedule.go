package handler

import (
    "context"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/calendar"
    "github.com/serveteam/volunteer-scheduling/internal/config"
    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
    "github.com/serveteam/volunteer-scheduling/internal/scheduler"
    "github.com/serveteam/volunteer-scheduling/internal/utils"
)

// ScheduleHandler owns schedule generation and the schedule store
// endpoints.  Generation runs the assignment engine and then persists the
// entries plus their confirmation tokens in one transaction, so a crash
// mid-generation leaves no half-created service behind.  Notifications go
// out only after the transaction commits.
type ScheduleHandler struct {
    Cfg           config.Config
    Schedules     *repository.ScheduleRepo
    Confirmations *repository.ConfirmationRepo
    Volunteers    *repository.VolunteerRepo
    Calendar      *calendar.Service // nil when OAuth is not configured
    Dispatcher    *notify.Dispatcher
}

func NewScheduleHandler(cfg config.Config, s *repository.ScheduleRepo, ct *repository.ConfirmationRepo,
    v *repository.VolunteerRepo, cal *calendar.Service, d *notify.Dispatcher) *ScheduleHandler {
    return &ScheduleHandler{Cfg: cfg, Schedules: s, Confirmations: ct, Volunteers: v, Calendar: cal, Dispatcher: d}
}

type generateReq struct {
    ServiceDate         string   `json:"service_date"` // YYYY-MM-DD
    ServiceName         string   `json:"service_name"`
    Roles               []string `json:"roles"`
    StartTime           string   `json:"start_time"` // HH:MM, optional
    EndTime             string   `json:"end_time"`   // HH:MM, optional
    VolunteerIDs        []uint64 `json:"volunteer_ids"`
    RespectAvailability bool     `json:"respect_availability"`
}

type entryResp struct {
    ID              uint64  `json:"id"`
    ServiceDate     string  `json:"service_date"`
    ServiceName     string  `json:"service_name"`
    Role            string  `json:"role"`
    VolunteerID     uint64  `json:"volunteer_id"`
    VolunteerName   string  `json:"volunteer_name,omitempty"`
    StartTime       *string `json:"start_time,omitempty"`
    EndTime         *string `json:"end_time,omitempty"`
    Status          string  `json:"status"`
    Notes           *string `json:"notes,omitempty"`
    ConfirmedAt     *string `json:"confirmed_at,omitempty"`
    ConfirmationURL string  `json:"confirmation_url,omitempty"`
}

func toEntryResp(e *model.ScheduleEntry) entryResp {
    out := entryResp{
        ID:          e.ID,
        ServiceDate: e.ServiceDate.UTC().Format("2006-01-02"),
        ServiceName: e.ServiceName,
        Role:        e.Role,
        VolunteerID: e.VolunteerID,
        StartTime:   e.StartTime,
        EndTime:     e.EndTime,
        Status:      e.Status,
        Notes:       e.Notes,
    }
    if e.ConfirmedAt != nil {
        s := e.ConfirmedAt.UTC().Format(time.RFC3339)
        out.ConfirmedAt = &s
    }
    return out
}

func (h *ScheduleHandler) confirmationURL(token string) string {
    return strings.TrimRight(h.Cfg.ConfirmBaseURL, "/") + "/" + token
}

// serviceWindow derives the availability window from the request.  Without
// explicit times the whole service day counts.
func serviceWindow(date time.Time, startTime, endTime string) scheduler.Window {
    start := date
    end := date.Add(24 * time.Hour)
    if t, err := time.Parse("15:04", startTime); err == nil {
        start = date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
    }
    if t, err := time.Parse("15:04", endTime); err == nil {
        end = date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
    }
    if !end.After(start) {
        end = start.Add(time.Hour)
    }
    return scheduler.Window{Start: start, End: end}
}

// notifyValues builds the template placeholder map for one entry.
func notifyValues(e *model.ScheduleEntry, volunteerName string) map[string]string {
    return map[string]string{
        "volunteer_name": volunteerName,
        "role":           e.Role,
        "service_name":   e.ServiceName,
        "service_date":   e.ServiceDate.UTC().Format("2006-01-02"),
    }
}

// assignmentNotifications builds the post-commit fan-out for one freshly
// created assignment: the scheduling notice, then the confirmation request
// carrying the response link.
func assignmentNotifications(tenantID uint64, e *model.ScheduleEntry, volunteerName string, email *string, link string) []notify.Request {
    confirmValues := notifyValues(e, volunteerName)
    confirmValues["message"] = link
    return []notify.Request{
        {
            TenantID:    tenantID,
            Type:        model.NotifyScheduleCreated,
            ScheduleID:  &e.ID,
            RecipientID: e.VolunteerID,
            Email:       email,
            Values:      notifyValues(e, volunteerName),
        },
        {
            TenantID:    tenantID,
            Type:        model.NotifyConfirmationRequest,
            ScheduleID:  &e.ID,
            RecipientID: e.VolunteerID,
            Email:       email,
            Values:      confirmValues,
        },
    }
}

// Generate staffs one service instance: it runs the assignment engine over
// the tenant's active volunteers, persists the resulting entries together
// with one confirmation token each, and after commit notifies each assigned
// volunteer (a scheduling notice plus the confirmation request carrying the
// response link).  Unfillable roles are skipped and reported, not failed;
// an empty effective pool is the only hard error.
func (h *ScheduleHandler) Generate(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req generateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    date, err := parseDate(req.ServiceDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_date must be YYYY-MM-DD"})
    }
    roles := make([]string, 0, len(req.Roles))
    for _, r := range req.Roles {
        r = strings.ToLower(strings.TrimSpace(r))
        if r != "" {
            roles = append(roles, r)
        }
    }
    if len(roles) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "roles required"})
    }

    reqCtx := c.Request().Context()
    dbCtx, cancel := context.WithTimeout(reqCtx, dbTimeout)
    defer cancel()

    var pool []model.Volunteer
    if len(req.VolunteerIDs) > 0 {
        pool, err = h.Volunteers.ListActiveByIDs(dbCtx, tenantID, req.VolunteerIDs)
    } else {
        pool, err = h.Volunteers.List(dbCtx, tenantID, true)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteers failed"})
    }

    opts := scheduler.Options{Window: serviceWindow(date, req.StartTime, req.EndTime)}
    if req.RespectAvailability && h.Calendar != nil && h.Calendar.Enabled() {
        opts.RespectAvailability = true
        opts.Checker = calendar.Checker{Service: h.Calendar, TenantID: tenantID}
    }

    // Availability checks call out to the calendar API, so the engine runs
    // under the request context rather than the short database timeout.
    assignments, unfilled, err := scheduler.Assign(reqCtx, roles, pool, opts)
    if err != nil {
        if err == scheduler.ErrNoVolunteers {
            return c.JSON(http.StatusConflict, echo.Map{"error": "no volunteers available"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assignment failed"})
    }

    var startTime, endTime *string
    if req.StartTime != "" {
        startTime = &req.StartTime
    }
    if req.EndTime != "" {
        endTime = &req.EndTime
    }

    tx, err := h.Schedules.DB().BeginTx(dbCtx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    type createdEntry struct {
        entry    *model.ScheduleEntry
        name     string
        rawToken string
    }
    created := make([]createdEntry, 0, len(assignments))
    for _, a := range assignments {
        e := &model.ScheduleEntry{
            TenantID:    tenantID,
            ServiceDate: date,
            ServiceName: strings.TrimSpace(req.ServiceName),
            Role:        a.Role,
            VolunteerID: a.VolunteerID,
            StartTime:   startTime,
            EndTime:     endTime,
            Status:      model.StatusScheduled,
        }
        if err := h.Schedules.CreateTx(dbCtx, tx, e); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create entry failed"})
        }
        tok, err := utils.NewConfirmToken(h.Cfg.ConfirmTokenTTLDays)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
        }
        if _, err := h.Confirmations.CreateTx(dbCtx, tx, e.ID, tok.Raw, tok.Exp); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create token failed"})
        }
        created = append(created, createdEntry{entry: e, name: a.VolunteerName, rawToken: tok.Raw})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    // Post-commit fan-out.  Delivery failures are the dispatcher's problem;
    // the schedule itself is already durable.
    byID := make(map[uint64]*model.Volunteer, len(pool))
    for i := range pool {
        byID[pool[i].ID] = &pool[i]
    }
    out := make([]entryResp, 0, len(created))
    for _, ce := range created {
        v := byID[ce.entry.VolunteerID]
        var email *string
        if v != nil {
            email = v.Email
        }
        for _, r := range assignmentNotifications(tenantID, ce.entry, ce.name, email, h.confirmationURL(ce.rawToken)) {
            if err := h.Dispatcher.Dispatch(reqCtx, r); err != nil {
                log.Printf("schedule: %s dispatch for entry %d failed: %v", r.Type, ce.entry.ID, err)
            }
        }

        er := toEntryResp(ce.entry)
        er.VolunteerName = ce.name
        er.ConfirmationURL = h.confirmationURL(ce.rawToken)
        out = append(out, er)
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "service_date": date.Format("2006-01-02"),
        "service_name": strings.TrimSpace(req.ServiceName),
        "entries":      out,
        "unfilled":     unfilled,
    })
}

// List returns the tenant's schedule entries for a date range, defaulting
// to the next 30 days.
func (h *ScheduleHandler) List(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    from := time.Now().UTC().Truncate(24 * time.Hour)
    to := from.Add(30 * 24 * time.Hour)
    if s := c.QueryParam("from"); s != "" {
        if from, err = parseDate(s); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
        }
    }
    if s := c.QueryParam("to"); s != "" {
        if to, err = parseDate(s); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
        }
    }
    if to.Before(from) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "to before from"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    entries, err := h.Schedules.ListByDateRange(ctx, tenantID, from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list schedules failed"})
    }
    out := make([]entryResp, 0, len(entries))
    for i := range entries {
        out = append(out, toEntryResp(&entries[i]))
    }
    return c.JSON(http.StatusOK, out)
}

type statusReq struct {
    Status string `json:"status"`
}

// UpdateStatus applies a manual administrator override to one entry.
func (h *ScheduleHandler) UpdateStatus(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req statusReq
    if err := c.Bind(&req); err != nil || !model.ValidStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    updatedBy := "admin:" + strconv.FormatUint(tenantID, 10)
    if err := h.Schedules.UpdateStatus(ctx, tenantID, id, req.Status, updatedBy); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule entry not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
    }
    e, err := h.Schedules.GetByID(ctx, tenantID, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load entry failed"})
    }
    return c.JSON(http.StatusOK, toEntryResp(e))
}

// Delete removes one schedule entry.
func (h *ScheduleHandler) Delete(c echo.Context) error {
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

    if err := h.Schedules.Delete(ctx, tenantID, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule entry not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete entry failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// DeleteByDate clears every entry for one service date.  Clearing an empty
// date is not an error; the response reports how many rows went away.
func (h *ScheduleHandler) DeleteByDate(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    date, err := parseDate(c.QueryParam("service_date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_date must be YYYY-MM-DD"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    n, err := h.Schedules.DeleteByDate(ctx, tenantID, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete entries failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// Resend re-sends the confirmation link for an entry.  The pending token is
// reused when one exists; otherwise a fresh token is minted, which also
// covers entries whose original token expired unanswered.
func (h *ScheduleHandler) Resend(c echo.Context) error {
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

    e, err := h.Schedules.GetByID(ctx, tenantID, id)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule entry not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load entry failed"})
    }
    if e.Status != model.StatusScheduled {
        return c.JSON(http.StatusConflict, echo.Map{"error": "entry already responded to", "status": e.Status})
    }

    var raw string
    pending, err := h.Confirmations.PendingByEntry(ctx, e.ID)
    switch {
    case err == nil:
        raw = pending.Token
    case err == repository.ErrNotFound:
        tok, err := utils.NewConfirmToken(h.Cfg.ConfirmTokenTTLDays)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
        }
        tx, err := h.Schedules.DB().BeginTx(ctx, nil)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
        }
        if _, err := h.Confirmations.CreateTx(ctx, tx, e.ID, tok.Raw, tok.Exp); err != nil {
            _ = tx.Rollback()
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create token failed"})
        }
        if err := tx.Commit(); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
        }
        raw = tok.Raw
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load token failed"})
    }

    v, err := h.Volunteers.GetByID(ctx, tenantID, e.VolunteerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }
    values := notifyValues(e, v.Name)
    values["message"] = h.confirmationURL(raw)
    if err := h.Dispatcher.Dispatch(c.Request().Context(), notify.Request{
        TenantID:    tenantID,
        Type:        model.NotifyConfirmationRequest,
        ScheduleID:  &e.ID,
        RecipientID: e.VolunteerID,
        Email:       v.Email,
        Values:      values,
    }); err != nil {
        log.Printf("schedule: resend dispatch for entry %d failed: %v", e.ID, err)
    }

    return c.JSON(http.StatusAccepted, echo.Map{
        "schedule_id":      e.ID,
        "confirmation_url": h.confirmationURL(raw),
    })
}
