package calendar

import (
    "context"
    "log"
    "time"

    gcal "google.golang.org/api/calendar/v3"
    "google.golang.org/api/option"

    "golang.org/x/oauth2"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
    "github.com/serveteam/volunteer-scheduling/internal/scheduler"
)

// BusySlot is one busy interval reported by the external calendar,
// half-open: a slot ending exactly when the window starts does not count
// as a conflict.
type BusySlot struct {
    Start time.Time `json:"start"`
    End   time.Time `json:"end"`
}

// Result is the structured answer of an availability check.  Connected is
// false when the volunteer has no usable connection; Available is then true
// so a disconnected calendar never blocks an assignment.  Err carries a
// human-readable degradation note when the upstream query failed.
type Result struct {
    Connected bool       `json:"connected"`
    Available bool       `json:"available"`
    BusySlots []BusySlot `json:"busy_slots,omitempty"`
    Email     string     `json:"email,omitempty"`
    Err       string     `json:"error,omitempty"`
}

// Overlaps reports whether a busy interval conflicts with a window, both
// half-open [start, end).
func Overlaps(busyStart, busyEnd, winStart, winEnd time.Time) bool {
    return busyStart.Before(winEnd) && busyEnd.After(winStart)
}

// CheckAvailability answers whether the volunteer is free during the
// window.  It never returns an error to the caller: missing connections
// and upstream failures are reported inside the Result, with Available
// defaulting to true in both cases.
func (s *Service) CheckAvailability(ctx context.Context, tenantID, volunteerID uint64, winStart, winEnd time.Time) Result {
    if !s.Enabled() {
        return Result{Connected: false, Available: true}
    }
    conn, err := s.conns.GetActiveByVolunteer(ctx, tenantID, volunteerID)
    if err != nil {
        if err != repository.ErrNotFound {
            log.Printf("calendar: loading connection volunteer_id=%d: %v", volunteerID, err)
        }
        return Result{Connected: false, Available: true}
    }

    tok, err := s.ensureFreshToken(ctx, conn)
    if err != nil {
        // Refresh failure deactivated the connection; treat as never
        // connected from here on.
        return Result{Connected: false, Available: true}
    }

    busy, err := s.freeBusy(ctx, tok, conn.CalendarID, winStart, winEnd)
    if err != nil {
        log.Printf("calendar: free/busy query volunteer_id=%d: %v", volunteerID, err)
        return Result{Connected: true, Available: true, Email: conn.Email, Err: "calendar unavailable"}
    }
    if err := s.conns.TouchLastSync(ctx, conn.ID); err != nil {
        log.Printf("calendar: touch last_sync connection_id=%d: %v", conn.ID, err)
    }

    var conflicts []BusySlot
    for _, b := range busy {
        if Overlaps(b.Start, b.End, winStart, winEnd) {
            conflicts = append(conflicts, b)
        }
    }
    return Result{
        Connected: true,
        Available: len(conflicts) == 0,
        BusySlots: conflicts,
        Email:     conn.Email,
    }
}

// freeBusy runs the upstream free/busy query for a single calendar.
func (s *Service) freeBusy(ctx context.Context, tok *oauth2.Token, calendarID string, winStart, winEnd time.Time) ([]BusySlot, error) {
    ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
    defer cancel()
    srv, err := gcal.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, tok)))
    if err != nil {
        return nil, err
    }
    resp, err := srv.Freebusy.Query(&gcal.FreeBusyRequest{
        TimeMin: winStart.Format(time.RFC3339),
        TimeMax: winEnd.Format(time.RFC3339),
        Items:   []*gcal.FreeBusyRequestItem{{Id: calendarID}},
    }).Context(ctx).Do()
    if err != nil {
        return nil, err
    }
    var out []BusySlot
    for _, cal := range resp.Calendars {
        for _, p := range cal.Busy {
            start, err := time.Parse(time.RFC3339, p.Start)
            if err != nil {
                continue
            }
            end, err := time.Parse(time.RFC3339, p.End)
            if err != nil {
                continue
            }
            out = append(out, BusySlot{Start: start, End: end})
        }
    }
    return out, nil
}

// Checker adapts the service to the assignment engine's availability
// interface for one tenant.
type Checker struct {
    Service  *Service
    TenantID uint64
}

// Available implements scheduler.AvailabilityChecker.
func (c Checker) Available(ctx context.Context, v model.Volunteer, w scheduler.Window) bool {
    return c.Service.CheckAvailability(ctx, c.TenantID, v.ID, w.Start, w.End).Available
}
