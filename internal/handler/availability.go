package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/calendar"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// AvailabilityHandler answers ad-hoc free/busy questions for a single
// volunteer, backed by the calendar adapter.
type AvailabilityHandler struct {
    Volunteers *repository.VolunteerRepo
    Calendar   *calendar.Service
}

func NewAvailabilityHandler(v *repository.VolunteerRepo, cal *calendar.Service) *AvailabilityHandler {
    return &AvailabilityHandler{Volunteers: v, Calendar: cal}
}

// Check handles GET /v1/availability?volunteer_id=&start=&end= with RFC3339
// timestamps.  The answer degrades rather than fails: a volunteer without a
// calendar connection (or a broken upstream) comes back connected=false /
// available=true.
func (h *AvailabilityHandler) Check(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    volunteerID, err := strconv.ParseUint(c.QueryParam("volunteer_id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "volunteer_id required"})
    }
    start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be RFC3339"})
    }
    end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be RFC3339"})
    }
    if !end.After(start) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Volunteers.GetByID(ctx, tenantID, volunteerID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    result := h.Calendar.CheckAvailability(c.Request().Context(), tenantID, volunteerID, start, end)
    return c.JSON(http.StatusOK, result)
}
