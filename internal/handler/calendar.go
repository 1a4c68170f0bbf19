package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/serveteam/volunteer-scheduling/internal/calendar"
    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// stateTTL bounds how long a started OAuth connect flow stays valid.
const stateTTL = 10 * time.Minute

// CalendarHandler manages per-volunteer Google Calendar connections.  The
// connect flow parks a random state value in redis so the public callback
// can recover which tenant and volunteer started it; without redis the
// feature reports itself unavailable instead of falling back to something
// guessable.
type CalendarHandler struct {
    Calendar    *calendar.Service
    Connections *repository.CalendarConnectionRepo
    Volunteers  *repository.VolunteerRepo
    Redis       *redis.Client // nil disables the connect flow
}

func NewCalendarHandler(cal *calendar.Service, conns *repository.CalendarConnectionRepo,
    v *repository.VolunteerRepo, rdb *redis.Client) *CalendarHandler {
    return &CalendarHandler{Calendar: cal, Connections: conns, Volunteers: v, Redis: rdb}
}

func stateKey(state string) string { return "oauth_state:" + state }

// Connect starts the OAuth flow for a volunteer and returns the Google
// consent URL the administrator forwards to them.
func (h *CalendarHandler) Connect(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !h.Calendar.Enabled() {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar integration not configured"})
    }
    if h.Redis == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar connect unavailable"})
    }
    volunteerID, err := strconv.ParseUint(c.QueryParam("volunteer_id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "volunteer_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if _, err := h.Volunteers.GetByID(ctx, tenantID, volunteerID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    state := uuid.NewString()
    val := fmt.Sprintf("%d:%d", tenantID, volunteerID)
    if err := h.Redis.Set(ctx, stateKey(state), val, stateTTL).Err(); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar connect unavailable"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "auth_url":   h.Calendar.AuthCodeURL(state),
        "expires_in": int(stateTTL / time.Second),
    })
}

// Callback completes the OAuth flow.  Google redirects the volunteer's
// browser here; the state parameter is single-use and ties the code back to
// the tenant and volunteer that initiated the connect.
func (h *CalendarHandler) Callback(c echo.Context) error {
    if h.Redis == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "calendar connect unavailable"})
    }
    state := c.QueryParam("state")
    code := c.QueryParam("code")
    if state == "" || code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "state and code required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    val, err := h.Redis.GetDel(ctx, stateKey(state)).Result()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or expired state"})
    }
    parts := strings.SplitN(val, ":", 2)
    if len(parts) != 2 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or expired state"})
    }
    tenantID, err1 := strconv.ParseUint(parts[0], 10, 64)
    volunteerID, err2 := strconv.ParseUint(parts[1], 10, 64)
    if err1 != nil || err2 != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or expired state"})
    }

    tok, err := h.Calendar.Exchange(c.Request().Context(), code)
    if err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "token exchange failed"})
    }
    // For Google accounts the primary calendar id is the account email.
    email, err := h.Calendar.PrimaryCalendar(c.Request().Context(), tok)
    if err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "resolve calendar failed"})
    }

    conn := &model.CalendarConnection{
        TenantID:     tenantID,
        VolunteerID:  &volunteerID,
        AccessToken:  tok.AccessToken,
        RefreshToken: tok.RefreshToken,
        TokenExpiry:  tok.Expiry.UTC(),
        CalendarID:   email,
        Email:        email,
    }
    if err := h.Connections.Upsert(ctx, conn); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save connection failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "message": "calendar connected",
        "email":   email,
    })
}

// Disconnect deactivates a volunteer's calendar connection.  The stored row
// survives so the volunteer can reconnect later.
func (h *CalendarHandler) Disconnect(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    volunteerID, err := parseIDParam(c, "volunteer_id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid volunteer_id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    conn, err := h.Connections.GetActiveByVolunteer(ctx, tenantID, volunteerID)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no active calendar connection"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load connection failed"})
    }
    if err := h.Connections.Deactivate(ctx, conn.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "disconnect failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
