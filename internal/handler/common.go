// Package handler defines the HTTP handlers for the scheduling API.
package handler

import (
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user id from the echo context.  The
// JWT middleware stores the raw claim value, whose concrete type depends on
// how the JSON numbers were decoded.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// parseDate parses a YYYY-MM-DD value in UTC.
func parseDate(s string) (time.Time, error) {
    return time.Parse("2006-01-02", s)
}
