package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/serveteam/volunteer-scheduling/internal/config"
    "github.com/serveteam/volunteer-scheduling/internal/handler"
    "github.com/serveteam/volunteer-scheduling/internal/middleware"
)

// RegisterScheduling registers the administrator-facing scheduling API
// under /v1 behind JWT + ADMIN role middleware: the volunteer directory,
// schedule generation and management, availability checks, calendar
// connections and the notification feed.
func RegisterScheduling(e *echo.Echo, jwtSecret string,
    vh *handler.VolunteerHandler, sh *handler.ScheduleHandler,
    ah *handler.AvailabilityHandler, ch *handler.CalendarHandler,
    nh *handler.NotificationHandler) {

    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))

    // Volunteer directory.  DELETE deactivates; schedule history keeps
    // referencing the row.
    g.POST("/volunteers", vh.Create)
    g.GET("/volunteers", vh.List)
    g.GET("/volunteers/:id", vh.Get)
    g.PUT("/volunteers/:id", vh.Update)
    g.DELETE("/volunteers/:id", vh.Delete)

    // Schedule store and the assignment engine.
    g.POST("/schedules/generate", sh.Generate)
    g.GET("/schedules", sh.List)
    g.PATCH("/schedules/:id/status", sh.UpdateStatus)
    g.DELETE("/schedules/:id", sh.Delete)
    g.DELETE("/schedules", sh.DeleteByDate)
    g.POST("/schedules/:id/resend", sh.Resend)

    // Calendar availability.
    g.GET("/availability", ah.Check)
    g.GET("/calendar/connect", ch.Connect)
    g.DELETE("/calendar/connections/:volunteer_id", ch.Disconnect)

    // Notifications.
    g.POST("/notifications/send", nh.Send)
    g.GET("/volunteers/:id/notifications", nh.ListForVolunteer)
    g.POST("/notifications/:id/read", nh.MarkRead)
}

// RegisterPublic registers the endpoints reached without a session: the
// confirmation link target and the OAuth callback.  The confirmation
// endpoint carries the token-bucket rate limiter because the token in the
// URL is the only credential involved.
func RegisterPublic(e *echo.Echo, rlCfg config.RateLimitConfig, rdb *redis.Client,
    cfh *handler.ConfirmHandler, ch *handler.CalendarHandler) {

    e.POST("/v1/confirmations/:token", cfh.Respond, middleware.NewTokenBucket(rlCfg, rdb))
    e.GET("/v1/calendar/callback", ch.Callback)
}
