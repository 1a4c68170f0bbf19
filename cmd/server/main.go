package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/calendar"
    "github.com/serveteam/volunteer-scheduling/internal/config"
    "github.com/serveteam/volunteer-scheduling/internal/database"
    "github.com/serveteam/volunteer-scheduling/internal/handler"
    "github.com/serveteam/volunteer-scheduling/internal/notify"
    "github.com/serveteam/volunteer-scheduling/internal/queue"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
    "github.com/serveteam/volunteer-scheduling/internal/router"
    queuepublisher "github.com/serveteam/volunteer-scheduling/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the confirmation rate limiter and OAuth connect states.
    // nil is tolerated everywhere: the limiter fails open and calendar
    // connects report the feature unavailable.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and calendar connect disabled")
    }

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    volunteers := repository.NewVolunteerRepo(db)
    schedules := repository.NewScheduleRepo(db)
    confirmations := repository.NewConfirmationRepo(db)
    connections := repository.NewCalendarConnectionRepo(db)
    notifications := repository.NewNotificationRepo(db)

    calSvc := calendar.NewService(cfg, connections)

    var sender notify.Sender
    if cfg.EmailAPIURL != "" && cfg.EmailAPIKey != "" {
        sender = notify.NewHTTPSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
    } else {
        log.Printf("email provider not configured; email channel disabled")
    }
    dispatcher := notify.NewDispatcher(notifications, sender, queuepublisher.Broker{})

    authH := handler.NewAuthHandler(cfg, users, tokens)
    volunteerH := handler.NewVolunteerHandler(volunteers)
    scheduleH := handler.NewScheduleHandler(cfg, schedules, confirmations, volunteers, calSvc, dispatcher)
    confirmH := handler.NewConfirmHandler(schedules, confirmations, volunteers, users, dispatcher)
    availabilityH := handler.NewAvailabilityHandler(volunteers, calSvc)
    calendarH := handler.NewCalendarHandler(calSvc, connections, volunteers, rdb)
    notificationH := handler.NewNotificationHandler(notifications, volunteers, schedules, dispatcher)

    // Background consumer mirrors dispatch events into logs/notifications.log.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterScheduling(e, cfg.JWTSecret, volunteerH, scheduleH, availabilityH, calendarH, notificationH)
    router.RegisterPublic(e, config.LoadRateLimitConfig(), rdb, confirmH, calendarH)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
