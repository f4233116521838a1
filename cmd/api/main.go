package main

import (
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/cache"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    internalhttp "github.com/sandeep-truxnow/trux-jira-metrics/internal/http"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/jobs"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/logger"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/report"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/sprint"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)

    cal, err := sprint.New(cfg.SprintAnchorID, cfg.SprintAnchorStart, cfg.SprintLengthDays, time.Local)
    if err != nil {
        log.Fatal().Err(err).Msg("invalid sprint calendar configuration")
    }

    // Adapters
    jc := jira.NewClient(cfg, log)

    // Services
    store := cache.NewMemory(cfg.CacheTTL)
    gen := report.NewGenerator(cfg, log, jc, store, cal)

    // HTTP server (Gin)
    router := internalhttp.NewRouter(cfg, log, gen)

    // Cron
    warmer := jobs.NewCron(cfg, log, gen)
    warmer.Start()
    defer warmer.Stop()

    // graceful shutdown
    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
