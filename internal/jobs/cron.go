package jobs

import (
    "context"
    "sync/atomic"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/report"
)

type service interface {
    SummaryReport(ctx context.Context, req report.SummaryRequest) (*report.SummaryResult, error)
}

// Cron keeps the current-sprint summary warm in the cache so dashboard
// refreshes between runs are served instantly.
type Cron struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     service
    c       *cron.Cron
    running atomic.Bool
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
    loc, _ := time.LoadLocation(cfg.TZ)
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
    _, _ = c.AddFunc(cfg.WarmCron, cr.warm)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) warm() {
    if !cr.running.CompareAndSwap(false, true) {
        cr.log.Info().Msg("cron: warm already running")
        return
    }
    defer cr.running.Store(false)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
    defer cancel()

    cr.log.Info().Msg("cron: warming current-sprint summary")
    _, err := cr.svc.SummaryReport(ctx, report.SummaryRequest{
        Duration:   report.DurationCurrentSprint,
        GraceHours: cr.cfg.ScopeGraceHours,
    })
    if err != nil {
        cr.log.Error().Err(err).Msg("cron: warm failed")
    }
}
