package http

import (
    "context"
    "errors"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/report"
)

type reportService interface {
    SummaryReport(ctx context.Context, req report.SummaryRequest) (*report.SummaryResult, error)
    DetailedReport(ctx context.Context, req report.DetailedRequest) (*report.DetailedResult, error)
    Comparison(ctx context.Context, durations []string, graceHours float64) (map[string]*report.SummaryResult, error)
    PreviousSprintDurations(n int) []string
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc reportService
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc reportService) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Teams(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"teams": h.cfg.Teams})
}

// Sprints lists the previous sprint duration names, newest first. The count
// is clamped to the 1..10 range the dashboard offers.
func (h *Handlers) Sprints(c *gin.Context) {
    count := h.cfg.DefaultSprintCount
    if raw := c.Query("count"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a number"})
            return
        }
        count = n
    }
    if count < 1 {
        count = 1
    }
    if count > 10 {
        count = 10
    }
    c.JSON(http.StatusOK, gin.H{"sprints": h.svc.PreviousSprintDurations(count)})
}

type summaryRequest struct {
    Duration        string   `json:"duration"`
    ScopeGraceHours *float64 `json:"scope_grace_hours"`
}

func (h *Handlers) Summary(c *gin.Context) {
    var body summaryRequest
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if body.Duration == "" {
        body.Duration = report.DurationCurrentSprint
    }
    grace := h.cfg.ScopeGraceHours
    if body.ScopeGraceHours != nil {
        grace = *body.ScopeGraceHours
    }
    if grace < 0 || grace > 168 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "scope_grace_hours must be between 0 and 168"})
        return
    }

    res, err := h.svc.SummaryReport(c.Request.Context(), report.SummaryRequest{
        Duration:   body.Duration,
        GraceHours: grace,
    })
    if err != nil {
        h.fail(c, err)
        return
    }
    c.JSON(http.StatusOK, res)
}

type detailedRequest struct {
    TeamID    string `json:"team_id"`
    Duration  string `json:"duration"`
    StartDate string `json:"start_date"`
    EndDate   string `json:"end_date"`
}

func (h *Handlers) Detailed(c *gin.Context) {
    var body detailedRequest
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if body.TeamID == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "team_id is required"})
        return
    }
    if body.Duration == "" {
        body.Duration = report.DurationCurrentSprint
    }

    res, err := h.svc.DetailedReport(c.Request.Context(), report.DetailedRequest{
        TeamID:    body.TeamID,
        Duration:  body.Duration,
        StartDate: body.StartDate,
        EndDate:   body.EndDate,
    })
    if err != nil {
        h.fail(c, err)
        return
    }
    c.JSON(http.StatusOK, res)
}

type comparisonRequest struct {
    Durations       []string `json:"durations"`
    ScopeGraceHours *float64 `json:"scope_grace_hours"`
}

func (h *Handlers) Comparison(c *gin.Context) {
    var body comparisonRequest
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    if len(body.Durations) == 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "durations are required"})
        return
    }
    grace := h.cfg.ScopeGraceHours
    if body.ScopeGraceHours != nil {
        grace = *body.ScopeGraceHours
    }

    res, err := h.svc.Comparison(c.Request.Context(), body.Durations, grace)
    if err != nil {
        h.fail(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"results": res})
}

// fail maps generator errors onto statuses: configuration and query problems
// are the caller's, a missing connection is ours.
func (h *Handlers) fail(c *gin.Context, err error) {
    switch {
    case errors.Is(err, jira.ErrNotConnected):
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
    case errors.Is(err, jira.ErrEmptyJQL),
        errors.Is(err, report.ErrUnknownDuration),
        errors.Is(err, report.ErrMissingDates):
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    default:
        h.log.Error().Err(err).Msg("report generation failed")
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    }
}
