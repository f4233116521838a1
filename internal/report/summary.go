// Package report generates the team delivery reports by mining issue
// changelogs. The summary path runs two bounded pool layers: teams fan out
// first, then each team's issues.
package report

import (
    "context"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/cache"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/sprint"
)

// JiraClient is the slice of the Jira adapter the generator needs.
type JiraClient interface {
    Ready() error
    SearchIssues(ctx context.Context, jql string, fields []string) ([]jira.Issue, error)
    IssueWithChangelog(ctx context.Context, key string) (*jira.Issue, error)
}

type Generator struct {
    cfg   config.Config
    log   zerolog.Logger
    jira  JiraClient
    cache cache.Cache
    cal   *sprint.Calendar
    now   func() time.Time
}

func NewGenerator(cfg config.Config, log zerolog.Logger, client JiraClient, c cache.Cache, cal *sprint.Calendar) *Generator {
    if c == nil {
        c = cache.Nop{}
    }
    return &Generator{cfg: cfg, log: log, jira: client, cache: c, cal: cal, now: time.Now}
}

type SummaryRequest struct {
    Duration   string
    GraceHours float64
}

type SprintMeta struct {
    ID             string  `json:"id"`
    Start          string  `json:"start"`
    End            string  `json:"end"`
    ElapsedPercent float64 `json:"elapsed_percent"`
}

type SummaryResult struct {
    Duration    string               `json:"duration"`
    Sprint      SprintMeta           `json:"sprint"`
    Rows        []domain.TeamSummary `json:"rows"`
    GrandTotal  domain.TeamSummary   `json:"grand_total"`
    Logs        []string             `json:"logs"`
    GeneratedAt time.Time            `json:"generated_at"`
}

// SummaryReport aggregates every configured team for a sprint-scoped
// duration. Teams with no issues produce zero-valued rows so the team list
// stays stable; per-issue failures are logged and excluded. A client without
// credentials or an empty query fails the whole call.
func (g *Generator) SummaryReport(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
    if err := g.jira.Ready(); err != nil {
        return nil, err
    }
    if !IsSprintDuration(req.Duration) {
        return nil, fmt.Errorf("%w: summary reports are sprint-scoped, got %q", ErrUnknownDuration, req.Duration)
    }
    if len(g.cfg.Teams) == 0 {
        return nil, fmt.Errorf("report: no teams configured")
    }

    key := fmt.Sprintf("summary|%s|%g", req.Duration, req.GraceHours)
    if v, ok := g.cache.Get(key); ok {
        if cached, ok := v.(*SummaryResult); ok {
            return cached, nil
        }
    }

    sp, err := g.sprintWindow(req.Duration)
    if err != nil {
        return nil, err
    }

    runlog := NewRunLog(g.log)
    rows := make([]domain.TeamSummary, len(g.cfg.Teams))

    eg, gctx := errgroup.WithContext(ctx)
    eg.SetLimit(poolSize(g.cfg.TeamWorkers, len(g.cfg.Teams)))
    for i, team := range g.cfg.Teams {
        i, team := i, team
        eg.Go(func() error {
            rows[i] = g.teamSummary(gctx, team, req, sp, runlog)
            return nil
        })
    }
    if err := eg.Wait(); err != nil {
        return nil, err
    }
    runlog.Infof("Report generated!")

    sort.Slice(rows, func(i, j int) bool { return rows[i].TeamName < rows[j].TeamName })

    result := &SummaryResult{
        Duration:    req.Duration,
        Sprint:      g.sprintMeta(sp),
        Rows:        rows,
        GrandTotal:  GrandTotal(rows),
        Logs:        runlog.Lines(),
        GeneratedAt: g.now(),
    }
    g.cache.Set(key, result)
    return result, nil
}

func (g *Generator) teamSummary(ctx context.Context, team config.Team, req SummaryRequest, sp sprint.Sprint, runlog *RunLog) domain.TeamSummary {
    row := reduceTeam(team, nil)

    jql := SummaryJQL(team.ID, team.Name, req.Duration)
    runlog.Infof("Generated JQL for %s: %s", team.Name, jql)

    issues, err := g.jira.SearchIssues(ctx, jql, []string{"key"})
    if err != nil {
        runlog.Errorf("Failed to fetch issues for team %s: %v", team.Name, err)
        return row
    }
    if len(issues) == 0 {
        runlog.Warnf("No issues found for team %s. Report will be empty.", team.Name)
        return row
    }
    runlog.Infof("Found %d issues for team %s.", len(issues), team.Name)

    target := team.Name + " " + sp.ID
    metrics := g.collectIssueMetrics(ctx, issues, sp, target, req.GraceHours, runlog)
    return reduceTeam(team, metrics)
}

// collectIssueMetrics fans the team's issues across the inner worker pool.
// Results are appended under a lock, so ordering follows completion, not
// input; every reduction downstream is order-independent.
func (g *Generator) collectIssueMetrics(ctx context.Context, issues []jira.Issue, sp sprint.Sprint, target string, graceHours float64, runlog *RunLog) []domain.IssueMetrics {
    jobs := make(chan string)
    var mu sync.Mutex
    var out []domain.IssueMetrics

    var wg sync.WaitGroup
    workers := poolSize(g.cfg.IssueWorkers, len(issues))
    for w := 0; w < workers; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for key := range jobs {
                full, err := g.jira.IssueWithChangelog(ctx, key)
                if err != nil {
                    runlog.Errorf("Network error fetching issue %s: %v", key, err)
                    continue
                }
                m, err := ExtractIssueMetrics(full, g.cfg.FieldMap, sp, target, graceHours)
                if err != nil {
                    runlog.Errorf("Error processing issue %s: %v", key, err)
                    continue
                }
                mu.Lock()
                out = append(out, m)
                mu.Unlock()
            }
        }()
    }
    for _, is := range issues {
        jobs <- is.Key
    }
    close(jobs)
    wg.Wait()
    return out
}

func reduceTeam(team config.Team, metrics []domain.IssueMetrics) domain.TeamSummary {
    row := domain.TeamSummary{TeamID: team.ID, TeamName: team.Name}
    if len(metrics) == 0 {
        row.ScopeChange = FormatScopeChange(0, 0, 0, 0)
        return row
    }

    var sprintSeconds, allTimeSeconds int64
    var completedDays, completedCount int
    var sprintCountTotal int
    for _, m := range metrics {
        row.TotalIssues++
        row.StoryPoints += m.StoryPoints
        if m.Closed {
            row.IssuesCompleted++
            if m.CompletionDays > 0 {
                completedDays += m.CompletionDays
                completedCount++
            }
        }
        if m.Bug {
            row.Bugs++
        }
        row.FailedQACount += m.FailedQACount
        if m.Spillover {
            row.SpilloverIssues++
            row.SpilloverPoints += m.SpilloverPoints
        }
        sprintSeconds += m.SprintWorkSeconds
        allTimeSeconds += m.AllTimeWorkSeconds
        sprintCountTotal += m.SprintCount
        if m.ScopeAdded {
            row.ScopeAddedIssues++
            row.ScopeAddedPoints += m.StoryPoints
        }
        if m.ScopeRemoved {
            row.ScopeRemovedIssues++
            row.ScopeRemovedPoints += m.StoryPoints
        }
    }

    row.SprintHoursWorked = SecondsToHours(sprintSeconds)
    row.AllTimeHoursWorked = SecondsToHours(allTimeSeconds)
    if row.TotalIssues > 0 {
        row.PercentComplete = round2(float64(row.IssuesCompleted) / float64(row.TotalIssues) * 100)
        row.AvgSprintsPerStory = round1(float64(sprintCountTotal) / float64(row.TotalIssues))
    }
    if completedCount > 0 {
        row.AvgCompletionDays = round1(float64(completedDays) / float64(completedCount))
    }
    row.ScopeChange = FormatScopeChange(row.ScopeAddedIssues, row.ScopeRemovedIssues, row.ScopeAddedPoints, row.ScopeRemovedPoints)
    return row
}

// GrandTotal sums the numeric columns across rows; percent complete is the
// mean of the row percentages instead of a sum.
func GrandTotal(rows []domain.TeamSummary) domain.TeamSummary {
    total := domain.TeamSummary{TeamName: "Grand Total"}
    if len(rows) == 0 {
        return total
    }
    var percentSum float64
    for _, r := range rows {
        total.TotalIssues += r.TotalIssues
        total.StoryPoints += r.StoryPoints
        total.IssuesCompleted += r.IssuesCompleted
        total.SprintHoursWorked += r.SprintHoursWorked
        total.AllTimeHoursWorked += r.AllTimeHoursWorked
        total.Bugs += r.Bugs
        total.FailedQACount += r.FailedQACount
        total.SpilloverIssues += r.SpilloverIssues
        total.SpilloverPoints += r.SpilloverPoints
        total.AvgCompletionDays += r.AvgCompletionDays
        total.AvgSprintsPerStory += r.AvgSprintsPerStory
        total.ScopeAddedIssues += r.ScopeAddedIssues
        total.ScopeRemovedIssues += r.ScopeRemovedIssues
        total.ScopeAddedPoints += r.ScopeAddedPoints
        total.ScopeRemovedPoints += r.ScopeRemovedPoints
        percentSum += r.PercentComplete
    }
    total.PercentComplete = round2(percentSum / float64(len(rows)))
    total.ScopeChange = FormatScopeChange(total.ScopeAddedIssues, total.ScopeRemovedIssues, total.ScopeAddedPoints, total.ScopeRemovedPoints)
    return total
}

func (g *Generator) sprintWindow(duration string) (sprint.Sprint, error) {
    if duration == DurationCurrentSprint {
        return g.cal.SprintForDate(g.now()), nil
    }
    id := SprintIDFromDuration(duration)
    start, end, err := g.cal.DatesForSprint(id)
    if err != nil {
        return sprint.Sprint{}, err
    }
    return sprint.Sprint{ID: id, Start: start, End: end}, nil
}

func (g *Generator) sprintMeta(sp sprint.Sprint) SprintMeta {
    total := sp.End.AddDate(0, 0, 1).Sub(sp.Start)
    elapsed := g.now().Sub(sp.Start)
    pct := 0.0
    if total > 0 {
        pct = float64(elapsed) / float64(total) * 100
    }
    if pct < 0 {
        pct = 0
    }
    if pct > 100 {
        pct = 100
    }
    return SprintMeta{
        ID:             sp.ID,
        Start:          sp.Start.Format("2006-01-02"),
        End:            sp.End.Format("2006-01-02"),
        ElapsedPercent: round1(pct),
    }
}

func poolSize(limit, n int) int {
    if n < limit {
        return n
    }
    if limit < 1 {
        return 1
    }
    return limit
}

// PreviousSprintDurations lists the selectable previous-sprint duration
// names, e.g. "Sprint 2025.11".
func (g *Generator) PreviousSprintDurations(n int) []string {
    ids := g.cal.PreviousN(g.now(), n)
    out := make([]string, 0, len(ids))
    for _, id := range ids {
        out = append(out, sprintDurationPrefix+id)
    }
    return out
}
