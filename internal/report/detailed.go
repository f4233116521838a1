package report

import (
    "context"
    "fmt"
    "sort"
    "strconv"
    "strings"
    "sync"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
)

type DetailedRequest struct {
    TeamID    string
    Duration  string
    StartDate string // "2006-01-02", custom range only
    EndDate   string
}

type DetailedResult struct {
    TeamID             string             `json:"team_id"`
    TeamName           string             `json:"team_name"`
    Duration           string             `json:"duration"`
    Rows               []domain.DetailRow `json:"rows"`
    CycleThresholdDays int                `json:"cycle_threshold_days"`
    LeadThresholdDays  int                `json:"lead_threshold_days"`
    Logs               []string           `json:"logs"`
}

// DetailedReport builds the per-issue drill-down for one team. The worker
// pool is smaller than the summary's because every issue needs a full field
// fetch. No matching issues is not an error, the result is explicitly empty
// with a warning in the run log.
func (g *Generator) DetailedReport(ctx context.Context, req DetailedRequest) (*DetailedResult, error) {
    if err := g.jira.Ready(); err != nil {
        return nil, err
    }
    team, ok := g.cfg.TeamByID(req.TeamID)
    if !ok {
        return nil, fmt.Errorf("report: unknown team %q", req.TeamID)
    }

    key := fmt.Sprintf("detailed|%s|%s|%s|%s", req.TeamID, req.Duration, req.StartDate, req.EndDate)
    if v, ok := g.cache.Get(key); ok {
        if cached, ok := v.(*DetailedResult); ok {
            return cached, nil
        }
    }

    jql, err := DetailedJQL(req.TeamID, req.Duration, req.StartDate, req.EndDate)
    if err != nil {
        return nil, err
    }

    runlog := NewRunLog(g.log)
    runlog.Infof("Generated JQL Query: %s", jql)

    result := &DetailedResult{
        TeamID:             team.ID,
        TeamName:           team.Name,
        Duration:           req.Duration,
        CycleThresholdDays: g.cfg.CycleThresholdDays,
        LeadThresholdDays:  g.cfg.LeadThresholdDays,
    }

    issues, err := g.jira.SearchIssues(ctx, jql, []string{"key"})
    if err != nil {
        return nil, err
    }
    if len(issues) == 0 {
        runlog.Warnf("No issues found matching the JQL query. Report will be empty.")
        result.Logs = runlog.Lines()
        return result, nil
    }
    runlog.Infof("Found %d issues matching the JQL query.", len(issues))
    runlog.Infof("Collecting metrics for %d issues. This may take a while...", len(issues))

    currentLabel, previousLabel := g.cal.Labels(team.Name, g.now())
    result.Rows = g.collectDetailRows(ctx, issues, currentLabel, previousLabel, runlog)

    sort.Slice(result.Rows, func(i, j int) bool { return keyLess(result.Rows[i].Key, result.Rows[j].Key) })
    runlog.Infof("Report generated!")
    result.Logs = runlog.Lines()
    g.cache.Set(key, result)
    return result, nil
}

// keyLess orders issue keys the way the tracker does, by project prefix then
// numeric suffix, so TRUX-7 sorts before TRUX-42.
func keyLess(a, b string) bool {
    pa, na, okA := splitKey(a)
    pb, nb, okB := splitKey(b)
    if okA && okB && pa == pb {
        return na < nb
    }
    return a < b
}

func splitKey(key string) (string, int, bool) {
    i := strings.LastIndexByte(key, '-')
    if i < 0 {
        return "", 0, false
    }
    n, err := strconv.Atoi(key[i+1:])
    if err != nil {
        return "", 0, false
    }
    return key[:i], n, true
}

func (g *Generator) collectDetailRows(ctx context.Context, issues []jira.Issue, currentLabel, previousLabel string, runlog *RunLog) []domain.DetailRow {
    jobs := make(chan string)
    var mu sync.Mutex
    var rows []domain.DetailRow

    var wg sync.WaitGroup
    workers := poolSize(g.cfg.DetailWorkers, len(issues))
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
                row, err := ExtractDetailRow(full, currentLabel, previousLabel, g.cfg, g.now(), runlog.Warnf)
                if err != nil {
                    runlog.Errorf("Error processing issue %s: %v", key, err)
                    continue
                }
                mu.Lock()
                rows = append(rows, row)
                mu.Unlock()
            }
        }()
    }
    for _, is := range issues {
        jobs <- is.Key
    }
    close(jobs)
    wg.Wait()
    return rows
}
