package report

import (
    "fmt"
    "math"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/changelog"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/scope"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/sprint"
)

// ExtractIssueMetrics builds the summary-path record for one fetched issue.
// An issue without a fields payload is an error; callers log and exclude it
// rather than zero-filling the row.
func ExtractIssueMetrics(issue *jira.Issue, fieldMap map[string]string, sp sprint.Sprint, targetLabel string, graceHours float64) (domain.IssueMetrics, error) {
    if len(issue.Fields) == 0 {
        return domain.IssueMetrics{}, fmt.Errorf("report: no fields found for issue %s", issue.Key)
    }
    histories := issue.Histories()

    m := domain.IssueMetrics{Key: issue.Key}
    m.StoryPoints = storyPointsValue(issue, fieldMap)

    m.SprintCount = 1
    if sprints, ok := issue.Field(fieldMap[config.FieldSprint]); ok {
        if list, ok := sprints.([]any); ok {
            m.SprintCount = len(list)
        }
    }
    if m.SprintCount > 1 {
        m.Spillover = true
        m.SpilloverPoints = m.StoryPoints
    }

    m.Bug = strings.EqualFold(issue.NestedString("issuetype", "name"), "bug")
    m.Closed = domain.IsClosedStatus(issue.NestedString("status", "name"))
    m.FailedQACount = changelog.CountTransitions(histories, domain.StatusInTesting, domain.StatusRejected)
    m.AllTimeWorkSeconds = changelog.LoggedTimeSeconds(histories)
    m.SprintWorkSeconds = changelog.LoggedTimeInWindowSeconds(histories, sp.Start, endOfDay(sp.End))

    if m.Closed {
        if created, err := jira.ParseTime(issue.StringField("created")); err == nil {
            if resolved := firstClosedTransition(histories); resolved != nil {
                m.CompletionDays = int(resolved.Sub(created).Hours() / 24)
            }
        }
    }

    change := scope.Detect(histories, targetLabel, sp.Start, graceHours)
    m.ScopeAdded = change.Added
    m.ScopeRemoved = change.Removed
    return m, nil
}

// firstClosedTransition finds the first move into a completed status in
// timestamp order.
func firstClosedTransition(histories []jira.History) *time.Time {
    transitions, _ := changelog.ParseTransitions(histories)
    for _, tr := range transitions {
        if domain.IsClosedStatus(tr.To) {
            at := tr.At
            return &at
        }
    }
    return nil
}

// storyPointsValue applies the summary null policy: missing, null or NaN
// story points count as zero.
func storyPointsValue(issue *jira.Issue, fieldMap map[string]string) float64 {
    v, ok := issue.Field(fieldMap[config.FieldStoryPoints])
    if !ok || v == nil {
        return 0
    }
    switch n := v.(type) {
    case float64:
        if math.IsNaN(n) {
            return 0
        }
        return n
    case string:
        if f, err := strconv.ParseFloat(n, 64); err == nil {
            return f
        }
    }
    return 0
}

// ExtractDetailRow builds one row of the detailed report.
func ExtractDetailRow(issue *jira.Issue, currentLabel, previousLabel string, cfg config.Config, now time.Time, warnf func(format string, args ...any)) (domain.DetailRow, error) {
    if len(issue.Fields) == 0 {
        return domain.DetailRow{}, fmt.Errorf("report: no fields found for issue %s", issue.Key)
    }
    histories := issue.Histories()
    fieldMap := cfg.FieldMap

    assignee := issue.NestedString("assignee", "displayName")
    if assignee == "" {
        assignee = "Unassigned"
    }

    row := domain.DetailRow{
        Key:           issue.Key,
        Type:          issue.NestedString("issuetype", "name"),
        Summary:       issue.StringField("summary"),
        Assignee:      assignee,
        Status:        issue.NestedString("status", "name"),
        StoryPoints:   storyPointsDisplay(issue, fieldMap),
        Sprints:       sprintRefs(issue, fieldMap, currentLabel, previousLabel),
        FailedQACount: changelog.CountTransitions(histories, domain.StatusInTesting, domain.StatusRejected),
        LoggedTime:    SecondsToHM(changelog.LoggedTimeSeconds(histories)),
    }

    metrics, err := changelog.StateDurations(issue, now, warnf)
    if err != nil {
        return domain.DetailRow{}, err
    }
    row.CycleTimeHours = metrics.CycleTimeHours
    row.LeadTimeHours = metrics.LeadTimeHours
    row.CycleTime = FormatDuration(metrics.CycleTimeHours)
    row.LeadTime = FormatDuration(metrics.LeadTimeHours)
    row.DurationsHours = metrics.DurationsByStatusHours

    cycleLimit := float64(cfg.CycleThresholdDays) * 24
    leadLimit := float64(cfg.LeadThresholdDays) * 24
    row.CycleBreached = metrics.CycleTimeHours != nil && *metrics.CycleTimeHours > cycleLimit
    row.LeadBreached = metrics.LeadTimeHours != nil && *metrics.LeadTimeHours > leadLimit

    row.Durations = make(map[string]string, len(domain.WorkflowStatuses))
    for _, status := range domain.WorkflowStatuses {
        if h, ok := metrics.DurationsByStatusHours[status]; ok {
            row.Durations[status] = FormatDuration(&h)
        } else {
            row.Durations[status] = FormatDuration(nil)
        }
    }
    return row, nil
}

// storyPointsDisplay applies the detail null policy: missing or NaN renders
// as N/A, numeric values lose their fraction, numeric strings are coerced,
// anything else passes through verbatim.
func storyPointsDisplay(issue *jira.Issue, fieldMap map[string]string) string {
    v, ok := issue.Field(fieldMap[config.FieldStoryPoints])
    if !ok || v == nil {
        return "N/A"
    }
    switch n := v.(type) {
    case float64:
        if math.IsNaN(n) {
            return "N/A"
        }
        return strconv.Itoa(int(n))
    case string:
        if f, err := strconv.ParseFloat(n, 64); err == nil {
            return strconv.Itoa(int(f))
        }
        return n
    default:
        return fmt.Sprintf("%v", n)
    }
}

// sprintRefs lists the sprints an issue belongs to, newest first, with the
// team's current and previous sprints marked.
func sprintRefs(issue *jira.Issue, fieldMap map[string]string, currentLabel, previousLabel string) []domain.SprintRef {
    v, ok := issue.Field(fieldMap[config.FieldSprint])
    if !ok {
        return nil
    }
    list, ok := v.([]any)
    if !ok {
        return nil
    }
    refs := make([]domain.SprintRef, 0, len(list))
    for _, item := range list {
        m, ok := item.(map[string]any)
        if !ok {
            continue
        }
        name, _ := m["name"].(string)
        if name == "" {
            continue
        }
        id := 0
        if f, ok := m["id"].(float64); ok {
            id = int(f)
        }
        refs = append(refs, domain.SprintRef{
            ID:       id,
            Name:     name,
            Current:  name == currentLabel,
            Previous: name == previousLabel,
        })
    }
    sort.SliceStable(refs, func(i, j int) bool { return refs[i].ID > refs[j].ID })
    return refs
}

func endOfDay(t time.Time) time.Time {
    return t.Add(24*time.Hour - time.Nanosecond)
}
