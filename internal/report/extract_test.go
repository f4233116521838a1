package report

import (
    "testing"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/sprint"
)

func strptr(s string) *string { return &s }

func testFieldMap() map[string]string {
    return map[string]string{
        config.FieldSprint:      "customfield_10010",
        config.FieldStoryPoints: "customfield_10014",
        config.FieldTeam:        "customfield_10001",
    }
}

func testSprint() sprint.Sprint {
    return sprint.Sprint{
        ID:    "2025.12",
        Start: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
        End:   time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC),
    }
}

func statusMove(created, from, to string) jira.History {
    return jira.History{Created: created, Items: []jira.Item{
        {Field: "status", FromString: strptr(from), ToString: strptr(to)},
    }}
}

func summaryIssue() *jira.Issue {
    return &jira.Issue{
        Key: "TRUX-42",
        Fields: map[string]any{
            "created":   "2025-06-05T00:00:00.000+0000",
            "summary":   "Fix dispatch retries",
            "issuetype": map[string]any{"name": "Bug"},
            "status":    map[string]any{"name": "QA Complete"},
            "customfield_10014": 5.0,
            "customfield_10010": []any{
                map[string]any{"id": 101.0, "name": "Falcon 2025.11"},
                map[string]any{"id": 102.0, "name": "Falcon 2025.12"},
            },
        },
        Changelog: &jira.Changelog{Histories: []jira.History{
            statusMove("2025-06-12T09:00:00.000+0000", "To Do", "In Progress"),
            statusMove("2025-06-13T09:00:00.000+0000", "In Testing", "Rejected"),
            statusMove("2025-06-15T09:00:00.000+0000", "In Progress", "QA Complete"),
            {Created: "2025-06-01T10:00:00.000+0000", Items: []jira.Item{
                {Field: "timespent", To: strptr("3600")},
            }},
            {Created: "2025-06-13T10:00:00.000+0000", Items: []jira.Item{
                {Field: "timespent", From: strptr("3600"), To: strptr("10800")},
            }},
            {Created: "2025-06-13T11:00:00.000+0000", Items: []jira.Item{
                {Field: "Sprint", ToString: strptr("Falcon 2025.12")},
            }},
        }},
    }
}

func TestExtractIssueMetrics(t *testing.T) {
    m, err := ExtractIssueMetrics(summaryIssue(), testFieldMap(), testSprint(), "Falcon 2025.12", 48)
    if err != nil {
        t.Fatalf("ExtractIssueMetrics: %v", err)
    }

    if m.StoryPoints != 5 {
        t.Fatalf("story points = %v, want 5", m.StoryPoints)
    }
    if !m.Closed || !m.Bug {
        t.Fatalf("closed=%v bug=%v, want both true", m.Closed, m.Bug)
    }
    if m.FailedQACount != 1 {
        t.Fatalf("failed qa = %d, want 1", m.FailedQACount)
    }
    if m.SprintCount != 2 || !m.Spillover || m.SpilloverPoints != 5 {
        t.Fatalf("sprint count=%d spillover=%v points=%v", m.SprintCount, m.Spillover, m.SpilloverPoints)
    }
    // created June 5, first closed-status transition June 15 09:00
    if m.CompletionDays != 10 {
        t.Fatalf("completion days = %d, want 10", m.CompletionDays)
    }
    if m.AllTimeWorkSeconds != 10800 {
        t.Fatalf("all time = %d, want 10800", m.AllTimeWorkSeconds)
    }
    // only the in-sprint delta counts, not the June 1 entry
    if m.SprintWorkSeconds != 7200 {
        t.Fatalf("sprint work = %d, want 7200", m.SprintWorkSeconds)
    }
    if !m.ScopeAdded || m.ScopeRemoved {
        t.Fatalf("scope added=%v removed=%v", m.ScopeAdded, m.ScopeRemoved)
    }
}

func TestExtractIssueMetricsMissingFields(t *testing.T) {
    if _, err := ExtractIssueMetrics(&jira.Issue{Key: "TRUX-1"}, testFieldMap(), testSprint(), "x", 48); err == nil {
        t.Fatal("expected error for missing fields")
    }
}

func TestExtractIssueMetricsNullStoryPoints(t *testing.T) {
    issue := summaryIssue()
    issue.Fields["customfield_10014"] = nil
    m, err := ExtractIssueMetrics(issue, testFieldMap(), testSprint(), "Falcon 2025.12", 48)
    if err != nil {
        t.Fatal(err)
    }
    if m.StoryPoints != 0 || m.SpilloverPoints != 0 {
        t.Fatalf("points=%v spillover=%v, want zeros", m.StoryPoints, m.SpilloverPoints)
    }
}

func detailConfig() config.Config {
    return config.Config{
        FieldMap:           testFieldMap(),
        CycleThresholdDays: 7,
        LeadThresholdDays:  21,
    }
}

func TestExtractDetailRow(t *testing.T) {
    issue := summaryIssue()
    issue.Fields["assignee"] = nil
    now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

    row, err := ExtractDetailRow(issue, "Falcon 2025.12", "Falcon 2025.11", detailConfig(), now, nil)
    if err != nil {
        t.Fatalf("ExtractDetailRow: %v", err)
    }

    if row.Key != "TRUX-42" || row.Type != "Bug" || row.Status != "QA Complete" {
        t.Fatalf("meta = %+v", row)
    }
    if row.Assignee != "Unassigned" {
        t.Fatalf("assignee = %q, want Unassigned", row.Assignee)
    }
    if row.StoryPoints != "5" {
        t.Fatalf("story points = %q, want 5", row.StoryPoints)
    }
    if row.LoggedTime != "3 hrs 0 mins" {
        t.Fatalf("logged time = %q", row.LoggedTime)
    }
    if row.FailedQACount != 1 {
        t.Fatalf("failed qa = %d", row.FailedQACount)
    }

    // newest sprint first, current and previous marked
    if len(row.Sprints) != 2 || row.Sprints[0].Name != "Falcon 2025.12" || !row.Sprints[0].Current {
        t.Fatalf("sprints = %+v", row.Sprints)
    }
    if !row.Sprints[1].Previous || row.Sprints[1].Current {
        t.Fatalf("sprints = %+v", row.Sprints)
    }

    // In Progress June 12 09:00 to QA Complete June 15 09:00
    if row.CycleTimeHours == nil || *row.CycleTimeHours != 72 {
        t.Fatalf("cycle hours = %v, want 72", row.CycleTimeHours)
    }
    if row.CycleTime != "3 days" {
        t.Fatalf("cycle time = %q", row.CycleTime)
    }
    if row.CycleBreached {
        t.Fatal("cycle breached below threshold")
    }
    // never Released or Closed
    if row.LeadTimeHours != nil || row.LeadTime != "N/A" || row.LeadBreached {
        t.Fatalf("lead = %v %q %v", row.LeadTimeHours, row.LeadTime, row.LeadBreached)
    }

    // every workflow status rendered, unvisited ones as N/A
    if len(row.Durations) != 12 {
        t.Fatalf("durations = %v", row.Durations)
    }
    if row.Durations["In UAT"] != "N/A" {
        t.Fatalf("In UAT = %q, want N/A", row.Durations["In UAT"])
    }
    if row.Durations["To Do"] == "N/A" {
        t.Fatal("To Do should have a duration")
    }
}

func TestStoryPointsDisplayPolicies(t *testing.T) {
    cases := []struct {
        value any
        want  string
    }{
        {nil, "N/A"},
        {3.0, "3"},
        {"8.0", "8"},
        {"XL", "XL"},
    }
    for _, tc := range cases {
        issue := summaryIssue()
        issue.Fields["customfield_10014"] = tc.value
        if got := storyPointsDisplay(issue, testFieldMap()); got != tc.want {
            t.Fatalf("storyPointsDisplay(%v) = %q, want %q", tc.value, got, tc.want)
        }
    }
}

func TestDetailRowBreachFlags(t *testing.T) {
    issue := summaryIssue()
    // push the cycle past 7 days: QA Complete arrives June 25
    issue.Changelog.Histories[2] = statusMove("2025-06-25T09:00:00.000+0000", "In Progress", "QA Complete")
    now := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)

    row, err := ExtractDetailRow(issue, "Falcon 2025.12", "Falcon 2025.11", detailConfig(), now, nil)
    if err != nil {
        t.Fatal(err)
    }
    if !row.CycleBreached {
        t.Fatalf("cycle hours = %v, expected breach", row.CycleTimeHours)
    }
}
