package domain

import "time"

// Transition is one status move mined from an issue changelog. From is nil
// when the history item carried no source status.
type Transition struct {
    From *string
    To   string
    At   time.Time
}

// Metrics holds the time measurements for a single issue. A nil pointer means
// the issue never crossed the relevant endpoints; a status absent from
// DurationsByStatusHours was never entered.
type Metrics struct {
    LeadTimeHours          *float64
    CycleTimeHours         *float64
    DurationsByStatusHours map[string]float64
}

type IssueMetrics struct {
    Key                string
    StoryPoints        float64
    Closed             bool
    Bug                bool
    FailedQACount      int
    SprintCount        int
    Spillover          bool
    SpilloverPoints    float64
    CompletionDays     int
    SprintWorkSeconds  int64
    AllTimeWorkSeconds int64
    ScopeAdded         bool
    ScopeRemoved       bool
}

type TeamSummary struct {
    TeamID             string  `json:"team_id"`
    TeamName           string  `json:"team_name"`
    TotalIssues        int     `json:"total_issues"`
    StoryPoints        float64 `json:"story_points"`
    IssuesCompleted    int     `json:"issues_completed"`
    PercentComplete    float64 `json:"percent_complete"`
    SprintHoursWorked  float64 `json:"sprint_hours_worked"`
    AllTimeHoursWorked float64 `json:"all_time_hours_worked"`
    Bugs               int     `json:"bugs"`
    FailedQACount      int     `json:"failed_qa_count"`
    SpilloverIssues    int     `json:"spillover_issues"`
    SpilloverPoints    float64 `json:"spillover_points"`
    AvgCompletionDays  float64 `json:"avg_completion_days"`
    AvgSprintsPerStory float64 `json:"avg_sprints_per_story"`
    ScopeAddedIssues   int     `json:"scope_added_issues"`
    ScopeRemovedIssues int     `json:"scope_removed_issues"`
    ScopeAddedPoints   float64 `json:"scope_added_points"`
    ScopeRemovedPoints float64 `json:"scope_removed_points"`
    ScopeChange        string  `json:"scope_change"`
}

type SprintRef struct {
    ID       int    `json:"id"`
    Name     string `json:"name"`
    Current  bool   `json:"current"`
    Previous bool   `json:"previous"`
}

// DetailRow keeps both raw hours (nil when the issue never crossed the
// endpoints) and the rendered strings the dashboard shows.
type DetailRow struct {
    Key            string             `json:"key"`
    Type           string             `json:"type"`
    Summary        string             `json:"summary"`
    Assignee       string             `json:"assignee"`
    Status         string             `json:"status"`
    StoryPoints    string             `json:"story_points"`
    Sprints        []SprintRef        `json:"sprints"`
    FailedQACount  int                `json:"failed_qa_count"`
    LoggedTime     string             `json:"logged_time"`
    CycleTimeHours *float64           `json:"cycle_time_hours"`
    LeadTimeHours  *float64           `json:"lead_time_hours"`
    CycleTime      string             `json:"cycle_time"`
    LeadTime       string             `json:"lead_time"`
    CycleBreached  bool               `json:"cycle_breached"`
    LeadBreached   bool               `json:"lead_breached"`
    Durations      map[string]string  `json:"durations"`
    DurationsHours map[string]float64 `json:"durations_hours"`
}
