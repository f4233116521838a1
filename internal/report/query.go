package report

import (
    "errors"
    "fmt"
    "strings"
)

const (
    DurationCurrentSprint = "Current Sprint"
    DurationYearToDate    = "Year to Date"
    DurationCurrentMonth  = "Current Month"
    DurationLastMonth     = "Last Month"
    DurationLast2Months   = "Last 2 Months"
    DurationCustomRange   = "Custom Date Range"

    sprintDurationPrefix = "Sprint "

    // Detailed reports only include issues that reached a terminal status.
    terminalStatusFilter = "'Released', 'Closed'"
)

// detailedDurationJQL maps duration names to the JQL date function bounding
// created.
var detailedDurationJQL = map[string]string{
    DurationYearToDate:   "startOfYear()",
    DurationCurrentMonth: "startOfMonth()",
    DurationLastMonth:    "startOfMonth(-1)",
    DurationLast2Months:  "startOfMonth(-2)",
}

var (
    ErrUnknownDuration = errors.New("report: unknown duration")
    ErrMissingDates    = errors.New("report: custom date range needs start and end dates")
)

// IsSprintDuration reports whether a duration selects a single sprint, the
// only shape the summary report accepts.
func IsSprintDuration(duration string) bool {
    return duration == DurationCurrentSprint || strings.HasPrefix(duration, sprintDurationPrefix)
}

// SprintIDFromDuration extracts the "YYYY.NN" id from an explicit sprint
// duration.
func SprintIDFromDuration(duration string) string {
    return strings.TrimPrefix(duration, sprintDurationPrefix)
}

// SummaryJQL builds the per-team query for the summary report. Explicit
// sprint selections match the team-prefixed sprint label.
func SummaryJQL(teamID, teamName, duration string) string {
    switch {
    case duration == DurationCurrentSprint:
        return fmt.Sprintf(`"Team" = %q AND sprint in openSprints() AND issuetype NOT IN (Sub-task) ORDER BY KEY`, teamID)
    case strings.HasPrefix(duration, sprintDurationPrefix):
        sprintID := SprintIDFromDuration(duration)
        return fmt.Sprintf(`"Team" = %q AND sprint = "%s %s" AND issuetype NOT IN (Sub-task) ORDER BY KEY`, teamID, teamName, sprintID)
    default:
        return fmt.Sprintf(`"Team" = %q AND issuetype NOT IN (Sub-task) ORDER BY KEY`, teamID)
    }
}

// DetailedJQL builds the per-team query for the detailed report. Dates are
// "2006-01-02" strings, required only for the custom range.
func DetailedJQL(teamID, duration, startDate, endDate string) (string, error) {
    if duration == DurationCurrentSprint {
        return fmt.Sprintf(`'Team[Team]' = %q AND sprint in openSprints() AND issuetype NOT IN (Sub-task) ORDER BY KEY`, teamID), nil
    }
    if duration == DurationCustomRange {
        if startDate == "" || endDate == "" {
            return "", ErrMissingDates
        }
        return fmt.Sprintf(
            `'Team[Team]' = %q AND issuetype NOT IN (Sub-task) AND created >= '%s' AND created <= '%s' AND status IN (%s) ORDER BY KEY`,
            teamID, startDate, endDate, terminalStatusFilter), nil
    }
    fn, ok := detailedDurationJQL[duration]
    if !ok {
        return "", fmt.Errorf("%w: %q", ErrUnknownDuration, duration)
    }
    return fmt.Sprintf(
        `'Team[Team]' = %q AND issuetype NOT IN (Sub-task) AND created > %s AND status IN (%s) ORDER BY KEY`,
        teamID, fn, terminalStatusFilter), nil
}
