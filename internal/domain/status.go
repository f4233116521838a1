package domain

import "strings"

// WorkflowStatuses is the recognized board workflow in order. Durations are
// tracked only for these statuses; anything else in a changelog is ignored.
var WorkflowStatuses = []string{
    "To Do",
    "In Progress",
    "Paused",
    "In Review",
    "Ready for Testing",
    "In Testing",
    "QA Complete",
    "In UAT",
    "In UAT Testing",
    "Ready for Release",
    "Released",
    "Closed",
}

// CycleStatuses is the engineering cycle slice of the workflow, from first
// pickup through test completion.
var CycleStatuses = []string{
    "In Progress",
    "In Review",
    "Ready for Testing",
    "In Testing",
}

const (
    StatusToDo       = "To Do"
    StatusInProgress = "In Progress"
    StatusInTesting  = "In Testing"
    StatusQAComplete = "QA Complete"
    StatusRejected   = "Rejected"
    StatusReleased   = "Released"
    StatusClosed     = "Closed"
)

var closedStatuses = map[string]struct{}{
    "done":        {},
    "qa complete": {},
    "released":    {},
    "closed":      {},
}

var resolvedStatuses = map[string]struct{}{
    "qa complete": {},
    "done":        {},
    "closed":      {},
}

var workflowSet = func() map[string]struct{} {
    m := make(map[string]struct{}, len(WorkflowStatuses))
    for _, s := range WorkflowStatuses {
        m[s] = struct{}{}
    }
    return m
}()

// IsClosedStatus reports whether a status counts as completed for the
// summary report. Matching is case-insensitive.
func IsClosedStatus(s string) bool {
    _, ok := closedStatuses[strings.ToLower(strings.TrimSpace(s))]
    return ok
}

// IsResolvedStatus reports whether a transition into this status marks the
// issue's resolution time.
func IsResolvedStatus(s string) bool {
    _, ok := resolvedStatuses[strings.ToLower(strings.TrimSpace(s))]
    return ok
}

// IsWorkflowStatus is an exact-case membership test against WorkflowStatuses.
func IsWorkflowStatus(s string) bool {
    _, ok := workflowSet[s]
    return ok
}
