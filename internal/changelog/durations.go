package changelog

import (
    "fmt"
    "sort"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
)

// Durations computes hours spent per workflow status from first-occurrence
// timestamps. The timeline is seeded with To Do at creation time; visited
// statuses are ordered by when they were first entered, not by board order.
// Negative gaps are warned and dropped. The last visited status gets an
// open-ended duration up to now.
func Durations(transitions []domain.Transition, created time.Time, key string, now time.Time, warnf func(format string, args ...any)) map[string]float64 {
    statusTimes := map[string]time.Time{domain.StatusToDo: created}
    for _, tr := range transitions {
        if tr.To == "" {
            continue
        }
        if _, seen := statusTimes[tr.To]; !seen {
            statusTimes[tr.To] = tr.At
        }
    }

    visited := make([]string, 0, len(statusTimes))
    for _, s := range domain.WorkflowStatuses {
        if _, ok := statusTimes[s]; ok {
            visited = append(visited, s)
        }
    }
    sort.SliceStable(visited, func(i, j int) bool {
        return statusTimes[visited[i]].Before(statusTimes[visited[j]])
    })

    durations := make(map[string]float64, len(visited))
    for i := 0; i < len(visited)-1; i++ {
        curr, next := visited[i], visited[i+1]
        diff := statusTimes[next].Sub(statusTimes[curr]).Hours()
        if diff >= 0 {
            durations[curr] = diff
        } else if warnf != nil {
            warnf("Negative duration between %s and %s in issue %s.", curr, next, key)
        }
    }

    if len(visited) > 0 {
        last := visited[len(visited)-1]
        if _, ok := durations[last]; !ok {
            if diff := now.Sub(statusTimes[last]).Hours(); diff >= 0 {
                durations[last] = diff
            }
        }
    }
    return durations
}

// LeadCycle computes lead time (creation to Released, falling back to Closed)
// and cycle time (In Progress to QA Complete) in hours. A nil result means
// the issue never crossed the endpoints.
func LeadCycle(transitions []domain.Transition, created time.Time) (lead, cycle *float64) {
    statusTimes := map[string]time.Time{}
    sorted := append([]domain.Transition(nil), transitions...)
    sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })
    for _, tr := range sorted {
        if tr.To == "" {
            continue
        }
        if _, seen := statusTimes[tr.To]; !seen {
            statusTimes[tr.To] = tr.At
        }
    }

    leadEnd, ok := statusTimes[domain.StatusReleased]
    if !ok {
        leadEnd, ok = statusTimes[domain.StatusClosed]
    }
    if ok {
        h := leadEnd.Sub(created).Hours()
        lead = &h
    }

    cycleStart, okStart := statusTimes[domain.StatusInProgress]
    cycleEnd, okEnd := statusTimes[domain.StatusQAComplete]
    if okStart && okEnd {
        h := cycleEnd.Sub(cycleStart).Hours()
        cycle = &h
    }
    return lead, cycle
}

// StateDurations bundles the full per-issue time analysis for one fetched
// issue with an expanded changelog.
func StateDurations(issue *jira.Issue, now time.Time, warnf func(format string, args ...any)) (domain.Metrics, error) {
    createdRaw := issue.StringField("created")
    if createdRaw == "" {
        return domain.Metrics{}, fmt.Errorf("changelog: issue %s has no created field", issue.Key)
    }
    created, err := jira.ParseTime(createdRaw)
    if err != nil {
        return domain.Metrics{}, fmt.Errorf("changelog: issue %s: %w", issue.Key, err)
    }
    transitions, _ := ParseTransitions(issue.Histories())
    lead, cycle := LeadCycle(transitions, created)
    return domain.Metrics{
        LeadTimeHours:          lead,
        CycleTimeHours:         cycle,
        DurationsByStatusHours: Durations(transitions, created, issue.Key, now, warnf),
    }, nil
}
