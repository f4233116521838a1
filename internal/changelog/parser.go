// Package changelog mines issue changelog histories into status transitions,
// per-status durations and worklog totals.
package changelog

import (
    "sort"
    "strconv"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
)

const (
    fieldStatus    = "status"
    fieldTimeSpent = "timespent"
)

type datedHistory struct {
    at time.Time
    h  jira.History
}

// sortedHistories orders histories by created timestamp. Entries whose
// timestamp cannot be parsed are dropped.
func sortedHistories(histories []jira.History) []datedHistory {
    out := make([]datedHistory, 0, len(histories))
    for _, h := range histories {
        at, err := jira.ParseTime(h.Created)
        if err != nil {
            continue
        }
        out = append(out, datedHistory{at: at, h: h})
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
    return out
}

// ParseTransitions extracts the status transitions in timestamp order plus
// the resolution time, the first transition into a resolved status.
func ParseTransitions(histories []jira.History) ([]domain.Transition, *time.Time) {
    var transitions []domain.Transition
    var resolved *time.Time

    for _, dh := range sortedHistories(histories) {
        for _, item := range dh.h.Items {
            if item.Field != fieldStatus {
                continue
            }
            to := ""
            if item.ToString != nil {
                to = *item.ToString
            }
            transitions = append(transitions, domain.Transition{From: item.FromString, To: to, At: dh.at})
            if resolved == nil && domain.IsResolvedStatus(to) {
                at := dh.at
                resolved = &at
            }
        }
    }
    return transitions, resolved
}

// CountTransitions counts exact from -> to status moves, e.g. failed QA as
// "In Testing" -> "Rejected".
func CountTransitions(histories []jira.History, from, to string) int {
    n := 0
    for _, h := range histories {
        for _, item := range h.Items {
            if item.Field != fieldStatus {
                continue
            }
            if item.FromString != nil && *item.FromString == from &&
                item.ToString != nil && *item.ToString == to {
                n++
            }
        }
    }
    return n
}

// LoggedTimeSeconds returns the cumulative logged work in seconds, taken as
// the latest timespent value in timestamp order.
func LoggedTimeSeconds(histories []jira.History) int64 {
    var total int64
    for _, dh := range sortedHistories(histories) {
        for _, item := range dh.h.Items {
            if item.Field != fieldTimeSpent || item.To == nil {
                continue
            }
            if v, err := strconv.ParseInt(*item.To, 10, 64); err == nil {
                total = v
            }
        }
    }
    return total
}

// LoggedTimeInWindowSeconds sums the timespent deltas of entries falling
// inside [start, end].
func LoggedTimeInWindowSeconds(histories []jira.History, start, end time.Time) int64 {
    var total int64
    for _, dh := range sortedHistories(histories) {
        if dh.at.Before(start) || dh.at.After(end) {
            continue
        }
        for _, item := range dh.h.Items {
            if item.Field != fieldTimeSpent || item.To == nil {
                continue
            }
            to, err := strconv.ParseInt(*item.To, 10, 64)
            if err != nil {
                continue
            }
            var from int64
            if item.From != nil {
                if v, err := strconv.ParseInt(*item.From, 10, 64); err == nil {
                    from = v
                }
            }
            total += to - from
        }
    }
    return total
}
