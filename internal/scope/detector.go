// Package scope flags issues added to or removed from a sprint after it
// started, by mining Sprint-field changelog entries.
package scope

import (
    "sort"
    "strings"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
)

const fieldSprint = "Sprint"

type Change struct {
    Added   bool
    Removed bool
}

// Detect scans the changelog for Sprint-field moves touching target, the
// "{team} {sprintID}" label of the sprint under report. Entries before the
// sprint start are ignored; each direction latches at most once.
//
// TODO: graceHours is carried through from configuration but the filter
// below only rejects pre-start entries; entries inside the grace window are
// still counted.
func Detect(histories []jira.History, target string, sprintStart time.Time, graceHours float64) Change {
    _ = graceHours

    type dated struct {
        at time.Time
        h  jira.History
    }
    sorted := make([]dated, 0, len(histories))
    for _, h := range histories {
        at, err := jira.ParseTime(h.Created)
        if err != nil {
            continue
        }
        sorted = append(sorted, dated{at: at, h: h})
    }
    sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].at.Before(sorted[j].at) })

    var out Change
    for _, dh := range sorted {
        if dh.at.Sub(sprintStart).Hours() < 0 {
            continue
        }
        for _, item := range dh.h.Items {
            if item.Field != fieldSprint {
                continue
            }
            from := deref(item.FromString)
            to := deref(item.ToString)
            inFrom := strings.Contains(from, target)
            inTo := strings.Contains(to, target)
            if inTo && !inFrom && !out.Added {
                out.Added = true
            }
            if inFrom && !inTo && !out.Removed {
                out.Removed = true
            }
        }
    }
    return out
}

func deref(s *string) string {
    if s == nil {
        return ""
    }
    return *s
}
