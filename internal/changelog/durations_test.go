package changelog

import (
    "fmt"
    "math"
    "testing"
    "time"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/domain"
)

func tr(to string, at time.Time) domain.Transition {
    return domain.Transition{To: to, At: at}
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDurations(t *testing.T) {
    created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
    transitions := []domain.Transition{
        tr("In Progress", created.Add(24*time.Hour)),
        tr("In Review", created.Add(72*time.Hour)),
        tr("Released", created.Add(96*time.Hour)),
    }
    now := created.Add(120 * time.Hour)

    got := Durations(transitions, created, "TRUX-1", now, nil)
    want := map[string]float64{
        "To Do":       24,
        "In Progress": 48,
        "In Review":   24,
        "Released":    24, // open-ended up to now
    }
    if len(got) != len(want) {
        t.Fatalf("got %v, want %v", got, want)
    }
    for s, h := range want {
        if !closeTo(got[s], h) {
            t.Fatalf("%s = %v, want %v", s, got[s], h)
        }
    }
}

func TestDurationsIgnoresUnknownStatusesAndRevisits(t *testing.T) {
    created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
    transitions := []domain.Transition{
        tr("In Progress", created.Add(10 * time.Hour)),
        tr("Blocked Externally", created.Add(12*time.Hour)), // not a workflow status
        tr("In Progress", created.Add(20*time.Hour)),        // revisit, first occurrence wins
        tr("Closed", created.Add(30 * time.Hour)),
    }
    got := Durations(transitions, created, "TRUX-2", created.Add(40*time.Hour), nil)
    if !closeTo(got["To Do"], 10) || !closeTo(got["In Progress"], 20) {
        t.Fatalf("got %v", got)
    }
    if _, ok := got["Blocked Externally"]; ok {
        t.Fatal("unknown status tracked")
    }
}

func TestDurationsOmitsNegativeOpenTail(t *testing.T) {
    created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
    transitions := []domain.Transition{tr("In Progress", created.Add(10 * time.Hour))}
    // now before the last transition, the open-ended tail must be dropped
    got := Durations(transitions, created, "TRUX-3", created.Add(5*time.Hour), nil)
    if _, ok := got["In Progress"]; ok {
        t.Fatalf("got %v, want no In Progress entry", got)
    }
    if !closeTo(got["To Do"], 10) {
        t.Fatalf("got %v", got)
    }
}

func TestLeadCycle(t *testing.T) {
    created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

    released := []domain.Transition{
        tr("In Progress", created.Add(24*time.Hour)),
        tr("QA Complete", created.Add(96*time.Hour)),
        tr("Released", created.Add(120*time.Hour)),
    }
    lead, cycle := LeadCycle(released, created)
    if lead == nil || !closeTo(*lead, 120) {
        t.Fatalf("lead = %v, want 120", lead)
    }
    if cycle == nil || !closeTo(*cycle, 72) {
        t.Fatalf("cycle = %v, want 72", cycle)
    }

    // lead falls back to Closed when never released
    closed := []domain.Transition{tr("Closed", created.Add(48 * time.Hour))}
    lead, cycle = LeadCycle(closed, created)
    if lead == nil || !closeTo(*lead, 48) {
        t.Fatalf("lead = %v, want 48", lead)
    }
    if cycle != nil {
        t.Fatalf("cycle = %v, want nil", *cycle)
    }

    // neither endpoint reached
    lead, cycle = LeadCycle(nil, created)
    if lead != nil || cycle != nil {
        t.Fatal("expected nil lead and cycle")
    }
}

func TestStateDurations(t *testing.T) {
    issue := &jira.Issue{
        Key: "TRUX-9",
        Fields: map[string]any{
            "created": "2025-06-01T00:00:00.000+0000",
        },
        Changelog: &jira.Changelog{Histories: []jira.History{
            history("2025-06-02T00:00:00.000+0000", statusItem("To Do", "In Progress")),
            history("2025-06-04T00:00:00.000+0000", statusItem("In Progress", "QA Complete")),
        }},
    }
    now := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

    var warnings []string
    m, err := StateDurations(issue, now, func(format string, args ...any) {
        warnings = append(warnings, fmt.Sprintf(format, args...))
    })
    if err != nil {
        t.Fatalf("StateDurations: %v", err)
    }
    if m.CycleTimeHours == nil || !closeTo(*m.CycleTimeHours, 48) {
        t.Fatalf("cycle = %v, want 48", m.CycleTimeHours)
    }
    if m.LeadTimeHours != nil {
        t.Fatalf("lead = %v, want nil", *m.LeadTimeHours)
    }
    if !closeTo(m.DurationsByStatusHours["QA Complete"], 24) {
        t.Fatalf("durations = %v", m.DurationsByStatusHours)
    }
    if len(warnings) != 0 {
        t.Fatalf("unexpected warnings: %v", warnings)
    }

    if _, err := StateDurations(&jira.Issue{Key: "TRUX-10", Fields: map[string]any{}}, now, nil); err == nil {
        t.Fatal("expected error for missing created field")
    }
}
