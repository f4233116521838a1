package sprint

import (
    "fmt"
    "strconv"
    "strings"
    "time"
)

// Sprint is one two-week slot of the fixed company cadence. Start and End are
// midnights in the calendar's location; End is the last day of the sprint,
// inclusive.
type Sprint struct {
    ID    string
    Start time.Time
    End   time.Time
}

// Calendar derives sprint identifiers of the form "YYYY.NN" from a single
// anchor sprint. Numbering rolls over to the next year after 52.
type Calendar struct {
    anchorYear  int
    anchorNum   int
    anchorStart time.Time
    lengthDays  int
    loc         *time.Location
}

func New(anchorID, anchorStart string, lengthDays int, loc *time.Location) (*Calendar, error) {
    year, num, err := parseID(anchorID)
    if err != nil {
        return nil, err
    }
    start, err := time.ParseInLocation("2006-01-02", anchorStart, loc)
    if err != nil {
        return nil, fmt.Errorf("sprint: bad anchor start %q: %w", anchorStart, err)
    }
    if lengthDays <= 0 {
        return nil, fmt.Errorf("sprint: bad length %d", lengthDays)
    }
    return &Calendar{anchorYear: year, anchorNum: num, anchorStart: start, lengthDays: lengthDays, loc: loc}, nil
}

func (c *Calendar) Location() *time.Location { return c.loc }

// SprintForDate returns the sprint containing t. Dates before the anchor
// resolve through negative offsets, so the cadence extends backwards too.
func (c *Calendar) SprintForDate(t time.Time) Sprint {
    days := c.daysSinceAnchor(t)
    offset := floorDiv(days, c.lengthDays)

    num := c.anchorNum + offset
    year := c.anchorYear
    for num > 52 {
        num -= 52
        year++
    }
    for num <= 0 {
        num += 52
        year--
    }

    start := c.anchorStart.AddDate(0, 0, offset*c.lengthDays)
    return Sprint{
        ID:    formatID(year, num),
        Start: start,
        End:   start.AddDate(0, 0, c.lengthDays-1),
    }
}

// DatesForSprint inverts an explicit "YYYY.NN" id back to its window. The
// offset is yearDiff*52 plus the number difference, with no wrapping.
func (c *Calendar) DatesForSprint(id string) (time.Time, time.Time, error) {
    year, num, err := parseID(id)
    if err != nil {
        return time.Time{}, time.Time{}, err
    }
    offset := (year-c.anchorYear)*52 + (num - c.anchorNum)
    start := c.anchorStart.AddDate(0, 0, offset*c.lengthDays)
    return start, start.AddDate(0, 0, c.lengthDays-1), nil
}

// PreviousN lists the n sprint ids strictly before the sprint containing now,
// newest first, wrapping across year boundaries.
func (c *Calendar) PreviousN(now time.Time, n int) []string {
    cur := c.SprintForDate(now)
    curYear, curNum, _ := parseID(cur.ID)

    out := make([]string, 0, n)
    for i := 0; i < n; i++ {
        num := curNum - i - 1
        year := curYear
        for num <= 0 {
            num += 52
            year--
        }
        out = append(out, formatID(year, num))
    }
    return out
}

// Labels returns the team-prefixed current and previous sprint labels used to
// mark sprints in detail rows and to match scope-change targets.
func (c *Calendar) Labels(team string, now time.Time) (string, string) {
    cur := c.SprintForDate(now)
    prev := c.PreviousN(now, 1)[0]
    return team + " " + cur.ID, team + " " + prev
}

func (c *Calendar) daysSinceAnchor(t time.Time) int {
    d := dateOnly(t.In(c.loc))
    a := dateOnly(c.anchorStart)
    return int(d.Sub(a).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// floorDiv rounds toward negative infinity so pre-anchor dates land in the
// sprint they belong to instead of the anchor sprint.
func floorDiv(a, b int) int {
    q := a / b
    if a%b != 0 && (a < 0) != (b < 0) {
        q--
    }
    return q
}

func parseID(id string) (int, int, error) {
    parts := strings.Split(id, ".")
    if len(parts) != 2 {
        return 0, 0, fmt.Errorf("sprint: bad id %q", id)
    }
    year, err := strconv.Atoi(parts[0])
    if err != nil {
        return 0, 0, fmt.Errorf("sprint: bad id %q", id)
    }
    num, err := strconv.Atoi(parts[1])
    if err != nil || num <= 0 {
        return 0, 0, fmt.Errorf("sprint: bad id %q", id)
    }
    return year, num, nil
}

func formatID(year, num int) string {
    return fmt.Sprintf("%d.%02d", year, num)
}
