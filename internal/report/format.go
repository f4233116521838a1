package report

import (
    "fmt"
    "math"
    "regexp"
    "strings"
)

// FormatDuration renders hours as "N days H hrs M mins", omitting zero
// components. Nil means the measurement does not exist and renders as N/A,
// never as a zero duration.
func FormatDuration(hours *float64) string {
    if hours == nil {
        return "N/A"
    }
    totalMinutes := int(math.Round(*hours * 60))
    days := totalMinutes / (24 * 60)
    remMinutes := totalMinutes % (24 * 60)
    hrs := remMinutes / 60
    mins := remMinutes % 60

    var parts []string
    if days > 0 {
        parts = append(parts, fmt.Sprintf("%d days", days))
    }
    if hrs > 0 {
        parts = append(parts, fmt.Sprintf("%d hrs", hrs))
    }
    if mins > 0 || len(parts) == 0 {
        parts = append(parts, fmt.Sprintf("%d mins", mins))
    }
    return strings.Join(parts, " ")
}

var (
    daysRe = regexp.MustCompile(`(\d+)\s*days?`)
    hrsRe  = regexp.MustCompile(`(\d+)\s*hrs?`)
)

// DurationToHours parses a FormatDuration string back to whole hours.
// Minutes are intentionally dropped, matching the display round trip.
func DurationToHours(val string) *float64 {
    if strings.EqualFold(strings.TrimSpace(val), "N/A") || strings.TrimSpace(val) == "" {
        return nil
    }
    days, hrs := 0, 0
    if m := daysRe.FindStringSubmatch(val); m != nil {
        fmt.Sscanf(m[1], "%d", &days)
    }
    if m := hrsRe.FindStringSubmatch(val); m != nil {
        fmt.Sscanf(m[1], "%d", &hrs)
    }
    h := float64(days*24 + hrs)
    return &h
}

func SecondsToHM(seconds int64) string {
    hours := seconds / 3600
    minutes := (seconds % 3600) / 60
    return fmt.Sprintf("%d hrs %d mins", hours, minutes)
}

// SecondsToHours converts logged seconds to hours with two decimals.
func SecondsToHours(seconds int64) float64 {
    if seconds == 0 {
        return 0
    }
    return round2(float64(seconds) / 3600)
}

// FormatScopeChange renders the summary scope column, issue counts first and
// story points in parentheses.
func FormatScopeChange(addedIssues, removedIssues int, addedPoints, removedPoints float64) string {
    return fmt.Sprintf("+%d / -%d (+%s / -%s)",
        addedIssues, removedIssues, trimPoints(addedPoints), trimPoints(removedPoints))
}

func trimPoints(p float64) string {
    s := fmt.Sprintf("%.1f", p)
    return strings.TrimSuffix(s, ".0")
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
