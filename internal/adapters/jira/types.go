package jira

import (
    "fmt"
    "time"
)

type SearchResponse struct {
    StartAt    int     `json:"startAt"`
    MaxResults int     `json:"maxResults"`
    Total      int     `json:"total"`
    Issues     []Issue `json:"issues"`
}

// Issue keeps Fields untyped so configured custom field ids can be looked up
// without recompiling; the changelog side is fully typed.
type Issue struct {
    ID        string         `json:"id"`
    Key       string         `json:"key"`
    Fields    map[string]any `json:"fields"`
    Changelog *Changelog     `json:"changelog,omitempty"`
}

type Changelog struct {
    StartAt    int       `json:"startAt"`
    MaxResults int       `json:"maxResults"`
    Total      int       `json:"total"`
    Histories  []History `json:"histories"`
}

type History struct {
    ID      string `json:"id"`
    Created string `json:"created"`
    Items   []Item `json:"items"`
}

type Item struct {
    Field      string  `json:"field"`
    From       *string `json:"from"`
    FromString *string `json:"fromString"`
    To         *string `json:"to"`
    ToString   *string `json:"toString"`
}

func (i Issue) Field(id string) (any, bool) {
    if i.Fields == nil {
        return nil, false
    }
    v, ok := i.Fields[id]
    return v, ok
}

// StringField returns a top-level string field, or "" when absent or not a
// string.
func (i Issue) StringField(id string) string {
    v, ok := i.Field(id)
    if !ok {
        return ""
    }
    s, _ := v.(string)
    return s
}

// NestedString digs one level into an object field, e.g. status.name or
// assignee.displayName.
func (i Issue) NestedString(id, key string) string {
    v, ok := i.Field(id)
    if !ok {
        return ""
    }
    m, ok := v.(map[string]any)
    if !ok {
        return ""
    }
    s, _ := m[key].(string)
    return s
}

func (i Issue) Histories() []History {
    if i.Changelog == nil {
        return nil
    }
    return i.Changelog.Histories
}

var timeLayouts = []string{
    time.RFC3339Nano,
    time.RFC3339,
    "2006-01-02T15:04:05.000-0700",
    "2006-01-02T15:04:05-0700",
}

// ParseTime handles the timestamp shapes Jira emits across server and cloud
// versions, normalized to UTC.
func ParseTime(s string) (time.Time, error) {
    for _, layout := range timeLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t.UTC(), nil
        }
    }
    return time.Time{}, fmt.Errorf("jira: unparseable time %q", s)
}
