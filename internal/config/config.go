package config

import (
    "encoding/json"
    "log"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Team is one entry of the team registry, in display order.
type Team struct {
    Name string `json:"name"`
    ID   string `json:"id"`
}

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string
    LogFile  string

    JiraBaseURL    string
    JiraPAT        string
    JiraUsername   string
    JiraAPIToken   string
    JiraAPIVersion string
    SearchPageSize int
    HTTPTimeout    time.Duration

    Teams     []Team
    TeamsFile string

    FieldsFile string
    FieldMap   map[string]string // logical name -> custom field id

    SprintAnchorID    string
    SprintAnchorStart string
    SprintLengthDays  int

    ScopeGraceHours    float64
    DefaultSprintCount int

    TeamWorkers       int
    IssueWorkers      int
    DetailWorkers     int
    ComparisonWorkers int

    CycleThresholdDays int
    LeadThresholdDays  int

    CacheTTL time.Duration
    WarmCron string
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func atof(key string, def float64) float64 {
    v := os.Getenv(key)
    if v == "" { return def }
    f, err := strconv.ParseFloat(v, 64)
    if err != nil { return def }
    return f
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

// parseTeams reads "Name=id,Name=id" pairs in order.
func parseTeams(csv string) []Team {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]Team, 0, len(parts))
    for _, p := range parts {
        name, id, ok := strings.Cut(strings.TrimSpace(p), "=")
        if !ok { continue }
        name, id = strings.TrimSpace(name), strings.TrimSpace(id)
        if name == "" || id == "" { continue }
        out = append(out, Team{Name: name, ID: id})
    }
    return out
}

// Logical field names resolved through FieldMap so tracker instances with
// different custom field ids only need configuration changes.
const (
    FieldSprint      = "sprint"
    FieldStoryPoints = "story_points"
    FieldTeam        = "team"
)

func defaultFieldMap() map[string]string {
    return map[string]string{
        FieldSprint:      "customfield_10010",
        FieldStoryPoints: "customfield_10014",
        FieldTeam:        "customfield_10001",
    }
}

func Load() Config {
    _ = godotenv.Load()

    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "America/New_York"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),
        LogFile:  getenv("LOG_FILE", ""),

        JiraBaseURL:    getenv("JIRA_BASE_URL", ""),
        JiraPAT:        getenv("JIRA_PAT", ""),
        JiraUsername:   getenv("JIRA_USERNAME", ""),
        JiraAPIToken:   getenv("JIRA_API_TOKEN", ""),
        JiraAPIVersion: getenv("JIRA_API_VERSION", "2"),
        SearchPageSize: atoi("JIRA_PAGE_SIZE", 50),
        HTTPTimeout:    dur("HTTP_TIMEOUT", 30*time.Second),

        Teams:     parseTeams(getenv("TEAMS", "")),
        TeamsFile: getenv("TEAMS_FILE", "config/teams.json"),

        FieldsFile: getenv("JIRA_FIELDS_FILE", "config/jira_fields.json"),
        FieldMap:   defaultFieldMap(),

        SprintAnchorID:    getenv("SPRINT_ANCHOR_ID", "2025.12"),
        SprintAnchorStart: getenv("SPRINT_ANCHOR_START", "2025-06-11"),
        SprintLengthDays:  atoi("SPRINT_LENGTH_DAYS", 14),

        ScopeGraceHours:    atof("SCOPE_GRACE_HOURS", 48),
        DefaultSprintCount: atoi("DEFAULT_SPRINT_COUNT", 3),

        TeamWorkers:       atoi("WORKERS_TEAMS", 10),
        IssueWorkers:      atoi("WORKERS_ISSUES", 20),
        DetailWorkers:     atoi("WORKERS_DETAIL", 5),
        ComparisonWorkers: atoi("WORKERS_COMPARISON", 5),

        CycleThresholdDays: atoi("CYCLE_THRESHOLD_DAYS", 7),
        LeadThresholdDays:  atoi("LEAD_THRESHOLD_DAYS", 21),

        CacheTTL: dur("CACHE_TTL", 30*time.Second),
        WarmCron: getenv("WARM_CRON", "*/15 * * * *"),
    }

    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }

    // Team registry file wins over the env list when present.
    if data, err := os.ReadFile(cfg.TeamsFile); err == nil {
        var teams []Team
        if err := json.Unmarshal(data, &teams); err == nil && len(teams) > 0 {
            cfg.Teams = teams
        }
    }

    // Optional custom field mapping overrides (logical name -> field id).
    if data, err := os.ReadFile(cfg.FieldsFile); err == nil {
        var m map[string]string
        if err := json.Unmarshal(data, &m); err == nil {
            for name, id := range m {
                n := strings.TrimSpace(name)
                if n != "" && id != "" { cfg.FieldMap[n] = id }
            }
        }
    }
    return cfg
}

// TeamByID resolves a registry entry; the bool reports whether it exists.
func (c Config) TeamByID(id string) (Team, bool) {
    for _, t := range c.Teams {
        if t.ID == id { return t, true }
    }
    return Team{}, false
}

func (c Config) TeamNames() []string {
    out := make([]string, 0, len(c.Teams))
    for _, t := range c.Teams {
        out = append(out, t.Name)
    }
    return out
}
