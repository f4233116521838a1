package http

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/rs/zerolog"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/adapters/jira"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
    "github.com/sandeep-truxnow/trux-jira-metrics/internal/report"
)

type stubService struct {
    summaryErr  error
    lastSummary report.SummaryRequest
}

func (s *stubService) SummaryReport(_ context.Context, req report.SummaryRequest) (*report.SummaryResult, error) {
    s.lastSummary = req
    if s.summaryErr != nil {
        return nil, s.summaryErr
    }
    return &report.SummaryResult{Duration: req.Duration}, nil
}

func (s *stubService) DetailedReport(_ context.Context, req report.DetailedRequest) (*report.DetailedResult, error) {
    return &report.DetailedResult{TeamID: req.TeamID, Duration: req.Duration}, nil
}

func (s *stubService) Comparison(_ context.Context, durations []string, _ float64) (map[string]*report.SummaryResult, error) {
    out := map[string]*report.SummaryResult{}
    for _, d := range durations {
        out[d] = &report.SummaryResult{Duration: d}
    }
    return out, nil
}

func (s *stubService) PreviousSprintDurations(n int) []string {
    out := make([]string, n)
    for i := range out {
        out[i] = "Sprint 2025.11"
    }
    return out
}

func testRouter(svc *stubService) http.Handler {
    cfg := config.Config{
        AppEnv:             "test",
        DefaultSprintCount: 3,
        ScopeGraceHours:    48,
        Teams:              []config.Team{{Name: "Falcon", ID: "team-falcon"}},
    }
    return NewRouter(cfg, zerolog.Nop(), svc)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
    t.Helper()
    var req *http.Request
    if body == "" {
        req = httptest.NewRequest(method, path, nil)
    } else {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set("Content-Type", "application/json")
    }
    w := httptest.NewRecorder()
    h.ServeHTTP(w, req)
    return w
}

func TestHealthz(t *testing.T) {
    w := do(t, testRouter(&stubService{}), http.MethodGet, "/healthz", "")
    if w.Code != http.StatusOK {
        t.Fatalf("status = %d", w.Code)
    }
}

func TestSprintsClampsCount(t *testing.T) {
    h := testRouter(&stubService{})

    w := do(t, h, http.MethodGet, "/api/sprints?count=99", "")
    if w.Code != http.StatusOK {
        t.Fatalf("status = %d", w.Code)
    }
    var body struct {
        Sprints []string `json:"sprints"`
    }
    if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
        t.Fatal(err)
    }
    if len(body.Sprints) != 10 {
        t.Fatalf("sprints = %d, want clamp to 10", len(body.Sprints))
    }

    if w := do(t, h, http.MethodGet, "/api/sprints?count=abc", ""); w.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", w.Code)
    }
}

func TestSummaryDefaultsAndValidation(t *testing.T) {
    svc := &stubService{}
    h := testRouter(svc)

    w := do(t, h, http.MethodPost, "/api/reports/summary", `{}`)
    if w.Code != http.StatusOK {
        t.Fatalf("status = %d: %s", w.Code, w.Body.String())
    }
    if svc.lastSummary.Duration != report.DurationCurrentSprint || svc.lastSummary.GraceHours != 48 {
        t.Fatalf("request = %+v", svc.lastSummary)
    }

    w = do(t, h, http.MethodPost, "/api/reports/summary", `{"scope_grace_hours": 200}`)
    if w.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", w.Code)
    }
}

func TestSummaryErrorMapping(t *testing.T) {
    h := testRouter(&stubService{summaryErr: jira.ErrNotConnected})
    if w := do(t, h, http.MethodPost, "/api/reports/summary", `{}`); w.Code != http.StatusServiceUnavailable {
        t.Fatalf("status = %d, want 503", w.Code)
    }

    h = testRouter(&stubService{summaryErr: report.ErrUnknownDuration})
    if w := do(t, h, http.MethodPost, "/api/reports/summary", `{}`); w.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", w.Code)
    }
}

func TestDetailedRequiresTeam(t *testing.T) {
    h := testRouter(&stubService{})
    if w := do(t, h, http.MethodPost, "/api/reports/detailed", `{"duration":"Last Month"}`); w.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", w.Code)
    }
    if w := do(t, h, http.MethodPost, "/api/reports/detailed", `{"team_id":"team-falcon"}`); w.Code != http.StatusOK {
        t.Fatalf("status = %d", w.Code)
    }
}

func TestComparison(t *testing.T) {
    h := testRouter(&stubService{})
    w := do(t, h, http.MethodPost, "/api/reports/comparison", `{"durations":["Current Sprint","Sprint 2025.11"]}`)
    if w.Code != http.StatusOK {
        t.Fatalf("status = %d", w.Code)
    }
    if w := do(t, h, http.MethodPost, "/api/reports/comparison", `{}`); w.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", w.Code)
    }
}
