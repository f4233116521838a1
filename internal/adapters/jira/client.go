package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/sandeep-truxnow/trux-jira-metrics/internal/config"
)

var (
    // ErrNotConnected means the client has no base URL or no usable
    // credentials; report generation must not start in that state.
    ErrNotConnected = errors.New("jira: not connected")
    ErrEmptyJQL     = errors.New("jira: empty jql")
)

type Client struct {
    baseURL  string
    token    string
    user     string
    pass     string
    http     *http.Client
    log      zerolog.Logger
    apiVer   string
    pageSize int
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL:  strings.TrimRight(cfg.JiraBaseURL, "/"),
        token:    cfg.JiraPAT,
        user:     cfg.JiraUsername,
        pass:     cfg.JiraAPIToken,
        http:     &http.Client{Timeout: cfg.HTTPTimeout},
        log:      log,
        apiVer:   cfg.JiraAPIVersion,
        pageSize: cfg.SearchPageSize,
    }
}

// Ready reports whether the client can authenticate at all. It does not probe
// the server.
func (c *Client) Ready() error {
    if c.baseURL == "" { return ErrNotConnected }
    if c.token == "" && (c.user == "" || c.pass == "") { return ErrNotConnected }
    return nil
}

// SearchIssues pages through all results for a JQL query.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error) {
    if strings.TrimSpace(jql) == "" { return nil, ErrEmptyJQL }
    if err := c.Ready(); err != nil { return nil, err }

    var all []Issue
    startAt := 0
    for {
        page, err := c.searchPage(ctx, jql, fields, startAt)
        if err != nil { return nil, err }
        all = append(all, page.Issues...)
        startAt += len(page.Issues)
        if len(page.Issues) == 0 || startAt >= page.Total {
            break
        }
    }
    return all, nil
}

func (c *Client) searchPage(ctx context.Context, jql string, fields []string, startAt int) (*SearchResponse, error) {
    var out SearchResponse
    if c.apiVer == "3" {
        body := map[string]any{
            "jql":        jql,
            "startAt":    startAt,
            "maxResults": c.pageSize,
        }
        if len(fields) > 0 { body["fields"] = fields }
        if err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/api/3/search", nil), body, &out); err != nil {
            return nil, err
        }
        return &out, nil
    }
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("startAt", strconv.Itoa(startAt))
    q.Set("maxResults", strconv.Itoa(c.pageSize))
    if len(fields) > 0 { q.Set("fields", strings.Join(fields, ",")) }
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

// IssueWithChangelog fetches one issue with all fields and the full changelog
// expanded.
func (c *Client) IssueWithChangelog(ctx context.Context, key string) (*Issue, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    if err := c.Ready(); err != nil { return nil, err }
    q := url.Values{}
    q.Set("fields", "*all")
    q.Set("expand", "changelog")
    path := "/rest/api/2/issue/" + url.PathEscape(key)
    if c.apiVer == "3" { path = "/rest/api/3/issue/" + url.PathEscape(key) }
    var out Issue
    if err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *Client) apiURL(path string, q url.Values) string {
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil {
            lastErr = err
        } else {
            retry, err := decodeOrRetry(resp, out)
            if err == nil && !retry { return nil }
            if err != nil && !retry { return err }
            lastErr = err
        }
        // retry on 429/5xx and transport errors
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return lastErr
}

func decodeOrRetry(resp *http.Response, out any) (bool, error) {
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        err := fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
        if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
            return true, err
        }
        return false, err
    }
    if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
        return false, err
    }
    return false, nil
}
