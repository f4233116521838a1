package report

import (
    "fmt"
    "sync"
    "time"

    "github.com/rs/zerolog"
)

// RunLog collects the processing log returned with each report. Workers from
// both pool layers append concurrently; lines are never dropped but their
// order across workers is not guaranteed. Entries are mirrored to the
// process logger.
type RunLog struct {
    mu    sync.Mutex
    lines []string
    log   zerolog.Logger
}

func NewRunLog(log zerolog.Logger) *RunLog {
    return &RunLog{log: log}
}

func (r *RunLog) appendf(level, format string, args ...any) {
    msg := fmt.Sprintf(format, args...)
    line := fmt.Sprintf("[%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
    r.mu.Lock()
    r.lines = append(r.lines, line)
    r.mu.Unlock()
}

func (r *RunLog) Infof(format string, args ...any) {
    r.appendf("INFO", format, args...)
    r.log.Info().Msgf(format, args...)
}

func (r *RunLog) Warnf(format string, args ...any) {
    r.appendf("WARN", format, args...)
    r.log.Warn().Msgf(format, args...)
}

func (r *RunLog) Errorf(format string, args ...any) {
    r.appendf("ERROR", format, args...)
    r.log.Error().Msgf(format, args...)
}

func (r *RunLog) Lines() []string {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := make([]string, len(r.lines))
    copy(out, r.lines)
    return out
}
