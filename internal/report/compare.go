package report

import (
    "context"
    "sync"

    "golang.org/x/sync/errgroup"
)

// Comparison generates summaries for several durations side by side, e.g.
// the current sprint against the three before it. Durations run in their own
// small pool; each one still fans out its teams and issues underneath.
func (g *Generator) Comparison(ctx context.Context, durations []string, graceHours float64) (map[string]*SummaryResult, error) {
    if len(durations) == 0 {
        return map[string]*SummaryResult{}, nil
    }

    var mu sync.Mutex
    out := make(map[string]*SummaryResult, len(durations))

    eg, gctx := errgroup.WithContext(ctx)
    eg.SetLimit(poolSize(g.cfg.ComparisonWorkers, len(durations)))
    for _, d := range durations {
        d := d
        eg.Go(func() error {
            res, err := g.SummaryReport(gctx, SummaryRequest{Duration: d, GraceHours: graceHours})
            if err != nil {
                return err
            }
            mu.Lock()
            out[d] = res
            mu.Unlock()
            return nil
        })
    }
    if err := eg.Wait(); err != nil {
        return nil, err
    }
    return out, nil
}
