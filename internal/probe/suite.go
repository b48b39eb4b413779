package probe

import (
	"context"
	"time"
)

// Requests builds one Request per line count, all sharing the same line
// length and write deadline.
func Requests(lineCounts []int, lineLength int, timeout time.Duration) []Request {
	reqs := make([]Request, 0, len(lineCounts))
	for _, lines := range lineCounts {
		reqs = append(reqs, Request{
			Lines:      lines,
			LineLength: lineLength,
			Timeout:    timeout,
		})
	}
	return reqs
}

// RunSuite executes the requests in order, one fresh session per probe.
// Results come back in request order. A blocked or failed probe never stops
// the remaining ones; only context cancellation cuts the suite short.
func (r *Runner) RunSuite(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.RunProbe(ctx, req))
	}
	return results
}

// BlockedCount reports how many results did not complete.
func BlockedCount(results []Result) int {
	blocked := 0
	for _, res := range results {
		if !res.Completed {
			blocked++
		}
	}
	return blocked
}
