package collaborators

import (
	"context"
	"time"
)

// RetrySchedule runs fn, retrying on error using the fixed delay schedule in
// secs (§6.5's RETRY_DELAY_SECS, e.g. [2, 30, 60]). fn is tried len(secs)+1
// times total; the last error is returned if every attempt fails. A context
// cancellation aborts the wait between attempts immediately.
func RetrySchedule(ctx context.Context, secs []int, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt >= len(secs) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(secs[attempt]) * time.Second):
		}
	}
}
