package bonzo

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError reports that the expected prospect count never appeared,
// carrying the last observed count for diagnosis.
type TimeoutError struct {
	UserID   int
	Pattern  string
	Expected int
	Found    int
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %d test prospects for user %d (pattern %q): found %d after %s",
		e.Expected, e.UserID, e.Pattern, e.Found, e.Waited)
}

// WaitForProspects polls until at least expectedCount prospects match the
// pattern for the user, checking at a fixed interval. The interval is fixed
// on purpose: the remote system's processing latency is roughly constant,
// not congestion-sensitive, so backoff would only slow detection.
func (c *Client) WaitForProspects(ctx context.Context, userID int, pattern string, expectedCount int, timeout, interval time.Duration, createdAfter string) ([]Prospect, error) {
	start := time.Now()
	var found []Prospect

	for time.Since(start) < timeout {
		var err error
		found, err = c.FindTestProspects(ctx, userID, pattern, createdAfter)
		if err != nil {
			return nil, err
		}

		c.logger.Info("polling for test prospects",
			"found", len(found), "expected", expectedCount, "user_id", userID)

		if len(found) >= expectedCount {
			return found, nil
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &TimeoutError{
		UserID:   userID,
		Pattern:  pattern,
		Expected: expectedCount,
		Found:    len(found),
		Waited:   timeout,
	}
}
