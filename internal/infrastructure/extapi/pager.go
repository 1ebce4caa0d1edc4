package extapi

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	domainsync "qualisync/internal/domain/sync"
)

// page is one decoded platform page. next is the opaque cursor for the
// following page; empty means the listing is exhausted.
type page struct {
	Values []json.RawMessage
	Next   string
}

// pageFunc fetches one page for the given cursor. The first call passes
// an empty cursor.
type pageFunc func(ctx context.Context, cursor string) (page, error)

// eachPage walks a paginated listing, applying the shared retry policy
// per page:
//
//   - rate-limit responses extend the limiter's penalty window and are
//     retried without consuming an attempt,
//   - transient failures are retried with exponential backoff up to the
//     configured attempt budget,
//   - any other failure aborts the walk immediately.
//
// Records are handed to fn in platform page order; an error from fn
// stops the walk and is returned as-is.
func (c *client) eachPage(ctx context.Context, fetch pageFunc, fn func(json.RawMessage) error) error {
	cursor := ""
	for {
		pg, err := c.fetchPage(ctx, fetch, cursor)
		if err != nil {
			return err
		}
		for _, raw := range pg.Values {
			if err := fn(raw); err != nil {
				return err
			}
		}
		if pg.Next == "" {
			return nil
		}
		cursor = pg.Next
	}
}

func (c *client) fetchPage(ctx context.Context, fetch pageFunc, cursor string) (page, error) {
	bo := backoff.NewExponentialBackOff()
	if c.backoffInitial > 0 {
		bo.InitialInterval = c.backoffInitial
	}
	if c.backoffMax > 0 {
		bo.MaxInterval = c.backoffMax
	}
	bo.Reset()

	attempt := 0
	for {
		if err := sleepCtx(ctx, c.limiter.Acquire()); err != nil {
			return page{}, err
		}

		pg, err := fetch(ctx, cursor)
		if err == nil {
			c.limiter.Settle()
			return pg, nil
		}

		var rl *domainsync.RateLimitError
		if errors.As(err, &rl) {
			// Quota pushback is not a failure of ours; wait out the
			// penalty window and try the same page again.
			c.limiter.Penalize(rl.RetryAfter)
			continue
		}

		var tr *domainsync.TransientError
		if errors.As(err, &tr) {
			attempt++
			if attempt >= c.retryAttempts {
				return page{}, err
			}
			if err := sleepCtx(ctx, bo.NextBackOff()); err != nil {
				return page{}, err
			}
			continue
		}

		return page{}, err
	}
}

// getWithRetry fetches a single object under the same retry policy as
// page fetches.
func (c *client) getWithRetry(ctx context.Context, url string, out any) error {
	_, err := c.fetchPage(ctx, func(ctx context.Context, _ string) (page, error) {
		if err := c.getJSON(ctx, url, out); err != nil {
			return page{}, err
		}
		return page{}, nil
	}, "")
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
