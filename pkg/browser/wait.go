package browser

import (
	"context"
	"errors"
	"time"
)

// WaitOptions configures a single wait.
type WaitOptions struct {
	// Timeout bounds the wait. Zero means DefaultExplicitTimeout.
	Timeout time.Duration

	// Interval is the pause between queries. Zero means DefaultPollInterval.
	Interval time.Duration

	Metrics *Metrics
}

// WaitFor polls d until an element matching loc is present or the timeout passes.
// Every poll queries the live document. The first match is returned.
//
// Failures other than ErrNoSuchElement stop the wait and are returned as is.
// When the deadline passes the result is a *TimeoutError whose Elapsed is at
// least the timeout.
func WaitFor(ctx context.Context, d Driver, loc Locator, opts WaitOptions) (Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultExplicitTimeout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := time.Now()
	deadline := start.Add(timeout)

	for {
		el, err := d.Find(loc)
		if err == nil && el != nil {
			opts.observe("found", time.Since(start))
			return el, nil
		}
		if err != nil && !errors.Is(err, ErrNoSuchElement) {
			opts.observe("error", time.Since(start))
			return nil, err
		}

		now := time.Now()
		if !now.Before(deadline) {
			elapsed := now.Sub(start)
			opts.observe("timeout", elapsed)
			return nil, &TimeoutError{Locator: loc, Timeout: timeout, Elapsed: elapsed}
		}

		pause := interval
		if remaining := deadline.Sub(now); remaining < pause {
			pause = remaining
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			opts.observe("canceled", time.Since(start))
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (o WaitOptions) observe(outcome string, d time.Duration) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.WaitTime.WithLabelValues(outcome).Observe(d.Seconds())
}
