package browser

import (
	"context"
	"fmt"
	"time"
)

// Operation is a unit of browser work that can be decorated.
type Operation func(ctx context.Context) error

// Middleware decorates an Operation with a cross-cutting policy.
type Middleware func(next Operation) Operation

// Chain applies mws to op. The first middleware is the outermost.
func Chain(op Operation, mws ...Middleware) Operation {
	for i := len(mws) - 1; i >= 0; i-- {
		op = mws[i](op)
	}
	return op
}

// RetrySpec bounds how often an operation is attempted.
type RetrySpec struct {
	Attempts int
	Delay    time.Duration
}

// Retry specs used by the facade.
var (
	NoRetry    = RetrySpec{Attempts: 1}
	ClickRetry = RetrySpec{Attempts: 3, Delay: 2 * time.Second}
	TypeRetry  = RetrySpec{Attempts: 3, Delay: 1500 * time.Millisecond}
	TableRetry = RetrySpec{Attempts: 2, Delay: 2 * time.Second}
)

// Validate checks Attempts >= 1 and Delay >= 0.
func (s RetrySpec) Validate() error {
	if s.Attempts < 1 {
		return &ConfigError{Field: "retry.attempts", Message: fmt.Sprintf("must be at least 1, got %d", s.Attempts)}
	}
	if s.Delay < 0 {
		return &ConfigError{Field: "retry.delay", Message: "must not be negative"}
	}
	return nil
}

// RetryOptions configures a call to Retry.
type RetryOptions struct {
	// Operation names the work in logs and metrics.
	Operation string

	// Retryable selects the failures worth another attempt. Nil retries every
	// failure except invalid locators and configuration errors.
	Retryable func(error) bool

	Logger  Logger
	Metrics *Metrics

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Retry runs fn until it succeeds or spec.Attempts attempts have failed.
// Each failed attempt is logged and counted before the delay. The error of the
// last attempt is returned unchanged.
func Retry(ctx context.Context, spec RetrySpec, fn Operation, opts RetryOptions) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	name := opts.Operation
	if name == "" {
		name = "operation"
	}

	var err error
	for attempt := 1; attempt <= spec.Attempts; attempt++ {
		if opts.Metrics != nil {
			opts.Metrics.Attempts.WithLabelValues(name).Inc()
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}

		if opts.Metrics != nil {
			opts.Metrics.Failures.WithLabelValues(name).Inc()
		}
		logger.Warnf("%s: attempt %d/%d failed: %v", name, attempt, spec.Attempts, err)

		if attempt == spec.Attempts || !shouldRetry(err, opts.Retryable) || ctx.Err() != nil {
			return err
		}

		if opts.Metrics != nil {
			opts.Metrics.Retries.WithLabelValues(name).Inc()
		}
		if sleepErr := sleep(ctx, spec.Delay); sleepErr != nil {
			return err
		}
	}
	return err
}

// RetryMiddleware returns a Middleware that applies Retry with spec.
func RetryMiddleware(spec RetrySpec, opts RetryOptions) Middleware {
	return func(next Operation) Operation {
		return func(ctx context.Context) error {
			return Retry(ctx, spec, next, opts)
		}
	}
}

// Timed logs how long each run of the operation took.
func Timed(logger Logger, name string) Middleware {
	return func(next Operation) Operation {
		return func(ctx context.Context) error {
			start := time.Now()
			err := next(ctx)
			logger.Debugf("%s took %s", name, time.Since(start).Round(time.Millisecond))
			return err
		}
	}
}

func shouldRetry(err error, retryable func(error) bool) bool {
	if isProgrammingError(err) {
		return false
	}
	if retryable == nil {
		return true
	}
	return retryable(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
