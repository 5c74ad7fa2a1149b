package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrNoMatchingTab = errors.New("no tab matches pattern")
)

// Browser is the control facade over one Driver session. It owns the driver
// and is the only thing that mutates session state.
//
// A Browser is driven by one goroutine at a time.
type Browser struct {
	driver   Driver
	cfg      Config
	logger   Logger
	metrics  *Metrics
	evidence *EvidenceRecorder
	sleep    func(ctx context.Context, d time.Duration) error

	clickRetry RetrySpec
	typeRetry  RetrySpec
	tableRetry RetrySpec

	quitOnce sync.Once
	closed   bool
}

// Option customizes a Browser at construction.
type Option func(*Browser)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(b *Browser) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(b *Browser) { b.metrics = m }
}

// WithClickRetry overrides the retry spec used by Click.
func WithClickRetry(spec RetrySpec) Option {
	return func(b *Browser) { b.clickRetry = spec }
}

// WithTypeRetry overrides the retry spec used by TypeText.
func WithTypeRetry(spec RetrySpec) Option {
	return func(b *Browser) { b.typeRetry = spec }
}

// WithTableRetry overrides the retry spec used by ExtractTable.
func WithTableRetry(spec RetrySpec) Option {
	return func(b *Browser) { b.tableRetry = spec }
}

// New validates cfg and opens a session through launcher.
// An unsupported browser kind fails before the launcher is called.
func New(cfg Config, launcher Launcher, opts ...Option) (*Browser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if launcher == nil {
		return nil, &ConfigError{Field: "launcher", Message: "no launcher provided"}
	}

	b := &Browser{
		cfg:        cfg,
		logger:     NopLogger{},
		sleep:      sleepContext,
		clickRetry: ClickRetry,
		typeRetry:  TypeRetry,
		tableRetry: TableRetry,
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, spec := range []RetrySpec{b.clickRetry, b.typeRetry, b.tableRetry} {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}

	driver, err := launcher.Launch(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Kind, err)
	}
	b.driver = driver
	b.evidence = NewEvidenceRecorder(cfg.EvidenceDir, driver, b.logger, b.metrics)

	b.logger.Infof("started %s session (headless=%v, explicit timeout %s)", cfg.Kind, cfg.Headless, cfg.ExplicitTimeout)
	return b, nil
}

// Config returns the session configuration.
func (b *Browser) Config() Config {
	return b.cfg
}

// Evidence returns the recorder used for failure evidence.
func (b *Browser) Evidence() *EvidenceRecorder {
	return b.evidence
}

// Navigate loads an absolute URL. Navigation is never retried.
func (b *Browser) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, rawURL)
	}
	return b.run(ctx, "navigate", NoRetry, nil, func(ctx context.Context) error {
		if err := b.driver.Navigate(rawURL); err != nil {
			return &NavigationError{URL: rawURL, Err: err}
		}
		b.logger.Infof("navigated to %s", rawURL)
		return nil
	})
}

// CurrentURL returns the URL of the active tab.
func (b *Browser) CurrentURL() string {
	if b.closed {
		return ""
	}
	return b.driver.CurrentURL()
}

// Title returns the document title of the active tab.
func (b *Browser) Title() (string, error) {
	if b.closed {
		return "", ErrSessionClosed
	}
	return b.driver.Title()
}

// WaitFor waits until loc is present and returns the first match.
func (b *Browser) WaitFor(ctx context.Context, loc Locator, opts ...ActionOption) (Element, error) {
	o := b.actionOptions(opts)
	var el Element
	err := b.run(ctx, "wait_for", NoRetry, nil, func(ctx context.Context) error {
		found, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		el = found
		return nil
	})
	return el, err
}

// ExecuteScript runs script in the active document. Scripts are never retried
// since their side effects may not be idempotent.
func (b *Browser) ExecuteScript(script string, args ...any) (any, error) {
	var result any
	err := b.run(context.Background(), "execute_script", NoRetry, nil, func(context.Context) error {
		v, err := b.driver.ExecuteScript(script, args...)
		if err != nil {
			return &ScriptError{Script: script, Err: err}
		}
		result = v
		return nil
	})
	return result, err
}

// CaptureEvidence saves a screenshot and HTML snapshot named after name.
func (b *Browser) CaptureEvidence(name string) (*Artifact, error) {
	if b.closed {
		return nil, ErrSessionClosed
	}
	return b.evidence.Capture(name)
}

// Screenshot saves a full-page screenshot to path, creating parent directories.
func (b *Browser) Screenshot(path string) error {
	if b.closed {
		return ErrSessionClosed
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err := b.driver.Screenshot(path); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	b.logger.Infof("screenshot saved: %s", path)
	return nil
}

// Quit ends the session. Teardown failures are logged, never returned.
// Calling Quit more than once is safe.
func (b *Browser) Quit() {
	b.quitOnce.Do(func() {
		b.closed = true
		if err := b.driver.Quit(); err != nil {
			b.logger.Warnf("error while closing browser: %v", err)
			return
		}
		b.logger.Infof("browser closed")
	})
}

// run applies the retry and evidence policies to fn. Evidence is captured for
// every failed attempt.
func (b *Browser) run(ctx context.Context, name string, spec RetrySpec, retryable func(error) bool, fn Operation) error {
	if b.closed {
		return ErrSessionClosed
	}
	op := Chain(fn,
		Timed(b.logger, name),
		RetryMiddleware(spec, RetryOptions{
			Operation: name,
			Retryable: retryable,
			Logger:    b.logger,
			Metrics:   b.metrics,
			Sleep:     b.sleep,
		}),
		b.evidence.Middleware(name),
	)
	return op(ctx)
}

func (b *Browser) find(ctx context.Context, loc Locator, timeout time.Duration) (Element, error) {
	if timeout <= 0 {
		timeout = b.cfg.ExplicitTimeout
	}
	return WaitFor(ctx, b.driver, loc, WaitOptions{
		Timeout:  timeout,
		Interval: b.cfg.PollInterval,
		Metrics:  b.metrics,
	})
}

// ActionOption tunes a single facade call.
type ActionOption func(*actionOptions)

type actionOptions struct {
	timeout      time.Duration
	keepExisting bool
	noHeader     bool
}

// Timeout overrides the explicit wait timeout for one call.
func Timeout(d time.Duration) ActionOption {
	return func(o *actionOptions) { o.timeout = d }
}

// KeepExisting makes TypeText append instead of clearing the field first.
func KeepExisting() ActionOption {
	return func(o *actionOptions) { o.keepExisting = true }
}

// WithoutHeader makes ExtractTable treat the first row as data.
func WithoutHeader() ActionOption {
	return func(o *actionOptions) { o.noHeader = true }
}

func (b *Browser) actionOptions(opts []ActionOption) actionOptions {
	o := actionOptions{timeout: b.cfg.ExplicitTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
