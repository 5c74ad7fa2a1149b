package pwdriver

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sitac/pkg/browser"
)

// Default viewport for new contexts.
const (
	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 768
)

// Launcher starts Playwright and opens one browser per Launch.
type Launcher struct {
	logger   browser.Logger
	install  bool
	viewport playwright.Size
}

// LauncherOption customizes a Launcher.
type LauncherOption func(*Launcher)

// WithInstall controls whether browsers and the driver are installed on launch.
func WithInstall(install bool) LauncherOption {
	return func(l *Launcher) { l.install = install }
}

// WithViewport sets the viewport of the browser context.
func WithViewport(width, height int) LauncherOption {
	return func(l *Launcher) { l.viewport = playwright.Size{Width: width, Height: height} }
}

// NewLauncher creates a launcher. Browsers are installed on first use unless
// WithInstall(false) is given.
func NewLauncher(logger browser.Logger, opts ...LauncherOption) *Launcher {
	if logger == nil {
		logger = browser.NopLogger{}
	}
	l := &Launcher{
		logger:   logger,
		install:  true,
		viewport: playwright.Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(cfg browser.Config) (browser.Driver, error) {
	engine, err := engineFor(cfg.Kind)
	if err != nil {
		return nil, err
	}

	// Keep Playwright's own output off the terminal.
	runOpts := &playwright.RunOptions{
		Browsers: []string{engine},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if l.install {
		l.logger.Debugf("installing playwright %s", engine)
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType := pw.Chromium
	if cfg.Kind == browser.Firefox {
		browserType = pw.Firefox
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: l.viewport.Width, Height: l.viewport.Height},
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	d := newDriver(pw, b, bctx, cfg, l.logger)

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	d.activate(page)

	l.logger.Infof("launched %s (headless=%v)", engine, cfg.Headless)
	return d, nil
}

func engineFor(kind browser.Kind) (string, error) {
	switch kind {
	case browser.Chrome:
		return "chromium", nil
	case browser.Firefox:
		return "firefox", nil
	default:
		return "", &browser.ConfigError{Field: "browser", Message: fmt.Sprintf("unsupported browser %q", kind)}
	}
}
