package browser_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/browser/browsertest"
)

func testConfig(t *testing.T) browser.Config {
	t.Helper()
	cfg := browser.DefaultConfig()
	cfg.ExplicitTimeout = 200 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.EvidenceDir = filepath.Join(t.TempDir(), "errors")
	return cfg
}

func newTestBrowser(t *testing.T, d *browsertest.Driver, opts ...browser.Option) *browser.Browser {
	t.Helper()
	defaults := []browser.Option{
		browser.WithClickRetry(browser.RetrySpec{Attempts: 3, Delay: time.Millisecond}),
		browser.WithTypeRetry(browser.RetrySpec{Attempts: 3, Delay: time.Millisecond}),
		browser.WithTableRetry(browser.RetrySpec{Attempts: 2, Delay: time.Millisecond}),
	}
	b, err := browser.New(testConfig(t), d.Launcher(), append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(b.Quit)
	return b
}

func TestNew(t *testing.T) {
	t.Run("unsupported kind fails before launching", func(t *testing.T) {
		d := browsertest.NewDriver()
		cfg := testConfig(t)
		cfg.Kind = "safari"

		b, err := browser.New(cfg, d.Launcher())
		assert.Nil(t, b)
		var ce *browser.ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "browser", ce.Field)
		assert.Zero(t, d.Launches())
	})

	t.Run("normalizes kind and fills defaults", func(t *testing.T) {
		d := browsertest.NewDriver()
		cfg := browser.Config{Kind: "FireFox"}

		b, err := browser.New(cfg, d.Launcher())
		require.NoError(t, err)
		defer b.Quit()

		got := d.LaunchConfig()
		assert.Equal(t, browser.Firefox, got.Kind)
		assert.Equal(t, browser.DefaultExplicitTimeout, got.ExplicitTimeout)
		assert.Equal(t, browser.DefaultPollInterval, got.PollInterval)
		assert.Equal(t, browser.DefaultEvidenceDir, got.EvidenceDir)
		assert.Equal(t, got, b.Config())
	})

	t.Run("launch failure is wrapped", func(t *testing.T) {
		boom := errors.New("executable not found")
		_, err := browser.New(testConfig(t), browser.LauncherFunc(func(browser.Config) (browser.Driver, error) {
			return nil, boom
		}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil launcher is a configuration error", func(t *testing.T) {
		_, err := browser.New(testConfig(t), nil)
		var ce *browser.ConfigError
		assert.True(t, errors.As(err, &ce))
	})

	t.Run("invalid retry spec is rejected", func(t *testing.T) {
		d := browsertest.NewDriver()
		_, err := browser.New(testConfig(t), d.Launcher(), browser.WithClickRetry(browser.RetrySpec{}))
		var ce *browser.ConfigError
		assert.True(t, errors.As(err, &ce))
		assert.Zero(t, d.Launches())
	})
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()

	t.Run("loads absolute urls", func(t *testing.T) {
		d := browsertest.NewDriver()
		b := newTestBrowser(t, d)

		require.NoError(t, b.Navigate(ctx, "https://crea-ma.sitac.com.br/app/"))
		assert.Equal(t, []string{"https://crea-ma.sitac.com.br/app/"}, d.Navigated())
		assert.Equal(t, "https://crea-ma.sitac.com.br/app/", b.CurrentURL())
	})

	t.Run("rejects relative urls", func(t *testing.T) {
		d := browsertest.NewDriver()
		b := newTestBrowser(t, d)

		err := b.Navigate(ctx, "/login.php")
		assert.ErrorIs(t, err, browser.ErrInvalidURL)
		assert.Empty(t, d.Navigated())
	})

	t.Run("driver failure is a navigation error and not retried", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
		b := newTestBrowser(t, d)

		err := b.Navigate(ctx, "https://invalid.example")
		var ne *browser.NavigationError
		require.True(t, errors.As(err, &ne))
		assert.Equal(t, "https://invalid.example", ne.URL)
		assert.ErrorIs(t, err, d.NavigateErr)
		assert.Len(t, d.Screenshots(), 1)
	})
}

func TestClick(t *testing.T) {
	ctx := context.Background()

	t.Run("clicks after waiting for presence", func(t *testing.T) {
		d := browsertest.NewDriver()
		btn := d.AddAfter(browser.CSS("#submit"), browsertest.NewElement("Entrar"), 30*time.Millisecond)
		b := newTestBrowser(t, d)

		require.NoError(t, b.Click(ctx, browser.CSS("#submit")))
		assert.Equal(t, 1, btn.Clicks())
	})

	t.Run("retries intercepted and stale clicks", func(t *testing.T) {
		d := browsertest.NewDriver()
		btn := d.Add(browser.CSS("#menu"), browsertest.NewElement("").
			FailClicks(browser.ErrClickIntercepted, browser.ErrStaleElement))
		b := newTestBrowser(t, d)

		require.NoError(t, b.Click(ctx, browser.CSS("#menu")))
		assert.Equal(t, 1, btn.Clicks())
		assert.Len(t, d.Screenshots(), 2, "one artifact per failed attempt")
	})

	t.Run("gives up after three attempts with the last error", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.Add(browser.CSS("#menu"), browsertest.NewElement("").
			FailClicks(browser.ErrStaleElement, browser.ErrStaleElement, browser.ErrClickIntercepted))
		b := newTestBrowser(t, d)

		err := b.Click(ctx, browser.CSS("#menu"))
		assert.ErrorIs(t, err, browser.ErrClickIntercepted)
		assert.Len(t, d.Screenshots(), 3)
	})

	t.Run("other failures propagate immediately", func(t *testing.T) {
		d := browsertest.NewDriver()
		notInteractable := errors.New("element not interactable")
		btn := d.Add(browser.CSS("#menu"), browsertest.NewElement("").FailClicks(notInteractable))
		b := newTestBrowser(t, d)

		err := b.Click(ctx, browser.CSS("#menu"))
		assert.ErrorIs(t, err, notInteractable)
		assert.Zero(t, btn.Clicks())
		assert.Len(t, d.Screenshots(), 1)
	})

	t.Run("missing element times out without retry", func(t *testing.T) {
		d := browsertest.NewDriver()
		b := newTestBrowser(t, d)

		err := b.Click(ctx, browser.CSS("#nope"), browser.Timeout(20*time.Millisecond))
		assert.True(t, browser.IsTimeout(err))
		assert.Len(t, d.Screenshots(), 1)
	})
}

func TestTypeText(t *testing.T) {
	ctx := context.Background()

	t.Run("clears first by default", func(t *testing.T) {
		d := browsertest.NewDriver()
		field := d.Add(browser.CSS("#username"), browsertest.NewElement(""))
		require.NoError(t, field.SendKeys("old"))
		b := newTestBrowser(t, d)

		require.NoError(t, b.TypeText(ctx, browser.CSS("#username"), "user"))
		assert.Equal(t, "user", field.Value())
	})

	t.Run("keeps existing text when asked", func(t *testing.T) {
		d := browsertest.NewDriver()
		field := d.Add(browser.CSS("#username"), browsertest.NewElement(""))
		require.NoError(t, field.SendKeys("ab"))
		b := newTestBrowser(t, d)

		require.NoError(t, b.TypeText(ctx, browser.CSS("#username"), "cd", browser.KeepExisting()))
		assert.Equal(t, "abcd", field.Value())
	})

	t.Run("retries stale elements", func(t *testing.T) {
		d := browsertest.NewDriver()
		field := d.Add(browser.CSS("#password"), browsertest.NewElement("").FailSendKeys(browser.ErrStaleElement))
		b := newTestBrowser(t, d)

		require.NoError(t, b.TypeText(ctx, browser.CSS("#password"), "secret"))
		assert.Equal(t, "secret", field.Value())
	})

	t.Run("does not retry intercepted input", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.Add(browser.CSS("#password"), browsertest.NewElement("").FailSendKeys(browser.ErrClickIntercepted))
		b := newTestBrowser(t, d)

		err := b.TypeText(ctx, browser.CSS("#password"), "secret")
		assert.ErrorIs(t, err, browser.ErrClickIntercepted)
		assert.Len(t, d.Screenshots(), 1)
	})
}

func TestReadText(t *testing.T) {
	d := browsertest.NewDriver()
	d.Add(browser.CSS("#error_message"), browsertest.NewElement("\n  Usuário ou senha inválidos  \n"))
	b := newTestBrowser(t, d)

	first, err := b.ReadText(context.Background(), browser.CSS("#error_message"))
	require.NoError(t, err)
	second, err := b.ReadText(context.Background(), browser.CSS("#error_message"))
	require.NoError(t, err)

	assert.Equal(t, "Usuário ou senha inválidos", first)
	assert.Equal(t, first, second)
}

func TestIsVisible(t *testing.T) {
	ctx := context.Background()
	d := browsertest.NewDriver()
	d.Add(browser.CSS("#shown"), browsertest.NewElement(""))
	d.Add(browser.CSS("#hidden"), browsertest.NewElement("").Hidden())
	b := newTestBrowser(t, d)

	assert.True(t, b.IsVisible(ctx, browser.CSS("#shown"), 50*time.Millisecond))
	assert.False(t, b.IsVisible(ctx, browser.CSS("#hidden"), 30*time.Millisecond))
	assert.False(t, b.IsVisible(ctx, browser.CSS("#absent"), 30*time.Millisecond))
	assert.False(t, b.IsVisible(ctx, browser.CSS(""), 30*time.Millisecond))
	assert.Empty(t, d.Screenshots(), "tolerant checks leave no evidence")
}

func TestExecuteScript(t *testing.T) {
	t.Run("passes through the result", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.ScriptResult = "complete"
		b := newTestBrowser(t, d)

		got, err := b.ExecuteScript("return document.readyState;")
		require.NoError(t, err)
		assert.Equal(t, "complete", got)
	})

	t.Run("failures are script errors and run once", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.ScriptErr = errors.New("ReferenceError: foo is not defined")
		b := newTestBrowser(t, d)

		_, err := b.ExecuteScript("foo()")
		var se *browser.ScriptError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "foo()", se.Script)
		assert.Len(t, d.Scripts(), 1)
	})

	t.Run("scroll helpers", func(t *testing.T) {
		d := browsertest.NewDriver()
		target := d.Add(browser.CSS("#footer"), browsertest.NewElement(""))
		b := newTestBrowser(t, d)

		require.NoError(t, b.ScrollBy(0, 500))
		require.NoError(t, b.ScrollToElement(context.Background(), browser.CSS("#footer")))
		assert.Equal(t, []string{"window.scrollBy(0, 500);"}, d.Scripts())
		assert.True(t, target.Scrolled())
	})
}

func TestScreenshotAndEvidence(t *testing.T) {
	d := browsertest.NewDriver()
	d.SetPage("Home", "")
	b := newTestBrowser(t, d)

	path := filepath.Join(t.TempDir(), "shots", "nested", "page.png")
	require.NoError(t, b.Screenshot(path))
	assert.FileExists(t, path)

	artifact, err := b.CaptureEvidence("manual check")
	require.NoError(t, err)
	assert.Equal(t, "Home", artifact.Title)
	assert.Equal(t, b.Evidence().Dir(), filepath.Dir(artifact.HTMLPath))
}

func TestQuit(t *testing.T) {
	t.Run("teardown errors are swallowed", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.QuitErr = errors.New("session already gone")
		b := newTestBrowser(t, d)

		assert.NotPanics(t, b.Quit)
		b.Quit()
		assert.Equal(t, 1, d.QuitCalls())
	})

	t.Run("operations after quit fail fast", func(t *testing.T) {
		d := browsertest.NewDriver()
		d.Add(browser.CSS("#x"), browsertest.NewElement(""))
		b := newTestBrowser(t, d)
		b.Quit()

		assert.ErrorIs(t, b.Click(context.Background(), browser.CSS("#x")), browser.ErrSessionClosed)
		_, err := b.TabCount()
		assert.ErrorIs(t, err, browser.ErrSessionClosed)
		assert.Empty(t, d.Screenshots())
	})
}
