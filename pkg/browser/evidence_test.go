package browser_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/browser/browsertest"
	"github.com/entrhq/sitac/pkg/logging"
)

var evidenceName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.\d{3}_([A-Za-z0-9_.-]+?)(-\d+)?\.(png|html)$`)

func listEvidence(t *testing.T, dir string) (pngs, htmls []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".png":
			pngs = append(pngs, e.Name())
		case ".html":
			htmls = append(htmls, e.Name())
		}
	}
	sort.Strings(pngs)
	sort.Strings(htmls)
	return pngs, htmls
}

func TestEvidenceCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "errors")
	d := browsertest.NewDriver()
	d.SetPage("SITAC - Login", "<html><head><title>SITAC - Login</title></head><body><p>x</p></body></html>")
	m := browser.NewMetrics(nil)

	rec := browser.NewEvidenceRecorder(dir, d, nil, m)
	artifact, err := rec.Capture("login failed")
	require.NoError(t, err)

	assert.Equal(t, "login failed", artifact.Operation)
	assert.Equal(t, "SITAC - Login", artifact.Title)
	assert.FileExists(t, artifact.ScreenshotPath)
	assert.FileExists(t, artifact.HTMLPath)
	assert.Equal(t, strings.TrimSuffix(artifact.ScreenshotPath, ".png"), strings.TrimSuffix(artifact.HTMLPath, ".html"))

	base := filepath.Base(artifact.ScreenshotPath)
	match := evidenceName.FindStringSubmatch(base)
	require.NotNil(t, match, base)
	assert.Equal(t, "login_failed", match[1])
	assert.True(t, strings.HasPrefix(base, artifact.Timestamp.Format(browser.EvidenceTimeFormat)))

	source, err := os.ReadFile(artifact.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(source), "<p>x</p>")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evidence.WithLabelValues("ok")))
}

func TestEvidenceCaptureNamesNeverCollide(t *testing.T) {
	dir := t.TempDir()
	rec := browser.NewEvidenceRecorder(dir, browsertest.NewDriver(), nil, nil)

	for i := 0; i < 5; i++ {
		_, err := rec.Capture("click")
		require.NoError(t, err)
	}

	pngs, htmls := listEvidence(t, dir)
	assert.Len(t, pngs, 5)
	assert.Len(t, htmls, 5)
}

func TestEvidenceMiddlewareCapturesEveryFailedAttempt(t *testing.T) {
	dir := t.TempDir()
	d := browsertest.NewDriver()
	rec := browser.NewEvidenceRecorder(dir, d, nil, nil)

	calls := 0
	op := browser.Chain(failing(&calls, browser.ErrStaleElement, browser.ErrStaleElement, browser.ErrClickIntercepted),
		browser.RetryMiddleware(browser.RetrySpec{Attempts: 3}, browser.RetryOptions{Operation: "click"}),
		rec.Middleware("click"),
	)

	err := op(context.Background())
	assert.Same(t, browser.ErrClickIntercepted, err)
	assert.Equal(t, 3, calls)

	pngs, htmls := listEvidence(t, dir)
	require.Len(t, pngs, 3)
	require.Len(t, htmls, 3)
	for i := range pngs {
		assert.Equal(t, strings.TrimSuffix(pngs[i], ".png"), strings.TrimSuffix(htmls[i], ".html"))
		match := evidenceName.FindStringSubmatch(pngs[i])
		require.NotNil(t, match, pngs[i])
		assert.Equal(t, "click", match[1])
	}
}

func TestEvidenceMiddlewareLogsPageTitle(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New("browser", logging.Options{Dir: t.TempDir(), Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	d := browsertest.NewDriver()
	d.SetPage("Protocolos a receber", "<html><head><title>Protocolos a receber</title></head><body></body></html>")
	rec := browser.NewEvidenceRecorder(t.TempDir(), d, logger, nil)

	calls := 0
	err = rec.Middleware("extract_table")(failing(&calls, browser.ErrStaleElement))(context.Background())
	assert.Same(t, browser.ErrStaleElement, err)
	assert.Contains(t, console.String(), `evidence saved: `)
	assert.Contains(t, console.String(), `(page "Protocolos a receber")`)
}

func TestEvidenceMiddlewareSkipsSuccessfulAttempts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "errors")
	rec := browser.NewEvidenceRecorder(dir, browsertest.NewDriver(), nil, nil)

	calls := 0
	op := browser.Chain(failing(&calls, browser.ErrStaleElement),
		browser.RetryMiddleware(browser.RetrySpec{Attempts: 2}, browser.RetryOptions{}),
		rec.Middleware("type_text"),
	)

	require.NoError(t, op(context.Background()))
	pngs, htmls := listEvidence(t, dir)
	assert.Len(t, pngs, 1)
	assert.Len(t, htmls, 1)
}

func TestEvidenceCaptureFailureNeverMasksOriginal(t *testing.T) {
	d := browsertest.NewDriver()
	d.ScreenshotErr = errors.New("target closed")
	d.SourceErr = errors.New("target closed")
	m := browser.NewMetrics(nil)
	rec := browser.NewEvidenceRecorder(t.TempDir(), d, nil, m)

	original := &browser.TimeoutError{Locator: browser.CSS("#x"), Timeout: time.Second, Elapsed: time.Second}
	op := rec.Middleware("wait_for")(func(context.Context) error { return original })

	err := op(context.Background())
	var te *browser.TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Same(t, original, te)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evidence.WithLabelValues("error")))
}

func TestEvidenceCapturePartial(t *testing.T) {
	d := browsertest.NewDriver()
	d.ScreenshotErr = errors.New("no screenshot")
	rec := browser.NewEvidenceRecorder(t.TempDir(), d, nil, nil)

	artifact, err := rec.Capture("extract_table")
	require.Error(t, err)
	require.NotNil(t, artifact)
	assert.Empty(t, artifact.ScreenshotPath)
	assert.FileExists(t, artifact.HTMLPath)
}
