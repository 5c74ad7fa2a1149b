package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// EvidenceTimeFormat is the timestamp prefix of evidence file names.
const EvidenceTimeFormat = "2006-01-02_15-04-05.000"

// Artifact describes one evidence capture.
type Artifact struct {
	Timestamp      time.Time
	Operation      string
	ScreenshotPath string
	HTMLPath       string
	Title          string
}

// EvidenceRecorder writes screenshots and HTML snapshots of the current page.
type EvidenceRecorder struct {
	dir     string
	driver  Driver
	logger  Logger
	metrics *Metrics
	now     func() time.Time
}

// NewEvidenceRecorder creates a recorder writing into dir.
func NewEvidenceRecorder(dir string, driver Driver, logger Logger, metrics *Metrics) *EvidenceRecorder {
	if dir == "" {
		dir = DefaultEvidenceDir
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &EvidenceRecorder{
		dir:     dir,
		driver:  driver,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Dir returns the evidence directory.
func (r *EvidenceRecorder) Dir() string {
	return r.dir
}

// Capture saves a screenshot and the page HTML named after operation.
// The directory is created on demand. Partial captures return the artifact
// together with the error of the part that failed.
func (r *EvidenceRecorder) Capture(operation string) (*Artifact, error) {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		r.count("error")
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}

	ts := r.now()
	base := r.uniqueBase(fmt.Sprintf("%s_%s", ts.Format(EvidenceTimeFormat), sanitizeName(operation)))
	artifact := &Artifact{Timestamp: ts, Operation: operation}

	var errs []error

	pngPath := base + ".png"
	if err := r.driver.Screenshot(pngPath); err != nil {
		errs = append(errs, fmt.Errorf("screenshot: %w", err))
	} else {
		artifact.ScreenshotPath = pngPath
	}

	source, err := r.driver.PageSource()
	if err != nil {
		errs = append(errs, fmt.Errorf("page source: %w", err))
	} else {
		htmlPath := base + ".html"
		if writeErr := os.WriteFile(htmlPath, []byte(source), 0600); writeErr != nil {
			errs = append(errs, fmt.Errorf("write html: %w", writeErr))
		} else {
			artifact.HTMLPath = htmlPath
			artifact.Title = extractTitle(source)
		}
	}

	if len(errs) > 0 {
		r.count("error")
		return artifact, errors.Join(errs...)
	}
	r.count("ok")
	return artifact, nil
}

// Middleware captures evidence whenever the wrapped operation fails.
// The operation's error is always the one returned.
func (r *EvidenceRecorder) Middleware(operation string) Middleware {
	return func(next Operation) Operation {
		return func(ctx context.Context) error {
			err := next(ctx)
			if err == nil {
				return nil
			}
			r.logger.Errorf("%s failed: %v", operation, err)
			artifact, captureErr := r.Capture(operation)
			if captureErr != nil {
				r.logger.Errorf("failed to capture evidence for %s: %v", operation, captureErr)
				return err
			}
			r.logger.Infof("evidence saved: %s, %s (page %q)", artifact.ScreenshotPath, artifact.HTMLPath, artifact.Title)
			return err
		}
	}
}

func (r *EvidenceRecorder) count(result string) {
	if r.metrics != nil {
		r.metrics.Evidence.WithLabelValues(result).Inc()
	}
}

// uniqueBase appends -2, -3, ... until neither file of the pair exists.
func (r *EvidenceRecorder) uniqueBase(name string) string {
	base := filepath.Join(r.dir, name)
	candidate := base
	for n := 2; exists(candidate+".png") || exists(candidate+".html"); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "evidence"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// extractTitle returns the text of the first <title> element.
func extractTitle(source string) string {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}
