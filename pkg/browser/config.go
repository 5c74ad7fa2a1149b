package browser

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects the browser engine.
type Kind string

const (
	Chrome  Kind = "chrome"
	Firefox Kind = "firefox"
)

// Default values for session configuration.
const (
	DefaultImplicitWait    = 5 * time.Second
	DefaultExplicitTimeout = 10 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond
	DefaultEvidenceDir     = "logs/errors"
	DefaultLogLevel        = "INFO"
)

// ParseKind maps a name to a Kind. Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case Chrome, "chromium":
		return Chrome, nil
	case Firefox:
		return Firefox, nil
	default:
		return "", &ConfigError{Field: "browser", Message: fmt.Sprintf("unsupported browser %q (use chrome or firefox)", name)}
	}
}

// Config is the session configuration. It is fixed once a Browser is created.
type Config struct {
	Kind     Kind
	Headless bool

	// ImplicitWait is applied by the driver beneath every element query.
	ImplicitWait time.Duration

	// ExplicitTimeout is the default timeout of the wait engine.
	ExplicitTimeout time.Duration

	// PollInterval is how often the wait engine re-queries the page.
	PollInterval time.Duration

	LogLevel    string
	EvidenceDir string
}

// DefaultConfig returns a headless Chrome configuration.
func DefaultConfig() Config {
	return Config{
		Kind:            Chrome,
		Headless:        true,
		ImplicitWait:    DefaultImplicitWait,
		ExplicitTimeout: DefaultExplicitTimeout,
		PollInterval:    DefaultPollInterval,
		LogLevel:        DefaultLogLevel,
		EvidenceDir:     DefaultEvidenceDir,
	}
}

// Validate checks the configuration and fills zero durations with defaults.
func (c *Config) Validate() error {
	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		return err
	}
	c.Kind = kind

	if c.ImplicitWait < 0 {
		return &ConfigError{Field: "implicit_wait", Message: "must not be negative"}
	}
	if c.ExplicitTimeout < 0 {
		return &ConfigError{Field: "explicit_timeout", Message: "must not be negative"}
	}
	if c.PollInterval < 0 {
		return &ConfigError{Field: "poll_interval", Message: "must not be negative"}
	}

	if c.ExplicitTimeout == 0 {
		c.ExplicitTimeout = DefaultExplicitTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.EvidenceDir == "" {
		c.EvidenceDir = DefaultEvidenceDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return nil
}

// Logger is the logging surface the browser package writes to.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
