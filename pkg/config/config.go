// Package config merges configuration from a YAML file, a .env file and the
// process environment.
//
// Precedence, lowest first: config/config.yaml, .env, environment. A Config
// is built once at startup and passed to the components that need it; it is
// never reloaded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
)

// Known keys.
const (
	KeyBrowser         = "BROWSER"
	KeyHeadless        = "HEADLESS"
	KeyImplicitWait    = "IMPLICIT_WAIT"
	KeyExplicitTimeout = "EXPLICIT_TIMEOUT"
	KeyPollInterval    = "POLL_INTERVAL"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogDir          = "LOG_DIR"
	KeyEvidenceDir     = "EVIDENCE_DIR"
	KeyUsername        = "SITAC_USERNAME"
	KeyPassword        = "SITAC_PASSWORD"
	KeyOutputPath      = "OUTPUT_PATH"
)

// Default file locations, relative to the working directory.
const (
	DefaultConfigPath = "config/config.yaml"
	DefaultEnvFile    = ".env"
	DefaultOutputPath = "saida.xlsx"
)

// Options selects the files Load reads. Empty fields use the defaults.
type Options struct {
	ConfigPath string
	EnvFile    string

	// Environ replaces os.Environ.
	Environ func() []string
}

// Config is an immutable set of merged values.
type Config struct {
	values map[string]string
	origin map[string]string
}

// Load reads the standard layers.
func Load(opts Options) (*Config, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath
	}
	if opts.EnvFile == "" {
		opts.EnvFile = DefaultEnvFile
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return New(YAMLFile(opts.ConfigPath), DotEnv(opts.EnvFile), Environ(opts.Environ))
}

// New merges sources in order; later sources win.
func New(sources ...Source) (*Config, error) {
	c := &Config{
		values: make(map[string]string),
		origin: make(map[string]string),
	}
	for _, src := range sources {
		values, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("config source %s: %w", src.Name(), err)
		}
		for k, v := range values {
			c.values[k] = v
			c.origin[k] = src.Name()
		}
	}
	return c, nil
}

// With returns a copy of c with overrides applied on top. Empty values are
// ignored so unset flags do not clear configured ones.
func (c *Config) With(overrides Map) *Config {
	out := &Config{
		values: make(map[string]string, len(c.values)),
		origin: make(map[string]string, len(c.origin)),
	}
	for k, v := range c.values {
		out.values[k] = v
		out.origin[k] = c.origin[k]
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		out.values[normalize(k)] = v
		out.origin[normalize(k)] = "override"
	}
	return out
}

// Lookup returns the raw value of key. Keys are case-insensitive.
func (c *Config) Lookup(key string) (string, bool) {
	v, ok := c.values[normalize(key)]
	return v, ok
}

// Origin names the source that set key, or "" when unset.
func (c *Config) Origin(key string) string {
	return c.origin[normalize(key)]
}

// Keys lists every key in sorted order.
func (c *Config) Keys() []string {
	return sortedKeys(c.values)
}

// Get returns the value of key, or def when unset.
func (c *Config) Get(key, def string) string {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// Bool returns def when key is unset or not a boolean.
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Int returns def when key is unset or not an integer.
func (c *Config) Int(key string, def int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Duration accepts Go durations ("1500ms") and plain seconds ("5", "1.5").
// It returns def when key is unset or unparseable.
func (c *Config) Duration(key string, def time.Duration) time.Duration {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	d, err := parseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// Browser builds the session configuration. An unsupported BROWSER is a
// *browser.ConfigError.
func (c *Config) Browser() (browser.Config, error) {
	def := browser.DefaultConfig()

	kind, err := browser.ParseKind(c.Get(KeyBrowser, string(def.Kind)))
	if err != nil {
		return browser.Config{}, err
	}

	cfg := browser.Config{
		Kind:            kind,
		Headless:        c.Bool(KeyHeadless, def.Headless),
		ImplicitWait:    c.Duration(KeyImplicitWait, def.ImplicitWait),
		ExplicitTimeout: c.Duration(KeyExplicitTimeout, def.ExplicitTimeout),
		PollInterval:    c.Duration(KeyPollInterval, def.PollInterval),
		LogLevel:        strings.ToUpper(c.Get(KeyLogLevel, def.LogLevel)),
		EvidenceDir:     c.Get(KeyEvidenceDir, def.EvidenceDir),
	}
	if err := cfg.Validate(); err != nil {
		return browser.Config{}, err
	}
	return cfg, nil
}

// Username is the portal login.
func (c *Config) Username() string { return c.Get(KeyUsername, "") }

// Password is the portal password.
func (c *Config) Password() string { return c.Get(KeyPassword, "") }

// OutputPath is where reports are written.
func (c *Config) OutputPath() string { return c.Get(KeyOutputPath, DefaultOutputPath) }
