package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sitac/pkg/browser"
)

const sampleYAML = `
BROWSER: firefox
HEADLESS: false
IMPLICIT_WAIT: 3
EXPLICIT_TIMEOUT: 1500ms
LOG_LEVEL: debug
sitac:
  username: from-yaml
  password: yaml-secret
tags: [a, b]
empty: null
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func environ(kv ...string) func() []string {
	return func() []string { return kv }
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config/config.yaml", sampleYAML)
	envPath := writeFile(t, dir, ".env", "SITAC_USERNAME=from-dotenv\nOUTPUT_PATH=out/rel.xlsx\n")

	c, err := Load(Options{
		ConfigPath: cfgPath,
		EnvFile:    envPath,
		Environ:    environ("SITAC_USERNAME=from-env", "PATH=/bin", "malformed"),
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", c.Username())
	assert.Equal(t, "env", c.Origin(KeyUsername))
	assert.Equal(t, "yaml-secret", c.Password())
	assert.Equal(t, "yaml:"+cfgPath, c.Origin(KeyPassword))
	assert.Equal(t, "out/rel.xlsx", c.OutputPath())
	assert.Equal(t, "dotenv:"+envPath, c.Origin(KeyOutputPath))
	assert.Equal(t, "a,b", c.Get("tags", ""))

	_, ok := c.Lookup("empty")
	assert.False(t, ok)
	assert.Equal(t, "", c.Origin("missing"))
	assert.Contains(t, c.Keys(), "PATH")
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(Options{
		ConfigPath: filepath.Join(dir, "nope.yaml"),
		EnvFile:    filepath.Join(dir, "nope.env"),
		Environ:    environ(),
	})
	require.NoError(t, err)
	assert.Empty(t, c.Keys())
	assert.Equal(t, DefaultOutputPath, c.OutputPath())
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "BROWSER: [unterminated")

	_, err := Load(Options{ConfigPath: path, EnvFile: filepath.Join(dir, ".env"), Environ: environ()})
	assert.Error(t, err)
}

func TestTypedGetters(t *testing.T) {
	c, err := New(Map{
		"flag":   "true",
		"bad":    "maybe",
		"n":      " 42 ",
		"secs":   "5",
		"frac":   "1.5",
		"dur":    "250ms",
		"broken": "soon",
	})
	require.NoError(t, err)

	assert.True(t, c.Bool("FLAG", false))
	assert.True(t, c.Bool("bad", true), "cast failure returns default")
	assert.False(t, c.Bool("unset", false))

	assert.Equal(t, 42, c.Int("n", 0))
	assert.Equal(t, 7, c.Int("bad", 7))

	assert.Equal(t, 5*time.Second, c.Duration("secs", 0))
	assert.Equal(t, 1500*time.Millisecond, c.Duration("frac", 0))
	assert.Equal(t, 250*time.Millisecond, c.Duration("dur", 0))
	assert.Equal(t, time.Minute, c.Duration("broken", time.Minute))
	assert.Equal(t, time.Minute, c.Duration("unset", time.Minute))

	assert.Equal(t, "fallback", c.Get("unset", "fallback"))
}

func TestBrowserConfig(t *testing.T) {
	t.Run("from layered values", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
		c, err := Load(Options{ConfigPath: cfgPath, EnvFile: filepath.Join(dir, ".env"), Environ: environ("POLL_INTERVAL=100ms")})
		require.NoError(t, err)

		got, err := c.Browser()
		require.NoError(t, err)
		assert.Equal(t, browser.Config{
			Kind:            browser.Firefox,
			Headless:        false,
			ImplicitWait:    3 * time.Second,
			ExplicitTimeout: 1500 * time.Millisecond,
			PollInterval:    100 * time.Millisecond,
			LogLevel:        "DEBUG",
			EvidenceDir:     browser.DefaultEvidenceDir,
		}, got)
	})

	t.Run("defaults", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		got, err := c.Browser()
		require.NoError(t, err)
		assert.Equal(t, browser.DefaultConfig(), got)
	})

	t.Run("unsupported browser", func(t *testing.T) {
		c, err := New(Map{KeyBrowser: "safari"})
		require.NoError(t, err)
		_, err = c.Browser()
		var ce *browser.ConfigError
		assert.True(t, errors.As(err, &ce))
	})
}

func TestWith(t *testing.T) {
	c, err := New(Map{KeyBrowser: "chrome", KeyHeadless: "true"})
	require.NoError(t, err)

	over := c.With(Map{KeyBrowser: "firefox", KeyHeadless: ""})
	assert.Equal(t, "firefox", over.Get(KeyBrowser, ""))
	assert.Equal(t, "override", over.Origin(KeyBrowser))
	assert.Equal(t, "true", over.Get(KeyHeadless, ""), "empty override keeps value")
	assert.Equal(t, "chrome", c.Get(KeyBrowser, ""), "original is unchanged")
}
