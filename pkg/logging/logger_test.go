package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(content)
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New("test-component", Options{Dir: dir})
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.NotEmpty(t, logger.SessionID())
	assert.Equal(t, filepath.Join(dir, logger.SessionID()+"-sitac.log"), logger.LogPath())
	assert.FileExists(t, logger.LogPath())
}

func TestLoggerFormatting(t *testing.T) {
	logger, err := New("browser", Options{Dir: t.TempDir(), Level: LevelDebug})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "two")
	logger.Warnf("warn")
	logger.Errorf("error")
	logger.Printf("printf")

	lines := strings.Split(strings.TrimSpace(readLog(t, logger)), "\n")
	require.Len(t, lines, 5)
	for i, want := range []string{
		"[browser] [DEBUG] debug 1",
		"[browser] [INFO] info two",
		"[browser] [WARN] warn",
		"[browser] [ERROR] error",
		"[browser] [INFO] printf",
	} {
		assert.True(t, strings.HasPrefix(lines[i], "["), "line %d has a timestamp", i)
		assert.Contains(t, lines[i], want)
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, err := New("flows", Options{Dir: t.TempDir(), Level: LevelWarn})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("shown warn")

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.Level())
	logger.Debugf("shown debug")

	content := readLog(t, logger)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "shown warn")
	assert.Contains(t, content, "shown debug")
}

func TestWithSharesFile(t *testing.T) {
	root, err := New("cli", Options{Dir: t.TempDir()})
	require.NoError(t, err)
	defer root.Close()

	child := root.With("sitac")
	child.Infof("from child")
	root.SetLevel(LevelError)
	child.Infof("filtered by shared level")

	content := readLog(t, root)
	assert.Contains(t, content, "[sitac] [INFO] from child")
	assert.NotContains(t, content, "filtered")
	assert.Equal(t, root.LogPath(), child.LogPath())
}

func TestConsoleTee(t *testing.T) {
	var console bytes.Buffer
	logger, err := New("cli", Options{Dir: t.TempDir(), Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof("hello")
	assert.Contains(t, console.String(), "[cli] [INFO] hello")
	assert.Contains(t, readLog(t, logger), "[cli] [INFO] hello")
}

func TestFallbackLogger(t *testing.T) {
	// A regular file where the directory should be forces the fallback.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	logger, err := New("cli", Options{Dir: filepath.Join(blocker, "logs")})
	assert.Error(t, err)
	require.NotNil(t, logger)
	assert.Empty(t, logger.LogPath())
	assert.Equal(t, os.Stderr, logger.Writer())
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "Warning", want: LevelWarn},
		{in: "warn", want: LevelWarn},
		{in: "ERROR", want: LevelError},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
	assert.Equal(t, "WARN", LevelWarn.String())
}

func TestConcurrentLogging(t *testing.T) {
	logger, err := New("concurrent", Options{Dir: t.TempDir()})
	require.NoError(t, err)
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Infof("goroutine %d message %d", id, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(readLog(t, logger)), "\n")
	assert.Len(t, lines, 100)
}

func TestCloseTwice(t *testing.T) {
	logger, err := New("close", Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}
