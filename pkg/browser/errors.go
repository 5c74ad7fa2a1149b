package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoSuchElement     = errors.New("no such element")
	ErrStaleElement      = errors.New("stale element reference")
	ErrClickIntercepted  = errors.New("element click intercepted")
	ErrNoAlert           = errors.New("no alert present")
	ErrTabOutOfRange     = errors.New("tab index out of range")
	ErrFrameOutOfRange   = errors.New("frame index out of range")
	ErrInvalidLocator    = errors.New("invalid locator")
	ErrSessionClosed     = errors.New("browser session closed")
	ErrLastTab           = errors.New("cannot close the last tab")
	ErrUnsupportedAction = errors.New("unsupported action")
)

// ConfigError reports an invalid configuration detected before any session work.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// TimeoutError is returned when a wait deadline passes without a match.
type TimeoutError struct {
	Locator Locator
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s (timeout %s)",
		e.Elapsed.Round(time.Millisecond), e.Locator, e.Timeout)
}

// NavigationError wraps a driver failure while loading a URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ScriptError wraps a failure raised by script execution.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script execution failed: %v", e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsTransient reports whether err is an interaction failure that may clear up
// on its own: a stale element or an intercepted click.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrStaleElement) || errors.Is(err, ErrClickIntercepted)
}

// IsStale reports whether err is a stale element failure.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleElement)
}

// isProgrammingError reports failures that retrying can never fix.
func isProgrammingError(err error) bool {
	if errors.Is(err, ErrInvalidLocator) || errors.Is(err, ErrSessionClosed) {
		return true
	}
	var ce *ConfigError
	return errors.As(err, &ce)
}
