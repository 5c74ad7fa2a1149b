package pwdriver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sitac/pkg/browser"
)

// selectorFor maps a locator onto a Playwright selector engine.
func selectorFor(loc browser.Locator) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", err
	}
	switch loc.By {
	case browser.ByCSS:
		return "css=" + loc.Selector, nil
	case browser.ByID:
		return fmt.Sprintf(`css=[id=%s]`, quote(loc.Selector)), nil
	case browser.ByXPath:
		return "xpath=" + loc.Selector, nil
	case browser.ByName:
		return fmt.Sprintf(`css=[name=%s]`, quote(loc.Selector)), nil
	case browser.ByText:
		return "text=" + loc.Selector, nil
	case browser.ByClass:
		return fmt.Sprintf(`css=[class~=%s]`, quote(loc.Selector)), nil
	default:
		return "", fmt.Errorf("%w: unsupported strategy %q", browser.ErrInvalidLocator, loc.By)
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// translate maps Playwright failures onto the browser package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Element is detached"),
		strings.Contains(msg, "JSHandle is disposed"):
		return fmt.Errorf("%w: %v", browser.ErrStaleElement, err)
	case strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %v", browser.ErrClickIntercepted, err)
	case strings.Contains(msg, "Target closed"),
		strings.Contains(msg, "has been closed"):
		return fmt.Errorf("%w: %v", browser.ErrSessionClosed, err)
	}
	return err
}

func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
