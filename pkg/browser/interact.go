package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Click waits for loc and clicks it. Stale elements and intercepted clicks are
// retried; anything else fails on the first attempt.
func (b *Browser) Click(ctx context.Context, loc Locator, opts ...ActionOption) error {
	o := b.actionOptions(opts)
	return b.run(ctx, "click", b.clickRetry, IsTransient, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		if err := el.Click(); err != nil {
			return fmt.Errorf("click %s: %w", loc, err)
		}
		b.logger.Debugf("clicked %s", loc)
		return nil
	})
}

// TypeText waits for loc and types text into it. The field is cleared first
// unless KeepExisting is passed. Stale elements are retried.
func (b *Browser) TypeText(ctx context.Context, loc Locator, text string, opts ...ActionOption) error {
	o := b.actionOptions(opts)
	return b.run(ctx, "type_text", b.typeRetry, IsStale, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		if !o.keepExisting {
			if err := el.Clear(); err != nil {
				return fmt.Errorf("clear %s: %w", loc, err)
			}
		}
		if err := el.SendKeys(text); err != nil {
			return fmt.Errorf("type into %s: %w", loc, err)
		}
		b.logger.Debugf("typed %d characters into %s", len(text), loc)
		return nil
	})
}

// ReadText waits for loc and returns its trimmed text.
func (b *Browser) ReadText(ctx context.Context, loc Locator, opts ...ActionOption) (string, error) {
	o := b.actionOptions(opts)
	var text string
	err := b.run(ctx, "read_text", NoRetry, nil, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		raw, err := el.Text()
		if err != nil {
			return fmt.Errorf("read text of %s: %w", loc, err)
		}
		text = strings.TrimSpace(raw)
		return nil
	})
	return text, err
}

// IsVisible reports whether loc becomes present and visible within timeout.
// It never fails; any error counts as not visible.
func (b *Browser) IsVisible(ctx context.Context, loc Locator, timeout time.Duration) bool {
	if b.closed || loc.Validate() != nil {
		return false
	}
	if timeout <= 0 {
		timeout = b.cfg.ExplicitTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		el, err := WaitFor(ctx, b.driver, loc, WaitOptions{Timeout: remaining, Interval: b.cfg.PollInterval})
		if err != nil {
			return false
		}
		if visible, err := el.IsVisible(); err == nil && visible {
			return true
		}
		if time.Until(deadline) <= 0 {
			return false
		}
		if err := sleepContext(ctx, b.cfg.PollInterval); err != nil {
			return false
		}
	}
}

// ScrollBy scrolls the window by x, y pixels.
func (b *Browser) ScrollBy(x, y int) error {
	_, err := b.ExecuteScript(fmt.Sprintf("window.scrollBy(%d, %d);", x, y))
	return err
}

// ScrollToElement waits for loc and scrolls it into view.
func (b *Browser) ScrollToElement(ctx context.Context, loc Locator, opts ...ActionOption) error {
	o := b.actionOptions(opts)
	return b.run(ctx, "scroll_to_element", NoRetry, nil, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		return el.ScrollIntoView()
	})
}
