package browser

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
)

// TabCount returns the number of open tabs.
func (b *Browser) TabCount() (int, error) {
	if b.closed {
		return 0, ErrSessionClosed
	}
	handles, err := b.driver.WindowHandles()
	if err != nil {
		return 0, fmt.Errorf("failed to list tabs: %w", err)
	}
	return len(handles), nil
}

// CurrentTab returns the index of the active tab.
func (b *Browser) CurrentTab() (int, error) {
	if b.closed {
		return 0, ErrSessionClosed
	}
	handles, err := b.driver.WindowHandles()
	if err != nil {
		return 0, fmt.Errorf("failed to list tabs: %w", err)
	}
	current, err := b.driver.CurrentWindow()
	if err != nil {
		return 0, fmt.Errorf("failed to read active tab: %w", err)
	}
	for i, h := range handles {
		if h == current {
			return i, nil
		}
	}
	return 0, fmt.Errorf("active tab %q is not among open tabs", current)
}

// SwitchTab activates the tab at index. An index outside [0, TabCount())
// fails with ErrTabOutOfRange and leaves the active tab unchanged.
func (b *Browser) SwitchTab(index int) error {
	return b.run(context.Background(), "switch_tab", NoRetry, nil, func(context.Context) error {
		handles, err := b.driver.WindowHandles()
		if err != nil {
			return fmt.Errorf("failed to list tabs: %w", err)
		}
		if index < 0 || index >= len(handles) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrTabOutOfRange, index, len(handles))
		}
		if err := b.driver.SwitchToWindow(handles[index]); err != nil {
			return fmt.Errorf("failed to switch to tab %d: %w", index, err)
		}
		b.logger.Debugf("switched to tab %d", index)
		return nil
	})
}

// NewTab opens a tab, activates it and loads rawURL when it is not empty.
func (b *Browser) NewTab(ctx context.Context, rawURL string) error {
	if b.closed {
		return ErrSessionClosed
	}
	handle, err := b.driver.NewWindow()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if err := b.driver.SwitchToWindow(handle); err != nil {
		return fmt.Errorf("failed to switch to new tab: %w", err)
	}
	if rawURL == "" {
		return nil
	}
	return b.Navigate(ctx, rawURL)
}

// CloseTab closes the active tab and activates the last remaining one.
func (b *Browser) CloseTab() error {
	if b.closed {
		return ErrSessionClosed
	}
	handles, err := b.driver.WindowHandles()
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}
	if len(handles) <= 1 {
		return ErrLastTab
	}
	if err := b.driver.CloseWindow(); err != nil {
		return fmt.Errorf("failed to close tab: %w", err)
	}
	remaining, err := b.driver.WindowHandles()
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}
	if len(remaining) == 0 {
		return nil
	}
	return b.driver.SwitchToWindow(remaining[len(remaining)-1])
}

// CloseAllOtherTabs closes every tab except the active one.
func (b *Browser) CloseAllOtherTabs() error {
	if b.closed {
		return ErrSessionClosed
	}
	current, err := b.driver.CurrentWindow()
	if err != nil {
		return fmt.Errorf("failed to read active tab: %w", err)
	}
	handles, err := b.driver.WindowHandles()
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}
	for _, h := range handles {
		if h == current {
			continue
		}
		if err := b.driver.SwitchToWindow(h); err != nil {
			return fmt.Errorf("failed to switch to tab %q: %w", h, err)
		}
		if err := b.driver.CloseWindow(); err != nil {
			return fmt.Errorf("failed to close tab %q: %w", h, err)
		}
	}
	return b.driver.SwitchToWindow(current)
}

// SwitchTabMatching activates the first tab whose URL matches the glob pattern
// and returns its index. When no tab matches, the active tab is restored.
func (b *Browser) SwitchTabMatching(pattern string) (int, error) {
	if b.closed {
		return 0, ErrSessionClosed
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid tab pattern '%s': %w", pattern, err)
	}
	current, err := b.driver.CurrentWindow()
	if err != nil {
		return 0, fmt.Errorf("failed to read active tab: %w", err)
	}
	handles, err := b.driver.WindowHandles()
	if err != nil {
		return 0, fmt.Errorf("failed to list tabs: %w", err)
	}
	for i, h := range handles {
		if err := b.driver.SwitchToWindow(h); err != nil {
			return 0, fmt.Errorf("failed to switch to tab %d: %w", i, err)
		}
		if g.Match(b.driver.CurrentURL()) {
			return i, nil
		}
	}
	if err := b.driver.SwitchToWindow(current); err != nil {
		return 0, fmt.Errorf("failed to restore active tab: %w", err)
	}
	return 0, fmt.Errorf("%w: %s", ErrNoMatchingTab, pattern)
}
