package browser

import (
	"context"
	"fmt"
)

// SwitchFrame waits for the frame element at loc and enters it. Locators then
// resolve inside the frame until SwitchToDefault.
func (b *Browser) SwitchFrame(ctx context.Context, loc Locator, opts ...ActionOption) error {
	o := b.actionOptions(opts)
	return b.run(ctx, "switch_frame", NoRetry, nil, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		if err := b.driver.SwitchToFrame(el); err != nil {
			return fmt.Errorf("failed to enter frame %s: %w", loc, err)
		}
		b.logger.Debugf("entered frame %s", loc)
		return nil
	})
}

// SwitchFrameIndex enters the frame at index within the current document.
func (b *Browser) SwitchFrameIndex(index int) error {
	if b.closed {
		return ErrSessionClosed
	}
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrFrameOutOfRange, index)
	}
	if err := b.driver.SwitchToFrameIndex(index); err != nil {
		return fmt.Errorf("failed to enter frame %d: %w", index, err)
	}
	return nil
}

// SwitchToDefault returns to the top-level document.
func (b *Browser) SwitchToDefault() error {
	if b.closed {
		return ErrSessionClosed
	}
	return b.driver.SwitchToDefault()
}
