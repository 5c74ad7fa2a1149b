package browser

import (
	"context"
	"fmt"
)

// MoveTo moves the pointer to the centre of loc.
func (b *Browser) MoveTo(ctx context.Context, loc Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "move_to", []Locator{loc}, opts, func(t []Element) ActionSequence {
		return ActionSequence{{Kind: ActionMoveTo, Target: t[0]}}
	})
}

// Hover rests the pointer over loc.
func (b *Browser) Hover(ctx context.Context, loc Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "hover", []Locator{loc}, opts, func(t []Element) ActionSequence {
		return ActionSequence{{Kind: ActionMoveTo, Target: t[0]}}
	})
}

// DoubleClick double-clicks loc.
func (b *Browser) DoubleClick(ctx context.Context, loc Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "double_click", []Locator{loc}, opts, func(t []Element) ActionSequence {
		return ActionSequence{
			{Kind: ActionMoveTo, Target: t[0]},
			{Kind: ActionDoubleClick},
		}
	})
}

// RightClick opens the context menu on loc.
func (b *Browser) RightClick(ctx context.Context, loc Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "right_click", []Locator{loc}, opts, func(t []Element) ActionSequence {
		return ActionSequence{
			{Kind: ActionMoveTo, Target: t[0]},
			{Kind: ActionContextClick},
		}
	})
}

// ClickAndHold presses the left button over loc without releasing it.
func (b *Browser) ClickAndHold(ctx context.Context, loc Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "click_and_hold", []Locator{loc}, opts, func(t []Element) ActionSequence {
		return ActionSequence{
			{Kind: ActionMoveTo, Target: t[0]},
			{Kind: ActionMouseDown},
		}
	})
}

// Release releases the left button wherever the pointer is.
func (b *Browser) Release(ctx context.Context) error {
	return b.gesture(ctx, "release", nil, nil, func([]Element) ActionSequence {
		return ActionSequence{{Kind: ActionMouseUp}}
	})
}

// DragAndDrop drags source onto target.
func (b *Browser) DragAndDrop(ctx context.Context, source, target Locator, opts ...ActionOption) error {
	return b.gesture(ctx, "drag_and_drop", []Locator{source, target}, opts, func(t []Element) ActionSequence {
		return ActionSequence{
			{Kind: ActionMoveTo, Target: t[0]},
			{Kind: ActionMouseDown},
			{Kind: ActionMoveTo, Target: t[1]},
			{Kind: ActionMouseUp},
		}
	})
}

// DragAndDropOffset drags source by (x, y) pixels.
func (b *Browser) DragAndDropOffset(ctx context.Context, source Locator, x, y int, opts ...ActionOption) error {
	return b.gesture(ctx, "drag_and_drop_offset", []Locator{source}, opts, func(t []Element) ActionSequence {
		return ActionSequence{
			{Kind: ActionMoveTo, Target: t[0]},
			{Kind: ActionMouseDown},
			{Kind: ActionMoveBy, X: x, Y: y},
			{Kind: ActionMouseUp},
		}
	})
}

// PressKey presses and releases key, e.g. "Enter" or "Tab".
func (b *Browser) PressKey(ctx context.Context, key string) error {
	return b.keyGesture(ctx, "press_key", ActionKeyPress, key)
}

// KeyDown holds key down.
func (b *Browser) KeyDown(ctx context.Context, key string) error {
	return b.keyGesture(ctx, "key_down", ActionKeyDown, key)
}

// KeyUp releases key.
func (b *Browser) KeyUp(ctx context.Context, key string) error {
	return b.keyGesture(ctx, "key_up", ActionKeyUp, key)
}

func (b *Browser) keyGesture(ctx context.Context, name string, kind ActionKind, key string) error {
	if key == "" {
		return fmt.Errorf("%s: empty key", name)
	}
	return b.gesture(ctx, name, nil, nil, func([]Element) ActionSequence {
		return ActionSequence{{Kind: kind, Key: key}}
	})
}

// gesture resolves every target first, then hands the whole sequence to the
// driver in a single Perform call.
func (b *Browser) gesture(ctx context.Context, name string, targets []Locator, opts []ActionOption, build func([]Element) ActionSequence) error {
	o := b.actionOptions(opts)
	return b.run(ctx, name, NoRetry, nil, func(ctx context.Context) error {
		elements := make([]Element, 0, len(targets))
		for _, loc := range targets {
			el, err := b.find(ctx, loc, o.timeout)
			if err != nil {
				return err
			}
			elements = append(elements, el)
		}
		if err := b.driver.Perform(build(elements)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}
