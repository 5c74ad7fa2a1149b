package pwdriver

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sitac/pkg/browser"
)

// element wraps an ElementHandle. Keyboard input goes through the owning page
// so that typing into elements inside frames behaves like a real user.
type element struct {
	handle playwright.ElementHandle
	driver *Driver
}

var _ browser.Element = (*element)(nil)

func (e *element) Click() error {
	return translate(e.handle.Click())
}

func (e *element) Clear() error {
	return translate(e.handle.Fill(""))
}

func (e *element) SendKeys(text string) error {
	if err := e.handle.Focus(); err != nil {
		return translate(err)
	}
	page, err := e.driver.activePage()
	if err != nil {
		return err
	}
	return translate(page.Keyboard().Type(text))
}

func (e *element) Text() (string, error) {
	text, err := e.handle.InnerText()
	return text, translate(err)
}

func (e *element) OuterHTML() (string, error) {
	v, err := e.handle.Evaluate("el => el.outerHTML")
	if err != nil {
		return "", translate(err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected outerHTML type %T", v)
	}
	return s, nil
}

func (e *element) IsVisible() (bool, error) {
	visible, err := e.handle.IsVisible()
	return visible, translate(err)
}

func (e *element) ScrollIntoView() error {
	return translate(e.handle.ScrollIntoViewIfNeeded())
}

// center returns the viewport coordinates of the element's midpoint.
func (e *element) center() (float64, float64, error) {
	box, err := e.handle.BoundingBox()
	if err != nil {
		return 0, 0, translate(err)
	}
	if box == nil {
		return 0, 0, fmt.Errorf("%w: element has no bounding box", browser.ErrStaleElement)
	}
	return box.X + box.Width/2, box.Y + box.Height/2, nil
}

// dialogAlert adapts a pending Playwright dialog.
type dialogAlert struct {
	dialog playwright.Dialog
	driver *Driver
}

func (a *dialogAlert) Accept() error {
	defer a.driver.clearDialog(a.dialog)
	return a.dialog.Accept()
}

func (a *dialogAlert) Dismiss() error {
	defer a.driver.clearDialog(a.dialog)
	return a.dialog.Dismiss()
}

func (a *dialogAlert) Text() (string, error) {
	return a.dialog.Message(), nil
}
