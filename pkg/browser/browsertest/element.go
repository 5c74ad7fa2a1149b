package browsertest

import "sync"

// Element is a fake browser.Element.
type Element struct {
	mu sync.Mutex

	text     string
	html     string
	value    string
	visible  bool
	frame    string
	clicks   int
	scrolled bool

	clickErrs []error
	keyErrs   []error

	// OnClick runs after every successful click.
	OnClick func()
}

// NewElement returns a visible element with text.
func NewElement(text string) *Element {
	return &Element{text: text, visible: true}
}

// WithHTML sets the markup returned by OuterHTML.
func (e *Element) WithHTML(markup string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.html = markup
	return e
}

// Hidden marks the element as present but not visible.
func (e *Element) Hidden() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = false
	return e
}

// SetVisible changes visibility.
func (e *Element) SetVisible(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = v
}

// SetText changes the element text.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// FailClicks makes the next len(errs) clicks fail with errs in order.
func (e *Element) FailClicks(errs ...error) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clickErrs = append(e.clickErrs, errs...)
	return e
}

// FailSendKeys makes the next len(errs) SendKeys calls fail with errs in order.
func (e *Element) FailSendKeys(errs ...error) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyErrs = append(e.keyErrs, errs...)
	return e
}

func (e *Element) Click() error {
	e.mu.Lock()
	if len(e.clickErrs) > 0 {
		err := e.clickErrs[0]
		e.clickErrs = e.clickErrs[1:]
		e.mu.Unlock()
		return err
	}
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = ""
	return nil
}

func (e *Element) SendKeys(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.keyErrs) > 0 {
		err := e.keyErrs[0]
		e.keyErrs = e.keyErrs[1:]
		return err
	}
	e.value += text
	return nil
}

func (e *Element) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *Element) OuterHTML() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html, nil
}

func (e *Element) IsVisible() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible, nil
}

func (e *Element) ScrollIntoView() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolled = true
	return nil
}

// Value returns the text typed into the element.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Clicks returns the number of successful clicks.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Scrolled reports whether the element was scrolled into view.
func (e *Element) Scrolled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolled
}
