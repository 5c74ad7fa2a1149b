// Package page provides the base that concrete page objects are built on.
//
// A concrete page embeds *Base, declares its locators as package-level
// values, and composes business-named actions from the delegations Base
// provides. Pages hold a non-owning reference to the browser.Browser; many
// pages may share one session.
package page

import (
	"context"
	"errors"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
)

// ErrNoURL is returned by Open for pages that do not declare a URL.
var ErrNoURL = errors.New("page has no url")

// Page is implemented by every concrete page.
type Page interface {
	// URL is the address the page is opened at. Pages reached only by
	// navigation (modals, menus) return "".
	URL() string

	// IsLoaded reports whether the page's identifying element is present.
	IsLoaded(ctx context.Context) bool
}

// Hook observes an action on a page. err is nil for before hooks.
type Hook func(action string, loc browser.Locator, err error)

// Base binds a page object to one Browser.
type Base struct {
	browser *browser.Browser
	before  []Hook
	after   []Hook
}

// BaseOption customizes a Base.
type BaseOption func(*Base)

// WithBefore registers a hook run before every locator action.
func WithBefore(h Hook) BaseOption {
	return func(b *Base) { b.before = append(b.before, h) }
}

// WithAfter registers a hook run after every locator action with its result.
func WithAfter(h Hook) BaseOption {
	return func(b *Base) { b.after = append(b.after, h) }
}

// NewBase binds to b. A nil browser is a configuration error.
func NewBase(b *browser.Browser, opts ...BaseOption) (*Base, error) {
	if b == nil {
		return nil, &browser.ConfigError{Field: "browser", Message: "page requires a browser"}
	}
	base := &Base{browser: b}
	for _, opt := range opts {
		opt(base)
	}
	return base, nil
}

// Browser returns the bound session.
func (p *Base) Browser() *browser.Browser {
	return p.browser
}

// Open navigates to url.
func (p *Base) Open(ctx context.Context, url string) error {
	return p.browser.Navigate(ctx, url)
}

// Click clicks loc.
func (p *Base) Click(ctx context.Context, loc browser.Locator, opts ...browser.ActionOption) error {
	return p.do("click", loc, func() error {
		return p.browser.Click(ctx, loc, opts...)
	})
}

// TypeText replaces the contents of loc with text.
func (p *Base) TypeText(ctx context.Context, loc browser.Locator, text string, opts ...browser.ActionOption) error {
	return p.do("type_text", loc, func() error {
		return p.browser.TypeText(ctx, loc, text, opts...)
	})
}

// ReadText returns the trimmed visible text of loc.
func (p *Base) ReadText(ctx context.Context, loc browser.Locator, opts ...browser.ActionOption) (string, error) {
	var text string
	err := p.do("read_text", loc, func() error {
		var err error
		text, err = p.browser.ReadText(ctx, loc, opts...)
		return err
	})
	return text, err
}

// WaitFor waits until loc is present.
func (p *Base) WaitFor(ctx context.Context, loc browser.Locator, opts ...browser.ActionOption) (browser.Element, error) {
	var el browser.Element
	err := p.do("wait_for", loc, func() error {
		var err error
		el, err = p.browser.WaitFor(ctx, loc, opts...)
		return err
	})
	return el, err
}

// IsVisible reports whether loc becomes visible within timeout.
func (p *Base) IsVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) bool {
	return p.browser.IsVisible(ctx, loc, timeout)
}

// ExtractTable reads the table at loc.
func (p *Base) ExtractTable(ctx context.Context, loc browser.Locator, opts ...browser.ActionOption) (browser.Table, error) {
	var table browser.Table
	err := p.do("extract_table", loc, func() error {
		var err error
		table, err = p.browser.ExtractTable(ctx, loc, opts...)
		return err
	})
	return table, err
}

// Screenshot saves a screenshot of the current page to path.
func (p *Base) Screenshot(path string) error {
	return p.browser.Screenshot(path)
}

// Title returns the document title.
func (p *Base) Title() (string, error) {
	return p.browser.Title()
}

// CurrentURL returns the address of the active tab.
func (p *Base) CurrentURL() string {
	return p.browser.CurrentURL()
}

func (p *Base) do(action string, loc browser.Locator, fn func() error) error {
	for _, h := range p.before {
		h(action, loc, nil)
	}
	err := fn()
	for _, h := range p.after {
		h(action, loc, err)
	}
	return err
}

// Open navigates to pg's declared URL.
func Open(ctx context.Context, b *browser.Browser, pg Page) error {
	url := pg.URL()
	if url == "" {
		return ErrNoURL
	}
	return b.Navigate(ctx, url)
}
