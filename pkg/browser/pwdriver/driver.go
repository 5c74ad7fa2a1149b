package pwdriver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/sitac/pkg/browser"
)

// scriptShim runs a statement body with positional arguments, the way
// WebDriver's executeScript does.
const scriptShim = `([body, args]) => (new Function(body)).apply(window, args)`

var errNoWindow = errors.New("no active window")

// Driver implements browser.Driver on top of a single Playwright browser
// context. Each page of the context is a window; handles are stable UUIDs.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	cfg     browser.Config
	logger  browser.Logger

	mu      sync.Mutex
	page    playwright.Page
	frame   playwright.Frame
	handles map[playwright.Page]string
	dialog  playwright.Dialog
	mouseX  float64
	mouseY  float64
}

var _ browser.Driver = (*Driver)(nil)

func newDriver(pw *playwright.Playwright, b playwright.Browser, bctx playwright.BrowserContext, cfg browser.Config, logger browser.Logger) *Driver {
	d := &Driver{
		pw:      pw,
		browser: b,
		bctx:    bctx,
		cfg:     cfg,
		logger:  logger,
		handles: make(map[playwright.Page]string),
	}
	// Pages opened by the site itself (window.open, target=_blank).
	bctx.OnPage(func(p playwright.Page) { d.track(p) })
	return d
}

// track registers a page once and returns its handle.
func (d *Driver) track(p playwright.Page) string {
	d.mu.Lock()
	if h, ok := d.handles[p]; ok {
		d.mu.Unlock()
		return h
	}
	h := uuid.New().String()
	d.handles[p] = h
	d.mu.Unlock()

	p.SetDefaultTimeout(millis(d.cfg.ExplicitTimeout))
	p.OnDialog(func(dialog playwright.Dialog) {
		d.logger.Debugf("dialog opened: %s", dialog.Message())
		d.mu.Lock()
		d.dialog = dialog
		d.mu.Unlock()
	})
	return h
}

func (d *Driver) activate(p playwright.Page) {
	d.track(p)
	d.mu.Lock()
	d.page = p
	d.frame = nil
	d.mu.Unlock()
}

func (d *Driver) activePage() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page == nil {
		return nil, errNoWindow
	}
	return d.page, nil
}

// scope is the frame that queries and scripts run against.
func (d *Driver) scope() (playwright.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page == nil {
		return nil, errNoWindow
	}
	if d.frame != nil {
		return d.frame, nil
	}
	return d.page.MainFrame(), nil
}

func (d *Driver) clearDialog(dialog playwright.Dialog) {
	d.mu.Lock()
	if d.dialog == dialog {
		d.dialog = nil
	}
	d.mu.Unlock()
}

func (d *Driver) Navigate(url string) error {
	page, err := d.activePage()
	if err != nil {
		return err
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return translate(err)
	}
	d.mu.Lock()
	d.frame = nil
	d.mu.Unlock()
	return nil
}

func (d *Driver) CurrentURL() string {
	page, err := d.activePage()
	if err != nil {
		return ""
	}
	return page.URL()
}

func (d *Driver) Title() (string, error) {
	page, err := d.activePage()
	if err != nil {
		return "", err
	}
	title, err := page.Title()
	return title, translate(err)
}

// Find resolves loc in the current frame. With a positive implicit wait it
// waits for the element to be attached before reporting absence.
func (d *Driver) Find(loc browser.Locator) (browser.Element, error) {
	selector, err := selectorFor(loc)
	if err != nil {
		return nil, err
	}
	frame, err := d.scope()
	if err != nil {
		return nil, err
	}

	var handle playwright.ElementHandle
	if d.cfg.ImplicitWait > 0 {
		handle, err = frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(millis(d.cfg.ImplicitWait)),
		})
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, loc)
		}
	} else {
		handle, err = frame.QuerySelector(selector)
	}
	if err != nil {
		return nil, translate(err)
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, loc)
	}
	return &element{handle: handle, driver: d}, nil
}

func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	frame, err := d.scope()
	if err != nil {
		return nil, err
	}
	converted := make([]any, len(args))
	for i, arg := range args {
		if el, ok := arg.(*element); ok {
			converted[i] = el.handle
			continue
		}
		converted[i] = arg
	}
	v, err := frame.Evaluate(scriptShim, []any{script, converted})
	return v, translate(err)
}

func (d *Driver) Screenshot(path string) error {
	page, err := d.activePage()
	if err != nil {
		return err
	}
	_, err = page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return translate(err)
}

func (d *Driver) PageSource() (string, error) {
	frame, err := d.scope()
	if err != nil {
		return "", err
	}
	source, err := frame.Content()
	return source, translate(err)
}

func (d *Driver) WindowHandles() ([]string, error) {
	pages := d.bctx.Pages()
	handles := make([]string, 0, len(pages))
	for _, p := range pages {
		handles = append(handles, d.track(p))
	}
	return handles, nil
}

func (d *Driver) CurrentWindow() (string, error) {
	page, err := d.activePage()
	if err != nil {
		return "", err
	}
	return d.track(page), nil
}

func (d *Driver) SwitchToWindow(handle string) error {
	for _, p := range d.bctx.Pages() {
		if d.track(p) != handle {
			continue
		}
		if err := p.BringToFront(); err != nil {
			return translate(err)
		}
		d.activate(p)
		return nil
	}
	return fmt.Errorf("%w: unknown window %s", browser.ErrTabOutOfRange, handle)
}

// NewWindow opens a page without activating it.
func (d *Driver) NewWindow() (string, error) {
	p, err := d.bctx.NewPage()
	if err != nil {
		return "", translate(err)
	}
	return d.track(p), nil
}

func (d *Driver) CloseWindow() error {
	page, err := d.activePage()
	if err != nil {
		return err
	}
	if err := page.Close(); err != nil {
		return translate(err)
	}
	d.mu.Lock()
	delete(d.handles, page)
	d.page = nil
	d.frame = nil
	d.mu.Unlock()
	return nil
}

func (d *Driver) SwitchToFrame(frame browser.Element) error {
	el, ok := frame.(*element)
	if !ok {
		return fmt.Errorf("%w: foreign element %T", browser.ErrFrameOutOfRange, frame)
	}
	content, err := el.handle.ContentFrame()
	if err != nil {
		return translate(err)
	}
	if content == nil {
		return fmt.Errorf("%w: element is not a frame", browser.ErrFrameOutOfRange)
	}
	d.mu.Lock()
	d.frame = content
	d.mu.Unlock()
	return nil
}

func (d *Driver) SwitchToFrameIndex(index int) error {
	parent, err := d.scope()
	if err != nil {
		return err
	}
	children := parent.ChildFrames()
	if index < 0 || index >= len(children) {
		return fmt.Errorf("%w: %d not in [0, %d)", browser.ErrFrameOutOfRange, index, len(children))
	}
	d.mu.Lock()
	d.frame = children[index]
	d.mu.Unlock()
	return nil
}

func (d *Driver) SwitchToDefault() error {
	d.mu.Lock()
	d.frame = nil
	d.mu.Unlock()
	return nil
}

// Alert returns the dialog the page is blocked on. Dialogs stay pending until
// accepted or dismissed.
func (d *Driver) Alert() (browser.Alert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialog == nil {
		return nil, browser.ErrNoAlert
	}
	return &dialogAlert{dialog: d.dialog, driver: d}, nil
}

func (d *Driver) Perform(seq browser.ActionSequence) error {
	page, err := d.activePage()
	if err != nil {
		return err
	}
	mouse := page.Mouse()
	keyboard := page.Keyboard()

	for i, action := range seq {
		if err := d.perform(mouse, keyboard, action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, action.Kind, translate(err))
		}
	}
	return nil
}

func (d *Driver) perform(mouse playwright.Mouse, keyboard playwright.Keyboard, action browser.Action) error {
	switch action.Kind {
	case browser.ActionMoveTo:
		el, ok := action.Target.(*element)
		if !ok {
			return fmt.Errorf("%w: move target %T", browser.ErrUnsupportedAction, action.Target)
		}
		x, y, err := el.center()
		if err != nil {
			return err
		}
		return d.moveMouse(mouse, x, y)
	case browser.ActionMoveBy:
		return d.moveMouse(mouse, d.mouseX+float64(action.X), d.mouseY+float64(action.Y))
	case browser.ActionMouseDown:
		return mouse.Down()
	case browser.ActionMouseUp:
		return mouse.Up()
	case browser.ActionClick:
		return mouse.Click(d.mouseX, d.mouseY)
	case browser.ActionDoubleClick:
		return mouse.Dblclick(d.mouseX, d.mouseY)
	case browser.ActionContextClick:
		return mouse.Click(d.mouseX, d.mouseY, playwright.MouseClickOptions{
			Button: playwright.MouseButtonRight,
		})
	case browser.ActionKeyDown:
		return keyboard.Down(action.Key)
	case browser.ActionKeyUp:
		return keyboard.Up(action.Key)
	case browser.ActionKeyPress:
		return keyboard.Press(action.Key)
	default:
		return fmt.Errorf("%w: %s", browser.ErrUnsupportedAction, action.Kind)
	}
}

func (d *Driver) moveMouse(mouse playwright.Mouse, x, y float64) error {
	if err := mouse.Move(x, y); err != nil {
		return err
	}
	d.mouseX, d.mouseY = x, y
	return nil
}

// Quit closes the context, the browser and the Playwright driver.
func (d *Driver) Quit() error {
	var errs []error
	if err := d.bctx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
