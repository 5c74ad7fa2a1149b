// Package browsertest provides an in-memory browser.Driver for tests.
//
// Elements are registered per locator on the active tab and frame. They can
// appear after a delay, fail a scripted number of times, and run a callback
// when clicked, which is enough to model small pages such as a login form.
package browsertest

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
)

const topFrame = ""

type entry struct {
	el       *Element
	appearAt time.Time
}

type tab struct {
	handle   string
	url      string
	title    string
	source   string
	elements map[string]map[string]entry // frame -> locator -> entry
	frames   map[string][]string         // frame -> child frame names
}

func newTab(handle string) *tab {
	return &tab{
		handle:   handle,
		url:      "about:blank",
		elements: map[string]map[string]entry{topFrame: {}},
		frames:   map[string][]string{},
	}
}

// Driver is a scriptable fake browser.Driver.
type Driver struct {
	mu sync.Mutex

	tabs       []*tab
	active     int
	frame      string
	nextHandle int
	alert      *Alert
	closed     bool

	// Errors returned by the matching driver calls when set.
	NavigateErr   error
	ScreenshotErr error
	SourceErr     error
	ScriptErr     error
	PerformErr    error
	QuitErr       error

	// ScriptResult is returned by ExecuteScript.
	ScriptResult any

	// OnNavigate runs after every successful Navigate.
	OnNavigate func(d *Driver, url string)

	findErrs   map[string]error
	navigated  []string
	scripts    []string
	performed  []browser.ActionSequence
	shots      []string
	findCalls  int
	quitCalls  int
	launches   int
	lastConfig browser.Config
}

// NewDriver returns a driver with one blank tab.
func NewDriver() *Driver {
	d := &Driver{findErrs: map[string]error{}}
	d.tabs = []*tab{newTab(d.handle())}
	return d
}

// Launcher returns a launcher that hands out d.
func (d *Driver) Launcher() browser.Launcher {
	return browser.LauncherFunc(func(cfg browser.Config) (browser.Driver, error) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.launches++
		d.lastConfig = cfg
		return d, nil
	})
}

func (d *Driver) handle() string {
	d.nextHandle++
	return fmt.Sprintf("tab-%d", d.nextHandle)
}

func (d *Driver) current() *tab {
	if d.active < 0 || d.active >= len(d.tabs) {
		return nil
	}
	return d.tabs[d.active]
}

// Add registers el under loc in the active tab and frame.
func (d *Driver) Add(loc browser.Locator, el *Element) *Element {
	return d.AddAfter(loc, el, 0)
}

// AddAfter registers el so that it becomes findable after delay.
func (d *Driver) AddAfter(loc browser.Locator, el *Element, delay time.Duration) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.current()
	if t == nil {
		return el
	}
	if t.elements[d.frame] == nil {
		t.elements[d.frame] = map[string]entry{}
	}
	t.elements[d.frame][loc.String()] = entry{el: el, appearAt: time.Now().Add(delay)}
	return el
}

// AddFrame registers a child frame named name with its element. Elements added
// after switching into the frame live in its scope.
func (d *Driver) AddFrame(loc browser.Locator, name string) *Element {
	el := NewElement("")
	el.frame = name
	d.Add(loc, el)
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.current()
	t.frames[d.frame] = append(t.frames[d.frame], name)
	if t.elements[name] == nil {
		t.elements[name] = map[string]entry{}
	}
	return el
}

// Remove deletes loc from the active tab and frame.
func (d *Driver) Remove(loc browser.Locator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.current(); t != nil {
		delete(t.elements[d.frame], loc.String())
	}
}

// FailFind makes Find return err for loc.
func (d *Driver) FailFind(loc browser.Locator, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findErrs[loc.String()] = err
}

// SetPage sets the title and source of the active tab.
func (d *Driver) SetPage(title, source string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.current(); t != nil {
		t.title = title
		t.source = source
	}
}

// ShowAlert opens a native dialog with text.
func (d *Driver) ShowAlert(text string) *Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alert = &Alert{text: text, driver: d}
	return d.alert
}

// Navigate implements browser.Driver.
func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	if d.NavigateErr != nil {
		d.mu.Unlock()
		return d.NavigateErr
	}
	if t := d.current(); t != nil {
		t.url = url
	}
	d.frame = topFrame
	d.navigated = append(d.navigated, url)
	hook := d.OnNavigate
	d.mu.Unlock()

	if hook != nil {
		hook(d, url)
	}
	return nil
}

// CurrentURL implements browser.Driver.
func (d *Driver) CurrentURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.current(); t != nil {
		return t.url
	}
	return ""
}

// Title implements browser.Driver.
func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.current(); t != nil {
		return t.title, nil
	}
	return "", fmt.Errorf("no active tab")
}

// Find implements browser.Driver.
func (d *Driver) Find(loc browser.Locator) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findCalls++
	if err, ok := d.findErrs[loc.String()]; ok {
		return nil, err
	}
	t := d.current()
	if t == nil {
		return nil, fmt.Errorf("no active tab")
	}
	e, ok := t.elements[d.frame][loc.String()]
	if !ok || time.Now().Before(e.appearAt) {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, loc)
	}
	return e.el, nil
}

// ExecuteScript implements browser.Driver.
func (d *Driver) ExecuteScript(script string, args ...any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts = append(d.scripts, script)
	if d.ScriptErr != nil {
		return nil, d.ScriptErr
	}
	return d.ScriptResult, nil
}

// Screenshot implements browser.Driver. It writes a small placeholder file.
func (d *Driver) Screenshot(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ScreenshotErr != nil {
		return d.ScreenshotErr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0600); err != nil {
		return err
	}
	d.shots = append(d.shots, path)
	return nil
}

// PageSource implements browser.Driver.
func (d *Driver) PageSource() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SourceErr != nil {
		return "", d.SourceErr
	}
	t := d.current()
	if t == nil {
		return "", fmt.Errorf("no active tab")
	}
	if t.source != "" {
		return t.source, nil
	}
	return fmt.Sprintf("<html><head><title>%s</title></head><body></body></html>", t.title), nil
}

// WindowHandles implements browser.Driver.
func (d *Driver) WindowHandles() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]string, len(d.tabs))
	for i, t := range d.tabs {
		handles[i] = t.handle
	}
	return handles, nil
}

// CurrentWindow implements browser.Driver.
func (d *Driver) CurrentWindow() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.current()
	if t == nil {
		return "", fmt.Errorf("no active tab")
	}
	return t.handle, nil
}

// SwitchToWindow implements browser.Driver.
func (d *Driver) SwitchToWindow(handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, t := range d.tabs {
		if t.handle == handle {
			d.active = i
			d.frame = topFrame
			return nil
		}
	}
	return fmt.Errorf("no such window %q", handle)
}

// NewWindow implements browser.Driver. The new tab is not activated.
func (d *Driver) NewWindow() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := newTab(d.handle())
	d.tabs = append(d.tabs, t)
	return t.handle, nil
}

// CloseWindow implements browser.Driver. No tab is active afterwards.
func (d *Driver) CloseWindow() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current() == nil {
		return fmt.Errorf("no active tab")
	}
	d.tabs = append(d.tabs[:d.active], d.tabs[d.active+1:]...)
	d.active = -1
	return nil
}

// SwitchToFrame implements browser.Driver.
func (d *Driver) SwitchToFrame(frame browser.Element) error {
	el, ok := frame.(*Element)
	if !ok || el.frame == "" {
		return fmt.Errorf("element is not a frame")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = el.frame
	return nil
}

// SwitchToFrameIndex implements browser.Driver.
func (d *Driver) SwitchToFrameIndex(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.current()
	if t == nil {
		return fmt.Errorf("no active tab")
	}
	children := t.frames[d.frame]
	if index < 0 || index >= len(children) {
		return fmt.Errorf("%w: %d", browser.ErrFrameOutOfRange, index)
	}
	d.frame = children[index]
	return nil
}

// SwitchToDefault implements browser.Driver.
func (d *Driver) SwitchToDefault() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = topFrame
	return nil
}

// Alert implements browser.Driver.
func (d *Driver) Alert() (browser.Alert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alert == nil {
		return nil, browser.ErrNoAlert
	}
	return d.alert, nil
}

// Perform implements browser.Driver.
func (d *Driver) Perform(seq browser.ActionSequence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.PerformErr != nil {
		return d.PerformErr
	}
	d.performed = append(d.performed, append(browser.ActionSequence(nil), seq...))
	return nil
}

// Quit implements browser.Driver.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quitCalls++
	d.closed = true
	return d.QuitErr
}

// Frame returns the name of the frame locators resolve in.
func (d *Driver) Frame() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Navigated returns every URL passed to Navigate.
func (d *Driver) Navigated() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigated...)
}

// Scripts returns every executed script.
func (d *Driver) Scripts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.scripts...)
}

// Performed returns every performed action sequence.
func (d *Driver) Performed() []browser.ActionSequence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]browser.ActionSequence(nil), d.performed...)
}

// Screenshots returns the paths of saved screenshots.
func (d *Driver) Screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.shots...)
}

// FindCalls returns how many times Find ran.
func (d *Driver) FindCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findCalls
}

// QuitCalls returns how many times Quit ran.
func (d *Driver) QuitCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quitCalls
}

// Launches returns how many sessions were launched.
func (d *Driver) Launches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.launches
}

// LaunchConfig returns the configuration of the last launch.
func (d *Driver) LaunchConfig() browser.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastConfig
}

// Alert is a fake native dialog.
type Alert struct {
	text     string
	driver   *Driver
	result   string
	resolved bool
}

func (a *Alert) Accept() error  { return a.resolve("accepted") }
func (a *Alert) Dismiss() error { return a.resolve("dismissed") }

func (a *Alert) Text() (string, error) {
	return a.text, nil
}

// Result returns "accepted", "dismissed" or "" while still open.
func (a *Alert) Result() string {
	a.driver.mu.Lock()
	defer a.driver.mu.Unlock()
	return a.result
}

func (a *Alert) resolve(result string) error {
	a.driver.mu.Lock()
	defer a.driver.mu.Unlock()
	if a.resolved {
		return browser.ErrNoAlert
	}
	a.resolved = true
	a.result = result
	if a.driver.alert == a {
		a.driver.alert = nil
	}
	return nil
}
