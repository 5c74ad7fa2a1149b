package browser

import (
	"fmt"
	"strings"
)

// By names the strategy used to resolve a Locator.
type By string

const (
	ByCSS   By = "css"
	ByID    By = "id"
	ByXPath By = "xpath"
	ByName  By = "name"
	ByText  By = "text"
	ByClass By = "class"
)

// Locator identifies an element by strategy and selector.
// Locators are plain values; page objects declare them as package-level vars.
type Locator struct {
	By       By
	Selector string
}

// CSS returns a CSS selector locator.
func CSS(selector string) Locator { return Locator{By: ByCSS, Selector: selector} }

// ID returns a locator matching the element id.
func ID(id string) Locator { return Locator{By: ByID, Selector: id} }

// XPath returns an XPath locator.
func XPath(expr string) Locator { return Locator{By: ByXPath, Selector: expr} }

// Name returns a locator matching the name attribute.
func Name(name string) Locator { return Locator{By: ByName, Selector: name} }

// Text returns a locator matching visible text.
func Text(text string) Locator { return Locator{By: ByText, Selector: text} }

// Class returns a locator matching a single class name.
func Class(class string) Locator { return Locator{By: ByClass, Selector: class} }

// Validate reports whether the locator can be handed to a driver.
func (l Locator) Validate() error {
	if strings.TrimSpace(l.Selector) == "" {
		return fmt.Errorf("%w: empty selector", ErrInvalidLocator)
	}
	switch l.By {
	case ByCSS, ByID, ByXPath, ByName, ByText, ByClass:
		return nil
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidLocator, l.By)
	}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Selector)
}

// Element is a handle to a live DOM element.
type Element interface {
	Click() error
	Clear() error
	SendKeys(text string) error
	Text() (string, error)
	OuterHTML() (string, error)
	IsVisible() (bool, error)
	ScrollIntoView() error
}

// Alert is a native dialog currently shown by the page.
type Alert interface {
	Accept() error
	Dismiss() error
	Text() (string, error)
}

// Driver is the remote browser session controlled by a Browser.
//
// Find returns ErrNoSuchElement (possibly wrapped) when nothing matches.
// Implementations may apply an implicit wait before reporting absence.
type Driver interface {
	Navigate(url string) error
	CurrentURL() string
	Title() (string, error)

	Find(loc Locator) (Element, error)
	ExecuteScript(script string, args ...any) (any, error)
	Screenshot(path string) error
	PageSource() (string, error)

	WindowHandles() ([]string, error)
	CurrentWindow() (string, error)
	SwitchToWindow(handle string) error
	NewWindow() (string, error)
	CloseWindow() error

	SwitchToFrame(frame Element) error
	SwitchToFrameIndex(index int) error
	SwitchToDefault() error

	Alert() (Alert, error)

	Perform(seq ActionSequence) error

	Quit() error
}

// Launcher opens a Driver for a validated configuration.
type Launcher interface {
	Launch(cfg Config) (Driver, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(cfg Config) (Driver, error)

// Launch calls f(cfg).
func (f LauncherFunc) Launch(cfg Config) (Driver, error) { return f(cfg) }

// ActionKind is one step of a pointer/keyboard gesture.
type ActionKind string

const (
	ActionMoveTo       ActionKind = "move_to"
	ActionMoveBy       ActionKind = "move_by"
	ActionMouseDown    ActionKind = "mouse_down"
	ActionMouseUp      ActionKind = "mouse_up"
	ActionClick        ActionKind = "click"
	ActionDoubleClick  ActionKind = "double_click"
	ActionContextClick ActionKind = "context_click"
	ActionKeyDown      ActionKind = "key_down"
	ActionKeyUp        ActionKind = "key_up"
	ActionKeyPress     ActionKind = "key_press"
)

// Action is a single step in an ActionSequence.
type Action struct {
	Kind ActionKind

	// Target is the element the pointer moves to (ActionMoveTo).
	Target Element

	// X and Y are offsets for ActionMoveBy.
	X int
	Y int

	// Key is the key name for keyboard actions.
	Key string
}

// ActionSequence is performed by the driver as one unit.
type ActionSequence []Action

// Kinds lists the kinds of the sequence in order.
func (s ActionSequence) Kinds() []ActionKind {
	kinds := make([]ActionKind, len(s))
	for i, a := range s {
		kinds[i] = a.Kind
	}
	return kinds
}
