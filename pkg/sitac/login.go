package sitac

import (
	"context"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/page"
)

// LoginURL is the portal's login page.
const LoginURL = "https://crea-ma.sitac.com.br/app/view/pages/login/login.php#!"

var (
	LoginUsername      = browser.CSS("#username")
	LoginPassword      = browser.CSS("#password")
	LoginSubmit        = browser.CSS("#submit")
	LoginWelcomeAvatar = browser.CSS("#welcome_avatar")
)

// LoginState tracks a LoginPage through its lifecycle.
type LoginState int

const (
	NotLoaded LoginState = iota
	Loaded
	LoggedIn
	LoginFailed
)

func (s LoginState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loaded:
		return "loaded"
	case LoggedIn:
		return "logged_in"
	case LoginFailed:
		return "login_failed"
	default:
		return "unknown"
	}
}

// LoginPage is the portal login form.
type LoginPage struct {
	*page.Base
	state LoginState
}

var _ page.Page = (*LoginPage)(nil)

// NewLoginPage binds a login page to b.
func NewLoginPage(b *browser.Browser) (*LoginPage, error) {
	base, err := page.NewBase(b)
	if err != nil {
		return nil, err
	}
	return &LoginPage{Base: base}, nil
}

// URL is the portal login address.
func (p *LoginPage) URL() string { return LoginURL }

// IsLoaded reports whether the username field is present.
func (p *LoginPage) IsLoaded(ctx context.Context) bool {
	return p.IsVisible(ctx, LoginUsername, 0)
}

// State returns the last observed state.
func (p *LoginPage) State() LoginState { return p.state }

// Open loads the login page.
func (p *LoginPage) Open(ctx context.Context) error {
	if err := page.Open(ctx, p.Browser(), p); err != nil {
		return err
	}
	p.state = Loaded
	return nil
}

// FillUsername types username into the login field.
func (p *LoginPage) FillUsername(ctx context.Context, username string) error {
	return p.TypeText(ctx, LoginUsername, username)
}

// FillPassword types password into the password field.
func (p *LoginPage) FillPassword(ctx context.Context, password string) error {
	return p.TypeText(ctx, LoginPassword, password)
}

// Submit clicks the login button.
func (p *LoginPage) Submit(ctx context.Context) error {
	return p.Click(ctx, LoginSubmit)
}

// Login fills both credentials and submits the form. It does not wait for the
// outcome; use IsLoggedIn.
func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	if err := p.FillUsername(ctx, username); err != nil {
		return err
	}
	if err := p.FillPassword(ctx, password); err != nil {
		return err
	}
	return p.Submit(ctx)
}

// IsLoggedIn polls for the welcome avatar for up to timeout, or the session's
// explicit timeout when timeout is zero. Absence means the login failed and is
// not an error.
func (p *LoginPage) IsLoggedIn(ctx context.Context, timeout time.Duration) bool {
	if p.IsVisible(ctx, LoginWelcomeAvatar, timeout) {
		p.state = LoggedIn
		return true
	}
	p.state = LoginFailed
	return false
}
