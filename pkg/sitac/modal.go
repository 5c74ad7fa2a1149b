package sitac

import (
	"context"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/page"
)

// NewsModalTimeout bounds how long the post-login news modal is waited for.
const NewsModalTimeout = 3 * time.Second

var (
	NewsModalDialog = browser.ID("modal-noticias")
	NewsModalClose  = browser.CSS(".iziModal-button-close")
)

// NewsModal is the news dialog shown after login. It does not always appear.
type NewsModal struct {
	*page.Base
	timeout time.Duration
}

// NewNewsModal binds the news dialog to b with NewsModalTimeout.
func NewNewsModal(b *browser.Browser) (*NewsModal, error) {
	base, err := page.NewBase(b)
	if err != nil {
		return nil, err
	}
	return &NewsModal{Base: base, timeout: NewsModalTimeout}, nil
}

// WithTimeout returns a copy of m that waits d for the dialog.
func (m *NewsModal) WithTimeout(d time.Duration) *NewsModal {
	c := *m
	c.timeout = d
	return &c
}

func (m *NewsModal) URL() string { return "" }

func (m *NewsModal) IsLoaded(ctx context.Context) bool {
	return m.IsVisible(ctx, NewsModalDialog, m.timeout)
}

// Close dismisses the modal when it is shown and does nothing otherwise.
// It reports whether the modal was closed.
func (m *NewsModal) Close(ctx context.Context) (bool, error) {
	if !m.IsLoaded(ctx) {
		return false, nil
	}
	if err := m.Click(ctx, NewsModalClose); err != nil {
		return false, err
	}
	return true, nil
}
