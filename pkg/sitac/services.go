package sitac

import (
	"context"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/page"
)

// ServicesURL is the public services portal, logged into with a CPF/CNPJ.
const ServicesURL = "https://servicos-crea-ma.sitac.com.br/index.php"

var (
	ServicesLogin    = browser.CSS("#login")
	ServicesPassword = browser.CSS("#senha")
	ServicesSubmit   = browser.CSS("#enviar")
	ServicesError    = browser.CSS("#error_message")
)

// ServicesLoginPage is the login form of the services portal.
type ServicesLoginPage struct {
	*page.Base
}

var _ page.Page = (*ServicesLoginPage)(nil)

func NewServicesLoginPage(b *browser.Browser) (*ServicesLoginPage, error) {
	base, err := page.NewBase(b)
	if err != nil {
		return nil, err
	}
	return &ServicesLoginPage{Base: base}, nil
}

func (p *ServicesLoginPage) URL() string { return ServicesURL }

func (p *ServicesLoginPage) IsLoaded(ctx context.Context) bool {
	return p.IsVisible(ctx, ServicesLogin, 0)
}

func (p *ServicesLoginPage) Open(ctx context.Context) error {
	return page.Open(ctx, p.Browser(), p)
}

// Login submits the form.
func (p *ServicesLoginPage) Login(ctx context.Context, document, password string) error {
	if err := p.TypeText(ctx, ServicesLogin, document); err != nil {
		return err
	}
	if err := p.TypeText(ctx, ServicesPassword, password); err != nil {
		return err
	}
	return p.Click(ctx, ServicesSubmit)
}

// ErrorMessage waits for and returns the form's error banner.
func (p *ServicesLoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.ReadText(ctx, ServicesError)
}
