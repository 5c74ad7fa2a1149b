package sitac

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/page"
)

// ErrInvalidSector is returned for sector numbers outside the sidebar menu.
var ErrInvalidSector = errors.New("invalid sector")

var (
	HomeProtocolsMenu = browser.CSS("#conteudo > div.cad_conteudo > div:nth-child(5)")
	HomeToReceiveMenu = browser.CSS("#mostrarProtocolosAReceber")
)

// sectors are the branch-office sector entries under "A Receber".
var sectors = map[int]browser.Locator{
	0: browser.CSS("#mostrarProtocoloSetorFilial0"),
	1: browser.CSS("#mostrarProtocoloSetorFilial1"),
	2: browser.CSS("#mostrarProtocoloSetorFilial2"),
}

// SectorLocator returns the menu entry for sector n.
func SectorLocator(n int) (browser.Locator, error) {
	loc, ok := sectors[n]
	if !ok {
		return browser.Locator{}, fmt.Errorf("%w: %d (use 0, 1 or 2)", ErrInvalidSector, n)
	}
	return loc, nil
}

// UserHomePage is the landing page after login with its sidebar menu.
type UserHomePage struct {
	*page.Base
}

var _ page.Page = (*UserHomePage)(nil)

// NewUserHomePage binds the home page to b.
func NewUserHomePage(b *browser.Browser) (*UserHomePage, error) {
	base, err := page.NewBase(b)
	if err != nil {
		return nil, err
	}
	return &UserHomePage{Base: base}, nil
}

// URL is empty: the home page is only reached by logging in.
func (p *UserHomePage) URL() string { return "" }

// IsLoaded reports whether the protocols menu is visible.
func (p *UserHomePage) IsLoaded(ctx context.Context) bool {
	return p.IsVisible(ctx, HomeProtocolsMenu, 0)
}

// OpenProtocols expands the protocols menu.
func (p *UserHomePage) OpenProtocols(ctx context.Context) error {
	return p.Click(ctx, HomeProtocolsMenu)
}

// OpenToReceive opens the "A Receber" submenu.
func (p *UserHomePage) OpenToReceive(ctx context.Context) error {
	return p.Click(ctx, HomeToReceiveMenu)
}

// OpenSector clicks the entry of sector n.
func (p *UserHomePage) OpenSector(ctx context.Context, n int) error {
	loc, err := SectorLocator(n)
	if err != nil {
		return err
	}
	return p.Click(ctx, loc)
}

// GoToSector walks Protocols → To receive → sector n.
func (p *UserHomePage) GoToSector(ctx context.Context, n int) error {
	if _, err := SectorLocator(n); err != nil {
		return err
	}
	if err := p.OpenProtocols(ctx); err != nil {
		return err
	}
	if err := p.OpenToReceive(ctx); err != nil {
		return err
	}
	return p.OpenSector(ctx, n)
}
