// Package flows composes SITAC page objects into business sequences.
package flows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/sitac"
)

var (
	ErrLoginFailed     = errors.New("login failed")
	ErrUnknownCategory = errors.New("unknown protocol category")
)

// Category names a protocol queue under "A Receber".
type Category string

const (
	Dispatch    Category = "despacho"
	Inspection  Category = "fiscalizacao"
	PreChambers Category = "pre-envio-camaras"
)

var categorySectors = map[Category]int{
	Dispatch:    0,
	Inspection:  1,
	PreChambers: 2,
}

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := categorySectors[c]; !ok {
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownCategory, name, strings.Join(Categories(), ", "))
	}
	return c, nil
}

// Categories lists the known categories ordered by sector.
func Categories() []string {
	names := make([]string, 0, len(categorySectors))
	for c := range categorySectors {
		names = append(names, string(c))
	}
	sort.Slice(names, func(i, j int) bool {
		return categorySectors[Category(names[i])] < categorySectors[Category(names[j])]
	})
	return names
}

// Sector returns the sidebar sector that lists c.
func (c Category) Sector() (int, error) {
	n, ok := categorySectors[c]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownCategory, string(c))
	}
	return n, nil
}

// Credentials for the portal login.
type Credentials struct {
	Username string
	Password string
}

var (
	// ReportPaginator switches the sector listing to show every row.
	ReportPaginator = browser.CSS("#Paginator_ProtocolosSetorFilial2144 > label:nth-child(1) > a:nth-child(1)")
	ReportTable     = browser.CSS(".display")
)

// PaginatorTimeout is how long ExtractReport looks for the paginator.
const PaginatorTimeout = 3 * time.Second

// ReportOptions controls ExtractReport. Zero locators use ReportPaginator and
// ReportTable.
type ReportOptions struct {
	// Paginate clicks the paginator when the queue shows one. Queues without
	// it are read as they are.
	Paginate  bool
	Paginator browser.Locator
	Table     browser.Locator

	// PaginatorTimeout bounds the paginator lookup. Zero uses
	// PaginatorTimeout.
	PaginatorTimeout time.Duration
}

// ProtocolsFlow walks Login → news modal → Protocols → To receive → category.
type ProtocolsFlow struct {
	browser *browser.Browser
	logger  browser.Logger

	LoginPage *sitac.LoginPage
	HomePage  *sitac.UserHomePage
	NewsModal *sitac.NewsModal

	// LoginTimeout bounds the wait for the post-login marker. Zero uses the
	// session's explicit timeout.
	LoginTimeout time.Duration
}

// NewProtocolsFlow builds the pages the flow needs on top of b.
func NewProtocolsFlow(b *browser.Browser, logger browser.Logger) (*ProtocolsFlow, error) {
	if logger == nil {
		logger = browser.NopLogger{}
	}
	login, err := sitac.NewLoginPage(b)
	if err != nil {
		return nil, err
	}
	home, err := sitac.NewUserHomePage(b)
	if err != nil {
		return nil, err
	}
	news, err := sitac.NewNewsModal(b)
	if err != nil {
		return nil, err
	}
	return &ProtocolsFlow{
		browser:   b,
		logger:    logger,
		LoginPage: login,
		HomePage:  home,
		NewsModal: news,
	}, nil
}

// Login opens the login page, submits creds and closes the news modal if it
// shows up. A missing post-login marker is ErrLoginFailed.
func (f *ProtocolsFlow) Login(ctx context.Context, creds Credentials) error {
	if err := f.LoginPage.Open(ctx); err != nil {
		return err
	}
	if err := f.LoginPage.Login(ctx, creds.Username, creds.Password); err != nil {
		return err
	}
	if !f.LoginPage.IsLoggedIn(ctx, f.LoginTimeout) {
		return fmt.Errorf("%w for user %q", ErrLoginFailed, creds.Username)
	}
	f.logger.Infof("logged in as %s", creds.Username)

	closed, err := f.NewsModal.Close(ctx)
	if err != nil {
		return fmt.Errorf("close news modal: %w", err)
	}
	if closed {
		f.logger.Debugf("news modal closed")
	}
	return nil
}

// Navigate opens the protocol queue of category.
func (f *ProtocolsFlow) Navigate(ctx context.Context, category Category) error {
	sector, err := category.Sector()
	if err != nil {
		return err
	}
	if err := f.HomePage.GoToSector(ctx, sector); err != nil {
		return fmt.Errorf("open %s: %w", category, err)
	}
	f.logger.Infof("opened protocols %s (sector %d)", category, sector)
	return nil
}

// Run logs in and navigates to category.
func (f *ProtocolsFlow) Run(ctx context.Context, creds Credentials, category Category) error {
	if _, err := category.Sector(); err != nil {
		return err
	}
	if err := f.Login(ctx, creds); err != nil {
		return err
	}
	return f.Navigate(ctx, category)
}

// ExtractReport reads the protocol table of the current queue.
func (f *ProtocolsFlow) ExtractReport(ctx context.Context, opts ReportOptions) (browser.Table, error) {
	if opts.Paginator == (browser.Locator{}) {
		opts.Paginator = ReportPaginator
	}
	if opts.Table == (browser.Locator{}) {
		opts.Table = ReportTable
	}

	if opts.PaginatorTimeout <= 0 {
		opts.PaginatorTimeout = PaginatorTimeout
	}

	if opts.Paginate {
		if f.HomePage.IsVisible(ctx, opts.Paginator, opts.PaginatorTimeout) {
			if err := f.HomePage.Click(ctx, opts.Paginator); err != nil {
				return browser.Table{}, fmt.Errorf("paginate: %w", err)
			}
		} else {
			f.logger.Warnf("no paginator at %s, reading the visible rows", opts.Paginator)
		}
	}

	table, err := f.HomePage.ExtractTable(ctx, opts.Table)
	if err != nil {
		return browser.Table{}, err
	}
	f.logger.Infof("extracted %d protocols", table.Len())
	return table, nil
}
