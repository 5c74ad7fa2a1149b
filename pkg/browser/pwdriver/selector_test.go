package pwdriver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sitac/pkg/browser"
)

func TestSelectorFor(t *testing.T) {
	tests := []struct {
		name string
		loc  browser.Locator
		want string
	}{
		{"css", browser.CSS("#conteudo > div.cad_conteudo"), "css=#conteudo > div.cad_conteudo"},
		{"id", browser.ID("username"), `css=[id="username"]`},
		{"id with quote", browser.ID(`a"b`), `css=[id="a\"b"]`},
		{"xpath", browser.XPath("//table[@class='display']"), "xpath=//table[@class='display']"},
		{"name", browser.Name("senha"), `css=[name="senha"]`},
		{"text", browser.Text("Entrar"), "text=Entrar"},
		{"class", browser.Class("iziModal-button-close"), `css=[class~="iziModal-button-close"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectorFor(tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid locator", func(t *testing.T) {
		_, err := selectorFor(browser.Locator{By: browser.ByCSS})
		assert.ErrorIs(t, err, browser.ErrInvalidLocator)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"detached", errors.New("elementHandle.click: Element is not attached to the DOM"), browser.ErrStaleElement},
		{"intercepted", errors.New(`<div class="overlay"> intercepts pointer events`), browser.ErrClickIntercepted},
		{"closed", errors.New("Target page, context or browser has been closed"), browser.ErrSessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	t.Run("unknown errors pass through", func(t *testing.T) {
		err := errors.New("boom")
		assert.Same(t, err, translate(err))
	})
	assert.NoError(t, translate(nil))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(fmt.Errorf("waiting for selector: %w", playwright.ErrTimeout)))
	assert.False(t, isTimeout(errors.New("boom")))
}

func TestEngineFor(t *testing.T) {
	engine, err := engineFor(browser.Chrome)
	require.NoError(t, err)
	assert.Equal(t, "chromium", engine)

	engine, err = engineFor(browser.Firefox)
	require.NoError(t, err)
	assert.Equal(t, "firefox", engine)

	_, err = engineFor("safari")
	var ce *browser.ConfigError
	assert.True(t, errors.As(err, &ce))
}
