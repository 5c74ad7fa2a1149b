// Package pwdriver implements browser.Driver with Playwright.
//
// Each Launch starts its own Playwright driver process, browser and context.
// Pages of the context are exposed as windows, locators are mapped onto
// Playwright selector engines, and Playwright failures are translated into
// the sentinel errors of package browser so that retry classification works
// the same as with any other driver.
//
//	b, err := browser.New(cfg, pwdriver.NewLauncher(logger))
package pwdriver
