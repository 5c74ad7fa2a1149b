// Package browser is a control layer over a browser automation driver.
//
// It adds waiting, retry and failure evidence to the primitives a Driver
// offers, and exposes them through a single facade, Browser.
//
// # Architecture
//
//  1. Driver: the session port (find, click, type, script, windows, frames, dialogs)
//  2. WaitFor: polls the live document until a Locator matches or a timeout passes
//  3. Retry: re-runs an Operation on transient failures with a fixed delay
//  4. EvidenceRecorder: saves a screenshot and HTML snapshot for every failed attempt
//  5. Browser: composes the above into navigate, click, type, read, tables, tabs,
//     frames, dialogs and gestures
//
// Policies are Middleware over Operation values. The facade builds each call as
//
//	Chain(op, Timed(...), RetryMiddleware(spec, ...), evidence.Middleware(name))
//
// so evidence wraps every physical attempt and Retry returns the last real
// failure unchanged.
//
// # Example Usage
//
//	b, err := browser.New(browser.DefaultConfig(), pwdriver.NewLauncher(logger))
//	if err != nil {
//	    return err
//	}
//	defer b.Quit()
//
//	if err := b.Navigate(ctx, "https://example.com/login"); err != nil {
//	    return err
//	}
//	err = b.TypeText(ctx, browser.CSS("#username"), "user")
//	table, err := b.ExtractTable(ctx, browser.CSS(".display"))
package browser
