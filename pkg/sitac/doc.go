// Package sitac holds the page objects of the SITAC portal of CREA-MA.
//
// Pages embed *page.Base and only declare locators and business actions:
//
//	login, _ := sitac.NewLoginPage(b)
//	_ = login.Open(ctx)
//	_ = login.Login(ctx, user, pass)
//	if !login.IsLoggedIn(ctx, 0) {
//		// LoginFailed
//	}
package sitac
