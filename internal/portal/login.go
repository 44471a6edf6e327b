package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"portalsync/internal/config"
)

// CheckLoginConfig verifies the settings login needs. Callers run this
// before launching a browser so a misconfiguration never costs a session.
func CheckLoginConfig(cfg *config.Config) error {
	if missing := cfg.MissingLogin(); len(missing) > 0 {
		return &Error{
			Kind: KindConfiguration,
			Op:   "login",
			Err:  fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// Login navigates to the portal, authenticates and waits for the landing
// view. The persistent profile may already carry a valid session; the login
// form selectors still appear when it does not.
func (f *Flow) Login(ctx context.Context, cfg *config.Config) error {
	if err := CheckLoginConfig(cfg); err != nil {
		return err
	}

	f.status("Navigating to login page...")
	_, err := f.Page.Goto(cfg.LoginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   ms(f.T.LoginNavTimeout),
	})
	if err != nil {
		return wrap(KindLogin, "login.navigate", err)
	}

	if err := f.waitVisible(KindLogin, "login.form", selUsername, f.T.SelectorTimeout); err != nil {
		return err
	}

	f.status("Entering credentials...")
	fill := playwright.LocatorFillOptions{Timeout: ms(f.T.LoginFieldTimeout)}
	if err := f.Page.Locator(selUsername).Fill(cfg.Username, fill); err != nil {
		return wrap(KindLogin, "login.username", err)
	}
	if err := f.Page.Locator(selPassword).Fill(cfg.Password, fill); err != nil {
		return wrap(KindLogin, "login.password", err)
	}
	if err := f.Page.Locator(selSubmit).Click(); err != nil {
		return wrap(KindLogin, "login.submit", err)
	}

	if err := f.waitVisible(KindLogin, "login.landing", selLoginLandmark, f.T.LoginLandmarkTimeout); err != nil {
		return err
	}
	f.status("Login successful!")
	return nil
}
