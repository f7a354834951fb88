package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/client/services"
)

// getSimpleText, getPassword and getList are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getList       = GetList
)

// Register walks the user through the sign-up form and creates the account.
// The form is checked locally before anything is sent; on success the user
// is asked to log in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration

	text := []struct {
		prompt string
		dst    *string
	}{
		{"Username", &reg.Username},
		{"Email", &reg.Email},
		{"First name", &reg.FirstName},
		{"Last name", &reg.LastName},
		{"Business name", &reg.BusinessName},
		{"Business type (e.g. restaurant, retail)", &reg.BusinessType},
		{"Business address", &reg.BusinessAddress},
		{"Phone number", &reg.PhoneNumber},
	}
	for _, f := range text {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	serviceTypes, err := getList(a.reader, "Services (comma separated: presence, qr, itinerary, messaging)", a.out)
	if err != nil {
		return err
	}
	reg.ServiceTypes = serviceTypes

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	reg.Password, reg.Password2 = string(password), string(confirm)

	if err := a.auth.Register(ctx, reg); err != nil {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Registration successful! Type 'login' to sign in.")
	return nil
}

// Login prompts for credentials and starts a session. A login whose profile
// could not be loaded still succeeds; the user is told to refresh.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	err = a.auth.Login(ctx, username, password)
	if err != nil && !errors.Is(err, services.ErrProfileFetchFailed) {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Login successful. Welcome, %s!\n", username)
	if err != nil {
		a.profileUnavailable(err)
	}
	a.checkBrands(ctx)
	return nil
}

// Logout ends the session and wipes the stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) profileUnavailable(err error) {
	msg := "unknown error"
	if err != nil {
		msg = userMessage(err)
	}
	fmt.Fprintf(a.out, "Your business profile could not be loaded: %s\nType 'refresh' to try again.\n", msg)
}

// Profile shows the business profile, or the retry hint if it is missing.
func (a *App) Profile(ctx context.Context) error {
	snap := a.session.State()
	if !snap.Ready() {
		a.profileUnavailable(snap.Err)
		return snap.Err
	}

	p := snap.Profile
	rows := []struct{ label, value string }{
		{"Business", p.BusinessName},
		{"Type", p.BusinessType},
		{"Address", p.BusinessAddress},
		{"Phone", p.PhoneNumber},
		{"Contact", joinName(p.FirstName, p.LastName)},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Fprintf(a.out, "%-9s %s\n", r.label+":", r.value)
		}
	}
	return nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Refresh refetches the profile.
func (a *App) Refresh(ctx context.Context) error {
	err := a.session.Refresh(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Profile loaded.")
	case errors.Is(err, client.ErrSessionExpired):
		a.report(ctx, err)
	default:
		a.profileUnavailable(err)
	}
	return err
}

// Status prints the session state and the current brand.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.State()
	fmt.Fprintf(a.out, "Backend: %s\n", a.config.BaseURL)
	fmt.Fprintf(a.out, "Session: %s\n", snap.State)
	if snap.User == nil {
		return nil
	}
	fmt.Fprintf(a.out, "User:    %s <%s>\n", snap.User.Username, snap.User.Email)
	if snap.ProfileLoaded {
		fmt.Fprintln(a.out, "Profile: loaded")
	} else {
		fmt.Fprintln(a.out, "Profile: not loaded")
	}
	if b, ok := a.brands.Current(); ok {
		fmt.Fprintf(a.out, "Brand:   %s\n", b)
	} else {
		fmt.Fprintln(a.out, "Brand:   none")
	}
	return nil
}
