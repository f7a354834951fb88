package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/client/services"
)

// Brands lists the account's brands and marks the current one.
func (a *App) Brands(ctx context.Context) error {
	list, err := a.brands.List(ctx)
	if err != nil {
		a.brandsUnavailable(ctx, err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No brands yet. Create one with brand-create <name>.")
		return nil
	}

	cur, hasCurrent := a.brands.Current()
	for _, b := range list {
		mark := " "
		if hasCurrent && b.ID == cur.ID {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", mark, b)
	}
	return nil
}

func (a *App) brandsUnavailable(ctx context.Context, err error) {
	fmt.Fprint(a.out, "Could not load brands: ")
	a.report(ctx, err)
	fmt.Fprintln(a.out, "Type 'brands' to try again.")
}

// checkBrands tells the user when the brand list could not be loaded at the
// start of the session, so no brand is current yet.
func (a *App) checkBrands(ctx context.Context) {
	if err := a.brands.ActivationErr(); err != nil {
		a.brandsUnavailable(ctx, err)
	}
}

// CreateBrand creates a brand named name. A brand that was created but not
// named is reported as such; it is not rolled back.
func (a *App) CreateBrand(ctx context.Context, name string) error {
	b, err := a.brands.Create(ctx, name)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", b)
	return nil
}

func (a *App) RenameBrand(ctx context.Context, id, name string) error {
	b, err := a.brands.Rename(ctx, id, name)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Renamed to %s\n", b)
	return nil
}

// SelectBrand makes the brand with the given id current. The id is looked up
// in the last listing, which is refreshed if the id is not there.
func (a *App) SelectBrand(ctx context.Context, id string) error {
	b, ok := findBrand(a.brands.Brands(), id)
	if !ok {
		list, err := a.brands.List(ctx)
		if err != nil {
			a.report(ctx, err)
			return err
		}
		if b, ok = findBrand(list, id); !ok {
			err := fmt.Errorf("unknown brand %q", id)
			fmt.Fprintf(a.out, "No brand with id %s. Type 'brands' to see them.\n", id)
			return err
		}
	}

	if err := a.brands.Select(ctx, b); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Current brand: %s\n", b)
	return nil
}

func findBrand(list []models.Brand, id string) (models.Brand, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return models.Brand{}, false
}

// Social fetches and prints the social connections of the current brand.
func (a *App) Social(ctx context.Context) error {
	conns, err := a.brands.SocialDetails(ctx)
	switch {
	case errors.Is(err, services.ErrNoBrandSelected):
		fmt.Fprintln(a.out, "No brand selected. Use brand-select <id> first.")
		return err
	case errors.Is(err, services.ErrStaleResult):
		// the selection moved on while the request was in flight
		return err
	case err != nil:
		a.report(ctx, err)
		return err
	}

	if len(conns) == 0 {
		fmt.Fprintln(a.out, "No social platforms linked to this brand.")
		return nil
	}
	for _, c := range conns {
		fmt.Fprintln(a.out, formatConnection(c))
	}
	s := a.brands.Summary()
	fmt.Fprintf(a.out, "%d of %d platforms connected, %d followers in total\n", s.Connected, s.Total, s.TotalFollowers)
	return nil
}

func formatConnection(c models.SocialConnection) string {
	status := c.Status
	if status == "" {
		status = models.StatusDisconnected
		if c.Connected {
			status = models.StatusConnected
		}
	}
	line := fmt.Sprintf("%-10s %s", c.Provider, status)
	if c.Username != "" {
		line += " " + c.Username
	}
	if c.Connected {
		line += fmt.Sprintf(" (%d followers", c.Followers)
		if c.LastPost != "" {
			line += ", last post " + c.LastPost
		}
		line += ")"
	}
	return line
}
