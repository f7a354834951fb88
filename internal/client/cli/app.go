package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/config"
	"github.com/marketmemphis/mdash/internal/client/services"
	"github.com/marketmemphis/mdash/internal/logging"
)

// App is the application state of the CLI. It owns the session controller
// and the brand selector and hands them to the command handlers; nothing is
// kept in package-level state.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     client.Client
	session *services.SessionController
	brands  *services.BrandSelector
	auth    *services.AuthService
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database and the backend client described by c and
// wires the services together.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.BaseURL, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, log, db, api, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, api client.Client, in io.Reader, out io.Writer) *App {
	store := services.NewTokenStore(db, log)
	session := services.NewSessionController(store, api, log)
	brands := services.NewBrandSelector(api, session, store, log)
	session.Subscribe(brands.OnSessionChange)

	return &App{
		config:  c,
		log:     log,
		db:      db,
		api:     api,
		session: session,
		brands:  brands,
		auth:    services.NewAuthService(api, session, log),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run resolves the stored session and then serves the REPL until the user
// leaves or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to mdash (type 'help' for commands)")
	a.resolve(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.api.Close(); err != nil {
		a.log.Warn(ctx, "close client", "err", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(ctx, "close database", "err", err)
	}
}

// resolve runs the one-time session bootstrap and tells the user where they
// stand.
func (a *App) resolve(ctx context.Context) {
	err := a.session.Init(ctx)
	snap := a.session.State()

	switch {
	case snap.State == services.StateAnonymous && errors.Is(err, client.ErrSessionExpired):
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	case snap.State == services.StateAnonymous:
		if err != nil {
			a.report(ctx, err)
		}
		fmt.Fprintln(a.out, "Not logged in. Type 'login' or 'register'.")
	case snap.State == services.StateAuthenticated:
		fmt.Fprintf(a.out, "Welcome back, %s!\n", snap.User.Username)
		if !snap.ProfileLoaded {
			a.profileUnavailable(snap.Err)
		}
		a.checkBrands(ctx)
	}
}

func (a *App) access() access {
	return guard(a.session.State())
}

func (a *App) getStatus() string {
	snap := a.session.State()
	if snap.User == nil {
		return ""
	}
	s := " (" + snap.User.Username
	if b, ok := a.brands.Current(); ok {
		s += " @ " + brandLabel(b.Name, b.ID)
	}
	return s + ")"
}

func brandLabel(name, id string) string {
	if name == "" {
		return "brand " + id
	}
	return name
}

// report prints err as a one-line message for the user and logs it. Handlers
// never let an error end the REPL.
func (a *App) report(ctx context.Context, err error) {
	a.log.Debug(ctx, "command failed", "err", err)
	fmt.Fprintln(a.out, userMessage(err))
}

func userMessage(err error) string {
	var (
		validation *services.ValidationError
		partial    *services.PartialCreateError
		reqErr     *client.RequestError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &partial):
		return fmt.Sprintf("Brand %s was created but could not be named (%s). It is listed unnamed; use brand-rename %s <name>.",
			partial.BrandID, userMessage(partial.Err), partial.BrandID)
	case errors.Is(err, client.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, client.ErrMissingCredential):
		return "You are not logged in."
	case errors.As(err, &reqErr):
		return reqErr.Error()
	default:
		return err.Error()
	}
}
