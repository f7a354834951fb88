package services

import (
	"context"

	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/logging"
)

// AuthClient is the unauthenticated part of the backend API.
type AuthClient interface {
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
}

// SessionStarter receives the credentials of a successful login.
type SessionStarter interface {
	Login(ctx context.Context, token string, user *models.User) error
}

// AuthService runs the login and registration forms: validate locally, then
// call the backend. A successful login is handed to the session.
type AuthService struct {
	client  AuthClient
	session SessionStarter
	log     logging.Logger
}

func NewAuthService(c AuthClient, session SessionStarter, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthService{client: c, session: session, log: log.With("component", "auth")}
}

// Login validates the form, authenticates and starts the session. A profile
// failure after a successful login is returned wrapped in
// ErrProfileFetchFailed; the session is live in that case.
func (a *AuthService) Login(ctx context.Context, username string, password []byte) error {
	if err := ValidateLogin(username, password); err != nil {
		return err
	}

	res, err := a.client.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		a.log.Info(ctx, "login rejected", "user", username, "err", err)
		return err
	}

	return a.session.Login(ctx, res.Token, res.User)
}

// Register validates the form and creates the account. It does not log in.
func (a *AuthService) Register(ctx context.Context, reg models.Registration) error {
	if err := ValidateRegistration(reg); err != nil {
		return err
	}
	if err := a.client.Register(ctx, reg); err != nil {
		return err
	}
	a.log.Info(ctx, "account registered", "user", reg.Username)
	return nil
}
