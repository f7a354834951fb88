package client

import (
	"context"

	"github.com/marketmemphis/mdash/internal/client/models"
)

// Client is the backend API used by the client services.
//
// Authenticated methods take the session token explicitly; an empty token
// fails with ErrMissingCredential before any request is made, and an HTTP 401
// is reported as ErrSessionExpired.
type Client interface {
	Close() error
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	Profile(ctx context.Context, token string) (*models.Profile, error)
	ListBrands(ctx context.Context, token string) ([]models.Brand, error)
	CreateBrand(ctx context.Context, token string) (string, error)
	RenameBrand(ctx context.Context, token, brandID, name string) (*models.Brand, error)
	SocialDetails(ctx context.Context, token, brandID string) ([]models.SocialConnection, error)
}
