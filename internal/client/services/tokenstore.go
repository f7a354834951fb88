package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/client/repositories/metadata"
	"github.com/marketmemphis/mdash/internal/dbx"
	"github.com/marketmemphis/mdash/internal/logging"
)

// Metadata keys owned by the token store.
const (
	keyToken        = "token"
	keyUser         = "user"
	keyCurrentBrand = "current_brand"
)

// ErrMalformedStoredState reports persisted session data that cannot be
// decoded. Load and LoadBrand never return it: they clear the bad entries and
// report nothing stored.
var ErrMalformedStoredState = errors.New("malformed stored state")

// SessionStore persists the credential pair of a session.
type SessionStore interface {
	Save(ctx context.Context, token string, user *models.User) error
	Load(ctx context.Context) (token string, user *models.User, ok bool, err error)
	Clear(ctx context.Context) error
}

// BrandStore persists the current brand choice of a user.
type BrandStore interface {
	SaveBrand(ctx context.Context, userID int64, b models.Brand) error
	LoadBrand(ctx context.Context) (userID int64, b *models.Brand, err error)
	ClearBrand(ctx context.Context) error
}

// TokenStore keeps the session token, the serialized user and the current
// brand in the metadata table. The token is stored as is.
type TokenStore struct {
	db  *sql.DB
	log logging.Logger
}

var (
	_ SessionStore = (*TokenStore)(nil)
	_ BrandStore   = (*TokenStore)(nil)
)

func NewTokenStore(db *sql.DB, log logging.Logger) *TokenStore {
	if log == nil {
		log = logging.Discard()
	}
	return &TokenStore{db: db, log: log.With("component", "token-store")}
}

func (s *TokenStore) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// Save writes the token and the user record in one transaction.
func (s *TokenStore) Save(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return errors.New("token store: token and user are both required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("token store: encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, data)
	})
}

// Load returns the stored session. ok is false when nothing usable is stored;
// a half-written or undecodable pair is cleared on the way.
func (s *TokenStore) Load(ctx context.Context) (string, *models.User, bool, error) {
	repo := s.repo()

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return "", nil, false, err
	}
	rawUser, err := repo.Get(ctx, keyUser)
	if err != nil {
		return "", nil, false, err
	}
	if token == nil && rawUser == nil {
		return "", nil, false, nil
	}

	user, err := decodeSession(token, rawUser)
	if err != nil {
		s.log.Warn(ctx, "dropping stored session", "err", err)
		if err := s.Clear(ctx); err != nil {
			return "", nil, false, err
		}
		return "", nil, false, nil
	}
	return string(token), user, true, nil
}

func decodeSession(token, rawUser []byte) (*models.User, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: user without token", ErrMalformedStoredState)
	}
	if len(rawUser) == 0 {
		return nil, fmt.Errorf("%w: token without user", ErrMalformedStoredState)
	}
	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStoredState, err)
	}
	return &user, nil
}

// Clear removes the token and the user together. The current brand is kept;
// it belongs to the device, not to the session.
func (s *TokenStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUser)
	})
}

// storedBrand is the persisted form of the current brand. The owner is kept
// so a different account logging in on the same machine does not inherit it.
type storedBrand struct {
	UserID int64        `json:"user_id"`
	Brand  models.Brand `json:"brand"`
}

func (s *TokenStore) SaveBrand(ctx context.Context, userID int64, b models.Brand) error {
	data, err := json.Marshal(storedBrand{UserID: userID, Brand: b})
	if err != nil {
		return fmt.Errorf("token store: encode brand: %w", err)
	}
	return s.repo().Set(ctx, keyCurrentBrand, data)
}

// LoadBrand returns the persisted brand and its owner, or a nil brand when
// none is stored. A malformed record is deleted.
func (s *TokenStore) LoadBrand(ctx context.Context) (int64, *models.Brand, error) {
	data, err := s.repo().Get(ctx, keyCurrentBrand)
	if err != nil {
		return 0, nil, err
	}
	if data == nil {
		return 0, nil, nil
	}

	var sb storedBrand
	err = json.Unmarshal(data, &sb)
	if err == nil && sb.Brand.ID == "" {
		err = errors.New("brand without id")
	}
	if err != nil {
		s.log.Warn(ctx, "dropping stored brand", "err", fmt.Errorf("%w: %v", ErrMalformedStoredState, err))
		return 0, nil, s.ClearBrand(ctx)
	}
	return sb.UserID, &sb.Brand, nil
}

func (s *TokenStore) ClearBrand(ctx context.Context) error {
	return s.repo().Delete(ctx, keyCurrentBrand)
}
