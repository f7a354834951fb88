package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/logging"
)

var (
	ErrBrandsUnavailable = errors.New("brands unavailable")
	ErrNoBrandSelected   = errors.New("no brand selected")
	ErrBrandNameRequired = errors.New("Brand name is required")
	// ErrStaleResult is returned when an answer arrives for a brand selection
	// or a session that is no longer current; the answer is dropped.
	ErrStaleResult = errors.New("result discarded: selection changed")
)

// PartialCreateError reports a brand that was created but could not be
// named. The brand exists on the backend under its default name.
type PartialCreateError struct {
	BrandID string
	Err     error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("brand %s was created but could not be named: %v", e.BrandID, e.Err)
}

func (e *PartialCreateError) Unwrap() error { return e.Err }

// BrandClient is the part of the backend API the selector uses.
type BrandClient interface {
	ListBrands(ctx context.Context, token string) ([]models.Brand, error)
	CreateBrand(ctx context.Context, token string) (string, error)
	RenameBrand(ctx context.Context, token, brandID, name string) (*models.Brand, error)
	SocialDetails(ctx context.Context, token, brandID string) ([]models.SocialConnection, error)
}

// Session is what the selector needs from the session controller.
type Session interface {
	State() Snapshot
	Token() (token, epoch string)
	HandleExpired(ctx context.Context, epoch string) bool
}

// BrandSelector tracks the account's brands and the current one.
type BrandSelector struct {
	client  BrandClient
	session Session
	store   BrandStore
	log     logging.Logger

	mu          sync.Mutex
	epoch       string // session the selector is active for
	userID      int64
	brands      []models.Brand
	current     *models.Brand
	selection   uint64 // bumped on every selection change
	connections []models.SocialConnection
	loaded      bool // connections belong to the current selection
	activateErr error
}

func NewBrandSelector(c BrandClient, session Session, store BrandStore, log logging.Logger) *BrandSelector {
	if log == nil {
		log = logging.Discard()
	}
	return &BrandSelector{
		client:  c,
		session: session,
		store:   store,
		log:     log.With("component", "brands"),
	}
}

// OnSessionChange is an Observer for the session controller: it activates
// the selector when a session becomes Authenticated and resets it when the
// session ends.
func (s *BrandSelector) OnSessionChange(ctx context.Context, snap Snapshot) {
	switch snap.State {
	case StateAuthenticated:
		if err := s.Activate(ctx); err != nil {
			s.log.Warn(ctx, "brand activation failed", "err", err)
		}
	case StateAnonymous:
		s.Deactivate()
	}
}

// Activate binds the selector to the current session and picks the current
// brand: the persisted one if it belongs to this user, otherwise the first
// listed brand. Activating twice for the same session does nothing.
func (s *BrandSelector) Activate(ctx context.Context) error {
	snap := s.session.State()
	if snap.State != StateAuthenticated || snap.User == nil {
		return client.ErrMissingCredential
	}

	s.mu.Lock()
	if s.epoch == snap.Epoch {
		s.mu.Unlock()
		return nil
	}
	s.resetLocked()
	s.epoch = snap.Epoch
	s.userID = snap.User.ID
	s.mu.Unlock()

	owner, stored, err := s.store.LoadBrand(ctx)
	if err != nil {
		s.log.Warn(ctx, "load current brand", "err", err)
	}
	if stored != nil && owner == snap.User.ID {
		s.mu.Lock()
		if s.epoch == snap.Epoch && s.current == nil {
			s.setCurrentLocked(*stored)
		}
		s.mu.Unlock()
		s.log.Debug(ctx, "restored current brand", "brand", stored.ID)
		return nil
	}

	// List picks the first brand while none is current
	if _, err := s.List(ctx); err != nil {
		s.mu.Lock()
		if s.epoch == snap.Epoch {
			s.activateErr = err
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// ActivationErr returns the error of the last activation if no listing has
// succeeded since. The session then has no current brand until List is
// retried.
func (s *BrandSelector) ActivationErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activateErr
}

// Deactivate forgets everything held for the ended session. The persisted
// brand stays for the next login of the same user.
func (s *BrandSelector) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *BrandSelector) resetLocked() {
	s.epoch = ""
	s.userID = 0
	s.brands = nil
	s.current = nil
	s.selection++
	s.connections = nil
	s.loaded = false
	s.activateErr = nil
}

func (s *BrandSelector) setCurrentLocked(b models.Brand) {
	s.current = &b
	s.selection++
	s.connections = nil
	s.loaded = false
}

// expired reports a 401 to the session controller.
func (s *BrandSelector) expired(ctx context.Context, epoch string, err error) {
	if errors.Is(err, client.ErrSessionExpired) {
		s.session.HandleExpired(ctx, epoch)
	}
}

// List fetches the brands of the account. While no brand is current the first
// one listed becomes current. On failure the current brand is left untouched
// and the error matches ErrBrandsUnavailable.
func (s *BrandSelector) List(ctx context.Context) ([]models.Brand, error) {
	token, epoch := s.session.Token()

	brands, err := s.client.ListBrands(ctx, token)
	if err != nil {
		s.expired(ctx, epoch, err)
		return nil, fmt.Errorf("%w: %w", ErrBrandsUnavailable, err)
	}

	var pick *models.Brand
	s.mu.Lock()
	if s.epoch != "" && s.epoch == epoch {
		s.brands = brands
		s.activateErr = nil
		if s.current == nil && len(brands) > 0 {
			pick = &brands[0]
		}
	}
	s.mu.Unlock()

	if pick != nil {
		s.selectDefault(ctx, epoch, *pick)
	}
	return brands, nil
}

// selectDefault makes b current unless a brand was selected in the meantime.
func (s *BrandSelector) selectDefault(ctx context.Context, epoch string, b models.Brand) {
	s.mu.Lock()
	if s.epoch != epoch || s.current != nil {
		s.mu.Unlock()
		return
	}
	s.setCurrentLocked(b)
	userID := s.userID
	s.mu.Unlock()

	if err := s.store.SaveBrand(ctx, userID, b); err != nil {
		s.log.Warn(ctx, "persist current brand", "brand", b.ID, "err", err)
		return
	}
	s.log.Debug(ctx, "defaulted to first brand", "brand", b.ID)
}

// Brands returns the result of the last successful List.
func (s *BrandSelector) Brands() []models.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Brand(nil), s.brands...)
}

// Create makes a new brand and names it. The backend mints the brand first
// and the name is applied in a second call; when only the second call fails
// the returned brand is the unnamed one and the error is *PartialCreateError.
func (s *BrandSelector) Create(ctx context.Context, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBrandNameRequired
	}
	token, epoch := s.session.Token()

	id, err := s.client.CreateBrand(ctx, token)
	if err != nil {
		s.expired(ctx, epoch, err)
		return nil, fmt.Errorf("create brand: %w", err)
	}
	s.log.Info(ctx, "brand created", "brand", id)

	b, err := s.client.RenameBrand(ctx, token, id, name)
	if err != nil {
		s.expired(ctx, epoch, err)
		s.log.Warn(ctx, "brand created without name", "brand", id, "err", err)
		return &models.Brand{ID: id}, &PartialCreateError{BrandID: id, Err: err}
	}
	return b, nil
}

// Rename changes the name of a brand. Renaming the current brand updates the
// persisted selection too.
func (s *BrandSelector) Rename(ctx context.Context, id, name string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBrandNameRequired
	}
	token, epoch := s.session.Token()

	b, err := s.client.RenameBrand(ctx, token, id, name)
	if err != nil {
		s.expired(ctx, epoch, err)
		return nil, fmt.Errorf("rename brand: %w", err)
	}

	s.mu.Lock()
	isCurrent := s.epoch == epoch && s.current != nil && s.current.ID == b.ID
	if isCurrent {
		s.current.Name = b.Name
	}
	for i := range s.brands {
		if s.brands[i].ID == b.ID {
			s.brands[i].Name = b.Name
		}
	}
	userID := s.userID
	s.mu.Unlock()

	if isCurrent {
		if err := s.store.SaveBrand(ctx, userID, *b); err != nil {
			return b, fmt.Errorf("persist current brand: %w", err)
		}
	}
	return b, nil
}

// Select makes b the current brand and persists the choice at once. The
// connections loaded for the previous brand are dropped.
func (s *BrandSelector) Select(ctx context.Context, b models.Brand) error {
	s.mu.Lock()
	if s.epoch == "" {
		s.mu.Unlock()
		return client.ErrMissingCredential
	}
	s.setCurrentLocked(b)
	userID := s.userID
	s.mu.Unlock()

	if err := s.store.SaveBrand(ctx, userID, b); err != nil {
		return fmt.Errorf("persist current brand: %w", err)
	}
	s.log.Debug(ctx, "brand selected", "brand", b.ID)
	return nil
}

// Current returns the current brand.
func (s *BrandSelector) Current() (models.Brand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Brand{}, false
	}
	return *s.current, true
}

// SocialDetails fetches the social connections of the current brand. If the
// selection changes while the request is in flight the answer is dropped and
// ErrStaleResult is returned.
func (s *BrandSelector) SocialDetails(ctx context.Context) ([]models.SocialConnection, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoBrandSelected
	}
	brandID, selection := s.current.ID, s.selection
	s.mu.Unlock()

	token, epoch := s.session.Token()
	conns, err := s.client.SocialDetails(ctx, token, brandID)
	if err != nil {
		s.expired(ctx, epoch, err)
		return nil, fmt.Errorf("social details of brand %s: %w", brandID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection != selection || s.epoch != epoch {
		s.log.Debug(ctx, "discarding social details", "brand", brandID)
		return nil, ErrStaleResult
	}
	s.connections = conns
	s.loaded = true
	return append([]models.SocialConnection(nil), conns...), nil
}

// Connections returns the connections loaded for the current brand; ok is
// false until SocialDetails has succeeded for the current selection.
func (s *BrandSelector) Connections() ([]models.SocialConnection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SocialConnection(nil), s.connections...), s.loaded
}

// Summary aggregates the loaded connections of the current brand.
func (s *BrandSelector) Summary() models.SocialSummary {
	conns, _ := s.Connections()
	return models.Summarize(conns)
}
