package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/logging"
)

// ErrProfileFetchFailed wraps a failed profile fetch that left the session
// alive. The session is Authenticated with ProfileLoaded == false.
var ErrProfileFetchFailed = errors.New("profile fetch failed")

// State is the lifecycle state of the session.
type State int

const (
	StateUninitialized State = iota
	StateResolving
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a copy of the controller state at one point in time.
type Snapshot struct {
	State State
	// Epoch identifies the session; it changes on every login and logout and
	// is empty while Anonymous.
	Epoch         string
	User          *models.User
	Profile       *models.Profile
	ProfileLoaded bool
	// Err is the last profile fetch error, kept while the session lives.
	Err error
}

// Ready reports whether business content may be shown: the session is
// authenticated and its profile has arrived.
func (s Snapshot) Ready() bool {
	return s.State == StateAuthenticated && s.ProfileLoaded
}

// ProfileFetcher retrieves the business profile of a token.
type ProfileFetcher interface {
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// Observer is notified after every state change, outside the controller lock.
type Observer func(ctx context.Context, s Snapshot)

// SessionController owns the logged-in user and the profile fetched for it.
// It is safe for concurrent use.
type SessionController struct {
	store   SessionStore
	fetcher ProfileFetcher
	log     logging.Logger

	mu            sync.Mutex
	state         State
	epoch         string
	token         string
	user          *models.User
	profile       *models.Profile
	profileLoaded bool
	err           error
	observers     []Observer
}

func NewSessionController(store SessionStore, fetcher ProfileFetcher, log logging.Logger) *SessionController {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionController{
		store:   store,
		fetcher: fetcher,
		log:     log.With("component", "session"),
	}
}

// Subscribe registers fn for state change notifications.
func (c *SessionController) Subscribe(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// State returns the current snapshot.
func (c *SessionController) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Ready is shorthand for State().Ready().
func (c *SessionController) Ready() bool {
	return c.State().Ready()
}

// Token returns the session token and the epoch it belongs to. Both are empty
// when there is no session.
func (c *SessionController) Token() (token, epoch string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.epoch
}

func (c *SessionController) snapshotLocked() Snapshot {
	return Snapshot{
		State:         c.state,
		Epoch:         c.epoch,
		User:          c.user,
		Profile:       c.profile,
		ProfileLoaded: c.profileLoaded,
		Err:           c.err,
	}
}

// notify must be called without c.mu held.
func (c *SessionController) notify(ctx context.Context, s Snapshot) {
	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, s)
	}
}

// Init resolves the stored session. It runs once; later calls are no-ops.
//
// With nothing stored the controller goes Anonymous without a network call.
// Otherwise the stored user becomes the session and its profile is fetched.
func (c *SessionController) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return nil
	}
	c.state = StateResolving
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(ctx, snap)

	token, user, ok, err := c.store.Load(ctx)
	if err != nil {
		c.log.Error(ctx, "load stored session", "err", err)
		c.anonymousIfPending(ctx)
		return fmt.Errorf("load stored session: %w", err)
	}
	if !ok {
		c.anonymousIfPending(ctx)
		return nil
	}

	c.mu.Lock()
	if !c.pendingLocked() {
		c.mu.Unlock()
		c.log.Debug(ctx, "stored session superseded by login or logout")
		return nil
	}
	epoch := c.startLocked(token, user)
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(ctx, snap)

	return c.fetch(ctx, epoch, token)
}

// pendingLocked reports whether Init is still resolving and nothing has
// logged in or out meanwhile.
func (c *SessionController) pendingLocked() bool {
	return c.state == StateResolving && c.epoch == ""
}

func (c *SessionController) anonymousIfPending(ctx context.Context) {
	c.mu.Lock()
	if !c.pendingLocked() {
		c.mu.Unlock()
		return
	}
	snap := c.anonymousLocked()
	c.mu.Unlock()

	c.notify(ctx, snap)
}

// Login persists a freshly issued token and user, then loads the profile.
func (c *SessionController) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return client.ErrMissingCredential
	}
	if err := c.store.Save(ctx, token, user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	epoch := c.start(ctx, token, user)
	c.log.Info(ctx, "logged in", "user", user.Username)
	return c.fetch(ctx, epoch, token)
}

// start installs a new session in Resolving state and returns its epoch.
func (c *SessionController) start(ctx context.Context, token string, user *models.User) string {
	c.mu.Lock()
	epoch := c.startLocked(token, user)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(ctx, snap)
	return epoch
}

func (c *SessionController) startLocked(token string, user *models.User) string {
	c.epoch = uuid.NewString()
	c.state = StateResolving
	c.token = token
	c.user = user
	c.profile = nil
	c.profileLoaded = false
	c.err = nil
	return c.epoch
}

// Logout ends the session. Memory is cleared before storage, and both are
// cleared even if the session was already gone.
func (c *SessionController) Logout(ctx context.Context) error {
	c.becomeAnonymous(ctx)
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	return nil
}

func (c *SessionController) becomeAnonymous(ctx context.Context) {
	c.mu.Lock()
	snap := c.anonymousLocked()
	c.mu.Unlock()

	c.notify(ctx, snap)
}

func (c *SessionController) anonymousLocked() Snapshot {
	c.state = StateAnonymous
	c.epoch = ""
	c.token = ""
	c.user = nil
	c.profile = nil
	c.profileLoaded = false
	c.err = nil
	return c.snapshotLocked()
}

// Refresh refetches the profile of the current session. It is a no-op unless
// the session is Authenticated.
func (c *SessionController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return nil
	}
	epoch, token := c.epoch, c.token
	c.mu.Unlock()

	return c.fetch(ctx, epoch, token)
}

// HandleExpired logs the session out after a 401. It acts only if epoch is
// still the current session, so any number of reports for one session cause
// a single logout. It reports whether a logout happened.
func (c *SessionController) HandleExpired(ctx context.Context, epoch string) bool {
	c.mu.Lock()
	if epoch == "" || epoch != c.epoch {
		c.mu.Unlock()
		return false
	}
	// claim the logout before releasing the lock
	c.epoch = ""
	c.mu.Unlock()

	c.log.Warn(ctx, "session expired, logging out")
	if err := c.Logout(ctx); err != nil {
		c.log.Error(ctx, "clear stored session", "err", err)
	}
	return true
}

// fetch loads the profile for the session identified by epoch and applies the
// outcome only if that session is still current.
func (c *SessionController) fetch(ctx context.Context, epoch, token string) error {
	profile, err := c.fetcher.Profile(ctx, token)

	if errors.Is(err, client.ErrSessionExpired) {
		c.HandleExpired(ctx, epoch)
		return err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.log.Debug(ctx, "discarding profile of a finished session")
		return nil
	}

	c.state = StateAuthenticated
	if err != nil {
		c.profile = nil
		c.profileLoaded = false
		c.err = err
	} else {
		c.profile = profile
		c.profileLoaded = true
		c.err = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(ctx, snap)

	if err != nil {
		c.log.Warn(ctx, "profile fetch failed", "err", err)
		return fmt.Errorf("%w: %w", ErrProfileFetchFailed, err)
	}
	return nil
}
