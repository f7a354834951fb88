package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, otherwise every pooled connection sees its own empty db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	require.NoError(t, err)
	return v
}

func putMeta(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

var maria = &models.User{ID: 7, Username: "maria", Email: "maria@tacosofia.com", BusinessName: "Taco Sofia"}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting")
	}
}

// ---- fake backend ----

// fakeBackend implements every client interface the services use. Calls are
// counted; a non-nil gate makes the matching call block until it is closed.
type fakeBackend struct {
	mu sync.Mutex

	profile      *models.Profile
	profileErr   error
	profileCalls int
	profileGate  chan struct{}
	profileStart chan struct{}

	brands    []models.Brand
	listErr   error
	listCalls int
	nextID    int
	createErr error
	renameErr error

	social       map[string][]models.SocialConnection
	socialErr    error
	socialGates  map[string]chan struct{}
	socialStarts map[string]chan struct{}

	loginRes   *models.LoginResult
	loginErr   error
	loginCalls int
	lastCreds  models.Credentials

	registerErr error
	registered  []models.Registration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profile:      &models.Profile{BusinessName: "Taco Sofia"},
		nextID:       41,
		social:       map[string][]models.SocialConnection{},
		socialGates:  map[string]chan struct{}{},
		socialStarts: map[string]chan struct{}{},
	}
}

var (
	_ ProfileFetcher = (*fakeBackend)(nil)
	_ BrandClient    = (*fakeBackend)(nil)
	_ AuthClient     = (*fakeBackend)(nil)
)

func (f *fakeBackend) Profile(ctx context.Context, token string) (*models.Profile, error) {
	f.mu.Lock()
	f.profileCalls++
	gate, started := f.profileGate, f.profileStart
	f.profileStart = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeBackend) ListBrands(ctx context.Context, token string) ([]models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Brand{}, f.brands...), nil
}

func (f *fakeBackend) CreateBrand(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.brands = append(f.brands, models.Brand{ID: id})
	return id, nil
}

func (f *fakeBackend) RenameBrand(ctx context.Context, token, brandID, name string) (*models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return nil, f.renameErr
	}
	for i := range f.brands {
		if f.brands[i].ID == brandID {
			f.brands[i].Name = name
		}
	}
	return &models.Brand{ID: brandID, Name: name}, nil
}

func (f *fakeBackend) SocialDetails(ctx context.Context, token, brandID string) ([]models.SocialConnection, error) {
	f.mu.Lock()
	gate, started := f.socialGates[brandID], f.socialStarts[brandID]
	delete(f.socialStarts, brandID)
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.socialErr != nil {
		return nil, f.socialErr
	}
	return f.social[brandID], nil
}

func (f *fakeBackend) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastCreds = creds
	return f.loginRes, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, reg models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, reg)
	return f.registerErr
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) calls() (profile, list, login int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls, f.listCalls, f.loginCalls
}

// recorder collects session notifications.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(_ context.Context, s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count(state State) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.snaps {
		if s.State == state {
			n++
		}
	}
	return n
}
