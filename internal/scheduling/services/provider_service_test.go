package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProviderStore fails Insert with ErrIdentityNotVisible until the
// configured number of attempts has passed, mimicking replication lag.
type fakeProviderStore struct {
	mu            sync.Mutex
	rows          map[uuid.UUID]*models.Provider // keyed by identity id
	notVisibleFor int
	insertCalls   int
	ignoreInsert  *models.Provider // when set, Insert is skipped and this row appears instead
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{rows: make(map[uuid.UUID]*models.Provider)}
}

func (f *fakeProviderStore) ByIdentity(_ context.Context, identityID uuid.UUID) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[identityID], nil
}

func (f *fakeProviderStore) Insert(_ context.Context, p *models.Provider) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertCalls <= f.notVisibleFor {
		return false, ErrIdentityNotVisible
	}
	if f.ignoreInsert != nil {
		f.rows[f.ignoreInsert.IdentityID] = f.ignoreInsert
		return false, nil
	}
	f.rows[p.IdentityID] = p
	return true, nil
}

func (f *fakeProviderStore) ByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProviderStore) ActiveOrdered(_ context.Context) ([]models.Provider, error) {
	return nil, nil
}

func (f *fakeProviderStore) All(_ context.Context) ([]models.Provider, error) {
	return nil, nil
}

func (f *fakeProviderStore) Save(_ context.Context, p *models.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[p.IdentityID] = p
	return nil
}

func testProviderService(store ProviderStore, resolver IdentityResolver) *ProviderService {
	s := NewProviderService(store, resolver)
	s.retryDelay = time.Millisecond
	return s
}

func TestProvisionRequiresIdentityID(t *testing.T) {
	s := testProviderService(newFakeProviderStore(), nil)

	_, err := s.Provision(context.Background(), uuid.Nil, "", nil)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestProvisionCreatesProfile(t *testing.T) {
	store := newFakeProviderStore()
	s := testProviderService(store, nil)

	identityID := uuid.New()
	p, err := s.Provision(context.Background(), identityID, "Fades", []string{"fade", "beard"})
	require.NoError(t, err)

	assert.Equal(t, identityID, p.IdentityID)
	assert.True(t, p.Active)
	assert.Equal(t, []string{"fade", "beard"}, []string(p.Specialties))
	assert.Equal(t, 1, store.insertCalls)
}

func TestProvisionIsIdempotent(t *testing.T) {
	store := newFakeProviderStore()
	identityID := uuid.New()
	existing := &models.Provider{ID: uuid.New(), IdentityID: identityID, Bio: "original"}
	store.rows[identityID] = existing

	s := testProviderService(store, nil)

	p, err := s.Provision(context.Background(), identityID, "different bio", []string{"x"})
	require.NoError(t, err)

	// The duplicate intent returns the existing profile unchanged.
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, "original", p.Bio)
	assert.Equal(t, 0, store.insertCalls)
}

func TestProvisionRetriesUntilIdentityVisible(t *testing.T) {
	store := newFakeProviderStore()
	store.notVisibleFor = 2
	s := testProviderService(store, nil)

	identityID := uuid.New()
	p, err := s.Provision(context.Background(), identityID, "", nil)
	require.NoError(t, err)

	assert.Equal(t, identityID, p.IdentityID)
	assert.Equal(t, 3, store.insertCalls)
}

func TestProvisionPermanentAfterExhaustion(t *testing.T) {
	store := newFakeProviderStore()
	store.notVisibleFor = 1 << 30
	s := testProviderService(store, nil)
	s.maxAttempts = 3

	_, err := s.Provision(context.Background(), uuid.New(), "", nil)
	require.Error(t, err)

	assert.True(t, apperr.IsKind(err, apperr.Permanent))
	assert.Equal(t, 3, store.insertCalls)
	assert.Empty(t, store.rows)
}

func TestProvisionToleratesConcurrentWinner(t *testing.T) {
	store := newFakeProviderStore()
	identityID := uuid.New()
	winner := &models.Provider{ID: uuid.New(), IdentityID: identityID}
	store.ignoreInsert = winner

	s := testProviderService(store, nil)

	p, err := s.Provision(context.Background(), identityID, "", nil)
	require.NoError(t, err)

	// The insert lost the race; the winner's row comes back instead of an error.
	assert.Equal(t, winner.ID, p.ID)
}

type fakeResolver struct {
	store *fakeProviderStore
	calls int
}

func (r *fakeResolver) Sync(context.Context, uuid.UUID) error {
	r.calls++
	if r.calls >= 2 {
		r.store.mu.Lock()
		r.store.notVisibleFor = 0
		r.store.mu.Unlock()
	}
	return nil
}

func TestProvisionSyncsIdentityWhileRetrying(t *testing.T) {
	store := newFakeProviderStore()
	store.notVisibleFor = 1 << 30
	resolver := &fakeResolver{store: store}
	s := testProviderService(store, resolver)

	p, err := s.Provision(context.Background(), uuid.New(), "", nil)
	require.NoError(t, err)

	assert.NotNil(t, p)
	assert.Equal(t, 2, resolver.calls)
}

func TestProvisionStopsOnCancelledContext(t *testing.T) {
	store := newFakeProviderStore()
	store.notVisibleFor = 1 << 30
	s := testProviderService(store, nil)
	s.retryDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Provision(ctx, uuid.New(), "", nil)
	require.Error(t, err)
	assert.Equal(t, 1, store.insertCalls)
}
