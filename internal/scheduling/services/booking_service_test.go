package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingStore struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*models.Booking
	slotRace bool // next Create fails as if the unique index fired
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{rows: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookingStore) InTx(_ context.Context, fn func(tx BookingStore) error) error {
	return fn(f)
}

func (f *fakeBookingStore) ByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.rows[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotRace {
		f.slotRace = false
		return ErrSlotTaken
	}
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) Save(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) Delete(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, b.ID)
	return nil
}

func (f *fakeBookingStore) RequesterBusy(_ context.Context, requesterID uuid.UUID, date time.Time, slot string) (bool, error) {
	return f.busy(func(b *models.Booking) bool { return b.RequesterID == requesterID }, date, slot), nil
}

func (f *fakeBookingStore) ProviderBusy(_ context.Context, providerID uuid.UUID, date time.Time, slot string) (bool, error) {
	return f.busy(func(b *models.Booking) bool { return b.ProviderID == providerID }, date, slot), nil
}

func (f *fakeBookingStore) busy(match func(*models.Booking) bool, date time.Time, slot string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if match(b) && b.Date.Equal(date) && b.TimeSlot == slot && b.Status != models.StatusCancelled {
			return true
		}
	}
	return false
}

func (f *fakeBookingStore) ForRequester(_ context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return f.filter(func(b *models.Booking) bool { return b.RequesterID == requesterID }), nil
}

func (f *fakeBookingStore) UpcomingForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return f.ForRequester(ctx, requesterID)
}

func (f *fakeBookingStore) ForProvider(_ context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return f.filter(func(b *models.Booking) bool { return b.ProviderID == providerID }), nil
}

func (f *fakeBookingStore) UpcomingForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return f.ForProvider(ctx, providerID)
}

func (f *fakeBookingStore) All(_ context.Context) ([]models.Booking, error) {
	return f.filter(func(*models.Booking) bool { return true }), nil
}

func (f *fakeBookingStore) filter(match func(*models.Booking) bool) []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.rows {
		if match(b) {
			out = append(out, *b)
		}
	}
	return out
}

type fakeDirectory struct {
	providers []models.Provider
}

func (f *fakeDirectory) ByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	for i := range f.providers {
		if f.providers[i].ID == id {
			return &f.providers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) ActiveOrdered(_ context.Context) ([]models.Provider, error) {
	var out []models.Provider
	for _, p := range f.providers {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	services map[uuid.UUID]*models.Service
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (*models.Service, error) {
	return f.services[id], nil
}

func (f *fakeCatalog) ListActive(_ context.Context) ([]models.Service, error) {
	return nil, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	keys       []string
	recipients []string
	err        error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient, key, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.keys = append(n.keys, key)
	n.recipients = append(n.recipients, recipient)
	return n.err
}

func (n *recordingNotifier) Close() error { return nil }

// fixture wires a BookingService over fakes: one active service, two active
// providers in stable order, clock pinned to 2026-03-10 noon.
type fixture struct {
	store    *fakeBookingStore
	notifier *recordingNotifier
	svc      *BookingService

	service *models.Service
	p1, p2  *models.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	service := &models.Service{ID: uuid.New(), Name: "Haircut", DurationMinutes: 30, Price: 25, Active: true}
	p1 := &models.Provider{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), IdentityID: uuid.New(), Active: true}
	p2 := &models.Provider{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), IdentityID: uuid.New(), Active: true}

	store := newFakeBookingStore()
	notifier := &recordingNotifier{}
	svc := NewBookingService(
		store,
		&fakeDirectory{providers: []models.Provider{*p1, *p2}},
		&fakeCatalog{services: map[uuid.UUID]*models.Service{service.ID: service}},
		notifier,
	)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}

	return &fixture{store: store, notifier: notifier, svc: svc, service: service, p1: p1, p2: p2}
}

func (f *fixture) request(mut ...func(*dto.CreateBookingRequest)) dto.CreateBookingRequest {
	req := dto.CreateBookingRequest{
		ServiceID: f.service.ID.String(),
		Date:      "2026-03-11",
		Time:      "10:00",
	}
	for _, m := range mut {
		m(&req)
	}
	return req
}

func TestCreateBookingAutoAssignsFirstFreeProvider(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()

	b, err := f.svc.Create(context.Background(), requester, f.request())
	require.NoError(t, err)

	assert.Equal(t, f.p1.ID, b.ProviderID)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, requester, b.RequesterID)
	assert.Equal(t, []string{"booking.created"}, f.notifier.keys)
	assert.Equal(t, []string{requester.String()}, f.notifier.recipients)
}

func TestCreateBookingSkipsBusyProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.request())
	require.NoError(t, err)

	// Same slot, different requester: first provider is taken now.
	b, err := f.svc.Create(context.Background(), uuid.New(), f.request())
	require.NoError(t, err)
	assert.Equal(t, f.p2.ID, b.ProviderID)
}

func TestCreateBookingNoProviderFree(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(context.Background(), uuid.New(), f.request())
		require.NoError(t, err)
	}

	_, err := f.svc.Create(context.Background(), uuid.New(), f.request())
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateBookingHonorsPreferredProvider(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ProviderID = f.p2.ID.String() }))
	require.NoError(t, err)

	// Second provider even though the first is free.
	assert.Equal(t, f.p2.ID, b.ProviderID)
}

func TestCreateBookingPreferredProviderBusyNoFallback(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ProviderID = f.p1.ID.String() }))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ProviderID = f.p1.ID.String() }))
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	// No silent reassignment to the free provider.
	assert.Len(t, f.store.rows, 1)
}

func TestCreateBookingPreferredProviderInactive(t *testing.T) {
	f := newFixture(t)
	inactive := models.Provider{ID: uuid.New(), IdentityID: uuid.New(), Active: false}
	f.svc.providers = &fakeDirectory{providers: []models.Provider{inactive}}

	_, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ProviderID = inactive.ID.String() }))
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateBookingPreferredProviderUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ProviderID = uuid.NewString() }))
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestCreateBookingDateBoundaries(t *testing.T) {
	f := newFixture(t)

	// Yesterday is rejected even though the clock says noon.
	_, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.Date = "2026-03-09" }))
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	// Later today is fine: the comparison is date-only.
	_, err = f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.Date = "2026-03-10" }))
	assert.NoError(t, err)
}

func TestCreateBookingInputValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		mut  func(*dto.CreateBookingRequest)
	}{
		{"bad service id", func(r *dto.CreateBookingRequest) { r.ServiceID = "not-a-uuid" }},
		{"bad date", func(r *dto.CreateBookingRequest) { r.Date = "11-03-2026" }},
		{"bad time", func(r *dto.CreateBookingRequest) { r.Time = "10am" }},
		{"bad provider id", func(r *dto.CreateBookingRequest) { r.ProviderID = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), uuid.New(), f.request(tt.mut))
			assert.True(t, apperr.IsKind(err, apperr.Validation), "got %v", err)
		})
	}
}

func TestCreateBookingServiceChecks(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(),
		f.request(func(r *dto.CreateBookingRequest) { r.ServiceID = uuid.NewString() }))
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	f.service.Active = false
	_, err = f.svc.Create(context.Background(), uuid.New(), f.request())
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestCreateBookingRequesterConflict(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()

	_, err := f.svc.Create(context.Background(), requester, f.request())
	require.NoError(t, err)

	// Second provider is free, but the requester cannot be in two places.
	_, err = f.svc.Create(context.Background(), requester, f.request())
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateBookingLostInsertRace(t *testing.T) {
	f := newFixture(t)
	f.store.slotRace = true

	_, err := f.svc.Create(context.Background(), uuid.New(), f.request())
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateBookingSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("broker down")

	b, err := f.svc.Create(context.Background(), uuid.New(), f.request())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, b.Status)
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	f := newFixture(t)
	requester := uuid.New()

	b, err := f.svc.Create(context.Background(), requester, f.request())
	require.NoError(t, err)
	_, err = f.svc.CancelByRequester(context.Background(), b.ID, requester)
	require.NoError(t, err)

	again, err := f.svc.Create(context.Background(), requester, f.request())
	require.NoError(t, err)
	assert.Equal(t, f.p1.ID, again.ProviderID)
}

func (f *fixture) booked(t *testing.T) (*models.Booking, uuid.UUID) {
	t.Helper()
	requester := uuid.New()
	b, err := f.svc.Create(context.Background(), requester, f.request())
	require.NoError(t, err)
	return b, requester
}

func TestConfirmByAssignedProvider(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	got, err := f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Contains(t, f.notifier.keys, "booking.confirmed")
}

func TestConfirmByOtherProviderDenied(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	_, err := f.svc.Confirm(context.Background(), b.ID, f.p2.ID)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))

	stored, _ := f.store.ByID(context.Background(), b.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestConfirmInvalidStates(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	_, err := f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))

	_, err = f.svc.CancelByProvider(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
}

func TestCompleteFromPending(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	// No confirmation step required: a pending booking completes directly.
	got, err := f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestCompleteFromConfirmed(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	_, err := f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)

	got, err := f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestCompleteCancelledRejected(t *testing.T) {
	f := newFixture(t)
	b, requester := f.booked(t)

	_, err := f.svc.CancelByRequester(context.Background(), b.ID, requester)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
}

func TestTerminalStatesStick(t *testing.T) {
	f := newFixture(t)
	b, requester := f.booked(t)

	_, err := f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)

	_, err = f.svc.CancelByRequester(context.Background(), b.ID, requester)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
	_, err = f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
	_, err = f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
}

func TestCancelDispatch(t *testing.T) {
	f := newFixture(t)

	// Requester cancels their own booking.
	b, requester := f.booked(t)
	_, err := f.svc.Cancel(context.Background(), b.ID, requester, uuid.Nil)
	require.NoError(t, err)

	// Assigned provider cancels theirs.
	b2, _ := f.booked(t)
	_, err = f.svc.Cancel(context.Background(), b2.ID, uuid.New(), b2.ProviderID)
	require.NoError(t, err)

	// A stranger cancels nothing.
	b3, _ := f.booked(t)
	_, err = f.svc.Cancel(context.Background(), b3.ID, uuid.New(), uuid.Nil)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	b, requester := f.booked(t)

	_, err := f.svc.CancelByRequester(context.Background(), b.ID, requester)
	require.NoError(t, err)

	_, err = f.svc.CancelByRequester(context.Background(), b.ID, requester)
	assert.True(t, apperr.IsKind(err, apperr.InvalidTransition))
}

func TestDeleteBypassesLifecycle(t *testing.T) {
	f := newFixture(t)
	b, requester := f.booked(t)

	// Even a completed booking can be deleted by its requester.
	_, err := f.svc.Confirm(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), b.ID, b.ProviderID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), b.ID, requester))

	_, err = f.svc.Get(context.Background(), b.ID, requester, uuid.Nil)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestDeleteRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	b, _ := f.booked(t)

	err := f.svc.Delete(context.Background(), b.ID, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
	assert.Len(t, f.store.rows, 1)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	b, requester := f.booked(t)

	_, err := f.svc.Get(context.Background(), b.ID, requester, uuid.Nil)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), b.ID, uuid.New(), b.ProviderID)
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), b.ID, uuid.New(), uuid.Nil)
	assert.True(t, apperr.IsKind(err, apperr.Authorization))
}
