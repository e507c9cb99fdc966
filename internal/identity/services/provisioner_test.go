package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvisioner(url string) *Provisioner {
	p := NewProvisioner(url, 5*time.Millisecond, time.Second)
	p.retryDelay = 5 * time.Millisecond
	return p
}

func TestProvisionerDeliversIntent(t *testing.T) {
	got := make(chan provisionRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/providers", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req provisionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got <- req
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := testProvisioner(srv.URL)
	defer p.Shutdown()

	id := uuid.New()
	p.ProviderCreated(ProviderCreatedEvent{
		IdentityID:  id,
		Bio:         "Fades and classic cuts",
		Specialties: []string{"fade", "beard"},
	})

	select {
	case req := <-got:
		assert.Equal(t, id, req.IdentityID)
		assert.Equal(t, "Fades and classic cuts", req.Bio)
		assert.Equal(t, []string{"fade", "beard"}, req.Specialties)
	case <-time.After(2 * time.Second):
		t.Fatal("intent was never delivered")
	}
}

func TestProvisionerRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := testProvisioner(srv.URL)
	p.ProviderCreated(ProviderCreatedEvent{IdentityID: uuid.New()})
	p.Shutdown() // waits for the delivery goroutine

	assert.Equal(t, int32(3), calls.Load())
}

func TestProvisionerGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := testProvisioner(srv.URL)
	p.ProviderCreated(ProviderCreatedEvent{IdentityID: uuid.New()})
	p.Shutdown()

	// Exhausts exactly maxAttempts and stops. The failure never reaches the
	// caller: ProviderCreated has no error to return by construction.
	assert.Equal(t, int32(3), calls.Load())
}

func TestProvisionerWaitsBeforeFirstAttempt(t *testing.T) {
	received := make(chan time.Time, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- time.Now()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := NewProvisioner(srv.URL, 100*time.Millisecond, time.Second)
	defer p.Shutdown()

	start := time.Now()
	p.ProviderCreated(ProviderCreatedEvent{IdentityID: uuid.New()})

	select {
	case at := <-received:
		assert.GreaterOrEqual(t, at.Sub(start), 100*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("intent was never delivered")
	}
}

func TestProvisionerShutdownAbortsPendingDelivery(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := NewProvisioner(srv.URL, 10*time.Second, time.Second)
	p.ProviderCreated(ProviderCreatedEvent{IdentityID: uuid.New()})

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not interrupt the initial delay")
	}
	assert.Equal(t, int32(0), calls.Load())
}
