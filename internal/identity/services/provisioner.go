package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProviderCreatedEvent is the immutable payload handed to the provisioner
// once the identity transaction has committed.
type ProviderCreatedEvent struct {
	IdentityID  uuid.UUID
	Bio         string
	Specialties []string
}

type provisionRequest struct {
	IdentityID  uuid.UUID `json:"identity_id"`
	Bio         string    `json:"bio,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
}

// Provisioner delivers provisioning intents to the scheduling service.
// Delivery runs on its own goroutine so a slow or down remote never pins a
// request worker, and a permanent failure never unwinds the identity commit
// that triggered it.
type Provisioner struct {
	client       *http.Client
	baseURL      string
	initialDelay time.Duration
	retryDelay   time.Duration
	maxAttempts  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProvisioner(schedulingURL string, initialDelay, callTimeout time.Duration) *Provisioner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Provisioner{
		client:       &http.Client{Timeout: callTimeout},
		baseURL:      schedulingURL,
		initialDelay: initialDelay,
		retryDelay:   time.Second,
		maxAttempts:  3,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ProviderCreated is the post-commit hook. It must only be called after the
// transaction that created the identity has durably committed; the initial
// delay then gives the scheduling store a head start on observing it.
func (p *Provisioner) ProviderCreated(event ProviderCreatedEvent) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.deliver(event)
	}()
}

func (p *Provisioner) deliver(event ProviderCreatedEvent) {
	if !p.sleep(p.initialDelay) {
		return
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := p.post(event)
		if err == nil {
			slog.Info("provider provisioned in scheduling service",
				"identity_id", event.IdentityID, "attempt", attempt)
			return
		}

		slog.Warn("provisioning delivery failed",
			"identity_id", event.IdentityID, "attempt", attempt,
			"max_attempts", p.maxAttempts, "error", err)

		if attempt < p.maxAttempts {
			if !p.sleep(time.Duration(attempt) * p.retryDelay) {
				return
			}
		}
	}

	// Retries exhausted. The identity stays usable for non-provider actions;
	// an operator re-triggers provisioning via POST /api/providers.
	slog.Error("provisioning permanently failed, provider profile missing",
		"identity_id", event.IdentityID, "action", "provision_provider")
}

func (p *Provisioner) post(event ProviderCreatedEvent) error {
	body, err := json.Marshal(provisionRequest{
		IdentityID:  event.IdentityID,
		Bio:         event.Bio,
		Specialties: event.Specialties,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(p.ctx, http.MethodPost,
		p.baseURL+"/api/providers", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("scheduling service returned status %d", resp.StatusCode)
	}
	return nil
}

// sleep waits d unless the provisioner is shutting down. Returns false on
// shutdown.
func (p *Provisioner) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Shutdown cancels in-flight deliveries and waits for their goroutines.
func (p *Provisioner) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
