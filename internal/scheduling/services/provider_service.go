package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	provisionMaxAttempts = 20
	provisionRetryDelay  = 500 * time.Millisecond
)

// ProviderService materializes provider profiles from provisioning intents
// and owns the provider directory.
type ProviderService struct {
	store    ProviderStore
	resolver IdentityResolver

	maxAttempts int
	retryDelay  time.Duration
}

// NewProviderService wires the consumer. resolver may be nil when the users
// projection is maintained elsewhere.
func NewProviderService(store ProviderStore, resolver IdentityResolver) *ProviderService {
	return &ProviderService{
		store:       store,
		resolver:    resolver,
		maxAttempts: provisionMaxAttempts,
		retryDelay:  provisionRetryDelay,
	}
}

// Provision creates the provider profile for an identity, tolerating
// at-least-once intent delivery and the window where the identity row has
// not replicated into this store yet. Idempotent: a second call for the
// same identity returns the existing profile unchanged.
//
// Each attempt is its own short-lived unit of work; nothing is locked or
// held open across the backoff waits.
func (s *ProviderService) Provision(ctx context.Context, identityID uuid.UUID, bio string, specialties []string) (*models.Provider, error) {
	if identityID == uuid.Nil {
		return nil, apperr.Validationf("identity_id is required")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		// Fast path for retried and duplicate intents.
		existing, err := s.store.ByIdentity(ctx, identityID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Permanent, "provider lookup failed", err)
		}
		if existing != nil {
			return existing, nil
		}

		p := &models.Provider{
			ID:          uuid.New(),
			IdentityID:  identityID,
			Bio:         bio,
			Specialties: datatypes.NewJSONSlice(specialties),
			Active:      true,
		}

		inserted, err := s.store.Insert(ctx, p)
		if err == nil {
			if inserted {
				slog.Info("provider profile created", "identity_id", identityID, "attempt", attempt)
				return p, nil
			}
			// Conflict policy skipped the insert: a concurrent intent won
			// the race. Loop back to the fast path and return its row.
			continue
		}

		if !errors.Is(err, ErrIdentityNotVisible) {
			return nil, apperr.Wrap(apperr.Permanent, "provider insert failed", err)
		}

		slog.Warn("identity not yet visible, will retry",
			"identity_id", identityID, "attempt", attempt, "max_attempts", s.maxAttempts)

		if s.resolver != nil {
			if err := s.resolver.Sync(ctx, identityID); err != nil {
				slog.Warn("identity sync failed", "identity_id", identityID, "error", err.Error())
			}
		}

		if attempt < s.maxAttempts {
			if err := s.wait(ctx, time.Duration(attempt)*s.retryDelay); err != nil {
				return nil, apperr.Wrap(apperr.Permanent, "provisioning aborted", err)
			}
		}
	}

	slog.Error("provisioning gave up, identity never became visible",
		"identity_id", identityID, "action", "provision_provider")
	return nil, apperr.Permanentf("identity %s not visible after %d attempts", identityID, s.maxAttempts)
}

func (s *ProviderService) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ByIdentity returns the provider profile behind an identity id, nil when
// the identity has none.
func (s *ProviderService) ByIdentity(ctx context.Context, identityID uuid.UUID) (*models.Provider, error) {
	return s.store.ByIdentity(ctx, identityID)
}

func (s *ProviderService) ListActive(ctx context.Context) ([]models.Provider, error) {
	return s.store.ActiveOrdered(ctx)
}

func (s *ProviderService) ListAll(ctx context.Context) ([]models.Provider, error) {
	return s.store.All(ctx)
}

func (s *ProviderService) Get(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	p, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("provider not found")
	}
	return p, nil
}

// Update mutates bio, specialties and the active flag. Nil fields are left
// untouched.
func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, bio *string, specialties []string, active *bool) (*models.Provider, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if bio != nil {
		p.Bio = *bio
	}
	if specialties != nil {
		p.Specialties = datatypes.NewJSONSlice(specialties)
	}
	if active != nil {
		p.Active = *active
	}

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate soft-deletes the provider; existing bookings stay untouched.
func (s *ProviderService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	return s.store.Save(ctx, p)
}
