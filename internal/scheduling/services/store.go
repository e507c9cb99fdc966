package services

import (
	"context"
	"errors"
	"time"

	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
)

// Sentinel errors the GORM repositories translate Postgres constraint
// failures into. The services only ever see these, never driver errors.
var (
	// ErrIdentityNotVisible: the provider insert hit the foreign key to the
	// replicated users table. Transient by assumption — replication lag and
	// a genuinely missing identity are indistinguishable here.
	ErrIdentityNotVisible = errors.New("identity not visible in scheduling store")

	// ErrSlotTaken: the booking insert hit the partial unique index on
	// (provider_id, date, time_slot).
	ErrSlotTaken = errors.New("slot already booked")
)

// ProviderStore is the persistence boundary of the provisioning consumer.
type ProviderStore interface {
	// ByIdentity returns the provider for an identity id, nil when absent.
	ByIdentity(ctx context.Context, identityID uuid.UUID) (*models.Provider, error)
	// Insert creates the row with an insert-or-ignore on identity_id.
	// Returns false when the conflict policy skipped the insert. Returns
	// ErrIdentityNotVisible when the identity FK cannot be satisfied yet.
	Insert(ctx context.Context, p *models.Provider) (bool, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	ActiveOrdered(ctx context.Context) ([]models.Provider, error)
	All(ctx context.Context) ([]models.Provider, error)
	Save(ctx context.Context, p *models.Provider) error
}

// IdentityResolver pulls an identity from its owning service into the local
// users projection. Best effort: the identity may simply not be readable yet.
type IdentityResolver interface {
	Sync(ctx context.Context, identityID uuid.UUID) error
}

// ProviderDirectory is the slice of ProviderStore the allocator needs.
type ProviderDirectory interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	ActiveOrdered(ctx context.Context) ([]models.Provider, error)
}

// ServiceCatalog resolves bookable services.
type ServiceCatalog interface {
	// Get returns the service by id, nil when absent.
	Get(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListActive(ctx context.Context) ([]models.Service, error)
}

// ServiceStore adds the admin-facing mutations on top of the catalog.
type ServiceStore interface {
	ServiceCatalog
	All(ctx context.Context) ([]models.Service, error)
	Create(ctx context.Context, s *models.Service) error
	Save(ctx context.Context, s *models.Service) error
}

// BookingStore is the persistence boundary of the allocator and the
// lifecycle. InTx runs fn against a transactional view of the same store so
// conflict checks and the insert form one unit.
type BookingStore interface {
	InTx(ctx context.Context, fn func(tx BookingStore) error) error

	ByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Create(ctx context.Context, b *models.Booking) error
	Save(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, b *models.Booking) error

	// RequesterBusy / ProviderBusy report a non-cancelled booking at the slot.
	RequesterBusy(ctx context.Context, requesterID uuid.UUID, date time.Time, slot string) (bool, error)
	ProviderBusy(ctx context.Context, providerID uuid.UUID, date time.Time, slot string) (bool, error)

	ForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error)
	UpcomingForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error)
	ForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error)
	UpcomingForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error)
	All(ctx context.Context) ([]models.Booking, error)
}
