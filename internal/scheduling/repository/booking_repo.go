package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// BookingRepo implements services.BookingStore on Postgres.
type BookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// InTx runs fn against a repo bound to one database transaction.
func (r *BookingRepo) InTx(ctx context.Context, fn func(tx services.BookingStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepo{db: tx})
	})
}

func (r *BookingRepo) ByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the booking. The partial unique index on
// (provider_id, date, time_slot) turns a lost race into ErrSlotTaken.
func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return services.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *BookingRepo) Save(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingRepo) Delete(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Delete(b).Error
}

func (r *BookingRepo) RequesterBusy(ctx context.Context, requesterID uuid.UUID, date time.Time, slot string) (bool, error) {
	return r.busy(ctx, "requester_id", requesterID, date, slot)
}

func (r *BookingRepo) ProviderBusy(ctx context.Context, providerID uuid.UUID, date time.Time, slot string) (bool, error) {
	return r.busy(ctx, "provider_id", providerID, date, slot)
}

func (r *BookingRepo) busy(ctx context.Context, column string, id uuid.UUID, date time.Time, slot string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where(column+" = ? AND date = ? AND time_slot = ? AND status <> ?",
			id, date, slot, models.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *BookingRepo) ForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, r.db.Where("requester_id = ?", requesterID))
}

func (r *BookingRepo) UpcomingForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, r.db.Where("requester_id = ? AND date >= CURRENT_DATE", requesterID))
}

func (r *BookingRepo) ForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, r.db.Where("provider_id = ?", providerID))
}

func (r *BookingRepo) UpcomingForProvider(ctx context.Context, providerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, r.db.Where("provider_id = ? AND date >= CURRENT_DATE", providerID))
}

func (r *BookingRepo) All(ctx context.Context) ([]models.Booking, error) {
	return r.list(ctx, r.db)
}

func (r *BookingRepo) list(ctx context.Context, q *gorm.DB) ([]models.Booking, error) {
	var bookings []models.Booking
	err := q.WithContext(ctx).Order("date ASC, time_slot ASC").Find(&bookings).Error
	return bookings, err
}
