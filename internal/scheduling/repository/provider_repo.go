package repository

import (
	"context"
	"errors"

	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/clipbook/backend/internal/scheduling/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// ProviderRepo implements services.ProviderStore on Postgres.
type ProviderRepo struct {
	db *gorm.DB
}

func NewProviderRepo(db *gorm.DB) *ProviderRepo {
	return &ProviderRepo{db: db}
}

func (r *ProviderRepo) ByIdentity(ctx context.Context, identityID uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert is an insert-or-ignore on identity_id, so concurrent provisioning
// intents for the same identity cannot create two rows. A foreign key
// failure against the users projection comes back as ErrIdentityNotVisible.
func (r *ProviderRepo) Insert(ctx context.Context, p *models.Provider) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(res.Error, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, services.ErrIdentityNotVisible
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProviderRepo) ByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	err := r.db.WithContext(ctx).Preload("Identity").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveOrdered returns active providers in stable id order. The allocator's
// first-fit walk depends on this ordering being deterministic.
func (r *ProviderRepo) ActiveOrdered(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	err := r.db.WithContext(ctx).
		Preload("Identity").
		Where("active = ?", true).
		Order("id ASC").
		Find(&providers).Error
	return providers, err
}

func (r *ProviderRepo) All(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	err := r.db.WithContext(ctx).Preload("Identity").Order("id ASC").Find(&providers).Error
	return providers, err
}

func (r *ProviderRepo) Save(ctx context.Context, p *models.Provider) error {
	return r.db.WithContext(ctx).Save(p).Error
}
