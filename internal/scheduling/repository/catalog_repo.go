package repository

import (
	"context"
	"errors"

	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepo implements services.ServiceStore on Postgres.
type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var s models.Service
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepo) ListActive(ctx context.Context) ([]models.Service, error) {
	var list []models.Service
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepo) All(ctx context.Context) ([]models.Service, error) {
	var list []models.Service
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepo) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *CatalogRepo) Save(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}
