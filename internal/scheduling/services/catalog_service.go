package services

import (
	"context"
	"strings"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
)

// CatalogService manages the bookable service catalog.
type CatalogService struct {
	store ServiceStore
}

func NewCatalogService(store ServiceStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) ListActive(ctx context.Context) ([]models.Service, error) {
	return s.store.ListActive(ctx)
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Service, error) {
	return s.store.All(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	svc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperr.NotFoundf("service not found")
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, name, description string, durationMinutes int, price float64) (*models.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if durationMinutes <= 0 {
		return nil, apperr.Validationf("duration_minutes must be positive")
	}
	if price < 0 {
		return nil, apperr.Validationf("price cannot be negative")
	}

	svc := &models.Service{
		ID:              uuid.New(),
		Name:            name,
		Description:     description,
		DurationMinutes: durationMinutes,
		Price:           price,
		Active:          true,
	}
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	svc.Active = false
	return s.store.Save(ctx, svc)
}
