package services

import (
	"context"
	"testing"

	"github.com/clipbook/backend/internal/apperr"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServiceStore struct {
	rows map[uuid.UUID]*models.Service
}

func newFakeServiceStore() *fakeServiceStore {
	return &fakeServiceStore{rows: make(map[uuid.UUID]*models.Service)}
}

func (f *fakeServiceStore) Get(_ context.Context, id uuid.UUID) (*models.Service, error) {
	return f.rows[id], nil
}

func (f *fakeServiceStore) ListActive(_ context.Context) ([]models.Service, error) {
	var out []models.Service
	for _, s := range f.rows {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeServiceStore) All(_ context.Context) ([]models.Service, error) {
	var out []models.Service
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeServiceStore) Create(_ context.Context, s *models.Service) error {
	f.rows[s.ID] = s
	return nil
}

func (f *fakeServiceStore) Save(_ context.Context, s *models.Service) error {
	f.rows[s.ID] = s
	return nil
}

func TestCatalogCreateValidation(t *testing.T) {
	svc := NewCatalogService(newFakeServiceStore())

	tests := []struct {
		name     string
		svcName  string
		duration int
		price    float64
	}{
		{"empty name", "  ", 30, 10},
		{"zero duration", "Haircut", 0, 10},
		{"negative price", "Haircut", 30, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.svcName, "", tt.duration, tt.price)
			assert.True(t, apperr.IsKind(err, apperr.Validation))
		})
	}
}

func TestCatalogCreateAndDeactivate(t *testing.T) {
	store := newFakeServiceStore()
	svc := NewCatalogService(store)

	created, err := svc.Create(context.Background(), " Haircut ", "Classic cut", 30, 25)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", created.Name)
	assert.True(t, created.Active)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCatalogGetUnknown(t *testing.T) {
	svc := NewCatalogService(newFakeServiceStore())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
