package repository

import (
	"context"

	"github.com/clipbook/backend/internal/scheduling/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRefRepo writes into the replicated users projection.
type IdentityRefRepo struct {
	db *gorm.DB
}

func NewIdentityRefRepo(db *gorm.DB) *IdentityRefRepo {
	return &IdentityRefRepo{db: db}
}

// Upsert inserts the projection row, ignoring duplicates. The projection is
// append-only from this service's point of view.
func (r *IdentityRefRepo) Upsert(ctx context.Context, ref *models.IdentityRef) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(ref).Error
}
