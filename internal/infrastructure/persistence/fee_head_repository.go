package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormFeeHeadRepository implements FeeHeadRepository using GORM
type GormFeeHeadRepository struct {
	db *gorm.DB
}

// NewGormFeeHeadRepository creates a new GormFeeHeadRepository
func NewGormFeeHeadRepository(db *gorm.DB) *GormFeeHeadRepository {
	return &GormFeeHeadRepository{db: db}
}

// Save creates or updates a fee head
func (r *GormFeeHeadRepository) Save(ctx context.Context, head *billing.FeeHead) error {
	model := models.FeeHeadModelFromDomain(head)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a fee head by its ID, returning nil when absent
func (r *GormFeeHeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeHead, error) {
	var model models.FeeHeadModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySchool finds all fee heads of a school
func (r *GormFeeHeadRepository) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.FeeHead, error) {
	var headModels []models.FeeHeadModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&headModels).Error; err != nil {
		return nil, err
	}
	heads := make([]billing.FeeHead, len(headModels))
	for i, model := range headModels {
		heads[i] = *model.ToDomain()
	}
	return heads, nil
}

// FindByIDs finds fee heads by a set of IDs. Missing IDs are simply
// absent from the result.
func (r *GormFeeHeadRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.FeeHead, error) {
	if len(ids) == 0 {
		return []billing.FeeHead{}, nil
	}
	var headModels []models.FeeHeadModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&headModels).Error; err != nil {
		return nil, err
	}
	heads := make([]billing.FeeHead, len(headModels))
	for i, model := range headModels {
		heads[i] = *model.ToDomain()
	}
	return heads, nil
}

// Delete removes a fee head
func (r *GormFeeHeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FeeHeadModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormFeeHeadRepository implements FeeHeadRepository
var _ billing.FeeHeadRepository = (*GormFeeHeadRepository)(nil)
