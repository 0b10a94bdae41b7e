package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormDiscountGroupRepository implements DiscountGroupRepository using GORM
type GormDiscountGroupRepository struct {
	db *gorm.DB
}

// NewGormDiscountGroupRepository creates a new GormDiscountGroupRepository
func NewGormDiscountGroupRepository(db *gorm.DB) *GormDiscountGroupRepository {
	return &GormDiscountGroupRepository{db: db}
}

// Save creates or updates a discount group
func (r *GormDiscountGroupRepository) Save(ctx context.Context, group *billing.DiscountGroup) error {
	model := models.DiscountGroupModelFromDomain(group)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a discount group by its ID, returning nil when absent
func (r *GormDiscountGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.DiscountGroup, error) {
	var model models.DiscountGroupModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySchool finds all discount groups of a school
func (r *GormDiscountGroupRepository) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.DiscountGroup, error) {
	var groupModels []models.DiscountGroupModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	groups := make([]billing.DiscountGroup, len(groupModels))
	for i, model := range groupModels {
		groups[i] = *model.ToDomain()
	}
	return groups, nil
}

// FindByNameForSchool finds a group by name, compared case-insensitively
func (r *GormDiscountGroupRepository) FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*billing.DiscountGroup, error) {
	var model models.DiscountGroupModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND LOWER(name) = ?", schoolID, strings.ToLower(strings.TrimSpace(name))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes a discount group. Student assignments keep their
// snapshot and are not touched.
func (r *GormDiscountGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DiscountGroupModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormDiscountGroupRepository implements DiscountGroupRepository
var _ billing.DiscountGroupRepository = (*GormDiscountGroupRepository)(nil)
