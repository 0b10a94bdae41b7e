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

// GormBalancePresetRepository implements BalancePresetRepository using GORM
type GormBalancePresetRepository struct {
	db *gorm.DB
}

// NewGormBalancePresetRepository creates a new GormBalancePresetRepository
func NewGormBalancePresetRepository(db *gorm.DB) *GormBalancePresetRepository {
	return &GormBalancePresetRepository{db: db}
}

// Save creates or updates a balance preset
func (r *GormBalancePresetRepository) Save(ctx context.Context, preset *billing.BalancePreset) error {
	model := models.BalancePresetModelFromDomain(preset)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a preset by its ID, returning nil when absent
func (r *GormBalancePresetRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BalancePreset, error) {
	var model models.BalancePresetModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySchool finds all presets of a school
func (r *GormBalancePresetRepository) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.BalancePreset, error) {
	var presetModels []models.BalancePresetModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&presetModels).Error; err != nil {
		return nil, err
	}
	presets := make([]billing.BalancePreset, len(presetModels))
	for i, model := range presetModels {
		presets[i] = *model.ToDomain()
	}
	return presets, nil
}

// FindByNameForSchool finds a preset by name, compared case-insensitively
func (r *GormBalancePresetRepository) FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*billing.BalancePreset, error) {
	var model models.BalancePresetModel
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

// Delete removes a balance preset
func (r *GormBalancePresetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BalancePresetModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBalancePresetRepository implements BalancePresetRepository
var _ billing.BalancePresetRepository = (*GormBalancePresetRepository)(nil)
