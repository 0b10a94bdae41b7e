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

// GormStudentDiscountRepository implements StudentDiscountRepository using GORM
type GormStudentDiscountRepository struct {
	db *gorm.DB
}

// NewGormStudentDiscountRepository creates a new GormStudentDiscountRepository
func NewGormStudentDiscountRepository(db *gorm.DB) *GormStudentDiscountRepository {
	return &GormStudentDiscountRepository{db: db}
}

// Save creates or updates a student discount
func (r *GormStudentDiscountRepository) Save(ctx context.Context, discount *billing.StudentDiscount) error {
	model := models.StudentDiscountModelFromDomain(discount)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a student discount by its ID, returning nil when absent
func (r *GormStudentDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.StudentDiscount, error) {
	var model models.StudentDiscountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds all discounts ever assigned to a student
func (r *GormStudentDiscountRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentDiscount, error) {
	var discountModels []models.StudentDiscountModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&discountModels).Error; err != nil {
		return nil, err
	}
	discounts := make([]billing.StudentDiscount, len(discountModels))
	for i, model := range discountModels {
		discounts[i] = *model.ToDomain()
	}
	return discounts, nil
}

// FindActiveByStudent finds the student's currently active discounts
func (r *GormStudentDiscountRepository) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentDiscount, error) {
	var discountModels []models.StudentDiscountModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, billing.DiscountStatusActive).
		Order("created_at ASC").
		Find(&discountModels).Error; err != nil {
		return nil, err
	}
	discounts := make([]billing.StudentDiscount, len(discountModels))
	for i, model := range discountModels {
		discounts[i] = *model.ToDomain()
	}
	return discounts, nil
}

// Delete removes a student discount
func (r *GormStudentDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentDiscountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStudentDiscountRepository implements StudentDiscountRepository
var _ billing.StudentDiscountRepository = (*GormStudentDiscountRepository)(nil)
