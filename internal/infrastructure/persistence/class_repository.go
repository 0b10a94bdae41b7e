package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormClassRepository implements ClassRepository using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// Save creates or updates a class
func (r *GormClassRepository) Save(ctx context.Context, class *school.Class) error {
	model := models.ClassModelFromDomain(class)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a class by ID, returning nil when absent
func (r *GormClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Class, error) {
	var model models.ClassModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySchool finds all classes of a school
func (r *GormClassRepository) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]school.Class, error) {
	var classModels []models.ClassModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC, section ASC").
		Find(&classModels).Error; err != nil {
		return nil, err
	}
	classes := make([]school.Class, len(classModels))
	for i, model := range classModels {
		classes[i] = *model.ToDomain()
	}
	return classes, nil
}

// Ensure GormClassRepository implements ClassRepository
var _ school.ClassRepository = (*GormClassRepository)(nil)
