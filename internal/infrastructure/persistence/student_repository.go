package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *school.Student) error {
	model := models.StudentModelFromDomain(student)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a student by ID, returning nil when absent
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClass finds all students of a class
func (r *GormStudentRepository) FindByClass(ctx context.Context, classID uuid.UUID) ([]school.Student, error) {
	var studentModels []models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("roll_num ASC").
		Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]school.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// FindActiveByClass finds the class's students that have not retired
func (r *GormStudentRepository) FindActiveByClass(ctx context.Context, classID uuid.UUID) ([]school.Student, error) {
	var studentModels []models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("class_id = ? AND status = ?", classID, school.StudentStatusActive).
		Order("roll_num ASC").
		Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]school.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// Ensure GormStudentRepository implements StudentRepository
var _ school.StudentRepository = (*GormStudentRepository)(nil)
