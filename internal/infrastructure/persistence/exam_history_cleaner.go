package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormExamHistoryCleaner implements school.ExamHistoryCleaner using GORM
type GormExamHistoryCleaner struct {
	db *gorm.DB
}

// NewGormExamHistoryCleaner creates a new GormExamHistoryCleaner
func NewGormExamHistoryCleaner(db *gorm.DB) *GormExamHistoryCleaner {
	return &GormExamHistoryCleaner{db: db}
}

// ClearForStudent deletes all exam results recorded for the student
func (c *GormExamHistoryCleaner) ClearForStudent(ctx context.Context, studentID uuid.UUID) error {
	return c.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.ExamResultModel{}).Error
}
