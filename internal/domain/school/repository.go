package school

import (
	"context"

	"github.com/google/uuid"
)

// StudentRepository persists students
type StudentRepository interface {
	Save(ctx context.Context, student *Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindByClass(ctx context.Context, classID uuid.UUID) ([]Student, error)
	// FindActiveByClass returns only students that are not retired
	FindActiveByClass(ctx context.Context, classID uuid.UUID) ([]Student, error)
}

// ClassRepository persists classes
type ClassRepository interface {
	Save(ctx context.Context, class *Class) error
	FindByID(ctx context.Context, id uuid.UUID) (*Class, error)
	FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]Class, error)
}

// ExamHistoryCleaner clears a student's exam records when a promotion
// requests it. The exam subsystem owns the actual data.
type ExamHistoryCleaner interface {
	ClearForStudent(ctx context.Context, studentID uuid.UUID) error
}
