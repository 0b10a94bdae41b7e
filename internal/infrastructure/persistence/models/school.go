package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/school"
)

// StudentModel is the persistence model for the Student aggregate root.
type StudentModel struct {
	SchoolAggregateModel
	Name    string               `gorm:"type:varchar(200);not null"`
	RollNum string               `gorm:"type:varchar(50);not null;index"`
	ClassID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Session string               `gorm:"type:varchar(20)"`
	Status  school.StudentStatus `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *school.Student {
	return &school.Student{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		Name:                m.Name,
		RollNum:             m.RollNum,
		ClassID:             m.ClassID,
		Session:             m.Session,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *school.Student) {
	m.FromDomainSchoolAggregateRoot(s.SchoolAggregateRoot)
	m.Name = s.Name
	m.RollNum = s.RollNum
	m.ClassID = s.ClassID
	m.Session = s.Session
	m.Status = s.Status
}

// StudentModelFromDomain creates a new persistence model from a domain Student.
func StudentModelFromDomain(s *school.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// ClassModel is the persistence model for the Class aggregate root.
type ClassModel struct {
	SchoolAggregateModel
	Name    string `gorm:"type:varchar(100);not null"`
	Section string `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ClassModel) TableName() string {
	return "classes"
}

// ToDomain converts the persistence model to a domain Class entity.
func (m *ClassModel) ToDomain() *school.Class {
	return &school.Class{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		Name:                m.Name,
		Section:             m.Section,
	}
}

// FromDomain populates the persistence model from a domain Class entity.
func (m *ClassModel) FromDomain(c *school.Class) {
	m.FromDomainSchoolAggregateRoot(c.SchoolAggregateRoot)
	m.Name = c.Name
	m.Section = c.Section
}

// ClassModelFromDomain creates a new persistence model from a domain Class.
func ClassModelFromDomain(c *school.Class) *ClassModel {
	m := &ClassModel{}
	m.FromDomain(c)
	return m
}

// ExamResultModel is the persistence model for per-student exam marks.
// Rows are deleted wholesale when a promotion clears exam history, so
// no domain aggregate maps onto it.
type ExamResultModel struct {
	SchoolAggregateModel
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subject       string          `gorm:"type:varchar(100);not null"`
	MarksObtained decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	ExamDate      *time.Time
}

// TableName returns the table name for GORM
func (ExamResultModel) TableName() string {
	return "exam_results"
}
