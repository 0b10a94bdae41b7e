package school

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// StudentStatus represents the enrollment state of a student
type StudentStatus string

const (
	StudentStatusActive  StudentStatus = "Active"
	StudentStatusRetired StudentStatus = "Retired" // left the school, excluded from billing
)

// IsValid checks if the status is a valid StudentStatus
func (s StudentStatus) IsValid() bool {
	return s == StudentStatusActive || s == StudentStatusRetired
}

// Student is the enrollment aggregate the billing subsystem bills
// against. Invoice generation and promotion skip Retired students.
type Student struct {
	shared.SchoolAggregateRoot
	Name    string        `json:"name"`
	RollNum string        `json:"roll_num"`
	ClassID uuid.UUID     `json:"class_id"`
	Session string        `json:"session"` // academic session label, e.g. "2025-2026"
	Status  StudentStatus `json:"status"`
}

// NewStudent creates a new active student
func NewStudent(schoolID, classID uuid.UUID, name, rollNum, session string) (*Student, error) {
	name = strings.TrimSpace(name)
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_NAME", "Student name cannot be empty")
	}

	return &Student{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		RollNum:             strings.TrimSpace(rollNum),
		ClassID:             classID,
		Session:             strings.TrimSpace(session),
		Status:              StudentStatusActive,
	}, nil
}

// IsRetired returns true if the student has left the school
func (s *Student) IsRetired() bool {
	return s.Status == StudentStatusRetired
}

// AssignClass moves the student to a different class
func (s *Student) AssignClass(classID uuid.UUID) error {
	if classID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	if s.IsRetired() {
		return shared.NewDomainError("STUDENT_RETIRED", "Cannot reassign a retired student")
	}
	s.ClassID = classID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetSession updates the academic session label
func (s *Student) SetSession(session string) {
	s.Session = strings.TrimSpace(session)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Retire marks the student as having left the school
func (s *Student) Retire() {
	s.Status = StudentStatusRetired
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
