package school

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// Class is a school class/section. The billing subsystem keys fee
// structures and invoice generation off the class.
type Class struct {
	shared.SchoolAggregateRoot
	Name    string `json:"name"`
	Section string `json:"section"`
}

// NewClass creates a new class
func NewClass(schoolID uuid.UUID, name, section string) (*Class, error) {
	name = strings.TrimSpace(name)
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CLASS_NAME", "Class name cannot be empty")
	}

	return &Class{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		Section:             strings.TrimSpace(section),
	}, nil
}
