package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// FeeHead is a named charge category (tuition, transport, lab, ...).
// Fee structures reference heads by ID and resolve names at read time,
// so renaming a head is reflected everywhere immediately.
type FeeHead struct {
	shared.SchoolAggregateRoot
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewFeeHead creates a new fee head
func NewFeeHead(schoolID uuid.UUID, name, description string) (*FeeHead, error) {
	name = strings.TrimSpace(name)
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FEE_HEAD_NAME", "Fee head name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_FEE_HEAD_NAME", "Fee head name cannot exceed 100 characters")
	}

	return &FeeHead{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		Description:         strings.TrimSpace(description),
	}, nil
}

// Rename changes the head name
func (h *FeeHead) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_FEE_HEAD_NAME", "Fee head name cannot be empty")
	}
	h.Name = name
	h.UpdatedAt = time.Now()
	h.IncrementVersion()
	return nil
}
