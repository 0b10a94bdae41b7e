package billing

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// BalancePreset is a named opening-balance label operators pick from
// when onboarding students mid-session ("Carried from 2025", "Admission
// waiver"). Names are unique per school, case-insensitively.
type BalancePreset struct {
	shared.SchoolAggregateRoot
	Name string `json:"name"`
}

// NewBalancePreset creates a new balance preset
func NewBalancePreset(schoolID uuid.UUID, name string) (*BalancePreset, error) {
	name = strings.TrimSpace(name)
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRESET_NAME", "Preset name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PRESET_NAME", "Preset name cannot exceed 100 characters")
	}

	return &BalancePreset{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
	}, nil
}
