package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// DiscountType determines how a discount value is interpreted
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "Percentage"  // value is a percent of the current fee
	DiscountTypeFixedAmount DiscountType = "FixedAmount" // value is an absolute amount
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixedAmount
}

// String returns the string representation of DiscountType
func (t DiscountType) String() string {
	return string(t)
}

// DiscountStatus represents the lifecycle state of a student discount
type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "Active"
	DiscountStatusInactive DiscountStatus = "Inactive"
)

// IsValid checks if the discount status is valid
func (s DiscountStatus) IsValid() bool {
	return s == DiscountStatusActive || s == DiscountStatusInactive
}

// DiscountGroup is a reusable named discount template (sibling discount,
// staff child, scholarship tier). Group names are unique per school,
// case-insensitively.
type DiscountGroup struct {
	shared.SchoolAggregateRoot
	Name        string          `json:"name"`
	Type        DiscountType    `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

// NewDiscountGroup creates a new discount group
func NewDiscountGroup(schoolID uuid.UUID, name string, discountType DiscountType, value decimal.Decimal, description string) (*DiscountGroup, error) {
	name = strings.TrimSpace(name)
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_GROUP_NAME", "Discount group name cannot be empty")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be Percentage or FixedAmount")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value cannot be negative")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	return &DiscountGroup{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		Type:                discountType,
		Value:               value,
		Description:         strings.TrimSpace(description),
	}, nil
}

// Update changes the group definition. Existing student assignments keep
// the snapshot taken at assignment time and are not affected.
func (g *DiscountGroup) Update(name string, discountType DiscountType, value decimal.Decimal, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_GROUP_NAME", "Discount group name cannot be empty")
	}
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be Percentage or FixedAmount")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value cannot be negative")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	g.Name = name
	g.Type = discountType
	g.Value = value
	g.Description = strings.TrimSpace(description)
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
	return nil
}

// StudentDiscount is a discount assigned to one student. When created
// from a group it snapshots the group's name, type and value, so later
// group edits never change what the student already holds.
type StudentDiscount struct {
	shared.SchoolAggregateRoot
	StudentID       uuid.UUID       `json:"student_id"`
	DiscountGroupID *uuid.UUID      `json:"discount_group_id"` // nil for custom discounts
	Name            string          `json:"name"`
	Type            DiscountType    `json:"type"`
	Value           decimal.Decimal `json:"value"`
	Status          DiscountStatus  `json:"status"`
}

// NewStudentDiscountFromGroup assigns a group discount to a student,
// copying the group definition as a snapshot
func NewStudentDiscountFromGroup(schoolID, studentID uuid.UUID, group *DiscountGroup) (*StudentDiscount, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if group == nil {
		return nil, shared.NewDomainError("INVALID_GROUP", "Discount group is required")
	}

	groupID := group.ID
	return &StudentDiscount{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		StudentID:           studentID,
		DiscountGroupID:     &groupID,
		Name:                group.Name,
		Type:                group.Type,
		Value:               group.Value,
		Status:              DiscountStatusActive,
	}, nil
}

// NewCustomStudentDiscount assigns a one-off discount that is not backed
// by any group. A name is mandatory since there is nothing to copy from.
func NewCustomStudentDiscount(schoolID, studentID uuid.UUID, name string, discountType DiscountType, value decimal.Decimal) (*StudentDiscount, error) {
	name = strings.TrimSpace(name)
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("DISCOUNT_NAME_REQUIRED", "Custom discounts require a name")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be Percentage or FixedAmount")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value cannot be negative")
	}
	if discountType == DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	return &StudentDiscount{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		StudentID:           studentID,
		Name:                name,
		Type:                discountType,
		Value:               value,
		Status:              DiscountStatusActive,
	}, nil
}

// IsActive returns true if the discount currently applies
func (d *StudentDiscount) IsActive() bool {
	return d.Status == DiscountStatusActive
}

// Deactivate marks the discount inactive without deleting the record
func (d *StudentDiscount) Deactivate() {
	d.Status = DiscountStatusInactive
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// AmountAgainst computes the discount amount for the given current fee.
// Percentage discounts apply against the fee, FixedAmount discounts are
// taken as-is. No per-discount cap is applied, the invoice total is
// clamped to zero after all discounts are subtracted.
func (d *StudentDiscount) AmountAgainst(currentFee valueobject.Money) valueobject.Money {
	switch d.Type {
	case DiscountTypePercentage:
		return currentFee.CalculatePercentage(d.Value)
	case DiscountTypeFixedAmount:
		return valueobject.NewMoneyPKR(d.Value)
	default:
		return valueobject.ZeroPKR()
	}
}
