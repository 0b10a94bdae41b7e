package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
)

// DiscountService manages discount groups and student assignments
type DiscountService struct {
	groupRepo    billing.DiscountGroupRepository
	discountRepo billing.StudentDiscountRepository
}

// NewDiscountService creates a new DiscountService
func NewDiscountService(groupRepo billing.DiscountGroupRepository, discountRepo billing.StudentDiscountRepository) *DiscountService {
	return &DiscountService{
		groupRepo:    groupRepo,
		discountRepo: discountRepo,
	}
}

// DiscountGroupRequest is the payload for creating or updating a group
type DiscountGroupRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Type        string          `json:"type" binding:"required,oneof=Percentage FixedAmount"`
	Value       decimal.Decimal `json:"value" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
}

// CreateDiscountGroup creates a new discount group. Group names are
// unique per school, compared case-insensitively.
func (s *DiscountService) CreateDiscountGroup(ctx context.Context, schoolID uuid.UUID, req DiscountGroupRequest) (*DiscountGroupResponse, error) {
	existing, err := s.groupRepo.FindByNameForSchool(ctx, schoolID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A discount group with this name already exists")
	}

	group, err := billing.NewDiscountGroup(schoolID, req.Name, billing.DiscountType(req.Type), req.Value, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return toDiscountGroupResponse(group), nil
}

// ListDiscountGroups returns all discount groups of a school
func (s *DiscountService) ListDiscountGroups(ctx context.Context, schoolID uuid.UUID) ([]DiscountGroupResponse, error) {
	groups, err := s.groupRepo.FindBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	responses := make([]DiscountGroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, *toDiscountGroupResponse(&groups[i]))
	}
	return responses, nil
}

// UpdateDiscountGroup updates a group's definition. Existing student
// assignments keep their snapshot and are not touched.
func (s *DiscountService) UpdateDiscountGroup(ctx context.Context, schoolID, groupID uuid.UUID, req DiscountGroupRequest) (*DiscountGroupResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || group.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "Discount group not found")
	}

	duplicate, err := s.groupRepo.FindByNameForSchool(ctx, schoolID, req.Name)
	if err != nil {
		return nil, err
	}
	if duplicate != nil && duplicate.ID != group.ID {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A discount group with this name already exists")
	}

	if err := group.Update(req.Name, billing.DiscountType(req.Type), req.Value, req.Description); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return toDiscountGroupResponse(group), nil
}

// DeleteDiscountGroup removes a group. Assignments created from it keep
// working from their snapshot.
func (s *DiscountService) DeleteDiscountGroup(ctx context.Context, schoolID, groupID uuid.UUID) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil || group.SchoolID != schoolID {
		return shared.NewDomainError("NOT_FOUND", "Discount group not found")
	}
	return s.groupRepo.Delete(ctx, groupID)
}

// AssignDiscountRequest is the payload for assigning a discount to a
// student. Either a group reference or a full custom definition is
// expected.
type AssignDiscountRequest struct {
	StudentID       uuid.UUID       `json:"student_id" binding:"required"`
	DiscountGroupID *uuid.UUID      `json:"discount_group_id"`
	Name            string          `json:"name" binding:"max=100"`
	Type            string          `json:"type" binding:"omitempty,oneof=Percentage FixedAmount"`
	Value           decimal.Decimal `json:"value"`
}

// AssignStudentDiscount assigns a discount to a student. Group-backed
// assignments copy the group's name, type and value as a snapshot.
func (s *DiscountService) AssignStudentDiscount(ctx context.Context, schoolID uuid.UUID, req AssignDiscountRequest) (*StudentDiscountResponse, error) {
	var discount *billing.StudentDiscount
	var err error

	if req.DiscountGroupID != nil {
		group, ferr := s.groupRepo.FindByID(ctx, *req.DiscountGroupID)
		if ferr != nil {
			return nil, ferr
		}
		if group == nil || group.SchoolID != schoolID {
			return nil, shared.NewDomainError("NOT_FOUND", "Discount group not found")
		}
		discount, err = billing.NewStudentDiscountFromGroup(schoolID, req.StudentID, group)
	} else {
		discount, err = billing.NewCustomStudentDiscount(schoolID, req.StudentID, req.Name, billing.DiscountType(req.Type), req.Value)
	}
	if err != nil {
		return nil, err
	}

	if err := s.discountRepo.Save(ctx, discount); err != nil {
		return nil, err
	}
	return toStudentDiscountResponse(discount), nil
}

// ListActiveDiscounts returns a student's active discounts
func (s *DiscountService) ListActiveDiscounts(ctx context.Context, studentID uuid.UUID) ([]StudentDiscountResponse, error) {
	discounts, err := s.discountRepo.FindActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]StudentDiscountResponse, 0, len(discounts))
	for i := range discounts {
		responses = append(responses, *toStudentDiscountResponse(&discounts[i]))
	}
	return responses, nil
}

// RemoveStudentDiscount deletes a student discount assignment
func (s *DiscountService) RemoveStudentDiscount(ctx context.Context, schoolID, discountID uuid.UUID) error {
	discount, err := s.discountRepo.FindByID(ctx, discountID)
	if err != nil {
		return err
	}
	if discount == nil || discount.SchoolID != schoolID {
		return shared.NewDomainError("NOT_FOUND", "Student discount not found")
	}
	return s.discountRepo.Delete(ctx, discountID)
}
