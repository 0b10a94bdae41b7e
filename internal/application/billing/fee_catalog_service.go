package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// FeeCatalogService manages fee heads and per-class fee structures
type FeeCatalogService struct {
	headRepo      billing.FeeHeadRepository
	structureRepo billing.FeeStructureRepository
}

// NewFeeCatalogService creates a new FeeCatalogService
func NewFeeCatalogService(headRepo billing.FeeHeadRepository, structureRepo billing.FeeStructureRepository) *FeeCatalogService {
	return &FeeCatalogService{
		headRepo:      headRepo,
		structureRepo: structureRepo,
	}
}

// CreateFeeHeadRequest is the payload for creating a fee head
type CreateFeeHeadRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateFeeHead creates a new fee head for a school
func (s *FeeCatalogService) CreateFeeHead(ctx context.Context, schoolID uuid.UUID, req CreateFeeHeadRequest) (*FeeHeadResponse, error) {
	head, err := billing.NewFeeHead(schoolID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.headRepo.Save(ctx, head); err != nil {
		return nil, err
	}
	return toFeeHeadResponse(head), nil
}

// ListFeeHeads returns all fee heads of a school
func (s *FeeCatalogService) ListFeeHeads(ctx context.Context, schoolID uuid.UUID) ([]FeeHeadResponse, error) {
	heads, err := s.headRepo.FindBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	responses := make([]FeeHeadResponse, 0, len(heads))
	for i := range heads {
		responses = append(responses, *toFeeHeadResponse(&heads[i]))
	}
	return responses, nil
}

// DeleteFeeHead removes a fee head. Structures referencing the head are
// not guarded, their lines keep the dangling ID and resolve to an empty
// name until edited.
func (s *FeeCatalogService) DeleteFeeHead(ctx context.Context, schoolID, id uuid.UUID) error {
	head, err := s.headRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if head == nil || head.SchoolID != schoolID {
		return shared.NewDomainError("NOT_FOUND", "Fee head not found")
	}
	return s.headRepo.Delete(ctx, id)
}

// FeeStructureLineRequest is one (head, amount) pair in an upsert
type FeeStructureLineRequest struct {
	FeeHeadID uuid.UUID       `json:"fee_head_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// UpsertFeeStructureRequest is the payload for creating or replacing a
// class's fee structure
type UpsertFeeStructureRequest struct {
	ClassID uuid.UUID                 `json:"class_id" binding:"required"`
	Lines   []FeeStructureLineRequest `json:"lines" binding:"required,min=1,dive"`
	LateFee decimal.Decimal           `json:"late_fee"`
	DueDay  int                       `json:"due_day" binding:"omitempty,min=1,max=31"`
}

// UpsertFeeStructure creates the class's fee structure or merges into
// the existing one. The structure ID is stable across updates.
func (s *FeeCatalogService) UpsertFeeStructure(ctx context.Context, schoolID uuid.UUID, req UpsertFeeStructureRequest) (*FeeStructureResponse, error) {
	lines := make(billing.FeeLines, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, billing.FeeLine{FeeHeadID: l.FeeHeadID, Amount: l.Amount})
	}
	lateFee := valueobject.NewMoneyPKR(req.LateFee)

	existing, err := s.structureRepo.FindByClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	var structure *billing.FeeStructure
	if existing != nil {
		if existing.SchoolID != schoolID {
			return nil, shared.NewDomainError("FORBIDDEN", "Fee structure belongs to another school")
		}
		if err := existing.Merge(lines, lateFee, req.DueDay); err != nil {
			return nil, err
		}
		structure = existing
	} else {
		structure, err = billing.NewFeeStructure(schoolID, req.ClassID, lines, lateFee, req.DueDay)
		if err != nil {
			return nil, err
		}
	}

	if err := s.structureRepo.Save(ctx, structure); err != nil {
		return nil, err
	}
	return s.resolveStructure(ctx, structure)
}

// GetFeeStructure returns the class's fee structure with head names
// resolved from the catalog
func (s *FeeCatalogService) GetFeeStructure(ctx context.Context, classID uuid.UUID) (*FeeStructureResponse, error) {
	structure, err := s.structureRepo.FindByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No fee structure defined for this class")
	}
	return s.resolveStructure(ctx, structure)
}

func (s *FeeCatalogService) resolveStructure(ctx context.Context, structure *billing.FeeStructure) (*FeeStructureResponse, error) {
	ids := make([]uuid.UUID, 0, len(structure.Lines))
	for _, line := range structure.Lines {
		ids = append(ids, line.FeeHeadID)
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		heads, err := s.headRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range heads {
			names[heads[i].ID] = heads[i].Name
		}
	}

	return toFeeStructureResponse(structure, names), nil
}
