package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

func TestUpsertFeeStructure(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()
	classID := uuid.New()
	headID := uuid.New()

	req := UpsertFeeStructureRequest{
		ClassID: classID,
		Lines:   []FeeStructureLineRequest{{FeeHeadID: headID, Amount: decimal.NewFromInt(2000)}},
		LateFee: decimal.NewFromInt(100),
		DueDay:  15,
	}

	t.Run("creates a structure for a class without one", func(t *testing.T) {
		headRepo := new(mockFeeHeadRepo)
		structureRepo := new(mockFeeStructureRepo)
		svc := NewFeeCatalogService(headRepo, structureRepo)

		head, err := billing.NewFeeHead(schoolID, "Tuition", "")
		require.NoError(t, err)
		head.ID = headID

		structureRepo.On("FindByClass", ctx, classID).Return(nil, nil)
		structureRepo.On("Save", ctx, mock.AnythingOfType("*billing.FeeStructure")).Return(nil)
		headRepo.On("FindByIDs", ctx, []uuid.UUID{headID}).Return([]billing.FeeHead{*head}, nil)

		resp, err := svc.UpsertFeeStructure(ctx, schoolID, req)
		require.NoError(t, err)
		assert.Equal(t, 15, resp.DueDay)
		assert.Equal(t, int64(2000), resp.CurrentFee.IntPart())
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "Tuition", resp.Lines[0].HeadName)
	})

	t.Run("merges into the existing structure keeping its identity", func(t *testing.T) {
		headRepo := new(mockFeeHeadRepo)
		structureRepo := new(mockFeeStructureRepo)
		svc := NewFeeCatalogService(headRepo, structureRepo)

		existing, err := billing.NewFeeStructure(schoolID, classID, billing.FeeLines{
			{FeeHeadID: uuid.New(), Amount: decimal.NewFromInt(900)},
		}, valueobject.ZeroPKR(), 10)
		require.NoError(t, err)
		existingID := existing.ID

		structureRepo.On("FindByClass", ctx, classID).Return(existing, nil)
		structureRepo.On("Save", ctx, existing).Return(nil)
		headRepo.On("FindByIDs", ctx, []uuid.UUID{headID}).Return([]billing.FeeHead{}, nil)

		resp, err := svc.UpsertFeeStructure(ctx, schoolID, req)
		require.NoError(t, err)
		assert.Equal(t, existingID, resp.ID)
		assert.Equal(t, int64(2000), resp.CurrentFee.IntPart())
		assert.Equal(t, 15, resp.DueDay)
	})

	t.Run("zero due day falls back to the default", func(t *testing.T) {
		headRepo := new(mockFeeHeadRepo)
		structureRepo := new(mockFeeStructureRepo)
		svc := NewFeeCatalogService(headRepo, structureRepo)

		structureRepo.On("FindByClass", ctx, classID).Return(nil, nil)
		structureRepo.On("Save", ctx, mock.AnythingOfType("*billing.FeeStructure")).Return(nil)
		headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)

		noDueDay := req
		noDueDay.DueDay = 0
		resp, err := svc.UpsertFeeStructure(ctx, schoolID, noDueDay)
		require.NoError(t, err)
		assert.Equal(t, billing.DefaultDueDay, resp.DueDay)
	})
}

func TestGetFeeStructure(t *testing.T) {
	ctx := context.Background()
	classID := uuid.New()

	t.Run("missing structure is not found", func(t *testing.T) {
		structureRepo := new(mockFeeStructureRepo)
		svc := NewFeeCatalogService(new(mockFeeHeadRepo), structureRepo)

		structureRepo.On("FindByClass", ctx, classID).Return(nil, nil)

		_, err := svc.GetFeeStructure(ctx, classID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No fee structure")
	})

	t.Run("dangling head references resolve to empty names", func(t *testing.T) {
		headRepo := new(mockFeeHeadRepo)
		structureRepo := new(mockFeeStructureRepo)
		svc := NewFeeCatalogService(headRepo, structureRepo)

		danglingID := uuid.New()
		structure, err := billing.NewFeeStructure(uuid.New(), classID, billing.FeeLines{
			{FeeHeadID: danglingID, Amount: decimal.NewFromInt(500)},
		}, valueobject.ZeroPKR(), 10)
		require.NoError(t, err)

		structureRepo.On("FindByClass", ctx, classID).Return(structure, nil)
		headRepo.On("FindByIDs", ctx, []uuid.UUID{danglingID}).Return([]billing.FeeHead{}, nil)

		resp, err := svc.GetFeeStructure(ctx, classID)
		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Empty(t, resp.Lines[0].HeadName)
	})
}

func TestCreateFeeHead(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()

	t.Run("creates and returns the head", func(t *testing.T) {
		headRepo := new(mockFeeHeadRepo)
		svc := NewFeeCatalogService(headRepo, new(mockFeeStructureRepo))

		headRepo.On("Save", ctx, mock.AnythingOfType("*billing.FeeHead")).Return(nil)

		resp, err := svc.CreateFeeHead(ctx, schoolID, CreateFeeHeadRequest{Name: "Transport"})
		require.NoError(t, err)
		assert.Equal(t, "Transport", resp.Name)
		assert.Equal(t, schoolID, resp.SchoolID)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		svc := NewFeeCatalogService(new(mockFeeHeadRepo), new(mockFeeStructureRepo))
		_, err := svc.CreateFeeHead(ctx, schoolID, CreateFeeHeadRequest{Name: "   "})
		assert.Error(t, err)
	})
}
