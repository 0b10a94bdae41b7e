package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

type invoiceServiceFixture struct {
	invoiceRepo   *mockInvoiceRepo
	structureRepo *mockFeeStructureRepo
	headRepo      *mockFeeHeadRepo
	discountRepo  *mockStudentDiscountRepo
	studentRepo   *mockStudentRepo
	classRepo     *mockClassRepo
	service       *InvoiceService
}

func newInvoiceServiceFixture(now time.Time) *invoiceServiceFixture {
	f := &invoiceServiceFixture{
		invoiceRepo:   new(mockInvoiceRepo),
		structureRepo: new(mockFeeStructureRepo),
		headRepo:      new(mockFeeHeadRepo),
		discountRepo:  new(mockStudentDiscountRepo),
		studentRepo:   new(mockStudentRepo),
		classRepo:     new(mockClassRepo),
	}
	f.service = NewInvoiceService(
		f.invoiceRepo, f.structureRepo, f.headRepo, f.discountRepo, f.studentRepo, f.classRepo,
		WithClock(func() time.Time { return now }),
	)
	return f
}

func buildStructure(t *testing.T, schoolID, classID uuid.UUID, fee, lateFee int64, dueDay int) *billing.FeeStructure {
	t.Helper()
	fs, err := billing.NewFeeStructure(schoolID, classID, billing.FeeLines{
		{FeeHeadID: uuid.New(), Amount: decimal.NewFromInt(fee)},
	}, valueobject.NewMoneyPKRFromInt(lateFee), dueDay)
	require.NoError(t, err)
	return fs
}

func buildStudent(t *testing.T, schoolID, classID uuid.UUID) *school.Student {
	t.Helper()
	st, err := school.NewStudent(schoolID, classID, "Ayesha Khan", "42", "2025-2026")
	require.NoError(t, err)
	return st
}

func TestGenerateInvoices(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()
	classID := uuid.New()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	req := GenerateInvoicesRequest{ClassID: classID, Month: 4, Year: 2026}

	t.Run("first invoice for a student has no arrears", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		f.structureRepo.On("FindByClass", ctx, classID).Return(buildStructure(t, schoolID, classID, 2000, 100, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 4, 2026).Return(false, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.NoError(t, err)
		assert.Equal(t, 1, result.GeneratedCount)
		require.Len(t, result.Invoices, 1)

		inv := result.Invoices[0]
		assert.Equal(t, int64(2000), inv.TotalAmount.IntPart())
		assert.True(t, inv.PreviousArrears.IsZero())
		assert.Equal(t, "Unpaid", inv.Status)
		assert.Equal(t, 10, inv.DueDate.Day())
	})

	t.Run("existing invoice for the period is skipped", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		f.structureRepo.On("FindByClass", ctx, classID).Return(buildStructure(t, schoolID, classID, 2000, 100, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 4, 2026).Return(true, nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.NoError(t, err)
		assert.Equal(t, 0, result.GeneratedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, "No new invoices generated", result.Message)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unpaid history becomes arrears", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		prior, err := billing.NewStudentInvoice(
			schoolID, student.ID, classID, 3, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, prior.ApplyPayment(valueobject.NewMoneyPKRFromInt(500), prior.DueDate, valueobject.ZeroPKR()))

		f.structureRepo.On("FindByClass", ctx, classID).Return(buildStructure(t, schoolID, classID, 2000, 100, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 4, 2026).Return(false, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{*prior}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.NoError(t, err)
		require.Len(t, result.Invoices, 1)
		assert.Equal(t, int64(1500), result.Invoices[0].PreviousArrears.IntPart())
		assert.Equal(t, int64(3500), result.Invoices[0].TotalAmount.IntPart())
	})

	t.Run("credit from overpayment folds into the total", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		prior, err := billing.NewStudentInvoice(
			schoolID, student.ID, classID, 3, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, prior.ApplyPayment(valueobject.NewMoneyPKRFromInt(4500), prior.DueDate, valueobject.ZeroPKR()))

		f.structureRepo.On("FindByClass", ctx, classID).Return(buildStructure(t, schoolID, classID, 2000, 100, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 4, 2026).Return(false, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{*prior}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.NoError(t, err)
		require.Len(t, result.Invoices, 1)
		// 2000 fee - 2500 credit clamps to zero and is born Paid
		assert.True(t, result.Invoices[0].TotalAmount.IsZero())
		assert.Equal(t, "Paid", result.Invoices[0].Status)
	})

	t.Run("breakdown lines carry the head name at generation time", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		head, err := billing.NewFeeHead(schoolID, "Tuition Fee", "")
		require.NoError(t, err)
		fs, err := billing.NewFeeStructure(schoolID, classID, billing.FeeLines{
			{FeeHeadID: head.ID, Amount: decimal.NewFromInt(2000)},
		}, valueobject.NewMoneyPKRFromInt(100), 10)
		require.NoError(t, err)

		f.structureRepo.On("FindByClass", ctx, classID).Return(fs, nil)
		f.headRepo.On("FindByIDs", ctx, []uuid.UUID{head.ID}).Return([]billing.FeeHead{*head}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 4, 2026).Return(false, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.NoError(t, err)
		require.Len(t, result.Invoices, 1)
		require.Len(t, result.Invoices[0].FeeBreakdown, 1)
		line := result.Invoices[0].FeeBreakdown[0]
		assert.Equal(t, head.ID, line.FeeHeadID)
		assert.Equal(t, "Tuition Fee", line.HeadName)
	})

	t.Run("fails when the class has no fee structure", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		f.structureRepo.On("FindByClass", ctx, classID).Return(nil, nil)

		_, err := f.service.GenerateInvoices(ctx, schoolID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No fee structure")
	})

	t.Run("due day clamps to short months", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, classID)

		f.structureRepo.On("FindByClass", ctx, classID).Return(buildStructure(t, schoolID, classID, 2000, 100, 31), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.studentRepo.On("FindActiveByClass", ctx, classID).Return([]school.Student{*student}, nil)
		f.invoiceRepo.On("ExistsForPeriod", ctx, student.ID, 2, 2026).Return(false, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		result, err := f.service.GenerateInvoices(ctx, schoolID, GenerateInvoicesRequest{ClassID: classID, Month: 2, Year: 2026})
		require.NoError(t, err)
		require.Len(t, result.Invoices, 1)
		assert.Equal(t, 28, result.Invoices[0].DueDate.Day())
	})
}

func TestChangeStudentClass(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()
	oldClassID := uuid.New()
	newClassID := uuid.New()
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	newClass := func(t *testing.T) *school.Class {
		c, err := school.NewClass(schoolID, "Grade 6", "B")
		require.NoError(t, err)
		return c
	}

	t.Run("unpaid invoice is regenerated with carry-over", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, oldClassID)

		current, err := billing.NewStudentInvoice(
			schoolID, student.ID, oldClassID, 4, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, current.ApplyPayment(valueobject.NewMoneyPKRFromInt(800), current.DueDate, valueobject.ZeroPKR()))

		f.studentRepo.On("FindByID", ctx, student.ID).Return(student, nil)
		f.classRepo.On("FindByID", ctx, newClassID).Return(newClass(t), nil)
		f.studentRepo.On("Save", ctx, student).Return(nil)
		f.invoiceRepo.On("FindByStudentPeriod", ctx, student.ID, 4, 2026).Return(current, nil)
		f.structureRepo.On("FindByClass", ctx, newClassID).Return(buildStructure(t, schoolID, newClassID, 3000, 150, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{*current}, nil)
		f.discountRepo.On("FindActiveByStudent", ctx, student.ID).Return([]billing.StudentDiscount{}, nil)
		f.invoiceRepo.On("Replace", ctx, current.ID, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		resp, err := f.service.ChangeStudentClass(ctx, schoolID, student.ID, newClassID)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, int64(3000), resp.TotalAmount.IntPart())
		assert.Equal(t, int64(800), resp.PaidAmount.IntPart())
		assert.Equal(t, "Partial", resp.Status)
		assert.Equal(t, newClassID, resp.ClassID)
		assert.NotEqual(t, current.ChallanNumber, resp.ChallanNumber)
		assert.Equal(t, newClassID, student.ClassID)
	})

	t.Run("active discounts reduce the regenerated total", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, oldClassID)

		current, err := billing.NewStudentInvoice(
			schoolID, student.ID, oldClassID, 4, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		discount, err := billing.NewCustomStudentDiscount(schoolID, student.ID, "Sibling", billing.DiscountTypePercentage, decimal.NewFromInt(10))
		require.NoError(t, err)

		f.studentRepo.On("FindByID", ctx, student.ID).Return(student, nil)
		f.classRepo.On("FindByID", ctx, newClassID).Return(newClass(t), nil)
		f.studentRepo.On("Save", ctx, student).Return(nil)
		f.invoiceRepo.On("FindByStudentPeriod", ctx, student.ID, 4, 2026).Return(current, nil)
		f.structureRepo.On("FindByClass", ctx, newClassID).Return(buildStructure(t, schoolID, newClassID, 3000, 150, 10), nil)
		f.headRepo.On("FindByIDs", ctx, mock.Anything).Return([]billing.FeeHead{}, nil)
		f.invoiceRepo.On("FindByStudent", ctx, student.ID).Return([]billing.StudentInvoice{*current}, nil)
		f.discountRepo.On("FindActiveByStudent", ctx, student.ID).Return([]billing.StudentDiscount{*discount}, nil)
		f.invoiceRepo.On("Replace", ctx, current.ID, mock.AnythingOfType("*billing.StudentInvoice")).Return(nil)

		resp, err := f.service.ChangeStudentClass(ctx, schoolID, student.ID, newClassID)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, int64(2700), resp.TotalAmount.IntPart())
		require.Len(t, resp.DiscountBreakdown, 1)
		assert.Equal(t, "Sibling", resp.DiscountBreakdown[0].Name)
	})

	t.Run("paid invoice is left alone", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, oldClassID)

		current, err := billing.NewStudentInvoice(
			schoolID, student.ID, oldClassID, 4, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, current.ApplyPayment(valueobject.NewMoneyPKRFromInt(2000), current.DueDate, valueobject.ZeroPKR()))

		f.studentRepo.On("FindByID", ctx, student.ID).Return(student, nil)
		f.classRepo.On("FindByID", ctx, newClassID).Return(newClass(t), nil)
		f.studentRepo.On("Save", ctx, student).Return(nil)
		f.invoiceRepo.On("FindByStudentPeriod", ctx, student.ID, 4, 2026).Return(current, nil)

		resp, err := f.service.ChangeStudentClass(ctx, schoolID, student.ID, newClassID)
		require.NoError(t, err)
		assert.Nil(t, resp, "class change applies but no invoice is regenerated")
		assert.Equal(t, newClassID, student.ClassID)
		f.invoiceRepo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retired student is rejected", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		student := buildStudent(t, schoolID, oldClassID)
		student.Retire()

		f.studentRepo.On("FindByID", ctx, student.ID).Return(student, nil)

		_, err := f.service.ChangeStudentClass(ctx, schoolID, student.ID, newClassID)
		assert.Error(t, err)
	})
}

func TestPromoteStudents(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()
	oldClassID := uuid.New()
	targetClassID := uuid.New()
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	t.Run("retired students are skipped", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)

		active := buildStudent(t, schoolID, oldClassID)
		retired := buildStudent(t, schoolID, oldClassID)
		retired.Retire()

		target, err := school.NewClass(schoolID, "Grade 7", "A")
		require.NoError(t, err)

		f.classRepo.On("FindByID", ctx, targetClassID).Return(target, nil)
		f.studentRepo.On("FindByID", ctx, active.ID).Return(active, nil)
		f.studentRepo.On("FindByID", ctx, retired.ID).Return(retired, nil)
		f.studentRepo.On("Save", ctx, active).Return(nil)
		f.invoiceRepo.On("FindByStudentPeriod", ctx, active.ID, 4, 2026).Return(nil, nil)

		result, err := f.service.PromoteStudents(ctx, schoolID, PromoteStudentsRequest{
			StudentIDs:    []uuid.UUID{active.ID, retired.ID},
			TargetClassID: targetClassID,
			NewSession:    "2026-2027",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.PromotedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, targetClassID, active.ClassID)
		assert.Equal(t, "2026-2027", active.Session)
		assert.Equal(t, oldClassID, retired.ClassID)
	})

	t.Run("unknown target class fails the batch", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		f.classRepo.On("FindByID", ctx, targetClassID).Return(nil, nil)

		_, err := f.service.PromoteStudents(ctx, schoolID, PromoteStudentsRequest{
			StudentIDs:    []uuid.UUID{uuid.New()},
			TargetClassID: targetClassID,
		})
		assert.Error(t, err)
	})
}
