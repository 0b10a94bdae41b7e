package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

type fakeStatsCache struct {
	mu      sync.Mutex
	entries map[string]*billing.FeeStats
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: make(map[string]*billing.FeeStats)}
}

func (c *fakeStatsCache) Get(_ context.Context, key string) (*billing.FeeStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[key]
	return stats, ok
}

func (c *fakeStatsCache) Set(_ context.Context, key string, stats *billing.FeeStats, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stats
}

func (c *fakeStatsCache) InvalidateSchool(_ context.Context, _ uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*billing.FeeStats)
}

func TestGetFeeStats(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()

	t.Run("aggregates through the repository", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		invoiceRepo := new(mockInvoiceRepo)
		svc := NewReportService(reportRepo, invoiceRepo, new(mockStudentRepo), new(mockClassRepo))

		want := &billing.FeeStats{
			TotalBilled:    decimal.NewFromInt(10000),
			TotalCollected: decimal.NewFromInt(6000),
			InvoiceCount:   5,
		}
		reportRepo.On("Stats", ctx, schoolID, 4, 2026).Return(want, nil)

		stats, err := svc.GetFeeStats(ctx, schoolID, 4, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, stats)
	})

	t.Run("second read hits the cache", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		invoiceRepo := new(mockInvoiceRepo)
		cache := newFakeStatsCache()
		svc := NewReportService(reportRepo, invoiceRepo, new(mockStudentRepo), new(mockClassRepo), WithStatsCache(cache))

		want := &billing.FeeStats{TotalBilled: decimal.NewFromInt(10000)}
		reportRepo.On("Stats", ctx, schoolID, 4, 2026).Return(want, nil).Once()

		_, err := svc.GetFeeStats(ctx, schoolID, 4, 2026)
		require.NoError(t, err)
		_, err = svc.GetFeeStats(ctx, schoolID, 4, 2026)
		require.NoError(t, err)

		reportRepo.AssertNumberOfCalls(t, "Stats", 1)
	})

	t.Run("unknown school yields zero stats", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		invoiceRepo := new(mockInvoiceRepo)
		svc := NewReportService(reportRepo, invoiceRepo, new(mockStudentRepo), new(mockClassRepo))

		reportRepo.On("Stats", ctx, schoolID, 0, 0).Return(nil, nil)

		stats, err := svc.GetFeeStats(ctx, schoolID, 0, 0)
		require.NoError(t, err)
		assert.True(t, stats.TotalBilled.IsZero())
		assert.Zero(t, stats.InvoiceCount)
	})
}

func TestGetStudentFeeHistory(t *testing.T) {
	ctx := context.Background()
	schoolID := uuid.New()
	classID := uuid.New()
	studentID := uuid.New()

	newInvoiceForMonth := func(t *testing.T, month int) *billing.StudentInvoice {
		t.Helper()
		inv, err := billing.NewStudentInvoice(
			schoolID, studentID, classID, month, 2026,
			valueobject.NewMoneyPKRFromInt(2000), valueobject.ZeroPKR(),
			nil, time.Date(2026, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		return inv
	}

	newHistoryStudent := func(t *testing.T) (*school.Student, *school.Class) {
		t.Helper()
		st, err := school.NewStudent(schoolID, classID, "Ayesha Khan", "42", "2025-2026")
		require.NoError(t, err)
		st.ID = studentID
		cl, err := school.NewClass(schoolID, "Grade 6", "A")
		require.NoError(t, err)
		return st, cl
	}

	t.Run("overpayments do not hide dues on other invoices", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		invoiceRepo := new(mockInvoiceRepo)
		studentRepo := new(mockStudentRepo)
		classRepo := new(mockClassRepo)
		svc := NewReportService(reportRepo, invoiceRepo, studentRepo, classRepo)

		student, class := newHistoryStudent(t)
		owing := newInvoiceForMonth(t, 3)
		overpaid := newInvoiceForMonth(t, 4)
		require.NoError(t, overpaid.ApplyPayment(
			valueobject.NewMoneyPKRFromInt(2600), overpaid.DueDate, valueobject.ZeroPKR()))

		studentRepo.On("FindByID", ctx, studentID).Return(student, nil)
		classRepo.On("FindByID", ctx, classID).Return(class, nil)
		invoiceRepo.On("FindByStudent", ctx, studentID).
			Return([]billing.StudentInvoice{*overpaid, *owing}, nil)

		resp, err := svc.GetStudentFeeHistory(ctx, studentID)
		require.NoError(t, err)
		assert.Len(t, resp.Invoices, 2)
		// only the owing invoice counts toward total due
		assert.Equal(t, int64(2000), resp.TotalDue.IntPart())
		assert.Equal(t, int64(2600), resp.TotalPaid.IntPart())
		assert.Equal(t, "Ayesha Khan", resp.StudentName)
		assert.Equal(t, "Grade 6", resp.ClassName)
	})

	t.Run("empty history yields zero totals", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		invoiceRepo := new(mockInvoiceRepo)
		studentRepo := new(mockStudentRepo)
		classRepo := new(mockClassRepo)
		svc := NewReportService(reportRepo, invoiceRepo, studentRepo, classRepo)

		student, class := newHistoryStudent(t)
		studentRepo.On("FindByID", ctx, studentID).Return(student, nil)
		classRepo.On("FindByID", ctx, classID).Return(class, nil)
		invoiceRepo.On("FindByStudent", ctx, studentID).Return([]billing.StudentInvoice{}, nil)

		resp, err := svc.GetStudentFeeHistory(ctx, studentID)
		require.NoError(t, err)
		assert.Empty(t, resp.Invoices)
		assert.True(t, resp.TotalDue.IsZero())
		assert.True(t, resp.TotalPaid.IsZero())
	})

	t.Run("unknown student is rejected", func(t *testing.T) {
		invoiceRepo := new(mockInvoiceRepo)
		studentRepo := new(mockStudentRepo)
		svc := NewReportService(new(mockFeeReportRepo), invoiceRepo, studentRepo, new(mockClassRepo))

		studentRepo.On("FindByID", ctx, studentID).Return(nil, nil)

		_, err := svc.GetStudentFeeHistory(ctx, studentID)
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "NOT_FOUND", derr.Code)
		invoiceRepo.AssertNotCalled(t, "FindByStudent", mock.Anything, mock.Anything)
	})
}

func TestSearchStudentsFees(t *testing.T) {
	ctx := context.Background()

	t.Run("school scope is mandatory", func(t *testing.T) {
		svc := NewReportService(new(mockFeeReportRepo), new(mockInvoiceRepo), new(mockStudentRepo), new(mockClassRepo))
		_, err := svc.SearchStudentsFees(ctx, uuid.Nil, "42", uuid.Nil)
		assert.Error(t, err)
	})

	t.Run("passes filters through", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		svc := NewReportService(reportRepo, new(mockInvoiceRepo), new(mockStudentRepo), new(mockClassRepo))

		schoolID := uuid.New()
		classID := uuid.New()
		rows := []billing.StudentFeeAggregate{{StudentName: "Ayesha Khan", RollNum: "42"}}
		reportRepo.On("SearchStudents", ctx, schoolID, "42", classID).Return(rows, nil)

		got, err := svc.SearchStudentsFees(ctx, schoolID, "42", classID)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})
}

func TestGetDefaultersByClass(t *testing.T) {
	ctx := context.Background()

	t.Run("class scope is mandatory", func(t *testing.T) {
		svc := NewReportService(new(mockFeeReportRepo), new(mockInvoiceRepo), new(mockStudentRepo), new(mockClassRepo))
		_, err := svc.GetDefaultersByClass(ctx, uuid.Nil)
		assert.Error(t, err)
	})

	t.Run("returns the repository rows", func(t *testing.T) {
		reportRepo := new(mockFeeReportRepo)
		svc := NewReportService(reportRepo, new(mockInvoiceRepo), new(mockStudentRepo), new(mockClassRepo))

		classID := uuid.New()
		rows := []billing.StudentFeeAggregate{
			{StudentName: "Bilal Ahmed", RollNum: "7", TotalDue: decimal.NewFromInt(4500)},
		}
		reportRepo.On("DefaultersByClass", ctx, classID).Return(rows, nil)

		got, err := svc.GetDefaultersByClass(ctx, classID)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})
}
