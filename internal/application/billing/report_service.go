package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/domain/shared"
)

// StatsCache caches fee statistics per school and billing period
type StatsCache interface {
	Get(ctx context.Context, key string) (*billing.FeeStats, bool)
	Set(ctx context.Context, key string, stats *billing.FeeStats, ttl time.Duration)
	InvalidateSchool(ctx context.Context, schoolID uuid.UUID)
}

// DefaultStatsTTL bounds how stale a cached stats read may be
const DefaultStatsTTL = 5 * time.Minute

// ReportService serves the read-only reporting surface
type ReportService struct {
	reportRepo  billing.FeeReportRepository
	invoiceRepo billing.StudentInvoiceRepository
	studentRepo school.StudentRepository
	classRepo   school.ClassRepository
	cache       StatsCache
	statsTTL    time.Duration
}

// ReportServiceOption is a functional option for configuring ReportService
type ReportServiceOption func(*ReportService)

// WithStatsCache wires a cache in front of the stats aggregation
func WithStatsCache(cache StatsCache) ReportServiceOption {
	return func(s *ReportService) {
		s.cache = cache
	}
}

// WithStatsTTL overrides the cache TTL for stats entries
func WithStatsTTL(ttl time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		s.statsTTL = ttl
	}
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo billing.FeeReportRepository,
	invoiceRepo billing.StudentInvoiceRepository,
	studentRepo school.StudentRepository,
	classRepo school.ClassRepository,
	opts ...ReportServiceOption,
) *ReportService {
	s := &ReportService{
		reportRepo:  reportRepo,
		invoiceRepo: invoiceRepo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
		statsTTL:    DefaultStatsTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatsCacheKey builds the cache key for a school's stats query
func StatsCacheKey(schoolID uuid.UUID, month, year int) string {
	return fmt.Sprintf("billing:stats:%s:%d:%d", schoolID, year, month)
}

// StatsCacheSchoolPrefix is the common prefix of every stats key for a school
func StatsCacheSchoolPrefix(schoolID uuid.UUID) string {
	return fmt.Sprintf("billing:stats:%s:", schoolID)
}

// GetFeeStats aggregates a school's collection summary. Month and year
// narrow the aggregation when non-zero. An unknown school yields zero
// stats rather than an error.
func (s *ReportService) GetFeeStats(ctx context.Context, schoolID uuid.UUID, month, year int) (*billing.FeeStats, error) {
	key := StatsCacheKey(schoolID, month, year)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	stats, err := s.reportRepo.Stats(ctx, schoolID, month, year)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &billing.FeeStats{
			TotalBilled:      decimal.Zero,
			TotalCollected:   decimal.Zero,
			TotalLateFines:   decimal.Zero,
			TotalOutstanding: decimal.Zero,
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, stats, s.statsTTL)
	}
	return stats, nil
}

// StudentFeeHistoryResponse is a student's full invoice history with
// lifetime totals
type StudentFeeHistoryResponse struct {
	StudentID   uuid.UUID         `json:"student_id"`
	StudentName string            `json:"student_name"`
	ClassName   string            `json:"class_name"`
	Invoices    []InvoiceResponse `json:"invoices"`
	TotalDue    decimal.Decimal   `json:"total_due"`
	TotalPaid   decimal.Decimal   `json:"total_paid"`
}

// GetStudentFeeHistory returns a student's invoices ordered newest
// first. TotalDue counts only invoices that still owe money, an
// overpayment on one invoice does not hide dues on another.
func (s *ReportService) GetStudentFeeHistory(ctx context.Context, studentID uuid.UUID) (*StudentFeeHistoryResponse, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Student not found")
	}

	className := ""
	if class, err := s.classRepo.FindByID(ctx, student.ClassID); err == nil && class != nil {
		className = class.Name
	}

	invoices, err := s.invoiceRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &StudentFeeHistoryResponse{
		StudentID:   studentID,
		StudentName: student.Name,
		ClassName:   className,
		Invoices:    make([]InvoiceResponse, 0, len(invoices)),
		TotalDue:    decimal.Zero,
		TotalPaid:   decimal.Zero,
	}
	for i := range invoices {
		inv := &invoices[i]
		resp.Invoices = append(resp.Invoices, *toInvoiceResponse(inv))
		if due := inv.OutstandingDue().Amount(); due.IsPositive() {
			resp.TotalDue = resp.TotalDue.Add(due)
		}
		resp.TotalPaid = resp.TotalPaid.Add(inv.PaidAmount)
	}
	return resp, nil
}

// GetDefaultersByClass returns the class's students with outstanding
// dues greater than zero
func (s *ReportService) GetDefaultersByClass(ctx context.Context, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	if classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Class ID is required")
	}
	return s.reportRepo.DefaultersByClass(ctx, classID)
}

// SearchStudentsFees filters a school's per-student fee rollups by roll
// number and/or class. The school scope is mandatory.
func (s *ReportService) SearchStudentsFees(ctx context.Context, schoolID uuid.UUID, rollNum string, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "School ID is required")
	}
	return s.reportRepo.SearchStudents(ctx, schoolID, rollNum, classID)
}
