package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormFeeReportRepository implements FeeReportRepository using GORM.
// All queries are read-only aggregations over student_invoices.
type GormFeeReportRepository struct {
	db *gorm.DB
}

// NewGormFeeReportRepository creates a new GormFeeReportRepository
func NewGormFeeReportRepository(db *gorm.DB) *GormFeeReportRepository {
	return &GormFeeReportRepository{db: db}
}

// Stats aggregates billed, collected and late fine totals over a
// school's invoices, month/year 0 meaning unfiltered. Outstanding
// counts the late fine and nets out overpayments.
func (r *GormFeeReportRepository) Stats(ctx context.Context, schoolID uuid.UUID, month, year int) (*billing.FeeStats, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StudentInvoiceModel{}).
		Select(`COALESCE(SUM(total_amount), 0) AS total_billed,
			COALESCE(SUM(paid_amount), 0) AS total_collected,
			COALESCE(SUM(late_fine), 0) AS total_late_fines,
			COALESCE(SUM(total_amount + late_fine - paid_amount), 0) AS total_outstanding,
			COUNT(*) AS invoice_count,
			COUNT(*) FILTER (WHERE status = 'Paid') AS paid_count,
			COUNT(*) FILTER (WHERE status = 'Partial') AS partial_count,
			COUNT(*) FILTER (WHERE status = 'Unpaid') AS unpaid_count`).
		Where("school_id = ?", schoolID)
	if month > 0 {
		query = query.Where("month = ?", month)
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}

	var stats billing.FeeStats
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// DefaultersByClass returns the class's students whose summed
// outstanding due is positive, largest debt first
func (r *GormFeeReportRepository) DefaultersByClass(ctx context.Context, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	var rows []billing.StudentFeeAggregate
	if err := r.db.WithContext(ctx).
		Model(&models.StudentInvoiceModel{}).
		Select(`students.id AS student_id,
			students.name AS student_name,
			students.roll_num AS roll_num,
			students.class_id AS class_id,
			COALESCE(SUM(student_invoices.total_amount + student_invoices.late_fine - student_invoices.paid_amount), 0) AS total_due,
			COALESCE(SUM(student_invoices.paid_amount), 0) AS total_paid,
			COUNT(*) AS invoice_count`).
		Joins("JOIN students ON students.id = student_invoices.student_id").
		Where("students.class_id = ?", classID).
		Group("students.id, students.name, students.roll_num, students.class_id").
		Having("SUM(student_invoices.total_amount + student_invoices.late_fine - student_invoices.paid_amount) > 0").
		Order("total_due DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchStudents filters a school's per-student rollups by roll number
// prefix and/or class
func (r *GormFeeReportRepository) SearchStudents(ctx context.Context, schoolID uuid.UUID, rollNum string, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StudentInvoiceModel{}).
		Select(`students.id AS student_id,
			students.name AS student_name,
			students.roll_num AS roll_num,
			students.class_id AS class_id,
			COALESCE(SUM(student_invoices.total_amount + student_invoices.late_fine - student_invoices.paid_amount), 0) AS total_due,
			COALESCE(SUM(student_invoices.paid_amount), 0) AS total_paid,
			COUNT(*) AS invoice_count`).
		Joins("JOIN students ON students.id = student_invoices.student_id").
		Where("student_invoices.school_id = ?", schoolID)
	if rollNum != "" {
		query = query.Where("students.roll_num ILIKE ?", rollNum+"%")
	}
	if classID != uuid.Nil {
		query = query.Where("students.class_id = ?", classID)
	}

	var rows []billing.StudentFeeAggregate
	if err := query.
		Group("students.id, students.name, students.roll_num, students.class_id").
		Order("students.roll_num ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormFeeReportRepository implements FeeReportRepository
var _ billing.FeeReportRepository = (*GormFeeReportRepository)(nil)
