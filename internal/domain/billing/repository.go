package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeHeadRepository persists fee heads
type FeeHeadRepository interface {
	Save(ctx context.Context, head *FeeHead) error
	FindByID(ctx context.Context, id uuid.UUID) (*FeeHead, error)
	FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]FeeHead, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]FeeHead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeeStructureRepository persists per-class fee structures
type FeeStructureRepository interface {
	Save(ctx context.Context, structure *FeeStructure) error
	FindByID(ctx context.Context, id uuid.UUID) (*FeeStructure, error)
	FindByClass(ctx context.Context, classID uuid.UUID) (*FeeStructure, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DiscountGroupRepository persists discount groups
type DiscountGroupRepository interface {
	Save(ctx context.Context, group *DiscountGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*DiscountGroup, error)
	FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]DiscountGroup, error)
	// FindByNameForSchool matches the name case-insensitively
	FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*DiscountGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentDiscountRepository persists student discount assignments
type StudentDiscountRepository interface {
	Save(ctx context.Context, discount *StudentDiscount) error
	FindByID(ctx context.Context, id uuid.UUID) (*StudentDiscount, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]StudentDiscount, error)
	FindActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]StudentDiscount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BalancePresetRepository persists opening-balance presets
type BalancePresetRepository interface {
	Save(ctx context.Context, preset *BalancePreset) error
	FindByID(ctx context.Context, id uuid.UUID) (*BalancePreset, error)
	FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]BalancePreset, error)
	// FindByNameForSchool matches the name case-insensitively
	FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*BalancePreset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceWithStudent joins an invoice with its student's display fields
type InvoiceWithStudent struct {
	StudentInvoice
	StudentName string
	RollNum     string
}

// StudentInvoiceRepository persists student invoices
type StudentInvoiceRepository interface {
	Save(ctx context.Context, invoice *StudentInvoice) error
	// SaveAll inserts a batch of invoices in one transaction
	SaveAll(ctx context.Context, invoices []*StudentInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*StudentInvoice, error)
	// FindByStudent returns all invoices ordered by year desc, month desc
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]StudentInvoice, error)
	FindByStudentPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (*StudentInvoice, error)
	// FindByClassPeriod lists a class's invoices, month/year 0 meaning unfiltered
	FindByClassPeriod(ctx context.Context, classID uuid.UUID, month, year int) ([]InvoiceWithStudent, error)
	ExistsForPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (bool, error)
	// Replace deletes the old invoice and inserts the replacement in one transaction
	Replace(ctx context.Context, oldID uuid.UUID, replacement *StudentInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeeStats is the school-wide collection summary. Billed, collected
// and late fines are separate sums; outstanding derives from all three.
type FeeStats struct {
	TotalBilled      decimal.Decimal `json:"total_billed"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalLateFines   decimal.Decimal `json:"total_late_fines"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	InvoiceCount     int64           `json:"invoice_count"`
	PaidCount        int64           `json:"paid_count"`
	PartialCount     int64           `json:"partial_count"`
	UnpaidCount      int64           `json:"unpaid_count"`
}

// StudentFeeAggregate is a per-student rollup used by defaulter and
// search reports
type StudentFeeAggregate struct {
	StudentID    uuid.UUID       `json:"student_id"`
	StudentName  string          `json:"student_name"`
	RollNum      string          `json:"roll_num"`
	ClassID      uuid.UUID       `json:"class_id"`
	TotalDue     decimal.Decimal `json:"total_due"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	InvoiceCount int64           `json:"invoice_count"`
}

// FeeReportRepository runs the read-only reporting aggregations
type FeeReportRepository interface {
	// Stats aggregates over a school's invoices, month/year 0 meaning unfiltered
	Stats(ctx context.Context, schoolID uuid.UUID, month, year int) (*FeeStats, error)
	// DefaultersByClass returns students of the class with outstanding due > 0
	DefaultersByClass(ctx context.Context, classID uuid.UUID) ([]StudentFeeAggregate, error)
	// SearchStudents filters a school's per-student rollups by roll number
	// and/or class
	SearchStudents(ctx context.Context, schoolID uuid.UUID, rollNum string, classID uuid.UUID) ([]StudentFeeAggregate, error)
}
