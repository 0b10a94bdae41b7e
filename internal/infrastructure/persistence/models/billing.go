package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
)

// FeeHeadModel is the persistence model for the FeeHead aggregate root.
type FeeHeadModel struct {
	SchoolAggregateModel
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FeeHeadModel) TableName() string {
	return "fee_heads"
}

// ToDomain converts the persistence model to a domain FeeHead entity.
func (m *FeeHeadModel) ToDomain() *billing.FeeHead {
	return &billing.FeeHead{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
	}
}

// FromDomain populates the persistence model from a domain FeeHead entity.
func (m *FeeHeadModel) FromDomain(h *billing.FeeHead) {
	m.FromDomainSchoolAggregateRoot(h.SchoolAggregateRoot)
	m.Name = h.Name
	m.Description = h.Description
}

// FeeHeadModelFromDomain creates a new persistence model from a domain FeeHead.
func FeeHeadModelFromDomain(h *billing.FeeHead) *FeeHeadModel {
	m := &FeeHeadModel{}
	m.FromDomain(h)
	return m
}

// FeeStructureModel is the persistence model for the FeeStructure
// aggregate root. A class has at most one structure, enforced by the
// unique index on class_id.
type FeeStructureModel struct {
	SchoolAggregateModel
	ClassID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_fee_structure_class"`
	Lines   billing.FeeLines `gorm:"type:jsonb;not null;default:'[]'"`
	LateFee decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DueDay  int              `gorm:"not null;default:10"`
}

// TableName returns the table name for GORM
func (FeeStructureModel) TableName() string {
	return "fee_structures"
}

// ToDomain converts the persistence model to a domain FeeStructure entity.
func (m *FeeStructureModel) ToDomain() *billing.FeeStructure {
	return &billing.FeeStructure{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		ClassID:             m.ClassID,
		Lines:               m.Lines,
		LateFee:             m.LateFee,
		DueDay:              m.DueDay,
	}
}

// FromDomain populates the persistence model from a domain FeeStructure entity.
func (m *FeeStructureModel) FromDomain(fs *billing.FeeStructure) {
	m.FromDomainSchoolAggregateRoot(fs.SchoolAggregateRoot)
	m.ClassID = fs.ClassID
	m.Lines = fs.Lines
	m.LateFee = fs.LateFee
	m.DueDay = fs.DueDay
}

// FeeStructureModelFromDomain creates a new persistence model from a domain FeeStructure.
func FeeStructureModelFromDomain(fs *billing.FeeStructure) *FeeStructureModel {
	m := &FeeStructureModel{}
	m.FromDomain(fs)
	return m
}

// DiscountGroupModel is the persistence model for the DiscountGroup aggregate root.
type DiscountGroupModel struct {
	SchoolAggregateModel
	Name        string               `gorm:"type:varchar(100);not null;index"`
	Type        billing.DiscountType `gorm:"type:varchar(20);not null"`
	Value       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Description string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DiscountGroupModel) TableName() string {
	return "discount_groups"
}

// ToDomain converts the persistence model to a domain DiscountGroup entity.
func (m *DiscountGroupModel) ToDomain() *billing.DiscountGroup {
	return &billing.DiscountGroup{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		Name:                m.Name,
		Type:                m.Type,
		Value:               m.Value,
		Description:         m.Description,
	}
}

// FromDomain populates the persistence model from a domain DiscountGroup entity.
func (m *DiscountGroupModel) FromDomain(g *billing.DiscountGroup) {
	m.FromDomainSchoolAggregateRoot(g.SchoolAggregateRoot)
	m.Name = g.Name
	m.Type = g.Type
	m.Value = g.Value
	m.Description = g.Description
}

// DiscountGroupModelFromDomain creates a new persistence model from a domain DiscountGroup.
func DiscountGroupModelFromDomain(g *billing.DiscountGroup) *DiscountGroupModel {
	m := &DiscountGroupModel{}
	m.FromDomain(g)
	return m
}

// StudentDiscountModel is the persistence model for the StudentDiscount
// aggregate root. Name, type and value are the snapshot taken at
// assignment time, never re-read from the group.
type StudentDiscountModel struct {
	SchoolAggregateModel
	StudentID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	DiscountGroupID *uuid.UUID             `gorm:"type:uuid;index"`
	Name            string                 `gorm:"type:varchar(100);not null"`
	Type            billing.DiscountType   `gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status          billing.DiscountStatus `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (StudentDiscountModel) TableName() string {
	return "student_discounts"
}

// ToDomain converts the persistence model to a domain StudentDiscount entity.
func (m *StudentDiscountModel) ToDomain() *billing.StudentDiscount {
	return &billing.StudentDiscount{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		StudentID:           m.StudentID,
		DiscountGroupID:     m.DiscountGroupID,
		Name:                m.Name,
		Type:                m.Type,
		Value:               m.Value,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain StudentDiscount entity.
func (m *StudentDiscountModel) FromDomain(d *billing.StudentDiscount) {
	m.FromDomainSchoolAggregateRoot(d.SchoolAggregateRoot)
	m.StudentID = d.StudentID
	m.DiscountGroupID = d.DiscountGroupID
	m.Name = d.Name
	m.Type = d.Type
	m.Value = d.Value
	m.Status = d.Status
}

// StudentDiscountModelFromDomain creates a new persistence model from a domain StudentDiscount.
func StudentDiscountModelFromDomain(d *billing.StudentDiscount) *StudentDiscountModel {
	m := &StudentDiscountModel{}
	m.FromDomain(d)
	return m
}

// StudentInvoiceModel is the persistence model for the StudentInvoice
// aggregate root. The composite unique index on (student_id, month,
// year) backs the one-invoice-per-period rule against concurrent
// generation runs, and challan numbers are unique across all schools.
type StudentInvoiceModel struct {
	SchoolAggregateModel
	StudentID         uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_student_period,priority:1"`
	ClassID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Month             int                       `gorm:"not null;uniqueIndex:idx_invoice_student_period,priority:2"`
	Year              int                       `gorm:"not null;uniqueIndex:idx_invoice_student_period,priority:3"`
	ChallanNumber     string                    `gorm:"type:varchar(40);not null;uniqueIndex:idx_invoice_challan"`
	CurrentFee        decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PreviousArrears   decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	LateFine          decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Status            billing.InvoiceStatus     `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	DueDate           time.Time                 `gorm:"not null;index"`
	PaymentDate       *time.Time                ``
	FeeBreakdown      billing.FeeBreakdown      `gorm:"type:jsonb;not null;default:'[]'"`
	DiscountBreakdown billing.DiscountBreakdown `gorm:"type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (StudentInvoiceModel) TableName() string {
	return "student_invoices"
}

// ToDomain converts the persistence model to a domain StudentInvoice entity.
func (m *StudentInvoiceModel) ToDomain() *billing.StudentInvoice {
	return &billing.StudentInvoice{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		StudentID:           m.StudentID,
		ClassID:             m.ClassID,
		Month:               m.Month,
		Year:                m.Year,
		ChallanNumber:       m.ChallanNumber,
		CurrentFee:          m.CurrentFee,
		PreviousArrears:     m.PreviousArrears,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		LateFine:            m.LateFine,
		Status:              m.Status,
		DueDate:             m.DueDate,
		PaymentDate:         m.PaymentDate,
		FeeBreakdown:        m.FeeBreakdown,
		DiscountBreakdown:   m.DiscountBreakdown,
	}
}

// FromDomain populates the persistence model from a domain StudentInvoice entity.
func (m *StudentInvoiceModel) FromDomain(inv *billing.StudentInvoice) {
	m.FromDomainSchoolAggregateRoot(inv.SchoolAggregateRoot)
	m.StudentID = inv.StudentID
	m.ClassID = inv.ClassID
	m.Month = inv.Month
	m.Year = inv.Year
	m.ChallanNumber = inv.ChallanNumber
	m.CurrentFee = inv.CurrentFee
	m.PreviousArrears = inv.PreviousArrears
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.LateFine = inv.LateFine
	m.Status = inv.Status
	m.DueDate = inv.DueDate
	m.PaymentDate = inv.PaymentDate
	m.FeeBreakdown = inv.FeeBreakdown
	m.DiscountBreakdown = inv.DiscountBreakdown
}

// StudentInvoiceModelFromDomain creates a new persistence model from a domain StudentInvoice.
func StudentInvoiceModelFromDomain(inv *billing.StudentInvoice) *StudentInvoiceModel {
	m := &StudentInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// BalancePresetModel is the persistence model for the BalancePreset aggregate root.
type BalancePresetModel struct {
	SchoolAggregateModel
	Name string `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (BalancePresetModel) TableName() string {
	return "balance_presets"
}

// ToDomain converts the persistence model to a domain BalancePreset entity.
func (m *BalancePresetModel) ToDomain() *billing.BalancePreset {
	return &billing.BalancePreset{
		SchoolAggregateRoot: m.ToDomainSchoolAggregateRoot(),
		Name:                m.Name,
	}
}

// FromDomain populates the persistence model from a domain BalancePreset entity.
func (m *BalancePresetModel) FromDomain(p *billing.BalancePreset) {
	m.FromDomainSchoolAggregateRoot(p.SchoolAggregateRoot)
	m.Name = p.Name
}

// BalancePresetModelFromDomain creates a new persistence model from a domain BalancePreset.
func BalancePresetModelFromDomain(p *billing.BalancePreset) *BalancePresetModel {
	m := &BalancePresetModel{}
	m.FromDomain(p)
	return m
}
