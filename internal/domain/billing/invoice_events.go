package billing

import (
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// Event types for the invoice aggregate
const (
	InvoiceGeneratedEventType      = "billing.invoice.generated"
	InvoiceRegeneratedEventType    = "billing.invoice.regenerated"
	InvoicePaymentAppliedEventType = "billing.invoice.payment_applied"
)

// InvoiceGeneratedEvent is raised when a monthly invoice is created
type InvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	StudentID     string          `json:"student_id"`
	ClassID       string          `json:"class_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	ChallanNumber string          `json:"challan_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoiceGeneratedEvent creates a new invoice generated event
func NewInvoiceGeneratedEvent(inv *StudentInvoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(InvoiceGeneratedEventType, "StudentInvoice", inv.ID, inv.SchoolID),
		StudentID:       inv.StudentID.String(),
		ClassID:         inv.ClassID.String(),
		Month:           inv.Month,
		Year:            inv.Year,
		ChallanNumber:   inv.ChallanNumber,
		TotalAmount:     inv.TotalAmount,
		Status:          inv.Status,
	}
}

// InvoiceRegeneratedEvent is raised when a class change replaces an invoice
type InvoiceRegeneratedEvent struct {
	shared.BaseDomainEvent
	StudentID     string          `json:"student_id"`
	ClassID       string          `json:"class_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	ChallanNumber string          `json:"challan_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CarriedPaid   decimal.Decimal `json:"carried_paid"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoiceRegeneratedEvent creates a new invoice regenerated event
func NewInvoiceRegeneratedEvent(inv *StudentInvoice) *InvoiceRegeneratedEvent {
	return &InvoiceRegeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(InvoiceRegeneratedEventType, "StudentInvoice", inv.ID, inv.SchoolID),
		StudentID:       inv.StudentID.String(),
		ClassID:         inv.ClassID.String(),
		Month:           inv.Month,
		Year:            inv.Year,
		ChallanNumber:   inv.ChallanNumber,
		TotalAmount:     inv.TotalAmount,
		CarriedPaid:     inv.PaidAmount,
		Status:          inv.Status,
	}
}

// InvoicePaymentAppliedEvent is raised when a payment is recorded
type InvoicePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	StudentID     string          `json:"student_id"`
	ChallanNumber string          `json:"challan_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	LateFine      decimal.Decimal `json:"late_fine"`
	Status        InvoiceStatus   `json:"status"`
}

// NewInvoicePaymentAppliedEvent creates a new payment applied event
func NewInvoicePaymentAppliedEvent(inv *StudentInvoice, amount valueobject.Money) *InvoicePaymentAppliedEvent {
	return &InvoicePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(InvoicePaymentAppliedEventType, "StudentInvoice", inv.ID, inv.SchoolID),
		StudentID:       inv.StudentID.String(),
		ChallanNumber:   inv.ChallanNumber,
		Amount:          amount.Amount(),
		PaidAmount:      inv.PaidAmount,
		LateFine:        inv.LateFine,
		Status:          inv.Status,
	}
}
