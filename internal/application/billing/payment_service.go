package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// PaymentService applies payments to student invoices
type PaymentService struct {
	invoiceRepo   billing.StudentInvoiceRepository
	structureRepo billing.FeeStructureRepository
	publisher     shared.EventPublisher
	now           func() time.Time
}

// PaymentServiceOption is a functional option for configuring PaymentService
type PaymentServiceOption func(*PaymentService)

// WithPaymentEventPublisher wires an event publisher for payment events
func WithPaymentEventPublisher(publisher shared.EventPublisher) PaymentServiceOption {
	return func(s *PaymentService) {
		s.publisher = publisher
	}
}

// WithPaymentClock overrides the time source used when the request
// carries no payment date
func WithPaymentClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	invoiceRepo billing.StudentInvoiceRepository,
	structureRepo billing.FeeStructureRepository,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		invoiceRepo:   invoiceRepo,
		structureRepo: structureRepo,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PayInvoiceRequest is the payload for recording a payment
type PayInvoiceRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"payment_date"`
}

// PayInvoice records a payment against an invoice. Payments made after
// the due date charge the class's late fee exactly once, read from the
// fee structure at payment time. Paid amounts accumulate across
// multiple payments and the payment date reflects the latest one.
func (s *PaymentService) PayInvoice(ctx context.Context, schoolID, invoiceID uuid.UUID, req PayInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	paymentDate := s.now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	lateFee := valueobject.ZeroPKR()
	if paymentDate.After(invoice.DueDate) && invoice.LateFine.IsZero() {
		structure, err := s.structureRepo.FindByClass(ctx, invoice.ClassID)
		if err != nil {
			return nil, err
		}
		if structure != nil {
			lateFee = structure.GetLateFeeMoney()
		}
	}

	if err := invoice.ApplyPayment(valueobject.NewMoneyPKR(req.Amount), paymentDate, lateFee); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, invoice.GetDomainEvents()...)
		invoice.ClearDomainEvents()
	}

	return toInvoiceResponse(invoice), nil
}
