package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the payment state of a student invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPartial || s == InvoiceStatusPaid
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsRegenerable returns true if a class change may replace this invoice
func (s InvoiceStatus) IsRegenerable() bool {
	return s != InvoiceStatusPaid
}

// FeeBreakdownLine is one charge line on an invoice, a value object
// stored as JSONB. The head name is a snapshot taken at generation so
// the line survives later catalog edits and deletions.
type FeeBreakdownLine struct {
	FeeHeadID uuid.UUID       `json:"fee_head_id"`
	HeadName  string          `json:"head_name"`
	Amount    decimal.Decimal `json:"amount"`
}

// FeeBreakdown implements GORM Scanner/Valuer for JSONB storage
type FeeBreakdown []FeeBreakdownLine

// Value implements driver.Valuer
func (b FeeBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner
func (b *FeeBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = FeeBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = FeeBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// DiscountBreakdownLine records one discount applied during invoice
// computation. The name is the snapshot name from the assignment.
type DiscountBreakdownLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DiscountBreakdown implements GORM Scanner/Valuer for JSONB storage
type DiscountBreakdown []DiscountBreakdownLine

// Value implements driver.Valuer
func (b DiscountBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner
func (b *DiscountBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = DiscountBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DiscountBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = DiscountBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// StudentInvoice is the monthly fee invoice aggregate. At most one
// invoice exists per (student, month, year), enforced by a pre-insert
// check and backed by a composite unique index.
type StudentInvoice struct {
	shared.SchoolAggregateRoot
	StudentID         uuid.UUID         `json:"student_id"`
	ClassID           uuid.UUID         `json:"class_id"`
	Month             int               `json:"month"`
	Year              int               `json:"year"`
	ChallanNumber     string            `json:"challan_number"`
	CurrentFee        decimal.Decimal   `json:"current_fee"`
	PreviousArrears   decimal.Decimal   `json:"previous_arrears"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	LateFine          decimal.Decimal   `json:"late_fine"`
	Status            InvoiceStatus     `json:"status"`
	DueDate           time.Time         `json:"due_date"`
	PaymentDate       *time.Time        `json:"payment_date"`
	FeeBreakdown      FeeBreakdown      `json:"fee_breakdown"`
	DiscountBreakdown DiscountBreakdown `json:"discount_breakdown"`
}

// ChallanNumber builds the deterministic challan number for a billing
// period: SCH-{year}-{month}-{last 6 hex chars of the student ID},
// uppercased. Challan numbers are globally unique.
func ChallanNumber(year, month int, studentID uuid.UUID) string {
	hex := strings.ReplaceAll(studentID.String(), "-", "")
	return strings.ToUpper(fmt.Sprintf("SCH-%d-%d-%s", year, month, hex[len(hex)-6:]))
}

// RegeneratedChallanNumber builds a challan number for a replacement
// invoice. A random suffix keeps it from colliding with the challan of
// the invoice being replaced or with any regular challan.
func RegeneratedChallanNumber(year, month int, studentID uuid.UUID) string {
	hex := strings.ReplaceAll(studentID.String(), "-", "")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	return strings.ToUpper(fmt.Sprintf("SCH-%d-%d-%s-%s", year, month, hex[len(hex)-4:], suffix))
}

// validatePeriod checks the billing period fields
func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return shared.NewDomainError("INVALID_MONTH", "Month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return shared.NewDomainError("INVALID_YEAR", "Year is out of range")
	}
	return nil
}

// NewStudentInvoice computes a fresh invoice from the current fee and
// the student's running balance. A positive balance is carried forward
// as arrears, a negative balance is a credit folded into the total.
// The stored total never goes below zero, a credit that fully covers
// the month yields a zero-total invoice already marked Paid.
func NewStudentInvoice(
	schoolID, studentID, classID uuid.UUID,
	month, year int,
	currentFee valueobject.Money,
	balance valueobject.Money,
	breakdown FeeBreakdown,
	dueDate time.Time,
) (*StudentInvoice, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	arrears := valueobject.ZeroPKR()
	credit := valueobject.ZeroPKR()
	if balance.IsPositive() {
		arrears = balance
	} else if balance.IsNegative() {
		credit = balance.Negate()
	}

	total := currentFee.MustAdd(arrears).MustSubtract(credit)
	status := InvoiceStatusUnpaid
	if !total.IsPositive() {
		status = InvoiceStatusPaid
	}

	inv := &StudentInvoice{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		StudentID:           studentID,
		ClassID:             classID,
		Month:               month,
		Year:                year,
		ChallanNumber:       ChallanNumber(year, month, studentID),
		CurrentFee:          currentFee.Amount(),
		PreviousArrears:     arrears.Amount(),
		TotalAmount:         total.ClampZero().Amount(),
		PaidAmount:          decimal.Zero,
		LateFine:            decimal.Zero,
		Status:              status,
		DueDate:             dueDate,
		FeeBreakdown:        breakdown,
		DiscountBreakdown:   DiscountBreakdown{},
	}

	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))

	return inv, nil
}

// NewRegeneratedInvoice computes a replacement invoice after a class
// change. Discounts are subtracted from the total, and any amount the
// student had already paid on the replaced invoice carries over.
func NewRegeneratedInvoice(
	schoolID, studentID, classID uuid.UUID,
	month, year int,
	currentFee valueobject.Money,
	balance valueobject.Money,
	breakdown FeeBreakdown,
	discounts DiscountBreakdown,
	carriedPaid valueobject.Money,
	dueDate time.Time,
) (*StudentInvoice, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	arrears := valueobject.ZeroPKR()
	credit := valueobject.ZeroPKR()
	if balance.IsPositive() {
		arrears = balance
	} else if balance.IsNegative() {
		credit = balance.Negate()
	}

	discountTotal := decimal.Zero
	for _, d := range discounts {
		discountTotal = discountTotal.Add(d.Amount)
	}

	total := currentFee.MustAdd(arrears).MustSubtract(credit).
		MustSubtract(valueobject.NewMoneyPKR(discountTotal)).ClampZero()

	status := InvoiceStatusUnpaid
	switch {
	case carriedPaid.Amount().GreaterThanOrEqual(total.Amount()):
		status = InvoiceStatusPaid
	case carriedPaid.IsPositive():
		status = InvoiceStatusPartial
	}

	inv := &StudentInvoice{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		StudentID:           studentID,
		ClassID:             classID,
		Month:               month,
		Year:                year,
		ChallanNumber:       RegeneratedChallanNumber(year, month, studentID),
		CurrentFee:          currentFee.Amount(),
		PreviousArrears:     arrears.Amount(),
		TotalAmount:         total.Amount(),
		PaidAmount:          carriedPaid.Amount(),
		LateFine:            decimal.Zero,
		Status:              status,
		DueDate:             dueDate,
		FeeBreakdown:        breakdown,
		DiscountBreakdown:   discounts,
	}

	inv.AddDomainEvent(NewInvoiceRegeneratedEvent(inv))

	return inv, nil
}

// ApplyPayment records a payment against the invoice. A late fine is
// added at most once, on the first payment made after the due date
// while no fine has been charged yet. The fine amount is read from the
// class fee structure at payment time, structure edits between due
// date and payment change what gets charged.
func (inv *StudentInvoice) ApplyPayment(amount valueobject.Money, paymentDate time.Time, lateFee valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	if paymentDate.After(inv.DueDate) && inv.LateFine.IsZero() {
		inv.LateFine = lateFee.Amount()
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.PaymentDate = &paymentDate

	totalDue := inv.TotalAmount.Add(inv.LateFine)
	switch {
	case inv.PaidAmount.GreaterThanOrEqual(totalDue):
		inv.Status = InvoiceStatusPaid
	case inv.PaidAmount.IsPositive():
		inv.Status = InvoiceStatusPartial
	default:
		inv.Status = InvoiceStatusUnpaid
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount))

	return nil
}

// OutstandingDue returns total + late fine - paid for this invoice.
// Negative values are overpayments and become credit on the next cycle.
func (inv *StudentInvoice) OutstandingDue() valueobject.Money {
	return valueobject.NewMoneyPKR(inv.TotalAmount.Add(inv.LateFine).Sub(inv.PaidAmount))
}

// GetTotalAmountMoney returns the invoice total as Money
func (inv *StudentInvoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPKR(inv.TotalAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *StudentInvoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPKR(inv.PaidAmount)
}

// IsPaid returns true if the invoice is fully settled
func (inv *StudentInvoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// RunningBalance sums the outstanding due across a student's invoices.
// A positive result is what the student still owes, a negative result
// is accumulated credit from overpayments.
func RunningBalance(invoices []StudentInvoice) valueobject.Money {
	balance := decimal.Zero
	for i := range invoices {
		balance = balance.Add(invoices[i].OutstandingDue().Amount())
	}
	return valueobject.NewMoneyPKR(balance)
}
