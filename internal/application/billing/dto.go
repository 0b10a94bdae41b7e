package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/billing"
)

// FeeHeadResponse represents a fee head in API responses
type FeeHeadResponse struct {
	ID          uuid.UUID `json:"id"`
	SchoolID    uuid.UUID `json:"school_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toFeeHeadResponse(h *billing.FeeHead) *FeeHeadResponse {
	return &FeeHeadResponse{
		ID:          h.ID,
		SchoolID:    h.SchoolID,
		Name:        h.Name,
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// FeeLineResponse is one fee structure line with the head name resolved
// from the catalog at read time
type FeeLineResponse struct {
	FeeHeadID uuid.UUID       `json:"fee_head_id"`
	HeadName  string          `json:"head_name"`
	Amount    decimal.Decimal `json:"amount"`
}

// FeeStructureResponse represents a fee structure in API responses
type FeeStructureResponse struct {
	ID         uuid.UUID         `json:"id"`
	SchoolID   uuid.UUID         `json:"school_id"`
	ClassID    uuid.UUID         `json:"class_id"`
	Lines      []FeeLineResponse `json:"lines"`
	CurrentFee decimal.Decimal   `json:"current_fee"`
	LateFee    decimal.Decimal   `json:"late_fee"`
	DueDay     int               `json:"due_day"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Version    int               `json:"version"`
}

func toFeeStructureResponse(fs *billing.FeeStructure, headNames map[uuid.UUID]string) *FeeStructureResponse {
	lines := make([]FeeLineResponse, 0, len(fs.Lines))
	for _, line := range fs.Lines {
		lines = append(lines, FeeLineResponse{
			FeeHeadID: line.FeeHeadID,
			HeadName:  headNames[line.FeeHeadID],
			Amount:    line.Amount,
		})
	}
	return &FeeStructureResponse{
		ID:         fs.ID,
		SchoolID:   fs.SchoolID,
		ClassID:    fs.ClassID,
		Lines:      lines,
		CurrentFee: fs.CurrentFee().Amount(),
		LateFee:    fs.LateFee,
		DueDay:     fs.DueDay,
		UpdatedAt:  fs.UpdatedAt,
		Version:    fs.Version,
	}
}

// DiscountGroupResponse represents a discount group in API responses
type DiscountGroupResponse struct {
	ID          uuid.UUID       `json:"id"`
	SchoolID    uuid.UUID       `json:"school_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toDiscountGroupResponse(g *billing.DiscountGroup) *DiscountGroupResponse {
	return &DiscountGroupResponse{
		ID:          g.ID,
		SchoolID:    g.SchoolID,
		Name:        g.Name,
		Type:        g.Type.String(),
		Value:       g.Value,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// StudentDiscountResponse represents a student discount assignment
type StudentDiscountResponse struct {
	ID              uuid.UUID       `json:"id"`
	SchoolID        uuid.UUID       `json:"school_id"`
	StudentID       uuid.UUID       `json:"student_id"`
	DiscountGroupID *uuid.UUID      `json:"discount_group_id,omitempty"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Value           decimal.Decimal `json:"value"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toStudentDiscountResponse(d *billing.StudentDiscount) *StudentDiscountResponse {
	return &StudentDiscountResponse{
		ID:              d.ID,
		SchoolID:        d.SchoolID,
		StudentID:       d.StudentID,
		DiscountGroupID: d.DiscountGroupID,
		Name:            d.Name,
		Type:            d.Type.String(),
		Value:           d.Value,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
	}
}

// InvoiceResponse represents a student invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID                 `json:"id"`
	SchoolID          uuid.UUID                 `json:"school_id"`
	StudentID         uuid.UUID                 `json:"student_id"`
	ClassID           uuid.UUID                 `json:"class_id"`
	Month             int                       `json:"month"`
	Year              int                       `json:"year"`
	ChallanNumber     string                    `json:"challan_number"`
	CurrentFee        decimal.Decimal           `json:"current_fee"`
	PreviousArrears   decimal.Decimal           `json:"previous_arrears"`
	TotalAmount       decimal.Decimal           `json:"total_amount"`
	PaidAmount        decimal.Decimal           `json:"paid_amount"`
	LateFine          decimal.Decimal           `json:"late_fine"`
	Status            string                    `json:"status"`
	DueDate           time.Time                 `json:"due_date"`
	PaymentDate       *time.Time                `json:"payment_date,omitempty"`
	FeeBreakdown      billing.FeeBreakdown      `json:"fee_breakdown"`
	DiscountBreakdown billing.DiscountBreakdown `json:"discount_breakdown"`
	CreatedAt         time.Time                 `json:"created_at"`
	Version           int                       `json:"version"`
}

func toInvoiceResponse(inv *billing.StudentInvoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:                inv.ID,
		SchoolID:          inv.SchoolID,
		StudentID:         inv.StudentID,
		ClassID:           inv.ClassID,
		Month:             inv.Month,
		Year:              inv.Year,
		ChallanNumber:     inv.ChallanNumber,
		CurrentFee:        inv.CurrentFee,
		PreviousArrears:   inv.PreviousArrears,
		TotalAmount:       inv.TotalAmount,
		PaidAmount:        inv.PaidAmount,
		LateFine:          inv.LateFine,
		Status:            inv.Status.String(),
		DueDate:           inv.DueDate,
		PaymentDate:       inv.PaymentDate,
		FeeBreakdown:      inv.FeeBreakdown,
		DiscountBreakdown: inv.DiscountBreakdown,
		CreatedAt:         inv.CreatedAt,
		Version:           inv.Version,
	}
}

// InvoiceWithStudentResponse is an invoice row joined with the
// student's display fields for class listings
type InvoiceWithStudentResponse struct {
	InvoiceResponse
	StudentName string `json:"student_name"`
	RollNum     string `json:"roll_num"`
}

func toInvoiceWithStudentResponse(row *billing.InvoiceWithStudent) *InvoiceWithStudentResponse {
	return &InvoiceWithStudentResponse{
		InvoiceResponse: *toInvoiceResponse(&row.StudentInvoice),
		StudentName:     row.StudentName,
		RollNum:         row.RollNum,
	}
}

// BalancePresetResponse represents an opening-balance preset
type BalancePresetResponse struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toBalancePresetResponse(p *billing.BalancePreset) *BalancePresetResponse {
	return &BalancePresetResponse{
		ID:        p.ID,
		SchoolID:  p.SchoolID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}
