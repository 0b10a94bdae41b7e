package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// DefaultDueDay is the day of month an invoice falls due when the
// structure does not specify one.
const DefaultDueDay = 10

// FeeLine is one (fee head, amount) pair inside a FeeStructure.
// It is a value object stored as JSONB within the aggregate.
type FeeLine struct {
	FeeHeadID uuid.UUID       `json:"fee_head_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// FeeLines implements GORM Scanner/Valuer for JSONB storage
type FeeLines []FeeLine

// Value implements driver.Valuer
func (l FeeLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *FeeLines) Scan(value interface{}) error {
	if value == nil {
		*l = FeeLines{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeLines: unsupported type")
	}

	if len(bytes) == 0 {
		*l = FeeLines{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Total returns the sum of all line amounts
func (l FeeLines) Total() valueobject.Money {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Amount)
	}
	return valueobject.NewMoneyPKR(total)
}

// FeeStructure is the per-class fee schedule aggregate. Exactly one
// structure exists per class; writes merge into the existing record so
// the structure ID stays stable across updates.
type FeeStructure struct {
	shared.SchoolAggregateRoot
	ClassID uuid.UUID       `json:"class_id"`
	Lines   FeeLines        `json:"lines"`
	LateFee decimal.Decimal `json:"late_fee"`
	DueDay  int             `json:"due_day"`
}

// NewFeeStructure creates a new fee structure for a class
func NewFeeStructure(schoolID, classID uuid.UUID, lines FeeLines, lateFee valueobject.Money, dueDay int) (*FeeStructure, error) {
	if schoolID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SCHOOL", "School ID cannot be empty")
	}
	if classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	if dueDay == 0 {
		dueDay = DefaultDueDay
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, shared.NewDomainError("INVALID_DUE_DAY", "Due day must be between 1 and 31")
	}
	if lateFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LATE_FEE", "Late fee cannot be negative")
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	return &FeeStructure{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		ClassID:             classID,
		Lines:               lines,
		LateFee:             lateFee.Amount(),
		DueDay:              dueDay,
	}, nil
}

func validateLines(lines FeeLines) error {
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if line.FeeHeadID == uuid.Nil {
			return shared.NewDomainError("INVALID_FEE_LINE", "Fee line must reference a fee head")
		}
		if line.Amount.IsNegative() {
			return shared.NewDomainError("INVALID_FEE_LINE", "Fee line amount cannot be negative")
		}
		if seen[line.FeeHeadID] {
			return shared.NewDomainError("DUPLICATE_FEE_LINE", "Fee structure already contains this fee head")
		}
		seen[line.FeeHeadID] = true
	}
	return nil
}

// Merge overwrites the schedule in place, keeping the structure identity
func (fs *FeeStructure) Merge(lines FeeLines, lateFee valueobject.Money, dueDay int) error {
	if dueDay == 0 {
		dueDay = DefaultDueDay
	}
	if dueDay < 1 || dueDay > 31 {
		return shared.NewDomainError("INVALID_DUE_DAY", "Due day must be between 1 and 31")
	}
	if lateFee.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE", "Late fee cannot be negative")
	}
	if err := validateLines(lines); err != nil {
		return err
	}

	fs.Lines = lines
	fs.LateFee = lateFee.Amount()
	fs.DueDay = dueDay
	fs.UpdatedAt = time.Now()
	fs.IncrementVersion()
	return nil
}

// CurrentFee returns the sum of all fee lines
func (fs *FeeStructure) CurrentFee() valueobject.Money {
	return fs.Lines.Total()
}

// GetLateFeeMoney returns the late fee as Money
func (fs *FeeStructure) GetLateFeeMoney() valueobject.Money {
	return valueobject.NewMoneyPKR(fs.LateFee)
}

// DueDateIn returns the invoice due date for the given billing period.
// The due day is clamped to the last day of short months, a structure
// with due day 31 falls due on Feb 28 in a non-leap year.
func (fs *FeeStructure) DueDateIn(year, month int) time.Time {
	day := fs.DueDay
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
