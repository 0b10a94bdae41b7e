package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/domain/shared/valueobject"
)

// InvoiceService runs invoice generation, class-change regeneration and
// student promotion
type InvoiceService struct {
	invoiceRepo   billing.StudentInvoiceRepository
	structureRepo billing.FeeStructureRepository
	headRepo      billing.FeeHeadRepository
	discountRepo  billing.StudentDiscountRepository
	studentRepo   school.StudentRepository
	classRepo     school.ClassRepository
	examCleaner   school.ExamHistoryCleaner
	publisher     shared.EventPublisher
	now           func() time.Time
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithEventPublisher wires an event publisher for invoice lifecycle events
func WithEventPublisher(publisher shared.EventPublisher) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.publisher = publisher
	}
}

// WithExamHistoryCleaner wires the exam subsystem hook used by promotion
func WithExamHistoryCleaner(cleaner school.ExamHistoryCleaner) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.examCleaner = cleaner
	}
}

// WithClock overrides the time source, used by tests to pin the current
// billing period
func WithClock(now func() time.Time) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.now = now
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.StudentInvoiceRepository,
	structureRepo billing.FeeStructureRepository,
	headRepo billing.FeeHeadRepository,
	discountRepo billing.StudentDiscountRepository,
	studentRepo school.StudentRepository,
	classRepo school.ClassRepository,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:   invoiceRepo,
		structureRepo: structureRepo,
		headRepo:      headRepo,
		discountRepo:  discountRepo,
		studentRepo:   studentRepo,
		classRepo:     classRepo,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInvoicesRequest is the payload for batch invoice generation
type GenerateInvoicesRequest struct {
	ClassID uuid.UUID `json:"class_id" binding:"required"`
	Month   int       `json:"month" binding:"required,min=1,max=12"`
	Year    int       `json:"year" binding:"required,min=2000,max=2100"`
}

// GenerateInvoicesResult summarizes a batch generation run
type GenerateInvoicesResult struct {
	GeneratedCount int               `json:"generated_count"`
	SkippedCount   int               `json:"skipped_count"`
	Message        string            `json:"message"`
	Invoices       []InvoiceResponse `json:"invoices"`
}

// GenerateInvoices creates the month's invoices for every active
// student of a class. Students who already hold an invoice for the
// period are skipped, rerunning generation is idempotent. Each invoice
// is inserted independently, a losing concurrent insert fails that
// invoice only and is counted as skipped.
func (s *InvoiceService) GenerateInvoices(ctx context.Context, schoolID uuid.UUID, req GenerateInvoicesRequest) (*GenerateInvoicesResult, error) {
	structure, err := s.structureRepo.FindByClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, shared.NewDomainError("NO_FEE_STRUCTURE", "No fee structure defined for this class")
	}
	if structure.SchoolID != schoolID {
		return nil, shared.NewDomainError("FORBIDDEN", "Fee structure belongs to another school")
	}

	students, err := s.studentRepo.FindActiveByClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	currentFee := structure.CurrentFee()
	dueDate := structure.DueDateIn(req.Year, req.Month)
	breakdown, err := s.snapshotBreakdown(ctx, structure)
	if err != nil {
		return nil, err
	}

	result := &GenerateInvoicesResult{Invoices: make([]InvoiceResponse, 0, len(students))}
	for i := range students {
		student := &students[i]

		exists, err := s.invoiceRepo.ExistsForPeriod(ctx, student.ID, req.Month, req.Year)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedCount++
			continue
		}

		history, err := s.invoiceRepo.FindByStudent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		balance := billing.RunningBalance(history)

		invoice, err := billing.NewStudentInvoice(
			schoolID, student.ID, req.ClassID,
			req.Month, req.Year,
			currentFee, balance, breakdown, dueDate,
		)
		if err != nil {
			return nil, err
		}

		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			// Lost the race against a concurrent generation run for the
			// same (student, month, year), the unique index is the backstop.
			if derr, ok := err.(*shared.DomainError); ok && derr.Code == "ALREADY_EXISTS" {
				result.SkippedCount++
				continue
			}
			return nil, err
		}

		s.publishEvents(ctx, invoice)
		result.GeneratedCount++
		result.Invoices = append(result.Invoices, *toInvoiceResponse(invoice))
	}

	if result.GeneratedCount == 0 {
		result.Message = "No new invoices generated"
	} else {
		result.Message = "Invoices generated"
	}
	return result, nil
}

// ListInvoices lists a class's invoices with student display fields.
// Month and year narrow the listing when non-zero.
func (s *InvoiceService) ListInvoices(ctx context.Context, classID uuid.UUID, month, year int) ([]InvoiceWithStudentResponse, error) {
	rows, err := s.invoiceRepo.FindByClassPeriod(ctx, classID, month, year)
	if err != nil {
		return nil, err
	}
	responses := make([]InvoiceWithStudentResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toInvoiceWithStudentResponse(&rows[i]))
	}
	return responses, nil
}

// ChangeStudentClass moves a student to a new class and regenerates the
// current month's invoice against the new class's fee structure. The
// class change is applied even when no invoice qualifies for
// regeneration.
func (s *InvoiceService) ChangeStudentClass(ctx context.Context, schoolID, studentID, newClassID uuid.UUID) (*InvoiceResponse, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "Student not found")
	}
	if student.IsRetired() {
		return nil, shared.NewDomainError("STUDENT_RETIRED", "Cannot change class of a retired student")
	}

	class, err := s.classRepo.FindByID(ctx, newClassID)
	if err != nil {
		return nil, err
	}
	if class == nil || class.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "Target class not found")
	}

	if err := student.AssignClass(newClassID); err != nil {
		return nil, err
	}
	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}

	return s.regenerateCurrentInvoice(ctx, schoolID, student, newClassID)
}

// regenerateCurrentInvoice replaces the student's current-month invoice
// against the given class's structure. Returns nil without error when
// nothing qualifies: no invoice this month, the invoice is already
// Paid, or the class has no fee structure.
func (s *InvoiceService) regenerateCurrentInvoice(ctx context.Context, schoolID uuid.UUID, student *school.Student, classID uuid.UUID) (*InvoiceResponse, error) {
	nowT := s.now()
	month, year := int(nowT.Month()), nowT.Year()

	current, err := s.invoiceRepo.FindByStudentPeriod(ctx, student.ID, month, year)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Status.IsRegenerable() {
		return nil, nil
	}

	structure, err := s.structureRepo.FindByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, nil
	}

	currentFee := structure.CurrentFee()
	breakdown, err := s.snapshotBreakdown(ctx, structure)
	if err != nil {
		return nil, err
	}

	// The balance is computed over the history without the invoice being
	// replaced, it no longer counts toward arrears.
	history, err := s.invoiceRepo.FindByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	remaining := make([]billing.StudentInvoice, 0, len(history))
	for i := range history {
		if history[i].ID != current.ID {
			remaining = append(remaining, history[i])
		}
	}
	balance := billing.RunningBalance(remaining)

	discounts, err := s.discountRepo.FindActiveByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	discountBreakdown := make(billing.DiscountBreakdown, 0, len(discounts))
	for i := range discounts {
		amount := discounts[i].AmountAgainst(currentFee)
		discountBreakdown = append(discountBreakdown, billing.DiscountBreakdownLine{
			Name:   discounts[i].Name,
			Amount: amount.Amount(),
		})
	}

	replacement, err := billing.NewRegeneratedInvoice(
		schoolID, student.ID, classID,
		month, year,
		currentFee, balance, breakdown, discountBreakdown,
		valueobject.NewMoneyPKR(current.PaidAmount),
		structure.DueDateIn(year, month),
	)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Replace(ctx, current.ID, replacement); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, replacement)
	return toInvoiceResponse(replacement), nil
}

// PromoteStudentsRequest is the payload for the batch promotion flow at
// session end
type PromoteStudentsRequest struct {
	StudentIDs       []uuid.UUID `json:"student_ids" binding:"required,min=1"`
	TargetClassID    uuid.UUID   `json:"target_class_id" binding:"required"`
	ClearExamHistory bool        `json:"clear_exam_history"`
	NewSession       string      `json:"new_session" binding:"max=20"`
}

// PromoteStudentsResult summarizes a promotion run
type PromoteStudentsResult struct {
	PromotedCount    int    `json:"promoted_count"`
	SkippedCount     int    `json:"skipped_count"`
	RegeneratedCount int    `json:"regenerated_count"`
	Message          string `json:"message"`
}

// PromoteStudents moves a batch of students into the target class,
// regenerating each student's current-month invoice. Retired and
// unknown students are skipped, a failure on one student does not stop
// the batch.
func (s *InvoiceService) PromoteStudents(ctx context.Context, schoolID uuid.UUID, req PromoteStudentsRequest) (*PromoteStudentsResult, error) {
	class, err := s.classRepo.FindByID(ctx, req.TargetClassID)
	if err != nil {
		return nil, err
	}
	if class == nil || class.SchoolID != schoolID {
		return nil, shared.NewDomainError("NOT_FOUND", "Target class not found")
	}

	result := &PromoteStudentsResult{}
	for _, studentID := range req.StudentIDs {
		student, err := s.studentRepo.FindByID(ctx, studentID)
		if err != nil {
			return nil, err
		}
		if student == nil || student.SchoolID != schoolID || student.IsRetired() {
			result.SkippedCount++
			continue
		}

		if err := student.AssignClass(req.TargetClassID); err != nil {
			result.SkippedCount++
			continue
		}
		if req.NewSession != "" {
			student.SetSession(req.NewSession)
		}
		if err := s.studentRepo.Save(ctx, student); err != nil {
			return nil, err
		}

		if req.ClearExamHistory && s.examCleaner != nil {
			if err := s.examCleaner.ClearForStudent(ctx, studentID); err != nil {
				return nil, err
			}
		}

		regenerated, err := s.regenerateCurrentInvoice(ctx, schoolID, student, req.TargetClassID)
		if err != nil {
			return nil, err
		}
		if regenerated != nil {
			result.RegeneratedCount++
		}
		result.PromotedCount++
	}

	result.Message = "Promotion completed"
	return result, nil
}

// snapshotBreakdown builds the invoice charge lines from a fee
// structure, freezing the head names as the catalog reads right now.
// A head deleted since the structure was saved yields an empty name.
func (s *InvoiceService) snapshotBreakdown(ctx context.Context, structure *billing.FeeStructure) (billing.FeeBreakdown, error) {
	ids := make([]uuid.UUID, 0, len(structure.Lines))
	for _, line := range structure.Lines {
		ids = append(ids, line.FeeHeadID)
	}
	heads, err := s.headRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(heads))
	for i := range heads {
		names[heads[i].ID] = heads[i].Name
	}

	breakdown := make(billing.FeeBreakdown, 0, len(structure.Lines))
	for _, line := range structure.Lines {
		breakdown = append(breakdown, billing.FeeBreakdownLine{
			FeeHeadID: line.FeeHeadID,
			HeadName:  names[line.FeeHeadID],
			Amount:    line.Amount,
		})
	}
	return breakdown, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.StudentInvoice) {
	if s.publisher == nil {
		return
	}
	// Event delivery is best-effort, listeners only invalidate caches.
	_ = s.publisher.Publish(ctx, invoice.GetDomainEvents()...)
	invoice.ClearDomainEvents()
}

// GetInvoice returns a single invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}
