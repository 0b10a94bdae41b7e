package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormStudentInvoiceRepository implements StudentInvoiceRepository using GORM
type GormStudentInvoiceRepository struct {
	db *gorm.DB
}

// NewGormStudentInvoiceRepository creates a new GormStudentInvoiceRepository
func NewGormStudentInvoiceRepository(db *gorm.DB) *GormStudentInvoiceRepository {
	return &GormStudentInvoiceRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Save creates or updates an invoice. A concurrent generation run that
// loses the race on the (student, month, year) unique index surfaces as
// an ALREADY_EXISTS domain error rather than a bare driver error.
func (r *GormStudentInvoiceRepository) Save(ctx context.Context, invoice *billing.StudentInvoice) error {
	model := models.StudentInvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "Invoice already exists for this billing period")
		}
		return err
	}
	return nil
}

// SaveAll inserts a batch of invoices in one transaction
func (r *GormStudentInvoiceRepository) SaveAll(ctx context.Context, invoices []*billing.StudentInvoice) error {
	if len(invoices) == 0 {
		return nil
	}
	invoiceModels := make([]*models.StudentInvoiceModel, len(invoices))
	for i, inv := range invoices {
		invoiceModels[i] = models.StudentInvoiceModelFromDomain(inv)
	}
	if err := r.db.WithContext(ctx).Create(&invoiceModels).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "Invoice already exists for this billing period")
		}
		return err
	}
	return nil
}

// FindByID finds an invoice by its ID, returning nil when absent
func (r *GormStudentInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.StudentInvoice, error) {
	var model models.StudentInvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds all invoices of a student, newest period first
func (r *GormStudentInvoiceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentInvoice, error) {
	var invoiceModels []models.StudentInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("year DESC, month DESC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.StudentInvoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByStudentPeriod finds the student's invoice for one billing
// period, returning nil when none exists
func (r *GormStudentInvoiceRepository) FindByStudentPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (*billing.StudentInvoice, error) {
	var model models.StudentInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND month = ? AND year = ?", studentID, month, year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// invoiceWithStudentRow carries the joined columns of an invoice and
// its student's display fields
type invoiceWithStudentRow struct {
	models.StudentInvoiceModel
	StudentName string
	RollNum     string
}

// FindByClassPeriod lists a class's invoices joined with student names,
// month/year 0 meaning unfiltered
func (r *GormStudentInvoiceRepository) FindByClassPeriod(ctx context.Context, classID uuid.UUID, month, year int) ([]billing.InvoiceWithStudent, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StudentInvoiceModel{}).
		Select("student_invoices.*, students.name AS student_name, students.roll_num AS roll_num").
		Joins("JOIN students ON students.id = student_invoices.student_id").
		Where("student_invoices.class_id = ?", classID)
	if month > 0 {
		query = query.Where("student_invoices.month = ?", month)
	}
	if year > 0 {
		query = query.Where("student_invoices.year = ?", year)
	}

	var rows []invoiceWithStudentRow
	if err := query.
		Order("students.roll_num ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]billing.InvoiceWithStudent, len(rows))
	for i, row := range rows {
		result[i] = billing.InvoiceWithStudent{
			StudentInvoice: *row.StudentInvoiceModel.ToDomain(),
			StudentName:    row.StudentName,
			RollNum:        row.RollNum,
		}
	}
	return result, nil
}

// ExistsForPeriod checks if the student already has an invoice for the period
func (r *GormStudentInvoiceRepository) ExistsForPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentInvoiceModel{}).
		Where("student_id = ? AND month = ? AND year = ?", studentID, month, year).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace deletes the old invoice and inserts its replacement in one
// transaction, so a class-change regeneration never leaves the student
// with zero or two invoices for the period.
func (r *GormStudentInvoiceRepository) Replace(ctx context.Context, oldID uuid.UUID, replacement *billing.StudentInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.StudentInvoiceModel{}, "id = ?", oldID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		model := models.StudentInvoiceModelFromDomain(replacement)
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewDomainError("ALREADY_EXISTS", "Invoice already exists for this billing period")
			}
			return err
		}
		return nil
	})
}

// Delete removes an invoice
func (r *GormStudentInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentInvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStudentInvoiceRepository implements StudentInvoiceRepository
var _ billing.StudentInvoiceRepository = (*GormStudentInvoiceRepository)(nil)
