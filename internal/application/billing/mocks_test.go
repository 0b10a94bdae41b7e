package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/school"
	"github.com/schoolpay/backend/internal/domain/shared"
)

type mockFeeHeadRepo struct {
	mock.Mock
}

func (m *mockFeeHeadRepo) Save(ctx context.Context, head *billing.FeeHead) error {
	return m.Called(ctx, head).Error(0)
}

func (m *mockFeeHeadRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeHead, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.FeeHead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeHeadRepo) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.FeeHead, error) {
	args := m.Called(ctx, schoolID)
	if v := args.Get(0); v != nil {
		return v.([]billing.FeeHead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeHeadRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.FeeHead, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]billing.FeeHead), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeHeadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockFeeStructureRepo struct {
	mock.Mock
}

func (m *mockFeeStructureRepo) Save(ctx context.Context, structure *billing.FeeStructure) error {
	return m.Called(ctx, structure).Error(0)
}

func (m *mockFeeStructureRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeStructure, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.FeeStructure), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeStructureRepo) FindByClass(ctx context.Context, classID uuid.UUID) (*billing.FeeStructure, error) {
	args := m.Called(ctx, classID)
	if v := args.Get(0); v != nil {
		return v.(*billing.FeeStructure), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeStructureRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockDiscountGroupRepo struct {
	mock.Mock
}

func (m *mockDiscountGroupRepo) Save(ctx context.Context, group *billing.DiscountGroup) error {
	return m.Called(ctx, group).Error(0)
}

func (m *mockDiscountGroupRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.DiscountGroup, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.DiscountGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountGroupRepo) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.DiscountGroup, error) {
	args := m.Called(ctx, schoolID)
	if v := args.Get(0); v != nil {
		return v.([]billing.DiscountGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountGroupRepo) FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*billing.DiscountGroup, error) {
	args := m.Called(ctx, schoolID, name)
	if v := args.Get(0); v != nil {
		return v.(*billing.DiscountGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountGroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockStudentDiscountRepo struct {
	mock.Mock
}

func (m *mockStudentDiscountRepo) Save(ctx context.Context, discount *billing.StudentDiscount) error {
	return m.Called(ctx, discount).Error(0)
}

func (m *mockStudentDiscountRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.StudentDiscount, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.StudentDiscount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentDiscountRepo) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentDiscount, error) {
	args := m.Called(ctx, studentID)
	if v := args.Get(0); v != nil {
		return v.([]billing.StudentDiscount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentDiscountRepo) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentDiscount, error) {
	args := m.Called(ctx, studentID)
	if v := args.Get(0); v != nil {
		return v.([]billing.StudentDiscount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentDiscountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockBalancePresetRepo struct {
	mock.Mock
}

func (m *mockBalancePresetRepo) Save(ctx context.Context, preset *billing.BalancePreset) error {
	return m.Called(ctx, preset).Error(0)
}

func (m *mockBalancePresetRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.BalancePreset, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.BalancePreset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBalancePresetRepo) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]billing.BalancePreset, error) {
	args := m.Called(ctx, schoolID)
	if v := args.Get(0); v != nil {
		return v.([]billing.BalancePreset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBalancePresetRepo) FindByNameForSchool(ctx context.Context, schoolID uuid.UUID, name string) (*billing.BalancePreset, error) {
	args := m.Called(ctx, schoolID, name)
	if v := args.Get(0); v != nil {
		return v.(*billing.BalancePreset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBalancePresetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Save(ctx context.Context, invoice *billing.StudentInvoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) SaveAll(ctx context.Context, invoices []*billing.StudentInvoice) error {
	return m.Called(ctx, invoices).Error(0)
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.StudentInvoice, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*billing.StudentInvoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.StudentInvoice, error) {
	args := m.Called(ctx, studentID)
	if v := args.Get(0); v != nil {
		return v.([]billing.StudentInvoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) FindByStudentPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (*billing.StudentInvoice, error) {
	args := m.Called(ctx, studentID, month, year)
	if v := args.Get(0); v != nil {
		return v.(*billing.StudentInvoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) FindByClassPeriod(ctx context.Context, classID uuid.UUID, month, year int) ([]billing.InvoiceWithStudent, error) {
	args := m.Called(ctx, classID, month, year)
	if v := args.Get(0); v != nil {
		return v.([]billing.InvoiceWithStudent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) ExistsForPeriod(ctx context.Context, studentID uuid.UUID, month, year int) (bool, error) {
	args := m.Called(ctx, studentID, month, year)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) Replace(ctx context.Context, oldID uuid.UUID, replacement *billing.StudentInvoice) error {
	return m.Called(ctx, oldID, replacement).Error(0)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockFeeReportRepo struct {
	mock.Mock
}

func (m *mockFeeReportRepo) Stats(ctx context.Context, schoolID uuid.UUID, month, year int) (*billing.FeeStats, error) {
	args := m.Called(ctx, schoolID, month, year)
	if v := args.Get(0); v != nil {
		return v.(*billing.FeeStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeReportRepo) DefaultersByClass(ctx context.Context, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	args := m.Called(ctx, classID)
	if v := args.Get(0); v != nil {
		return v.([]billing.StudentFeeAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFeeReportRepo) SearchStudents(ctx context.Context, schoolID uuid.UUID, rollNum string, classID uuid.UUID) ([]billing.StudentFeeAggregate, error) {
	args := m.Called(ctx, schoolID, rollNum, classID)
	if v := args.Get(0); v != nil {
		return v.([]billing.StudentFeeAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStudentRepo struct {
	mock.Mock
}

func (m *mockStudentRepo) Save(ctx context.Context, student *school.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id uuid.UUID) (*school.Student, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*school.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentRepo) FindByClass(ctx context.Context, classID uuid.UUID) ([]school.Student, error) {
	args := m.Called(ctx, classID)
	if v := args.Get(0); v != nil {
		return v.([]school.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStudentRepo) FindActiveByClass(ctx context.Context, classID uuid.UUID) ([]school.Student, error) {
	args := m.Called(ctx, classID)
	if v := args.Get(0); v != nil {
		return v.([]school.Student), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockClassRepo struct {
	mock.Mock
}

func (m *mockClassRepo) Save(ctx context.Context, class *school.Class) error {
	return m.Called(ctx, class).Error(0)
}

func (m *mockClassRepo) FindByID(ctx context.Context, id uuid.UUID) (*school.Class, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*school.Class), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClassRepo) FindBySchool(ctx context.Context, schoolID uuid.UUID) ([]school.Class, error) {
	args := m.Called(ctx, schoolID)
	if v := args.Get(0); v != nil {
		return v.([]school.Class), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}
