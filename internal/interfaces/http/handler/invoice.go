package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
)

// InvoiceHandler handles invoice generation, listing and payment API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	paymentService *billingapp.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService, paymentService *billingapp.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// Generate creates the month's invoices for every active student of a
// class. Re-running generation for the same period is idempotent.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.GenerateInvoices(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByClass lists the invoices of a class. When month and year are
// absent the full invoice history of the class is returned.
func (h *InvoiceHandler) ListByClass(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("classId"))
	if err != nil {
		h.BadRequest(c, "Invalid class ID format")
		return
	}

	var month, year int
	if v := c.Query("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			h.BadRequest(c, "Invalid month")
			return
		}
	}
	if v := c.Query("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			h.BadRequest(c, "Invalid year")
			return
		}
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), classID, month, year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoices)
}

// Get retrieves a single invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Pay records a payment against an invoice
func (h *InvoiceHandler) Pay(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.paymentService.PayInvoice(c.Request.Context(), schoolID, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ChangeClassRequest is the payload for moving a student to another class
type ChangeClassRequest struct {
	NewClassID uuid.UUID `json:"new_class_id" binding:"required"`
}

// ChangeClass moves a student to another class and regenerates the
// current month's unpaid invoice against the new class's fee structure
func (h *InvoiceHandler) ChangeClass(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var req ChangeClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.ChangeStudentClass(c.Request.Context(), schoolID, studentID, req.NewClassID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Promote moves a batch of students into a target class
func (h *InvoiceHandler) Promote(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.PromoteStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.PromoteStudents(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
