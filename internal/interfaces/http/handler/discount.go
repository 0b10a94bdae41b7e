package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
)

// DiscountHandler handles discount group and student discount API endpoints
type DiscountHandler struct {
	BaseHandler
	discountService *billingapp.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(discountService *billingapp.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
	}
}

// CreateGroup creates a new discount group
func (h *DiscountHandler) CreateGroup(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.DiscountGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.discountService.CreateDiscountGroup(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, group)
}

// ListGroups lists all discount groups of the school
func (h *DiscountHandler) ListGroups(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	groups, err := h.discountService.ListDiscountGroups(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, groups)
}

// UpdateGroup updates a discount group. Existing student assignments
// keep their snapshot values.
func (h *DiscountHandler) UpdateGroup(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid discount group ID format")
		return
	}

	var req billingapp.DiscountGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.discountService.UpdateDiscountGroup(c.Request.Context(), schoolID, groupID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, group)
}

// DeleteGroup deletes a discount group
func (h *DiscountHandler) DeleteGroup(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid discount group ID format")
		return
	}

	if err := h.discountService.DeleteDiscountGroup(c.Request.Context(), schoolID, groupID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AssignDiscount assigns a discount to a student, either from a group
// or as a custom one-off discount
func (h *DiscountHandler) AssignDiscount(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.AssignDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	discount, err := h.discountService.AssignStudentDiscount(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, discount)
}

// ListStudentDiscounts lists the active discounts of a student
func (h *DiscountHandler) ListStudentDiscounts(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	discounts, err := h.discountService.ListActiveDiscounts(c.Request.Context(), studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, discounts)
}

// RemoveDiscount removes a student discount assignment
func (h *DiscountHandler) RemoveDiscount(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	discountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid discount ID format")
		return
	}

	if err := h.discountService.RemoveStudentDiscount(c.Request.Context(), schoolID, discountID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
