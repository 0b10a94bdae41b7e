package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
)

// FeeCatalogHandler handles fee head and fee structure API endpoints
type FeeCatalogHandler struct {
	BaseHandler
	catalogService *billingapp.FeeCatalogService
}

// NewFeeCatalogHandler creates a new FeeCatalogHandler
func NewFeeCatalogHandler(catalogService *billingapp.FeeCatalogService) *FeeCatalogHandler {
	return &FeeCatalogHandler{
		catalogService: catalogService,
	}
}

// CreateFeeHead creates a new fee head for the school
func (h *FeeCatalogHandler) CreateFeeHead(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.CreateFeeHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	head, err := h.catalogService.CreateFeeHead(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, head)
}

// ListFeeHeads lists all fee heads of the school
func (h *FeeCatalogHandler) ListFeeHeads(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	heads, err := h.catalogService.ListFeeHeads(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, heads)
}

// DeleteFeeHead deletes a fee head. Heads referenced by a fee
// structure cannot be removed.
func (h *FeeCatalogHandler) DeleteFeeHead(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	headID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid fee head ID format")
		return
	}

	if err := h.catalogService.DeleteFeeHead(c.Request.Context(), schoolID, headID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// UpsertFeeStructure creates or replaces the fee structure of a class
func (h *FeeCatalogHandler) UpsertFeeStructure(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.UpsertFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	structure, err := h.catalogService.UpsertFeeStructure(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, structure)
}

// GetFeeStructure retrieves the fee structure assigned to a class
func (h *FeeCatalogHandler) GetFeeStructure(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("classId"))
	if err != nil {
		h.BadRequest(c, "Invalid class ID format")
		return
	}

	structure, err := h.catalogService.GetFeeStructure(c.Request.Context(), classID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, structure)
}
