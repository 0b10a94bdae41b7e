package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
)

// PresetHandler handles opening-balance preset API endpoints
type PresetHandler struct {
	BaseHandler
	presetService *billingapp.PresetService
}

// NewPresetHandler creates a new PresetHandler
func NewPresetHandler(presetService *billingapp.PresetService) *PresetHandler {
	return &PresetHandler{
		presetService: presetService,
	}
}

// Create creates a new balance preset
func (h *PresetHandler) Create(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	var req billingapp.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preset, err := h.presetService.CreatePreset(c.Request.Context(), schoolID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, preset)
}

// List lists all balance presets of the school
func (h *PresetHandler) List(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	presets, err := h.presetService.ListPresets(c.Request.Context(), schoolID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, presets)
}

// Delete removes a balance preset
func (h *PresetHandler) Delete(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	presetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid preset ID format")
		return
	}

	if err := h.presetService.DeletePreset(c.Request.Context(), schoolID, presetID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
