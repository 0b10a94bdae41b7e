package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/schoolpay/backend/internal/application/billing"
)

// ReportHandler handles the read-only fee reporting API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *billingapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *billingapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetFeeStats aggregates the school's collection summary. Month and
// year query parameters narrow the aggregation when present.
func (h *ReportHandler) GetFeeStats(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
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

	stats, err := h.reportService.GetFeeStats(c.Request.Context(), schoolID, month, year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetStudentFeeHistory returns a student's full invoice history with
// lifetime totals
func (h *ReportHandler) GetStudentFeeHistory(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	history, err := h.reportService.GetStudentFeeHistory(c.Request.Context(), studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}

// GetDefaulters lists the class's students with outstanding dues
func (h *ReportHandler) GetDefaulters(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("classId"))
	if err != nil {
		h.BadRequest(c, "Invalid class ID format")
		return
	}

	defaulters, err := h.reportService.GetDefaultersByClass(c.Request.Context(), classID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, defaulters)
}

// SearchStudents filters the school's per-student fee rollups by roll
// number and/or class
func (h *ReportHandler) SearchStudents(c *gin.Context) {
	schoolID, err := getSchoolID(c)
	if err != nil {
		h.BadRequest(c, "Invalid school ID")
		return
	}

	rollNum := c.Query("roll_num")

	classID := uuid.Nil
	if v := c.Query("class_id"); v != "" {
		classID, err = uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid class ID format")
			return
		}
	}

	results, err := h.reportService.SearchStudentsFees(c.Request.Context(), schoolID, rollNum, classID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}
