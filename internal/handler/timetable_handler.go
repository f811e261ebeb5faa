package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/service"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
	"github.com/aria7-op/sms-sub008/pkg/response"
)

// TimetableHandler manages timetable generation and version endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a class timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListVersions godoc
// @Summary List timetable versions for a class
// @Tags Timetables
// @Produce json
// @Param schoolId query string true "School ID"
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/versions [get]
func (h *TimetableHandler) ListVersions(c *gin.Context) {
	query := dto.TimetableVersionQuery{
		SchoolID: c.Query("schoolId"),
		ClassID:  c.Query("classId"),
	}
	versions, err := h.service.ListVersions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// GetVersionSlots godoc
// @Summary List slots recorded under a timetable version
// @Tags Timetables
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/versions/{id}/slots [get]
func (h *TimetableHandler) GetVersionSlots(c *gin.Context) {
	slots, err := h.service.GetVersionSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ExportVersion godoc
// @Summary Export a timetable version as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Version ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /timetables/versions/{id}/export [get]
func (h *TimetableHandler) ExportVersion(c *gin.Context) {
	versionID := c.Param("id")
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.service.ExportVersion(c.Request.Context(), versionID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", versionID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
