package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/service"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
	"github.com/aria7-op/sms-sub008/pkg/response"
)

// FeedbackHandler manages feedback sessions and manual corrections.
type FeedbackHandler struct {
	service *service.LearningService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(svc *service.LearningService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// CreateSession godoc
// @Summary Open a feedback session against a timetable version
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeedbackSessionRequest true "Feedback session"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) CreateSession(c *gin.Context) {
	var req dto.CreateFeedbackSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	session, err := h.service.CreateFeedbackSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// RecordCorrection godoc
// @Summary Record a manual correction and learn from it
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Feedback session ID"
// @Param payload body dto.CorrectionRequest true "Correction"
// @Success 201 {object} response.Envelope
// @Router /feedback/{id}/corrections [post]
func (h *FeedbackHandler) RecordCorrection(c *gin.Context) {
	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	correction, patterns, err := h.service.RecordCorrection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"correction": correction,
		"patterns":   patterns,
	}, nil)
}

// RecordCorrectionBatch godoc
// @Summary Record a batch of corrections from one review pass
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Feedback session ID"
// @Param payload body dto.CorrectionBatchRequest true "Corrections"
// @Success 201 {object} response.Envelope
// @Router /feedback/{id}/corrections/batch [post]
func (h *FeedbackHandler) RecordCorrectionBatch(c *gin.Context) {
	var req dto.CorrectionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	corrections, patterns, err := h.service.RecordCorrectionBatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"corrections": corrections,
		"patterns":    patterns,
	}, nil)
}
