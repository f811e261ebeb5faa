package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/models"
	"github.com/aria7-op/sms-sub008/internal/service"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
	"github.com/aria7-op/sms-sub008/pkg/response"
)

// PatternHandler exposes learned scheduling patterns.
type PatternHandler struct {
	service *service.PatternService
}

// NewPatternHandler constructs handler.
func NewPatternHandler(svc *service.PatternService) *PatternHandler {
	return &PatternHandler{service: svc}
}

// List godoc
// @Summary List learned patterns
// @Tags Patterns
// @Produce json
// @Param type query string false "Pattern type"
// @Param entityId query string false "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /patterns [get]
func (h *PatternHandler) List(c *gin.Context) {
	var query dto.PatternQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	filter := models.PatternFilter{
		Type:     models.PatternType(query.Type),
		EntityID: query.EntityID,
	}
	patterns, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patterns, nil)
}
