package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/service"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/response"
)

// TimeGridHandler manages the slot-index to wall-clock mapping.
type TimeGridHandler struct {
	service *service.TimeGridService
}

// NewTimeGridHandler constructs handler.
func NewTimeGridHandler(svc *service.TimeGridService) *TimeGridHandler {
	return &TimeGridHandler{service: svc}
}

// List godoc
// @Summary List daily periods
// @Tags TimeGrid
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timegrid [get]
func (h *TimeGridHandler) List(c *gin.Context) {
	periods, err := h.service.ListPeriods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Replace godoc
// @Summary Replace the daily period grid
// @Tags TimeGrid
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceTimeGridRequest true "Grid payload"
// @Success 200 {object} response.Envelope
// @Router /timegrid [put]
func (h *TimeGridHandler) Replace(c *gin.Context) {
	var req dto.ReplaceTimeGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	periods, err := h.service.Replace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}
