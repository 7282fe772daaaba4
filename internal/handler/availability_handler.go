package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/service"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/response"
)

// AvailabilityHandler answers free-resource queries for the slot editor.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Teachers godoc
// @Summary Teachers free at a coordinate
// @Tags Availability
// @Produce json
// @Param academicYearId query string true "Session"
// @Param dayIndex query int true "Day index"
// @Param slotIndex query int true "Slot index"
// @Param semester query int true "Semester"
// @Param exclude query []string false "Teacher ids to exclude"
// @Param labGroupId query string false "Lab group family to exempt"
// @Success 200 {object} response.Envelope
// @Router /availability/teachers [get]
func (h *AvailabilityHandler) Teachers(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	teachers, err := h.service.AvailableTeachers(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AvailableTeachersResponse{Teachers: teachers}, nil)
}

// Rooms godoc
// @Summary Rooms free at a coordinate
// @Tags Availability
// @Produce json
// @Param academicYearId query string true "Session"
// @Param dayIndex query int true "Day index"
// @Param slotIndex query int true "Slot index"
// @Param semester query int true "Semester"
// @Param exclude query []string false "Room ids to exclude"
// @Param labGroupId query string false "Lab group family to exempt"
// @Success 200 {object} response.Envelope
// @Router /availability/rooms [get]
func (h *AvailabilityHandler) Rooms(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	rooms, err := h.service.AvailableRooms(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AvailableRoomsResponse{Rooms: rooms}, nil)
}
