package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/internal/service"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/response"
)

// RoutineHandler manages routine slot endpoints.
type RoutineHandler struct {
	routines  *service.RoutineService
	conflicts *service.ConflictService
}

// NewRoutineHandler constructs handler.
func NewRoutineHandler(routines *service.RoutineService, conflicts *service.ConflictService) *RoutineHandler {
	return &RoutineHandler{routines: routines, conflicts: conflicts}
}

// respondError surfaces conflict details alongside the error envelope so
// clients can render the blocking slots without a second request.
func respondError(c *gin.Context, err error) {
	var domainErr *models.RoutineConflictError
	if errors.As(err, &domainErr) {
		appErr := appErrors.FromError(err)
		response.JSON(c, appErr.Status, domainErr, nil, map[string]interface{}{"code": appErr.Code})
		return
	}
	response.Error(c, err)
}

// List godoc
// @Summary List routine slots
// @Tags Routines
// @Produce json
// @Param programId query string false "Filter by program"
// @Param semester query int false "Filter by semester"
// @Param section query string false "Filter by section"
// @Param academicYearId query string false "Filter by session"
// @Param teacherId query string false "Filter by teacher"
// @Param dayIndex query int false "Filter by day"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /routines [get]
func (h *RoutineHandler) List(c *gin.Context) {
	var filter models.RoutineSlotFilter
	filter.ProgramID = c.Query("programId")
	filter.Section = c.Query("section")
	filter.AcademicYearID = c.Query("academicYearId")
	filter.TeacherID = c.Query("teacherId")
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if day, err := strconv.Atoi(c.Query("dayIndex")); err == nil {
		filter.DayIndex = &day
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	slots, total, err := h.routines.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one routine slot
// @Tags Routines
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /routines/{id} [get]
func (h *RoutineHandler) Get(c *gin.Context) {
	slot, err := h.routines.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Place a class on the grid
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoutineSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /routines [post]
func (h *RoutineHandler) Create(c *gin.Context) {
	var req dto.CreateRoutineSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slots, err := h.routines.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, slots)
}

// Update godoc
// @Summary Reassign a routine slot in place
// @Tags Routines
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.UpdateRoutineSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /routines/{id} [put]
func (h *RoutineHandler) Update(c *gin.Context) {
	var req dto.UpdateRoutineSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.routines.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a routine slot
// @Description Deleting any record of a multi-period span removes the whole span
// @Tags Routines
// @Produce json
// @Param id path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Router /routines/{id} [delete]
func (h *RoutineHandler) Delete(c *gin.Context) {
	if err := h.routines.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSpan godoc
// @Summary Delete a multi-period span
// @Tags Routines
// @Produce json
// @Param spanId path string true "Span ID"
// @Success 200 {object} response.Envelope
// @Router /routines/span/{spanId} [delete]
func (h *RoutineHandler) DeleteSpan(c *gin.Context) {
	removed, err := h.routines.DeleteSpan(c.Request.Context(), c.Param("spanId"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}

// Grid godoc
// @Summary Weekly grid for one section
// @Tags Routines
// @Produce json
// @Param programId query string true "Program"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Param academicYearId query string true "Session"
// @Success 200 {object} response.Envelope
// @Router /routines/grid [get]
func (h *RoutineHandler) Grid(c *gin.Context) {
	var q dto.GridQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grid query"))
		return
	}
	grid, err := h.routines.Grid(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// CheckConflicts godoc
// @Summary Dry-run conflict check for a proposed assignment
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Proposed assignment"
// @Success 200 {object} response.Envelope
// @Router /routines/check-conflicts [post]
func (h *RoutineHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.conflicts.CheckScheduleConflicts(c.Request.Context(), nil, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sweep godoc
// @Summary Advisory full-grid sweep for one section
// @Description Parity-blind and recurrence-blind on purpose; expected to over-report
// @Tags Routines
// @Produce json
// @Param programId query string true "Program"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Param academicYearId query string true "Session"
// @Success 200 {object} response.Envelope
// @Router /routines/sweep [get]
func (h *RoutineHandler) Sweep(c *gin.Context) {
	var q dto.GridQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sweep query"))
		return
	}
	groups, err := h.conflicts.SectionSweep(c.Request.Context(), q.ProgramID, q.Semester, q.Section, q.AcademicYearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Copy godoc
// @Summary Copy a section routine between sessions
// @Tags Routines
// @Accept json
// @Produce json
// @Param payload body dto.CopyRoutineRequest true "Copy payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /routines/copy [post]
func (h *RoutineHandler) Copy(c *gin.Context) {
	var req dto.CopyRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.routines.Copy(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// TeacherConflicts godoc
// @Summary Coordinates where a teacher is double-booked
// @Tags Routines
// @Produce json
// @Param id path string true "Teacher ID"
// @Param academicYearId query string true "Session"
// @Param semester query int false "Restrict to one semester"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/conflicts [get]
func (h *RoutineHandler) TeacherConflicts(c *gin.Context) {
	yearID := c.Query("academicYearId")
	if yearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required"))
		return
	}
	var semester *int
	if raw := c.Query("semester"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a number"))
			return
		}
		semester = &value
	}
	groups, err := h.conflicts.TeacherScheduleConflicts(c.Request.Context(), c.Param("id"), yearID, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
