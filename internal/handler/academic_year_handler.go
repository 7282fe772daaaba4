package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/service"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/response"
)

// AcademicYearHandler manages session lifecycle endpoints.
type AcademicYearHandler struct {
	service *service.AcademicYearService
}

// NewAcademicYearHandler constructs handler.
func NewAcademicYearHandler(svc *service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: svc}
}

// List godoc
// @Summary List academic years
// @Tags AcademicYears
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	years, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Get godoc
// @Summary Get one academic year
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	year, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Register a new academic year
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param payload body dto.CreateAcademicYearRequest true "Year payload"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req dto.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Activate godoc
// @Summary Activate a session, archiving the previous one
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/activate [post]
func (h *AcademicYearHandler) Activate(c *gin.Context) {
	year, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Archive godoc
// @Summary Archive a session and freeze its routine
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/archive [post]
func (h *AcademicYearHandler) Archive(c *gin.Context) {
	year, err := h.service.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}
