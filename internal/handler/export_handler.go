package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/routine-api/internal/dto"
	"github.com/campuskit/routine-api/internal/service"
	appErrors "github.com/campuskit/routine-api/pkg/errors"
	"github.com/campuskit/routine-api/pkg/response"
)

// ExportHandler serves routine grid downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download a section routine as PDF or CSV
// @Tags Export
// @Produce application/pdf
// @Produce text/csv
// @Param programId query string true "Program"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Param academicYearId query string true "Session"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} binary
// @Router /routines/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var q dto.GridQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}

	var (
		payload     []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "pdf") {
	case "pdf":
		payload, filename, err = h.service.ExportPDF(c.Request.Context(), q)
		contentType = "application/pdf"
	case "csv":
		payload, filename, err = h.service.ExportCSV(c.Request.Context(), q)
		contentType = "text/csv"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
