package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/estatedesk/internal/errors"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

const (
	// UnitSheetField is the multipart field carrying an uploaded unit sheet.
	UnitSheetField = "file"

	// multipartOverhead is the allowance for multipart framing and form
	// fields on top of the file size limit.
	multipartOverhead = 1 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// UnitHandler handles unit ingestion and inventory requests.
type UnitHandler struct {
	service        services.UnitService
	maxUploadBytes int64
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(service services.UnitService, maxUploadBytes int64) *UnitHandler {
	return &UnitHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// IngestRowsRequest is the body of POST /api/v1/projects/:id/units.
type IngestRowsRequest struct {
	Headers []string        `json:"headers" binding:"required,min=1"`
	Rows    [][]interface{} `json:"rows" binding:"required,min=1"`
}

// UnitListResponse wraps a project's units.
type UnitListResponse struct {
	Units []models.Unit `json:"units"`
	Count int           `json:"count"`
}

// SummaryResponse wraps a unit summary; Summary is null when the project has no units.
type SummaryResponse struct {
	Summary *models.UnitSummary `json:"summary"`
}

// ClearUnitsResponse reports how many units were removed.
type ClearUnitsResponse struct {
	Removed int64 `json:"removed"`
}

// List handles GET /api/v1/projects/:id/units.
func (h *UnitHandler) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	units, err := h.service.ListUnits(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list units")
		return
	}

	c.JSON(http.StatusOK, UnitListResponse{Units: units, Count: len(units)})
}

// Ingest handles POST /api/v1/projects/:id/units with pre-parsed rows.
func (h *UnitHandler) Ingest(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var req IngestRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid ingestion payload")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), caller, c.Param("id"), services.IngestRequest{
		Headers: req.Headers,
		Rows:    req.Rows,
	})
	if err != nil {
		respondError(c, err, "Failed to ingest units")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Upload handles POST /api/v1/projects/:id/units/upload with an .xlsx or
// .csv file in the "file" field.
func (h *UnitHandler) Upload(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile(UnitSheetField)
	if err != nil {
		if err == http.ErrMissingFile {
			apierrors.BadRequest(c, fmt.Sprintf("Missing %q file field", UnitSheetField), nil)
			return
		}
		bindError(c, err, "Invalid upload")
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		apierrors.PayloadTooLarge(c, h.maxUploadBytes)
		return
	}

	f, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Could not read uploaded file", nil)
		return
	}
	defer f.Close()

	result, err := h.service.IngestFile(c.Request.Context(), caller, c.Param("id"), header.Filename, f)
	if err != nil {
		respondError(c, err, "Failed to ingest units")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Export handles GET /api/v1/projects/:id/units/export.
func (h *UnitHandler) Export(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	data, filename, err := h.service.ExportUnits(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to export units")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Summary handles GET /api/v1/projects/:id/summary.
func (h *UnitHandler) Summary(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load unit summary")
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}

// Clear handles DELETE /api/v1/projects/:id/units.
func (h *UnitHandler) Clear(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	removed, err := h.service.ClearUnits(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete units")
		return
	}

	c.JSON(http.StatusOK, ClearUnitsResponse{Removed: removed})
}
