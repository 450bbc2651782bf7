package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/estatedesk/internal/errors"
	"github.com/stwalsh4118/estatedesk/internal/middleware"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

// SourceFileField is the multipart field carrying a project's source file.
const SourceFileField = "file"

// ProjectHandler handles project HTTP requests.
type ProjectHandler struct {
	service        services.ProjectService
	maxUploadBytes int64
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(service services.ProjectService, maxUploadBytes int64) *ProjectHandler {
	return &ProjectHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// ListProjectsQuery represents the query parameters for listing projects.
type ListProjectsQuery struct {
	Status         string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Search         string `form:"q" binding:"omitempty,max=200"`
	OrganizationID string `form:"organization_id" binding:"omitempty,uuid"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// CreateProjectRequest is the body of POST /api/v1/projects, as JSON or
// multipart form fields.
type CreateProjectRequest struct {
	Description    *string  `json:"description" form:"description"`
	Location       *string  `json:"location" form:"location"`
	OrganizationID string   `json:"organization_id" form:"organization_id" binding:"omitempty,uuid"`
	Name           string   `json:"name" form:"name" binding:"required,max=200"`
	Status         string   `json:"status" form:"status" binding:"omitempty,oneof=draft published archived"`
	CreationMethod string   `json:"creation_method" form:"creation_method" binding:"omitempty,oneof=manual ai_assisted hybrid admin"`
	Amenities      []string `json:"amenities" form:"amenities"`
	Connectivity   []string `json:"connectivity" form:"connectivity"`
	Landmarks      []string `json:"landmarks" form:"landmarks"`
	PaymentPlans   []string `json:"payment_plans" form:"payment_plans"`
}

// UpdateProjectRequest is the body of PATCH /api/v1/projects/:id.
type UpdateProjectRequest struct {
	Name         *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string   `json:"description"`
	Location     *string   `json:"location"`
	Status       *string   `json:"status" binding:"omitempty,oneof=draft published archived"`
	Amenities    *[]string `json:"amenities"`
	Connectivity *[]string `json:"connectivity"`
	Landmarks    *[]string `json:"landmarks"`
	PaymentPlans *[]string `json:"payment_plans"`
}

// ProjectResponse wraps a single project.
type ProjectResponse struct {
	Project *models.Project `json:"project"`
}

// ProjectListResponse wraps a project listing.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Count    int              `json:"count"`
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var query ListProjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	filter := services.ProjectFilter{
		Search: query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.Status != "" {
		status := models.ProjectStatus(query.Status)
		filter.Status = &status
	}
	if query.OrganizationID != "" {
		filter.OrganizationID = &query.OrganizationID
	}

	projects, err := h.service.List(c.Request.Context(), caller, filter)
	if err != nil {
		respondError(c, err, "Failed to list projects")
		return
	}

	c.JSON(http.StatusOK, ProjectListResponse{Projects: projects, Count: len(projects)})
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	project, err := h.service.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load project")
		return
	}

	c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// Create handles POST /api/v1/projects. A multipart request may carry a
// source file in the "file" field.
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	multipart := strings.HasPrefix(c.ContentType(), "multipart/")
	if multipart && h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	var req CreateProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err, "Invalid project payload")
		return
	}

	input := services.CreateProjectInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Status:         models.ProjectStatus(req.Status),
		CreationMethod: models.CreationMethod(req.CreationMethod),
		Amenities:      req.Amenities,
		Connectivity:   req.Connectivity,
		Landmarks:      req.Landmarks,
		PaymentPlans:   req.PaymentPlans,
	}

	if multipart {
		file, ok := h.readSourceFile(c)
		if !ok {
			return
		}
		input.SourceFile = file
	}

	project, err := h.service.Create(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, ProjectResponse{Project: project})
}

// readSourceFile reads the optional source file from a multipart request.
// It returns false after writing an error response.
func (h *ProjectHandler) readSourceFile(c *gin.Context) (*services.SourceFile, bool) {
	header, err := c.FormFile(SourceFileField)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, true
		}
		bindError(c, err, "Invalid source file")
		return nil, false
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		apierrors.PayloadTooLarge(c, h.maxUploadBytes)
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Could not read source file", nil)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		apierrors.BadRequest(c, "Could not read source file", nil)
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Received project source file", map[string]interface{}{
			"file_name": header.Filename,
			"bytes":     len(data),
		})
	}
	return &services.SourceFile{Name: header.Filename, ContentType: contentType, Data: data}, true
}

// Update handles PATCH /api/v1/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid project payload")
		return
	}

	input := services.UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Amenities:    req.Amenities,
		Connectivity: req.Connectivity,
		Landmarks:    req.Landmarks,
		PaymentPlans: req.PaymentPlans,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}

	project, err := h.service.Update(c.Request.Context(), caller, c.Param("id"), input)
	if err != nil {
		respondError(c, err, "Failed to update project")
		return
	}

	c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// Delete handles DELETE /api/v1/projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete project")
		return
	}

	c.Status(http.StatusNoContent)
}
