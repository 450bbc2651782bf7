package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatedesk/internal/models"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

// PromotionHandler handles promotion HTTP requests.
type PromotionHandler struct {
	service services.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(service services.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// ListPromotionsQuery represents the query parameters for listing promotions.
type ListPromotionsQuery struct {
	Status         string `form:"status" binding:"omitempty,oneof=draft active paused completed cancelled"`
	ProjectID      string `form:"project_id" binding:"omitempty,uuid"`
	OrganizationID string `form:"organization_id" binding:"omitempty,uuid"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
}

// CreatePromotionRequest is the body of POST /api/v1/promotions.
type CreatePromotionRequest struct {
	StartDate      time.Time  `json:"start_date" binding:"required"`
	EndDate        time.Time  `json:"end_date" binding:"required,gtefield=StartDate"`
	SendAt         *time.Time `json:"send_at"`
	ProjectID      *string    `json:"project_id" binding:"omitempty,uuid"`
	Description    *string    `json:"description"`
	Channel        *string    `json:"channel" binding:"omitempty,max=50"`
	OrganizationID string     `json:"organization_id" binding:"omitempty,uuid"`
	Title          string     `json:"title" binding:"required,max=200"`
	Status         string     `json:"status" binding:"omitempty,oneof=draft active paused completed cancelled"`
}

// UpdatePromotionRequest is the body of PATCH /api/v1/promotions/:id.
// An empty project_id unlinks the project.
type UpdatePromotionRequest struct {
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	SendAt      *time.Time `json:"send_at"`
	ProjectID   *string    `json:"project_id"`
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Channel     *string    `json:"channel" binding:"omitempty,max=50"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft active paused completed cancelled"`
}

// PromotionResponse wraps a single promotion.
type PromotionResponse struct {
	Promotion *models.Promotion `json:"promotion"`
}

// PromotionListResponse wraps a promotion listing.
type PromotionListResponse struct {
	Promotions []models.Promotion `json:"promotions"`
	Count      int                `json:"count"`
}

// List handles GET /api/v1/promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var query ListPromotionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	filter := services.PromotionFilter{Limit: query.Limit, Offset: query.Offset}
	if query.Status != "" {
		status := models.PromotionStatus(query.Status)
		filter.Status = &status
	}
	if query.ProjectID != "" {
		filter.ProjectID = &query.ProjectID
	}
	if query.OrganizationID != "" {
		filter.OrganizationID = &query.OrganizationID
	}

	promotions, err := h.service.List(c.Request.Context(), caller, filter)
	if err != nil {
		respondError(c, err, "Failed to list promotions")
		return
	}

	c.JSON(http.StatusOK, PromotionListResponse{Promotions: promotions, Count: len(promotions)})
}

// Get handles GET /api/v1/promotions/:id.
func (h *PromotionHandler) Get(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	promotion, err := h.service.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load promotion")
		return
	}

	c.JSON(http.StatusOK, PromotionResponse{Promotion: promotion})
}

// Create handles POST /api/v1/promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid promotion payload")
		return
	}

	promotion, err := h.service.Create(c.Request.Context(), caller, services.CreatePromotionInput{
		OrganizationID: req.OrganizationID,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Channel:        req.Channel,
		Status:         models.PromotionStatus(req.Status),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		SendAt:         req.SendAt,
	})
	if err != nil {
		respondError(c, err, "Failed to create promotion")
		return
	}

	c.JSON(http.StatusCreated, PromotionResponse{Promotion: promotion})
}

// Update handles PATCH /api/v1/promotions/:id.
func (h *PromotionHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid promotion payload")
		return
	}

	input := services.UpdatePromotionInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Channel:     req.Channel,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		SendAt:      req.SendAt,
	}
	if req.Status != nil {
		status := models.PromotionStatus(*req.Status)
		input.Status = &status
	}

	promotion, err := h.service.Update(c.Request.Context(), caller, c.Param("id"), input)
	if err != nil {
		respondError(c, err, "Failed to update promotion")
		return
	}

	c.JSON(http.StatusOK, PromotionResponse{Promotion: promotion})
}

// Delete handles DELETE /api/v1/promotions/:id.
func (h *PromotionHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete promotion")
		return
	}

	c.Status(http.StatusNoContent)
}
