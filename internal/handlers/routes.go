package handlers

import "github.com/gin-gonic/gin"

// API bundles the handlers mounted under /api/v1.
type API struct {
	Projects   *ProjectHandler
	Units      *UnitHandler
	Promotions *PromotionHandler
}

// RegisterRoutes mounts the authenticated API on group. uploadLimit guards
// the ingestion routes and may be nil.
func RegisterRoutes(group *gin.RouterGroup, api API, uploadLimit gin.HandlerFunc) {
	ingest := []gin.HandlerFunc{}
	if uploadLimit != nil {
		ingest = append(ingest, uploadLimit)
	}

	group.GET("/me", Me)

	projects := group.Group("/projects")
	{
		projects.GET("", api.Projects.List)
		projects.POST("", append(ingest, api.Projects.Create)...)
		projects.GET("/:id", api.Projects.Get)
		projects.PATCH("/:id", api.Projects.Update)
		projects.DELETE("/:id", api.Projects.Delete)

		projects.GET("/:id/units", api.Units.List)
		projects.POST("/:id/units", append(ingest, api.Units.Ingest)...)
		projects.DELETE("/:id/units", api.Units.Clear)
		projects.POST("/:id/units/upload", append(ingest, api.Units.Upload)...)
		projects.GET("/:id/units/export", api.Units.Export)
		projects.GET("/:id/summary", api.Units.Summary)
	}

	promotions := group.Group("/promotions")
	{
		promotions.GET("", api.Promotions.List)
		promotions.POST("", api.Promotions.Create)
		promotions.GET("/:id", api.Promotions.Get)
		promotions.PATCH("/:id", api.Promotions.Update)
		promotions.DELETE("/:id", api.Promotions.Delete)
	}
}
