package server

import (
	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Query routes
	apiRoutes.POST("/query", routes.QueryHandler)

	// Graph inspection routes
	apiRoutes.GET("/entities", routes.GetEntitiesHandler)
	apiRoutes.GET("/entities/:name/overview", routes.GetEntityOverviewHandler)
	apiRoutes.GET("/communities", routes.GetCommunitiesHandler)

	// Job routes
	apiRoutes.POST("/ingest", routes.IngestHandler)
	apiRoutes.POST("/analysis", routes.AnalysisHandler)
}
