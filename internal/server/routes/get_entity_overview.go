package routes

import (
	"net/http"

	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetEntityOverviewHandler returns the stance distribution and a capped
// mention subgraph for one entity.
func GetEntityOverviewHandler(c echo.Context) error {
	entityName := c.Param("name")
	if entityName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing entity name"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	overview, err := app.Graph.GetEntityOverview(ctx, entityName)
	if err != nil {
		logger.Error("[Server] Failed to build entity overview", "entity", entityName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, overview)
}
