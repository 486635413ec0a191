package routes

import (
	"net/http"

	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetEntitiesHandler lists every political entity in the graph.
func GetEntitiesHandler(c echo.Context) error {
	type entitiesResponse struct {
		Entities []string `json:"entities"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	entities, err := app.Graph.ListEntities(ctx)
	if err != nil {
		logger.Error("[Server] Failed to list entities", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if entities == nil {
		entities = []string{}
	}

	return c.JSON(http.StatusOK, entitiesResponse{Entities: entities})
}
