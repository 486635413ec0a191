package routes

import (
	"net/http"

	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetCommunitiesHandler returns the detected user communities, largest
// first.
func GetCommunitiesHandler(c echo.Context) error {
	type communitiesResponse struct {
		Communities []graph.Community `json:"communities"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	communities, err := app.Graph.GetCommunities(ctx)
	if err != nil {
		logger.Error("[Server] Failed to list communities", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if communities == nil {
		communities = []graph.Community{}
	}

	return c.JSON(http.StatusOK, communitiesResponse{Communities: communities})
}
