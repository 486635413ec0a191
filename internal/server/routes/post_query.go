package routes

import (
	"net/http"

	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/rag"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// QueryHandler answers a natural-language question over the discussion
// graph.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Query string `json:"query" validate:"required"`
		TopK  int    `json:"top_k"`
	}

	type queryResponse struct {
		Answer    string               `json:"answer"`
		MatchType string               `json:"match_type"`
		Context   rag.RetrievedContext `json:"context"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	result, err := app.RAG.Query(ctx, data.Query, data.TopK)
	if err != nil {
		logger.Error("[Server] Query failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	ai := app.AiClient
	metrics := ai.GetMetrics()
	logger.Debug("[Server] Query answered", "match_type", result.MatchType, "input_tokens", metrics.InputTokens, "output_tokens", metrics.OutputTokens)

	return c.JSON(http.StatusOK, queryResponse{
		Answer:    result.Answer,
		MatchType: result.MatchType,
		Context:   result.Context,
	})
}
