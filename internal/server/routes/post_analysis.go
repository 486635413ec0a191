package routes

import (
	"encoding/json"
	"net/http"

	"github.com/agoralab/agora/backend/internal/queue"
	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AnalysisHandler enqueues a full analysis run over the current graph.
func AnalysisHandler(c echo.Context) error {
	type analysisBody struct {
		DefragThreshold float64 `json:"defrag_threshold" validate:"omitempty,gt=0,lte=100"`
		SkipDefrag      bool    `json:"skip_defrag"`
		DefragOnly      bool    `json:"defrag_only"`
	}

	type analysisResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(analysisBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, analysisResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, analysisResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("[Server] Failed to generate correlation ID", "err", err)
		return c.JSON(http.StatusInternalServerError, analysisResponse{Message: "Internal server error"})
	}

	queueData := queue.QueueAnalysisJobMsg{
		Message:         "Run graph analysis",
		CorrelationID:   correlationID,
		DefragThreshold: data.DefragThreshold,
		SkipDefrag:      data.SkipDefrag,
		DefragOnly:      data.DefragOnly,
	}

	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		logger.Error("[Server] Failed to marshal analysis message", "err", err)
		return c.JSON(http.StatusInternalServerError, analysisResponse{Message: "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.AnalysisQueue, msgBytes); err != nil {
		logger.Error("[Server] Failed to publish analysis message", "err", err)
		return c.JSON(http.StatusInternalServerError, analysisResponse{Message: "Internal server error"})
	}

	logger.Info("[Server] Enqueued analysis job", "correlation_id", correlationID)

	return c.JSON(http.StatusAccepted, analysisResponse{
		Message:       "Analysis job enqueued",
		CorrelationID: correlationID,
	})
}
