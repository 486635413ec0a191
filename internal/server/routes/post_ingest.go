package routes

import (
	"encoding/json"
	"net/http"

	"github.com/agoralab/agora/backend/internal/queue"
	"github.com/agoralab/agora/backend/internal/server/middleware"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/pipeline"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IngestHandler accepts a batch of raw discussion threads and enqueues
// them for the ingestion worker.
func IngestHandler(c echo.Context) error {
	type ingestBody struct {
		Threads []pipeline.RawThread `json:"threads" validate:"required,min=1"`
	}

	type ingestResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
		Threads       int    `json:"threads,omitempty"`
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("[Server] Failed to generate correlation ID", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	queueData := queue.QueueIngestJobMsg{
		Message:       "Ingest discussion threads",
		CorrelationID: correlationID,
		Threads:       &data.Threads,
	}

	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		logger.Error("[Server] Failed to marshal ingest message", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("[Server] Failed to publish ingest message", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	logger.Info("[Server] Enqueued ingest job", "correlation_id", correlationID, "threads", len(data.Threads))

	return c.JSON(http.StatusAccepted, ingestResponse{
		Message:       "Ingest job enqueued",
		CorrelationID: correlationID,
		Threads:       len(data.Threads),
	})
}
