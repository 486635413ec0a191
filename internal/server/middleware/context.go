package middleware

import (
	"github.com/agoralab/agora/backend/internal/util"

	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/agoralab/agora/backend/pkg/ai"
	oai "github.com/agoralab/agora/backend/pkg/ai/ollama"
	sai "github.com/agoralab/agora/backend/pkg/ai/openai"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/rag"
)

type App struct {
	Graph        *graph.Client
	Queue        *amqp091.Channel
	AiClient     ai.Client
	Gov          *ai.Governor
	RAG          *rag.Pipeline
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

// NewApp builds the shared application state handed to every request.
// The AI client and governor are constructed once here: AI_PARALLEL_REQ
// bounds in-flight model calls for the whole process, so the semaphore
// behind the governor must not be created per request.
func NewApp(
	graphClient *graph.Client,
	queue *amqp091.Channel,
	masterAPIKey string,
) *App {
	adapter := util.GetEnv("AI_ADAPTER")
	var aiClient ai.Client

	switch adapter {
	case "openai":
		client, err := sai.NewStanceOpenAIClient(sai.NewStanceOpenAIClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			logger.Fatal("Failed to create OpenAI client", "err", err)
		}
		aiClient = client
	default:
		client, err := oai.NewStanceOllamaClient(oai.NewStanceOllamaClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		aiClient = client
	}

	gov := ai.NewGovernor(int64(util.GetEnvNumeric("AI_PARALLEL_REQ", ai.DefaultGovernorCapacity)))

	return &App{
		Graph:        graphClient,
		Queue:        queue,
		AiClient:     aiClient,
		Gov:          gov,
		RAG:          rag.NewPipeline(graphClient, aiClient, gov),
		MasterAPIKey: masterAPIKey,
	}
}

// AppContextMiddleware wraps every request context with the shared App.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
