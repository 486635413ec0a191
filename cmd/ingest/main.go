package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/agoralab/agora/backend/internal/sink"
	"github.com/agoralab/agora/backend/internal/util"

	"github.com/agoralab/agora/backend/pkg/ai"
	oai "github.com/agoralab/agora/backend/pkg/ai/ollama"
	sai "github.com/agoralab/agora/backend/pkg/ai/openai"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/logger/console"
	"github.com/agoralab/agora/backend/pkg/pipeline"
)

// Builds the discussion graph from a local JSON thread dump, without
// going through the queue. Used for replays and local runs.
func main() {
	util.LoadEnv()

	sourceFile := flag.String("source", "", "path to a JSON file containing an array of threads")
	flag.Parse()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *sourceFile == "" {
		logger.Fatal("Missing required -source flag")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
			logger.Fatal("Could not create OpenAI client", "err", err)
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
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = client
	}

	gov := ai.NewGovernor(int64(util.GetEnvNumeric("AI_PARALLEL_REQ", ai.DefaultGovernorCapacity)))

	graphClient, err := graph.NewClient(ctx, graph.NewClientParams{
		URI:      util.GetEnv("NEO4J_URI"),
		User:     util.GetEnv("NEO4J_USER"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnvString("NEO4J_DATABASE", "neo4j"),
	})
	if err != nil {
		logger.Fatal("Unable to connect to graph database", "err", err)
	}
	defer graphClient.Close(context.Background())

	if err := graphClient.SetupSchema(ctx); err != nil {
		logger.Fatal("Failed to set up graph schema", "err", err)
	}

	failSink := sink.NewLocalSink(util.GetEnvString("SINK_DIR", "data"))
	builder := pipeline.NewBuilder(graphClient, aiClient, gov, failSink)

	source := &pipeline.FileSource{Path: *sourceFile}
	threads, err := source.Fetch(ctx)
	if err != nil {
		logger.Fatal("Failed to read source file", "file", *sourceFile, "err", err)
	}

	logger.Info("Starting graph build", "file", *sourceFile, "threads", len(threads))

	if err := builder.Run(ctx, threads); err != nil {
		logger.Fatal("Graph build failed", "err", err)
	}

	metrics := aiClient.GetMetrics()
	logger.Info(
		"Graph build complete",
		"threads", len(threads),
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
	)
}
