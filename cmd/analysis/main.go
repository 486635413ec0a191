package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/agoralab/agora/backend/internal/util"

	"github.com/agoralab/agora/backend/pkg/ai"
	oai "github.com/agoralab/agora/backend/pkg/ai/ollama"
	sai "github.com/agoralab/agora/backend/pkg/ai/openai"
	"github.com/agoralab/agora/backend/pkg/analysis"
	"github.com/agoralab/agora/backend/pkg/defrag"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/logger/console"
)

// Runs the full analysis phase once against the current graph: entity
// defragmentation, alliance detection, Leiden community detection and
// ideology summarization.
func main() {
	util.LoadEnv()

	threshold := flag.Float64("defrag-threshold", defrag.DefaultSimilarityThreshold, "entity name similarity threshold (0-100)")
	mapFile := flag.String("canonical-map", defrag.DefaultMapFile, "path for the canonical name map")
	skipDefrag := flag.Bool("skip-defrag", false, "skip entity defragmentation and merging")
	defragOnly := flag.Bool("defrag-only", false, "write the canonical name map and stop so it can be reviewed before merging")
	flag.Parse()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

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

	if !*skipDefrag {
		canonicalMap, err := defrag.Run(ctx, graphClient, *threshold, *mapFile)
		if err != nil {
			logger.Fatal("Entity defragmentation failed", "err", err)
		}

		if *defragOnly {
			logger.Info("Canonical map written for review, stopping before merge", "file", *mapFile, "aliases", len(canonicalMap))
			return
		}

		plan, err := graph.BuildMergePlan(canonicalMap)
		if err != nil {
			logger.Fatal("Failed to build merge plan", "err", err)
		}

		merged, err := graphClient.ExecuteMerge(ctx, plan)
		if err != nil {
			logger.Fatal("Entity merge failed", "err", err)
		}
		logger.Info("Entity defragmentation complete", "aliases", len(plan), "merged", merged)
	}

	if *defragOnly {
		return
	}

	alliances, err := analysis.CreateAllianceEdges(ctx, graphClient)
	if err != nil {
		logger.Fatal("Alliance detection failed", "err", err)
	}
	logger.Info("Alliance edges written", "alliances", alliances)

	communities, err := analysis.DetectCommunities(ctx, graphClient)
	if err != nil {
		logger.Fatal("Community detection failed", "err", err)
	}
	logger.Info("Community detection complete", "communities", len(communities))

	summarizer := analysis.NewSummarizer(graphClient, aiClient, gov)
	if err := summarizer.SummarizeIdeologies(ctx); err != nil {
		logger.Fatal("Ideology summarization failed", "err", err)
	}

	metrics := aiClient.GetMetrics()
	logger.Info(
		"Analysis complete",
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
	)
}
