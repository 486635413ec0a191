package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/agoralab/agora/backend/pkg/ai"
)

// StanceOpenAIClient implements ai.Client against any OpenAI-compatible
// API. Embeddings and chat may point at different endpoints, which is
// common when embeddings run on a cheaper hosted model.
//
// A StanceOpenAIClient should be created using NewStanceOpenAIClient.
type StanceOpenAIClient struct {
	embeddingModel  string
	chatModel       string
	extractionModel string

	embeddingURL string
	embeddingKey string
	chatURL      string
	chatKey      string

	timeoutMin int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	embeddingLock *semaphore.Weighted

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewStanceOpenAIClientParams defines the configuration parameters for
// creating a new StanceOpenAIClient.
//
// EmbeddingModel specifies the model used for embeddings.
// ChatModel specifies the model used for synthesis and answering.
// ExtractionModel specifies the model used for entity and stance extraction.
// EmbeddingURL and EmbeddingKey configure the embedding API endpoint.
// ChatURL and ChatKey configure the chat/completion API endpoint.
type NewStanceOpenAIClientParams struct {
	EmbeddingModel  string
	ChatModel       string
	ExtractionModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	TimeoutMin int
}

// NewStanceOpenAIClient creates and returns a new StanceOpenAIClient
// configured with the provided parameters. It initializes separate OpenAI
// clients for embeddings and chat/completion tasks and fails when either
// endpoint is missing its API key.
func NewStanceOpenAIClient(
	params NewStanceOpenAIClientParams,
) (*StanceOpenAIClient, error) {
	chatClient, err := newOpenaiClient(params.ChatURL, params.ChatKey)
	if err != nil {
		return nil, fmt.Errorf("chat client: %w", err)
	}
	embedClient, err := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 3
	}

	return &StanceOpenAIClient{
		embeddingModel:  params.EmbeddingModel,
		chatModel:       params.ChatModel,
		extractionModel: params.ExtractionModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		timeoutMin: timeoutMin,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		embeddingLock: semaphore.NewWeighted(4),

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}, nil
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) (*openai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing API key")
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client, nil
}

// Health verifies the chat endpoint answers at all by listing models.
func (c *StanceOpenAIClient) Health(ctx context.Context) error {
	_, err := c.ChatClient.Models.List(ctx)
	return err
}
