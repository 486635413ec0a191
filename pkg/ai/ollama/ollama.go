package ollama

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/agoralab/agora/backend/pkg/ai"
)

// StanceOllamaClient implements ai.Client against a locally hosted Ollama
// server. The deployment uses one JSON-mode model for extraction and
// classification, one text model for synthesis, and one embedding model.
type StanceOllamaClient struct {
	embeddingModel  string
	chatModel       string
	extractionModel string

	timeoutMin int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewStanceOllamaClientParams configures a StanceOllamaClient.
type NewStanceOllamaClientParams struct {
	EmbeddingModel  string
	ChatModel       string
	ExtractionModel string

	BaseURL string
	ApiKey  string

	TimeoutMin int
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewStanceOllamaClient connects to the Ollama server at BaseURL (or the
// default when empty) with the configured models.
func NewStanceOllamaClient(
	params NewStanceOllamaClientParams,
) (*StanceOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	base := params.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	u, err = url.Parse(base)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 3
	}

	return &StanceOllamaClient{
		embeddingModel:  params.EmbeddingModel,
		chatModel:       params.ChatModel,
		extractionModel: params.ExtractionModel,

		timeoutMin: timeoutMin,

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: api.NewClient(u, httpClient),
	}, nil
}

// Health lists the installed models as a cheap reachability probe.
func (c *StanceOllamaClient) Health(ctx context.Context) error {
	_, err := c.Client.List(ctx)
	return err
}
