package ai

import (
	"context"
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to the request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature. Extraction and
// classification run at 0 for determinism; narrative synthesis may go
// higher.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// ModelMetrics accumulates performance counters across AI model operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// Client is the boundary to the language-model and embedding services.
// Implementations (ollama, openai) are safe for concurrent use and are
// shared process-wide; admission control lives in the Governor, not here.
type Client interface {
	// GenerateCompletion sends a single-turn prompt and returns the
	// assistant text.
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// GenerateCompletionWithFormat enforces a JSON schema derived from out
	// and unmarshals the response into it.
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	// GenerateEmbeddings embeds every input in a single request, preserving
	// order. Vectors have the dimension configured via AI_EMBED_DIM.
	GenerateEmbeddings(
		ctx context.Context,
		inputs []string,
	) ([][]float32, error)

	// Health verifies the inference backend is reachable. The build
	// pipeline refuses to start when this fails.
	Health(ctx context.Context) error

	// GetMetrics returns the accumulated model metrics.
	GetMetrics() ModelMetrics

	// ResetMetrics clears the accumulated model metrics.
	ResetMetrics()
}
