package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/ai"
)

const defaultDimensions = 768

// GenerateEmbeddings creates embeddings for multiple inputs in a single
// request, preserving input order. Blank inputs yield zero vectors.
func (c *StanceOpenAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(inputs) == 0 {
		return nil, nil
	}

	idxMap, liveIn, out := normalizeEmbeddingInputs(inputs, dim)
	if len(liveIn) == 0 {
		return out, nil
	}

	liveOut, err := c.generateEmbeddingsForStrings(ctx, liveIn, dim)
	if err != nil {
		return nil, err
	}
	if len(liveOut) != len(liveIn) {
		return nil, fmt.Errorf("embedding result size mismatch: got %d want %d", len(liveOut), len(liveIn))
	}
	for i := range liveOut {
		out[idxMap[i]] = liveOut[i]
	}
	return out, nil
}

func normalizeEmbeddingInputs(inputs []string, dim int) (idxMap []int, liveIn []string, out [][]float32) {
	idxMap = make([]int, 0, len(inputs))
	liveIn = make([]string, 0, len(inputs))
	out = make([][]float32, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		idxMap = append(idxMap, i)
		liveIn = append(liveIn, in)
	}
	return idxMap, liveIn, out
}

func (c *StanceOpenAIClient) generateEmbeddingsForStrings(ctx context.Context, inputs []string, dim int) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: c.embeddingModel,
	}

	if err := c.embeddingLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.embeddingLock.Release(1)

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start).Milliseconds()
	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: 0,
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(response.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, embedding := range response.Data {
		dataIdx := int(embedding.Index)
		if dataIdx < 0 || dataIdx >= len(inputs) {
			return nil, fmt.Errorf("embedding index out of range: %d", embedding.Index)
		}
		vec, err := convertVector(embedding.Embedding, dim)
		if err != nil {
			return nil, err
		}
		out[dataIdx] = vec
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return out, nil
}

// convertVector narrows the API's float64 vector, rejecting any vector
// whose length does not match the configured index dimensionality.
func convertVector(raw []float64, dim int) ([]float32, error) {
	if len(raw) != dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(raw), dim)
	}
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}
