package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/agoralab/agora/backend/internal/util"
)

const embedBatchSize = 32

// GenerateEmbeddings embeds inputs in batches and returns one vector per
// input, in order. Blank inputs yield zero vectors instead of an API error.
func (c *StanceOllamaClient) GenerateEmbeddings(
	ctx context.Context,
	inputs []string,
) ([][]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", 768))

	out := make([][]float32, len(inputs))

	// indexes of inputs that actually need an API call
	live := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		live = append(live, i)
	}

	for start := 0; start < len(live); start += embedBatchSize {
		end := min(start+embedBatchSize, len(live))

		batch := make([]string, 0, end-start)
		for _, idx := range live[start:end] {
			batch = append(batch, inputs[idx])
		}

		rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
		resp, err := c.Client.Embed(rCtx, &api.EmbedRequest{
			Model: c.embeddingModel,
			Input: batch,
		})
		cancel()
		if err != nil {
			return nil, err
		}

		for j, vec := range resp.Embeddings {
			checked, err := checkDim(vec, dim)
			if err != nil {
				return nil, err
			}
			out[live[start+j]] = checked
		}
	}

	return out, nil
}

// checkDim rejects vectors whose length does not match the configured
// index dimensionality. Padding or truncating here would load corrupted
// vectors into the index without anyone noticing.
func checkDim(vec []float32, dim int) ([]float32, error) {
	if len(vec) != dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), dim)
	}
	return vec, nil
}
