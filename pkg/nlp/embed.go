package nlp

import (
	"context"

	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// EmbedBatch embeds texts through the AI client with exponential backoff.
// The embedding service is a hard dependency of the build pipeline, so
// the error returned after exhausted retries is terminal for the batch
// that needed the vectors.
func EmbedBatch(ctx context.Context, client ai.Client, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := util.DefaultBackoff().Do(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = client.GenerateEmbeddings(ctx, texts)
		if err != nil {
			logger.Warn("[NLP] embedding attempt failed", "count", len(texts), "err", err)
		}
		return err
	})
	if err != nil {
		logger.Error("[NLP] embedding generation failed after retries", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}
