// Package pipeline turns raw discussion threads into enriched, validated
// records and loads them into the graph in atomic mini-batches.
package pipeline

import (
	"context"
	"fmt"

	"github.com/agoralab/agora/backend/internal/sink"
	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/common"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/nlp"
)

// DefaultMiniBatchSize is how many threads are enriched and loaded per
// transaction.
const DefaultMiniBatchSize = 10

// Builder orchestrates the enrichment pipeline: clean, embed, extract,
// classify, validate, load. Items that fail validation or loading are
// routed to the failure sink instead of being silently dropped.
type Builder struct {
	Graph *graph.Client
	AI    ai.Client
	Gov   *ai.Governor
	Sink  sink.Sink

	MiniBatchSize int
}

// NewBuilder returns a Builder with the default mini-batch size.
func NewBuilder(graphClient *graph.Client, aiClient ai.Client, gov *ai.Governor, failSink sink.Sink) *Builder {
	return &Builder{
		Graph:         graphClient,
		AI:            aiClient,
		Gov:           gov,
		Sink:          failSink,
		MiniBatchSize: DefaultMiniBatchSize,
	}
}

// Run processes all threads in mini-batches. The inference backend is
// health-checked once up front; an unreachable backend halts the run
// before any partial work happens.
func (b *Builder) Run(ctx context.Context, threads []RawThread) error {
	if err := b.AI.Health(ctx); err != nil {
		return fmt.Errorf("pipeline: inference backend unavailable: %w", err)
	}
	if len(threads) == 0 {
		logger.Warn("[Pipeline] received no threads, nothing to process")
		return nil
	}

	size := b.MiniBatchSize
	if size <= 0 {
		size = DefaultMiniBatchSize
	}
	total := (len(threads) + size - 1) / size
	logger.Info("[Pipeline] starting run", "threads", len(threads), "mini_batch_size", size)

	for start := 0; start < len(threads); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(threads))
		logger.Info("[Pipeline] processing mini-batch", "batch", start/size+1, "of", total)

		posts, comments := b.processMiniBatch(ctx, threads[start:end])
		if len(posts) == 0 && len(comments) == 0 {
			continue
		}

		if err := b.Graph.LoadBatch(ctx, posts, comments); err != nil {
			logger.Error("[Pipeline] batch load failed, routing batch to sink", "err", err)
			b.sinkBatch(ctx, posts, comments, err)
		}
	}

	logger.Info("[Pipeline] run completed")
	return nil
}

// processMiniBatch enriches one mini-batch. Embedding failure is
// terminal for the batch; extraction and classification failures degrade
// per item instead.
func (b *Builder) processMiniBatch(ctx context.Context, batch []RawThread) ([]common.Post, []common.Comment) {
	rawPosts := make([]RawPost, 0, len(batch))
	var rawComments []RawComment
	for _, thread := range batch {
		rawPosts = append(rawPosts, thread.Post)
		rawComments = append(rawComments, thread.Comments...)
	}

	cleaned := make([]string, 0, len(rawPosts)+len(rawComments))
	for _, p := range rawPosts {
		cleaned = append(cleaned, nlp.Clean(p.Content))
	}
	for _, c := range rawComments {
		cleaned = append(cleaned, nlp.Clean(c.Content))
	}

	embeddings, err := nlp.EmbedBatch(ctx, b.AI, cleaned)
	if err != nil {
		logger.Error("[Pipeline] embedding failed, skipping mini-batch", "err", err)
		return nil, nil
	}

	entities := nlp.ExtractEntities(ctx, b.AI, b.Gov, cleaned)

	split := len(rawPosts)
	postCleaned, commentCleaned := cleaned[:split], cleaned[split:]
	postEmbeddings, commentEmbeddings := embeddings[:split], embeddings[split:]
	postEntities, commentEntities := entities[:split], entities[split:]

	// Stance classification runs on the raw text the stance was actually
	// expressed in, not the cleaned form.
	var postPairs []nlp.StancePair
	for i, entityList := range postEntities {
		if rawPosts[i].Content == "" {
			continue
		}
		for _, entity := range entityList {
			postPairs = append(postPairs, nlp.StancePair{Text: rawPosts[i].Content, Entity: entity.Name})
		}
	}
	postStances := nlp.ClassifyStances(ctx, b.AI, b.Gov, postPairs)

	postContentByID := make(map[string]string, len(rawPosts))
	for _, p := range rawPosts {
		postContentByID[p.ID] = p.Content
	}
	var commentPairs []nlp.ContextualStancePair
	for i, entityList := range commentEntities {
		comment := rawComments[i]
		if comment.Content == "" {
			continue
		}
		for _, entity := range entityList {
			commentPairs = append(commentPairs, nlp.ContextualStancePair{
				PostContent:    postContentByID[comment.PostID],
				CommentContent: comment.Content,
				Entity:         entity.Name,
			})
		}
	}
	commentStances := nlp.ClassifyStancesContextual(ctx, b.AI, b.Gov, commentPairs)

	var posts []common.Post
	for i, raw := range rawPosts {
		post := common.Post{
			ID:             raw.ID,
			Author:         raw.Author,
			Content:        raw.Content,
			CleanedContent: postCleaned[i],
			Timestamp:      raw.Timestamp,
			Score:          raw.Score,
			Channel:        raw.Channel,
			Entities:       postEntities[i],
			Stances:        stancesForSentence(postStances, raw.Content),
			Embedding:      postEmbeddings[i],
		}
		if err := common.ValidatePost(&post); err != nil {
			b.sinkItem(ctx, "post", raw.ID, raw, fmt.Sprintf("Post assembly failed: %v", err))
			continue
		}
		posts = append(posts, post)
	}

	var comments []common.Comment
	for i, raw := range rawComments {
		comment := common.Comment{
			ID:             raw.ID,
			PostID:         raw.PostID,
			Author:         raw.Author,
			Content:        raw.Content,
			CleanedContent: commentCleaned[i],
			Timestamp:      raw.Timestamp,
			Score:          raw.Score,
			Entities:       commentEntities[i],
			Stances:        stancesForSentence(commentStances, raw.Content),
			Embedding:      commentEmbeddings[i],
		}
		if err := common.ValidateComment(&comment); err != nil {
			b.sinkItem(ctx, "comment", raw.ID, raw, fmt.Sprintf("Comment assembly failed: %v", err))
			continue
		}
		comments = append(comments, comment)
	}

	return posts, comments
}

// stancesForSentence re-associates flat classification results with their
// originating item by exact source text match.
func stancesForSentence(stances []common.Stance, sentence string) []common.Stance {
	var out []common.Stance
	for _, s := range stances {
		if s.Sentence == sentence {
			out = append(out, s)
		}
	}
	return out
}

func (b *Builder) sinkItem(ctx context.Context, itemType string, id string, item any, reason string) {
	if b.Sink == nil {
		return
	}
	if err := b.Sink.Save(ctx, itemType, id, item, reason); err != nil {
		logger.Error("[Pipeline] sink write failed", "type", itemType, "id", id, "err", err)
	}
}

func (b *Builder) sinkBatch(ctx context.Context, posts []common.Post, comments []common.Comment, cause error) {
	reason := fmt.Sprintf("Graph transaction failed: %v", cause)
	for _, p := range posts {
		b.sinkItem(ctx, "post", p.ID, p, reason)
	}
	for _, c := range comments {
		b.sinkItem(ctx, "comment", c.ID, c, reason)
	}
}
