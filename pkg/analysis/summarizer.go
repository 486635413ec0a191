package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/nlp"
)

// Summarizer distills each sufficiently supported (entity, stance) pair
// into a narrative IdeologicalSummary node with its own embedding, so
// retrieval can answer perspective questions without re-reading raw
// posts.
type Summarizer struct {
	Graph *graph.Client
	AI    ai.Client
	Gov   *ai.Governor

	// MinPosts is the evidence floor: pairs with fewer high-confidence
	// posts are not summarized.
	MinPosts int
	// TopKPosts caps how many seed posts feed a dossier.
	TopKPosts int
	// TopNComments caps aligned comments quoted under each seed post.
	TopNComments int
	// ConfidenceThreshold filters which stances count as evidence.
	ConfidenceThreshold float64
	// BatchSize bounds how many pairs are summarized concurrently before
	// the pacing pause.
	BatchSize int

	limiter *rate.Limiter
}

// maxDossierChars caps the dossier fed to the summary model.
const maxDossierChars = 24000

// NewSummarizer returns a Summarizer with the standard thresholds.
func NewSummarizer(graphClient *graph.Client, aiClient ai.Client, gov *ai.Governor) *Summarizer {
	return &Summarizer{
		Graph:               graphClient,
		AI:                  aiClient,
		Gov:                 gov,
		MinPosts:            3,
		TopKPosts:           10,
		TopNComments:        5,
		ConfidenceThreshold: 0.85,
		BatchSize:           5,
		limiter:             rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// IdeologyTarget is one (entity, stance) pair worth summarizing.
type IdeologyTarget struct {
	EntityName string
	Stance     string
}

const targetIdeologiesQuery = `
MATCH (p:Post)-[r:HAS_STANCE]->(e:PoliticalEntity)
WHERE r.confidence >= $threshold
WITH e.name AS entityName, r.stance AS stance, count(p) AS postCount
WHERE postCount >= $min_posts
RETURN entityName, stance
ORDER BY entityName, stance
`

// TargetIdeologies lists every (entity, stance) pair backed by at least
// MinPosts high-confidence posts, in deterministic order.
func (s *Summarizer) TargetIdeologies(ctx context.Context) ([]IdeologyTarget, error) {
	session := s.Graph.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.Graph.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, targetIdeologiesQuery, map[string]any{
			"threshold": s.ConfidenceThreshold,
			"min_posts": int64(s.MinPosts),
		})
		if err != nil {
			return nil, err
		}
		var targets []IdeologyTarget
		for res.Next(ctx) {
			rec := res.Record()
			entity, _ := rec.Get("entityName")
			stance, _ := rec.Get("stance")
			target := IdeologyTarget{}
			if v, ok := entity.(string); ok {
				target.EntityName = v
			}
			if v, ok := stance.(string); ok {
				target.Stance = v
			}
			targets = append(targets, target)
		}
		return targets, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: target ideologies: %w", err)
	}
	return result.([]IdeologyTarget), nil
}

const dossierQuery = `
MATCH (p:Post)-[r:HAS_STANCE]->(e:PoliticalEntity {name: $entity_name})
WHERE r.stance = $stance AND r.confidence >= $threshold
WITH p, e ORDER BY p.score DESC LIMIT $top_k_posts

CALL {
    WITH p, e
    OPTIONAL MATCH (c:Comment)-[:REPLY_TO]->(p)
    MATCH (c)-[rc:HAS_STANCE]->(e)
    WHERE rc.stance = $stance AND rc.confidence >= $threshold
    WITH c ORDER BY c.score DESC
    RETURN COLLECT(c.content)[..$top_n_comments] AS comments
}
RETURN p.content AS post_content, comments AS comment_contents
`

// BuildDossier assembles the evidence text for one ideology: top posts by
// score, each followed by its highest-scored stance-aligned comments. An
// empty string means there is nothing to summarize.
func (s *Summarizer) BuildDossier(ctx context.Context, target IdeologyTarget) (string, error) {
	session := s.Graph.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.Graph.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, dossierQuery, map[string]any{
			"entity_name":    target.EntityName,
			"stance":         target.Stance,
			"threshold":      s.ConfidenceThreshold,
			"top_k_posts":    int64(s.TopKPosts),
			"top_n_comments": int64(s.TopNComments),
		})
		if err != nil {
			return nil, err
		}

		var parts []string
		for res.Next(ctx) {
			rec := res.Record()
			postContent, _ := rec.Get("post_content")
			commentContents, _ := rec.Get("comment_contents")

			post, _ := postContent.(string)
			parts = append(parts, "POST: "+post)

			if raw, ok := commentContents.([]any); ok && len(raw) > 0 {
				parts = append(parts, "REAZIONI DI SUPPORTO:")
				for _, item := range raw {
					if comment, ok := item.(string); ok {
						parts = append(parts, "- "+comment)
					}
				}
			}
			parts = append(parts, "---")
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return strings.Join(parts, "\n"), nil
	})
	if err != nil {
		return "", fmt.Errorf("analysis: build dossier: %w", err)
	}
	return result.(string), nil
}

const persistSummaryQuery = `
MERGE (s:IdeologicalSummary {id: $id})
SET s.summary = $summary,
    s.embedding = $embedding,
    s.stance = $stance
WITH s
MATCH (e:PoliticalEntity {name: $entity_name})
MERGE (s)-[:SUMMARIZES_STANCE_ON]->(e)
`

// summarizeAndPersist runs the full cycle for one target. Failures log
// and return without error so one bad pair never stops the sweep.
func (s *Summarizer) summarizeAndPersist(ctx context.Context, target IdeologyTarget) {
	dossier, err := s.BuildDossier(ctx, target)
	if err != nil {
		logger.Error("[Analysis] dossier build failed", "entity", target.EntityName, "stance", target.Stance, "err", err)
		return
	}
	if dossier == "" {
		logger.Warn("[Analysis] empty dossier, skipping", "entity", target.EntityName, "stance", target.Stance)
		return
	}
	if len([]rune(dossier)) > maxDossierChars {
		logger.Warn("[Analysis] dossier truncated", "entity", target.EntityName, "stance", target.Stance, "chars", len([]rune(dossier)))
		dossier = string([]rune(dossier)[:maxDossierChars])
	}

	var summary string
	err = s.Gov.Do(ctx, func(ctx context.Context) error {
		var genErr error
		summary, genErr = s.AI.GenerateCompletion(ctx, fmt.Sprintf(ai.IdeologySummaryPrompt, dossier))
		return genErr
	})
	if err != nil || strings.Contains(summary, ai.SummaryFailureSentinel) {
		logger.Error("[Analysis] summary generation failed", "entity", target.EntityName, "stance", target.Stance, "err", err)
		return
	}

	embeddings, err := nlp.EmbedBatch(ctx, s.AI, []string{summary})
	if err != nil || len(embeddings) == 0 {
		logger.Error("[Analysis] summary embedding failed", "entity", target.EntityName, "stance", target.Stance, "err", err)
		return
	}

	embedding := make([]float64, len(embeddings[0]))
	for i, v := range embeddings[0] {
		embedding[i] = float64(v)
	}

	session := s.Graph.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.Graph.Database,
	})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, persistSummaryQuery, map[string]any{
			"id":          target.EntityName + ":" + target.Stance,
			"summary":     summary,
			"embedding":   embedding,
			"stance":      target.Stance,
			"entity_name": target.EntityName,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		logger.Error("[Analysis] summary persist failed", "entity", target.EntityName, "stance", target.Stance, "err", err)
		return
	}
	logger.Info("[Analysis] ideology summarized", "entity", target.EntityName, "stance", target.Stance)
}

// SummarizeIdeologies sweeps every discoverable ideology in paced
// batches. The limiter spaces batches out so the inference backend is
// not saturated right after the extraction-heavy analysis phase.
func (s *Summarizer) SummarizeIdeologies(ctx context.Context) error {
	targets, err := s.TargetIdeologies(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		logger.Info("[Analysis] no sufficiently supported ideologies found")
		return nil
	}
	logger.Info("[Analysis] summarizing ideologies", "targets", len(targets), "batch_size", s.BatchSize)

	for start := 0; start < len(targets); start += s.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		end := min(start+s.BatchSize, len(targets))

		var wg sync.WaitGroup
		for _, target := range targets[start:end] {
			wg.Add(1)
			go func(target IdeologyTarget) {
				defer wg.Done()
				s.summarizeAndPersist(ctx, target)
			}(target)
		}
		wg.Wait()
	}

	logger.Info("[Analysis] ideology summarization completed")
	return nil
}
