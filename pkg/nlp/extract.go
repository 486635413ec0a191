package nlp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/common"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// extractionAttempts bounds how often a single LLM call is retried before
// the item degrades to an empty or neutral result. Enrichment must never
// take a whole batch down because one text confused the model.
const extractionAttempts = 2

// maxStanceContextChars caps how much of a parent post is quoted into a
// contextual stance prompt.
const maxStanceContextChars = 1000

type entitiesPayload struct {
	Entities []string `json:"entities" jsonschema_description:"List of extracted political entities"`
}

type stancePayload struct {
	Stance     string  `json:"stance" jsonschema:"enum=FAVORABLE,enum=AGAINST,enum=NEUTRAL" jsonschema_description:"The detected stance"`
	Confidence float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

// StancePair is one classification request: a text and the entity whose
// treatment in that text is being judged.
type StancePair struct {
	Text   string
	Entity string
}

// ContextualStancePair classifies a comment against an entity while
// showing the model the parent post for context.
type ContextualStancePair struct {
	PostContent    string
	CommentContent string
	Entity         string
}

// ExtractEntities runs entity extraction over each text concurrently,
// bounded by the governor. The result has one entry per input text, in
// order. A text whose extraction fails after retries degrades to an empty
// entity list; extraction never fails the batch.
func ExtractEntities(
	ctx context.Context,
	client ai.Client,
	gov *ai.Governor,
	texts []string,
) [][]common.PoliticalEntity {
	results := make([][]common.PoliticalEntity, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()

			var payload entitiesPayload
			err := gov.Do(ctx, func(ctx context.Context) error {
				return util.RetryErrWithContext(ctx, extractionAttempts, func(ctx context.Context) error {
					payload = entitiesPayload{}
					return client.GenerateCompletionWithFormat(
						ctx,
						"political_entities",
						"Political entities identified in a text",
						fmt.Sprintf(ai.EntityExtractionPrompt, text),
						&payload,
					)
				})
			})
			if err != nil {
				logger.Warn("[NLP] entity extraction degraded to empty", "err", err)
				results[i] = []common.PoliticalEntity{}
				return
			}
			results[i] = dedupeEntities(payload.Entities)
		}(i, text)
	}
	wg.Wait()

	return results
}

// dedupeEntities trims, drops blanks and removes case-insensitive
// duplicates while preserving first-seen order and casing.
func dedupeEntities(names []string) []common.PoliticalEntity {
	seen := make(map[string]struct{}, len(names))
	out := make([]common.PoliticalEntity, 0, len(names))
	for _, name := range names {
		clean := strings.TrimSpace(name)
		key := strings.ToLower(clean)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, common.PoliticalEntity{
			Name: clean,
			Type: common.EntityTypePolitical,
		})
	}
	return out
}

// ClassifyStances classifies each (text, entity) pair concurrently under
// the governor. A pair whose classification fails after retries degrades
// to NEUTRAL with zero confidence. Pairs yielding an out-of-range result
// are dropped. Output order follows input order.
func ClassifyStances(
	ctx context.Context,
	client ai.Client,
	gov *ai.Governor,
	pairs []StancePair,
) []common.Stance {
	results := make([]*common.Stance, len(pairs))

	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair StancePair) {
			defer wg.Done()
			prompt := fmt.Sprintf(ai.StancePrompt, pair.Entity, pair.Text)
			results[i] = classifyOne(ctx, client, gov, prompt, pair.Entity, pair.Text)
		}(i, pair)
	}
	wg.Wait()

	return collectStances(results)
}

// ClassifyStancesContextual is ClassifyStances for comments: the parent
// post rides along in the prompt, truncated to keep the window bounded.
// The recorded sentence is always the comment itself.
func ClassifyStancesContextual(
	ctx context.Context,
	client ai.Client,
	gov *ai.Governor,
	pairs []ContextualStancePair,
) []common.Stance {
	results := make([]*common.Stance, len(pairs))

	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, pair ContextualStancePair) {
			defer wg.Done()
			prompt := fmt.Sprintf(
				ai.StanceContextualPrompt,
				ai.TruncateRunes(pair.PostContent, maxStanceContextChars),
				pair.CommentContent,
				pair.Entity,
			)
			results[i] = classifyOne(ctx, client, gov, prompt, pair.Entity, pair.CommentContent)
		}(i, pair)
	}
	wg.Wait()

	return collectStances(results)
}

func classifyOne(
	ctx context.Context,
	client ai.Client,
	gov *ai.Governor,
	prompt string,
	entity string,
	sentence string,
) *common.Stance {
	payload := stancePayload{Stance: string(common.StanceNeutral), Confidence: 0.0}

	err := gov.Do(ctx, func(ctx context.Context) error {
		return util.RetryErrWithContext(ctx, extractionAttempts, func(ctx context.Context) error {
			payload = stancePayload{}
			return client.GenerateCompletionWithFormat(
				ctx,
				"stance_classification",
				"Stance of a text toward a political entity",
				prompt,
				&payload,
			)
		})
	})
	if err != nil {
		// Degrade, matching the extraction contract: an unclassifiable
		// text is recorded as neutral rather than lost.
		logger.Warn("[NLP] stance classification degraded to neutral", "entity", entity, "err", err)
		payload = stancePayload{Stance: string(common.StanceNeutral), Confidence: 0.0}
	}

	stance, err := common.NewStance(entity, payload.Stance, payload.Confidence, sentence)
	if err != nil {
		logger.Warn("[NLP] dropping out-of-range stance result", "entity", entity, "err", err)
		return nil
	}
	return &stance
}

func collectStances(results []*common.Stance) []common.Stance {
	out := make([]common.Stance, 0, len(results))
	for _, s := range results {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
