// Package rag answers user questions over the political knowledge graph.
// Retrieval is hierarchical: ideology summaries and stance-filtered posts
// are tried first, with pure vector similarity as the fallback, and the
// final answer is generated strictly from the retrieved context.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/common"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/nlp"
)

// Match types reported alongside every answer, so callers can tell how
// the context was found.
const (
	MatchHierarchicalStanceAware = "hierarchical_stance_aware"
	MatchHierarchical            = "hierarchical"
	MatchSemanticFallback        = "semantic_fallback"
	MatchNone                    = "none"
	MatchError                   = "error"
)

// DefaultTopK bounds hierarchical retrieval when the caller does not ask
// for a specific depth.
const DefaultTopK = 30

// maxContextChars is a hard cap on the assembled context fed to the
// answer model.
const maxContextChars = 2400000

// NoInformationAnswer is returned verbatim when no retrieval strategy
// produced any context.
const NoInformationAnswer = "Non ho trovato informazioni."

// SummaryHit is one retrieved ideology summary.
type SummaryHit struct {
	ID      string `json:"id"`
	Stance  string `json:"stance"`
	Summary string `json:"summary"`
}

// PostHit is one retrieved post, from either retrieval tier.
type PostHit struct {
	ID     string  `json:"id"`
	Stance string  `json:"stance,omitempty"`
	Text   string  `json:"text"`
	Score  float64 `json:"score,omitempty"`
}

// RetrievedContext is everything retrieval surfaced for one query.
type RetrievedContext struct {
	Summaries []SummaryHit `json:"summaries"`
	Posts     []PostHit    `json:"posts"`
}

func (c RetrievedContext) empty() bool {
	return len(c.Summaries) == 0 && len(c.Posts) == 0
}

// Result is a full answer: the generated text, the context it was
// grounded on and how that context was matched.
type Result struct {
	Answer    string           `json:"answer"`
	Context   RetrievedContext `json:"context"`
	MatchType string           `json:"match_type"`
}

// retriever is the storage side of the pipeline. It is split out from the
// answer orchestration so the retrieval cascade can be exercised without a
// live graph.
type retriever interface {
	hierarchical(ctx context.Context, entityNames []string, stanceIntent string, topK int) RetrievedContext
	semantic(ctx context.Context, embedding []float32, topK int) []PostHit
}

// Pipeline wires retrieval and generation over a shared graph client and
// AI backend.
type Pipeline struct {
	Graph *graph.Client
	AI    ai.Client
	Gov   *ai.Governor

	retr retriever
}

// NewPipeline returns a ready Pipeline.
func NewPipeline(graphClient *graph.Client, aiClient ai.Client, gov *ai.Governor) *Pipeline {
	return &Pipeline{
		Graph: graphClient,
		AI:    aiClient,
		Gov:   gov,
		retr:  &graphRetriever{graph: graphClient},
	}
}

// Query answers a user question. topK <= 0 falls back to DefaultTopK.
//
// Strategy order: entity-anchored hierarchical retrieval (stance-aware
// when the query itself takes a side), then vector similarity over post
// embeddings, then a fixed no-information answer.
func (p *Pipeline) Query(ctx context.Context, userQuery string, topK int) (*Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger.Info("[RAG] query received", "top_k", topK)

	entities := nlp.ExtractEntities(ctx, p.AI, p.Gov, []string{userQuery})[0]
	stanceIntent := p.detectStanceIntent(ctx, userQuery, entities)

	embeddings, err := nlp.EmbedBatch(ctx, p.AI, []string{userQuery})
	if err != nil || len(embeddings) == 0 {
		return &Result{
			Answer:    "Impossibile generare un embedding per la query.",
			Context:   RetrievedContext{},
			MatchType: MatchError,
		}, nil
	}

	var retrieved RetrievedContext
	matchType := MatchNone

	if len(entities) > 0 {
		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, e.Name)
		}
		retrieved = p.retr.hierarchical(ctx, names, stanceIntent, topK)
		if !retrieved.empty() {
			if stanceIntent != "" {
				matchType = MatchHierarchicalStanceAware
			} else {
				matchType = MatchHierarchical
			}
		}
	}

	if retrieved.empty() {
		logger.Info("[RAG] hierarchical retrieval empty, trying semantic fallback")
		posts := p.retr.semantic(ctx, embeddings[0], topK)
		if len(posts) > 0 {
			retrieved = RetrievedContext{Posts: posts}
			matchType = MatchSemanticFallback
		}
	}

	if retrieved.empty() {
		return &Result{
			Answer:    NoInformationAnswer,
			Context:   RetrievedContext{},
			MatchType: MatchNone,
		}, nil
	}

	answer, err := p.generateAnswer(ctx, retrieved, userQuery)
	if err != nil {
		return nil, fmt.Errorf("rag: generate answer: %w", err)
	}
	return &Result{Answer: answer, Context: retrieved, MatchType: matchType}, nil
}

// detectStanceIntent checks whether the query itself takes a side toward
// its first extracted entity. Only FAVORABLE and AGAINST count as intent;
// a neutral query filters nothing.
func (p *Pipeline) detectStanceIntent(ctx context.Context, userQuery string, entities []common.PoliticalEntity) string {
	if len(entities) == 0 {
		return ""
	}
	pivot := entities[0].Name

	stances := nlp.ClassifyStances(ctx, p.AI, p.Gov, []nlp.StancePair{{Text: userQuery, Entity: pivot}})
	if len(stances) == 0 {
		return ""
	}
	switch stances[0].Label {
	case common.StanceFavorable, common.StanceAgainst:
		logger.Info("[RAG] stance intent detected", "entity", pivot, "stance", stances[0].Label)
		return string(stances[0].Label)
	}
	return ""
}

const summaryRetrievalQuery = `
UNWIND $entity_names AS entity_name
MATCH (e:PoliticalEntity {name: entity_name})
MATCH (s:IdeologicalSummary)-[:SUMMARIZES_STANCE_ON]->(e)
WHERE $stance_intent IS NULL OR s.stance = $stance_intent
RETURN s.summary AS summary, s.id AS id, s.stance AS stance
LIMIT $top_k
`

// postRetrievalQuery matches entities fuzzily through the fulltext index,
// so minor misspellings in the query still anchor retrieval.
const postRetrievalQuery = `
UNWIND $entity_names AS entity_name
CALL db.index.fulltext.queryNodes("entity_names_ft", entity_name + "~") YIELD node AS e
MATCH (p:Post)-[r:HAS_STANCE]->(e)
WHERE $stance_intent IS NULL OR r.stance = $stance_intent
RETURN p.content AS text, p.id AS id, r.stance AS stance
ORDER BY p.score DESC
LIMIT $top_k
`

// graphRetriever runs the retrieval tiers against the live graph.
type graphRetriever struct {
	graph *graph.Client
}

func (r *graphRetriever) hierarchical(ctx context.Context, entityNames []string, stanceIntent string, topK int) RetrievedContext {
	retrieved := RetrievedContext{}

	var intentParam any
	if stanceIntent != "" {
		intentParam = stanceIntent
	}
	params := map[string]any{
		"entity_names":  entityNames,
		"stance_intent": intentParam,
		"top_k":         int64(topK),
	}

	session := r.graph.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.graph.Database,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, summaryRetrievalQuery, params)
	if err != nil {
		logger.Error("[RAG] summary retrieval failed", "err", err)
		return retrieved
	}
	for res.Next(ctx) {
		rec := res.Record()
		hit := SummaryHit{}
		if v, ok := rec.Get("id"); ok {
			hit.ID, _ = v.(string)
		}
		if v, ok := rec.Get("stance"); ok {
			hit.Stance, _ = v.(string)
		}
		if v, ok := rec.Get("summary"); ok {
			hit.Summary, _ = v.(string)
		}
		retrieved.Summaries = append(retrieved.Summaries, hit)
	}
	if err := res.Err(); err != nil {
		logger.Error("[RAG] summary retrieval failed", "err", err)
		return RetrievedContext{}
	}
	logger.Info("[RAG] summaries retrieved", "count", len(retrieved.Summaries))

	res, err = session.Run(ctx, postRetrievalQuery, params)
	if err != nil {
		logger.Error("[RAG] post retrieval failed", "err", err)
		return retrieved
	}
	for res.Next(ctx) {
		rec := res.Record()
		hit := PostHit{}
		if v, ok := rec.Get("id"); ok {
			hit.ID, _ = v.(string)
		}
		if v, ok := rec.Get("stance"); ok {
			hit.Stance, _ = v.(string)
		}
		if v, ok := rec.Get("text"); ok {
			hit.Text, _ = v.(string)
		}
		retrieved.Posts = append(retrieved.Posts, hit)
	}
	if err := res.Err(); err != nil {
		logger.Error("[RAG] post retrieval failed", "err", err)
	}
	logger.Info("[RAG] posts retrieved", "count", len(retrieved.Posts))

	return retrieved
}

const vectorFallbackQuery = `
CALL db.index.vector.queryNodes('post_embedding', $top_k, $embedding)
YIELD node, score
RETURN node.content AS text, node.id AS id, score
`

func (r *graphRetriever) semantic(ctx context.Context, embedding []float32, topK int) []PostHit {
	vec := make([]float64, len(embedding))
	for i, v := range embedding {
		vec[i] = float64(v)
	}

	session := r.graph.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.graph.Database,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, vectorFallbackQuery, map[string]any{
		"top_k":     int64(topK),
		"embedding": vec,
	})
	if err != nil {
		logger.Error("[RAG] semantic fallback failed", "err", err)
		return nil
	}

	var hits []PostHit
	for res.Next(ctx) {
		rec := res.Record()
		hit := PostHit{}
		if v, ok := rec.Get("id"); ok {
			hit.ID, _ = v.(string)
		}
		if v, ok := rec.Get("text"); ok {
			hit.Text, _ = v.(string)
		}
		if v, ok := rec.Get("score"); ok {
			hit.Score, _ = v.(float64)
		}
		hits = append(hits, hit)
	}
	if err := res.Err(); err != nil {
		logger.Error("[RAG] semantic fallback failed", "err", err)
		return nil
	}
	return hits
}

// formatContext renders the retrieved material in the fixed shape the
// answer prompt expects: summaries first, labeled with their stance and
// entity, then individual posts.
func formatContext(retrieved RetrievedContext) string {
	var b strings.Builder

	b.WriteString("### Riassunti delle Prospettive Ideologiche Rilevanti\n")
	if len(retrieved.Summaries) > 0 {
		for _, s := range retrieved.Summaries {
			entity, _, _ := strings.Cut(s.ID, ":")
			fmt.Fprintf(&b, "- (Prospettiva %s su %s): %s\n", s.Stance, entity, s.Summary)
		}
	} else {
		b.WriteString("Nessun riassunto rilevante trovato.\n")
	}

	b.WriteString("\n### Esempi Specifici da Post Individuali\n")
	wrotePost := false
	for _, p := range retrieved.Posts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		stance := p.Stance
		if stance == "" {
			stance = "N/A"
		}
		fmt.Fprintf(&b, "- (Post %s, Stance: %s): %s\n", p.ID, stance, text)
		wrotePost = true
	}
	if !wrotePost {
		b.WriteString("Nessun post individuale rilevante trovato.\n")
	}

	return b.String()
}

func (p *Pipeline) generateAnswer(ctx context.Context, retrieved RetrievedContext, userQuery string) (string, error) {
	contextText := formatContext(retrieved)
	if len(contextText) > maxContextChars {
		contextText = contextText[:maxContextChars]
	}

	var answer string
	err := p.Gov.Do(ctx, func(ctx context.Context) error {
		var genErr error
		answer, genErr = p.AI.GenerateCompletion(ctx, fmt.Sprintf(ai.GroundedAnswerPrompt, contextText, userQuery))
		return genErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
