package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agoralab/agora/backend/pkg/common"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// loadBatchQuery ingests both phases of a mini-batch in one statement.
// Posts are merged first so every comment's parent exists before its
// REPLY_TO edge is created; comments referencing unknown posts are
// silently skipped by the MATCH. Stance properties use plain SET, so the
// latest classification wins on re-ingest. The deleted-author sentinel
// never materializes a User node.
const loadBatchQuery = `
UNWIND $posts AS post_data
MERGE (p:Post {id: post_data.id})
SET p.content = post_data.content,
    p.cleaned_content = post_data.cleaned_content,
    p.timestamp = post_data.timestamp,
    p.score = post_data.score,
    p.channel = post_data.channel,
    p.embedding = post_data.embedding

FOREACH (_ IN CASE WHEN post_data.author <> "deleted" THEN [1] ELSE [] END |
    MERGE (u:User {name: post_data.author})
    MERGE (u)-[:POSTED]->(p)
)
FOREACH (entity_data IN post_data.entities |
    MERGE (e:PoliticalEntity {name: entity_data.name})
    ON CREATE SET e.type = entity_data.type
    MERGE (p)-[:MENTIONS]->(e)
)
FOREACH (stance_data IN post_data.stances |
    MERGE (e_stance:PoliticalEntity {name: stance_data.target_entity_name})
    MERGE (p)-[r:HAS_STANCE]->(e_stance)
    SET r.stance = stance_data.stance, r.confidence = stance_data.confidence
)

WITH 1 AS placeholder

UNWIND $comments AS comment_data
MATCH (parent_post:Post {id: comment_data.post_id})
MERGE (c:Comment {id: comment_data.id})
SET c.content = comment_data.content,
    c.cleaned_content = comment_data.cleaned_content,
    c.timestamp = comment_data.timestamp,
    c.score = comment_data.score,
    c.embedding = comment_data.embedding

MERGE (c)-[:REPLY_TO]->(parent_post)

FOREACH (_ IN CASE WHEN comment_data.author <> "deleted" THEN [1] ELSE [] END |
    MERGE (u:User {name: comment_data.author})
    MERGE (u)-[:POSTED]->(c)
)
FOREACH (entity_data IN comment_data.entities |
    MERGE (e:PoliticalEntity {name: entity_data.name})
    ON CREATE SET e.type = entity_data.type
    MERGE (c)-[:MENTIONS]->(e)
)
FOREACH (stance_data IN comment_data.stances |
    MERGE (e_stance:PoliticalEntity {name: stance_data.target_entity_name})
    MERGE (c)-[r:HAS_STANCE]->(e_stance)
    SET r.stance = stance_data.stance, r.confidence = stance_data.confidence
)
`

// LoadBatch writes one enriched mini-batch in a single managed
// transaction. The transaction is atomic: on failure nothing from the
// batch lands and the caller routes every item to the failure sink.
func (c *Client) LoadBatch(ctx context.Context, posts []common.Post, comments []common.Comment) error {
	if len(posts) == 0 && len(comments) == 0 {
		return nil
	}

	postParams := make([]map[string]any, 0, len(posts))
	for i := range posts {
		postParams = append(postParams, postToParams(&posts[i]))
	}
	commentParams := make([]map[string]any, 0, len(comments))
	for i := range comments {
		commentParams = append(commentParams, commentToParams(&comments[i]))
	}

	session := c.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, loadBatchQuery, map[string]any{
			"posts":    postParams,
			"comments": commentParams,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("graph: load batch: %w", err)
	}

	logger.Info("[Graph] batch loaded", "posts", len(posts), "comments", len(comments))
	return nil
}

func postToParams(p *common.Post) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"author":          p.Author,
		"content":         p.Content,
		"cleaned_content": p.CleanedContent,
		"timestamp":       p.Timestamp,
		"score":           int64(p.Score),
		"channel":         p.Channel,
		"entities":        entitiesToParams(p.Entities),
		"stances":         stancesToParams(p.Stances),
		"embedding":       embeddingToParams(p.Embedding),
	}
}

func commentToParams(c *common.Comment) map[string]any {
	return map[string]any{
		"id":              c.ID,
		"post_id":         c.PostID,
		"author":          c.Author,
		"content":         c.Content,
		"cleaned_content": c.CleanedContent,
		"timestamp":       c.Timestamp,
		"score":           int64(c.Score),
		"entities":        entitiesToParams(c.Entities),
		"stances":         stancesToParams(c.Stances),
		"embedding":       embeddingToParams(c.Embedding),
	}
}

func entitiesToParams(entities []common.PoliticalEntity) []map[string]any {
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, map[string]any{
			"name": e.Name,
			"type": e.Type,
		})
	}
	return out
}

func stancesToParams(stances []common.Stance) []map[string]any {
	out := make([]map[string]any, 0, len(stances))
	for _, s := range stances {
		out = append(out, map[string]any{
			"target_entity_name": s.TargetEntity,
			"stance":             string(s.Label),
			"confidence":         s.Confidence,
		})
	}
	return out
}

// embeddingToParams widens to float64, which is what the bolt protocol
// carries for list-of-float properties.
func embeddingToParams(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
