package graph

import (
	"context"
	"fmt"

	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// SetupSchema applies all constraints and indexes the system depends on:
// uniqueness for the core node labels, the fulltext index used by fuzzy
// entity matching, and the vector indexes used by semantic fallback.
// Every statement is idempotent, so this runs unconditionally at startup.
func (c *Client) SetupSchema(ctx context.Context) error {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", 768))

	statements := []string{
		"CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT comment_id_unique IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT user_name_unique IF NOT EXISTS FOR (u:User) REQUIRE u.name IS UNIQUE",
		"CREATE CONSTRAINT political_entity_name_unique IF NOT EXISTS FOR (e:PoliticalEntity) REQUIRE e.name IS UNIQUE",
		"CREATE CONSTRAINT ideological_summary_id_unique IF NOT EXISTS FOR (s:IdeologicalSummary) REQUIRE s.id IS UNIQUE",

		"CREATE FULLTEXT INDEX entity_names_ft IF NOT EXISTS FOR (n:PoliticalEntity) ON EACH [n.name]",

		fmt.Sprintf(`CREATE VECTOR INDEX post_embedding IF NOT EXISTS FOR (p:Post) ON (p.embedding)
OPTIONS { indexConfig: { `+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine' } }`, dim),
		fmt.Sprintf(`CREATE VECTOR INDEX comment_embedding IF NOT EXISTS FOR (c:Comment) ON (c.embedding)
OPTIONS { indexConfig: { `+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine' } }`, dim),
		fmt.Sprintf(`CREATE VECTOR INDEX ideological_summary_embedding IF NOT EXISTS FOR (s:IdeologicalSummary) ON (s.embedding)
OPTIONS { indexConfig: { `+"`vector.dimensions`"+`: %d, `+"`vector.similarity_function`"+`: 'cosine' } }`, dim),
	}

	session := c.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("graph: schema setup: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("graph: schema setup: %w", err)
		}
	}

	logger.Info("[Graph] schema setup completed", "statements", len(statements))
	return nil
}
