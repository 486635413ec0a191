// Package analysis derives higher-order structure from the loaded graph:
// agreement edges between users, Leiden community detection over them,
// and narrative summaries of each supported ideology.
package analysis

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
)

const (
	// AllianceConfidenceThreshold filters which stances count as
	// evidence of agreement between two users.
	AllianceConfidenceThreshold = 0.85

	// LeidenGamma is the resolution parameter. Above 1.0 it favors more,
	// smaller communities.
	LeidenGamma = 1.4

	allianceGraphName = "allianceGraph"
	communityProperty = "communityId"
)

// allianceQuery materializes AGREES_WITH edges between user pairs that
// hold the same high-confidence stance toward at least one shared entity.
// The elementId ordering keeps each unordered pair to a single edge, and
// the weight counts the distinct entities they agree on.
const allianceQuery = `
MATCH (u1:User)-[:POSTED]->(p1)-[r1:HAS_STANCE]->(e:PoliticalEntity)
MATCH (u2:User)-[:POSTED]->(p2)-[r2:HAS_STANCE]->(e)
WHERE u1 <> u2 AND r1.confidence >= $threshold AND r2.confidence >= $threshold AND r1.stance = r2.stance AND elementId(u1) < elementId(u2)
WITH u1, u2, count(DISTINCT e) AS weight
MERGE (u1)-[a:AGREES_WITH]-(u2)
SET a.weight = toFloat(weight)
RETURN count(a) AS total_alliances
`

// CreateAllianceEdges rebuilds the AGREES_WITH layer and returns how many
// alliance edges were created or refreshed.
func CreateAllianceEdges(ctx context.Context, client *graph.Client) (int64, error) {
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, allianceQuery, map[string]any{"threshold": AllianceConfidenceThreshold})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total, _ := rec.Get("total_alliances")
		n, _ := total.(int64)
		return n, nil
	})
	if err != nil {
		return 0, fmt.Errorf("analysis: create alliance edges: %w", err)
	}

	total := result.(int64)
	logger.Info("[Analysis] alliance edges refreshed", "total", total, "threshold", AllianceConfidenceThreshold)
	return total, nil
}

const dropProjectionQuery = `
CALL gds.graph.exists($graph_name) YIELD exists
WHERE exists
CALL gds.graph.drop($graph_name) YIELD graphName
RETURN graphName
`

const projectQuery = `
CALL gds.graph.project(
  $graph_name,
  'User',
  {
    AGREES_WITH: {
      type: 'AGREES_WITH',
      orientation: 'UNDIRECTED',
      properties: {
        weight: {
          property: 'weight',
          defaultValue: 0.0
        }
      }
    }
  }
)
YIELD graphName, nodeCount, relationshipCount
`

const leidenQuery = `
CALL gds.leiden.write(
    $graph_name,
    {
        writeProperty: $community_property,
        relationshipWeightProperty: 'weight',
        gamma: $gamma_value
    }
)
YIELD
    communityCount,
    nodePropertiesWritten
`

// dropProjection removes the in-memory GDS projection if present. Needed
// both before projecting (re-runnability) and as final cleanup.
func dropProjection(ctx context.Context, client *graph.Client) error {
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, dropProjectionQuery, map[string]any{"graph_name": allianceGraphName})
	if err != nil {
		return err
	}
	if res.Next(ctx) {
		logger.Info("[Analysis] dropped existing GDS projection", "graph", allianceGraphName)
	}
	return res.Err()
}

// DetectCommunities projects the alliance graph into GDS, runs weighted
// Leiden and writes each user's communityId back onto the node. The
// projection is always torn down afterwards, error path included, and
// the detected communities are read back largest first.
func DetectCommunities(ctx context.Context, client *graph.Client) ([]graph.Community, error) {
	if err := dropProjection(ctx, client); err != nil {
		return nil, fmt.Errorf("analysis: drop projection: %w", err)
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)
	defer func() {
		if err := dropProjection(ctx, client); err != nil {
			logger.Error("[Analysis] GDS projection cleanup failed", "err", err)
		}
	}()

	res, err := session.Run(ctx, projectQuery, map[string]any{"graph_name": allianceGraphName})
	if err != nil {
		return nil, fmt.Errorf("analysis: project alliance graph: %w", err)
	}
	if res.Next(ctx) {
		rec := res.Record()
		nodes, _ := rec.Get("nodeCount")
		rels, _ := rec.Get("relationshipCount")
		logger.Info("[Analysis] alliance graph projected", "nodes", nodes, "relationships", rels)
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("analysis: project alliance graph: %w", err)
	}

	res, err = session.Run(ctx, leidenQuery, map[string]any{
		"graph_name":         allianceGraphName,
		"community_property": communityProperty,
		"gamma_value":        LeidenGamma,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: run leiden: %w", err)
	}
	if res.Next(ctx) {
		count, _ := res.Record().Get("communityCount")
		logger.Info("[Analysis] leiden completed", "gamma", LeidenGamma, "communities", count)
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("analysis: run leiden: %w", err)
	}

	return client.GetCommunities(ctx)
}
