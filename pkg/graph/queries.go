package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// StanceCount is one bucket of an entity's stance distribution.
type StanceCount struct {
	Stance string `json:"stance"`
	Count  int64  `json:"count"`
}

// MentionEdge is one User -> PoliticalEntity mention in the overview
// subgraph.
type MentionEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// EntityOverview is the dashboard payload for a single entity: how the
// discourse splits across stances plus a capped mention subgraph.
type EntityOverview struct {
	StanceDistribution []StanceCount `json:"stance_distribution"`
	Nodes              []string      `json:"nodes"`
	Edges              []MentionEdge `json:"edges"`
}

// Community is one detected user community, largest first.
type Community struct {
	ID      int64    `json:"community_id"`
	Members []string `json:"members"`
}

// FetchEntityNames returns every distinct entity name in the graph. The
// defragmenter clusters over this set.
func (c *Client) FetchEntityNames(ctx context.Context) ([]string, error) {
	session := c.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (e:PoliticalEntity) RETURN DISTINCT e.name AS name", nil)
		if err != nil {
			return nil, err
		}
		var names []string
		for res.Next(ctx) {
			if name, ok := res.Record().Get("name"); ok {
				if s, ok := name.(string); ok {
					names = append(names, s)
				}
			}
		}
		return names, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: fetch entity names: %w", err)
	}
	return result.([]string), nil
}

// ListEntities returns all entity names sorted alphabetically, for the
// dashboard's entity picker.
func (c *Client) ListEntities(ctx context.Context) ([]string, error) {
	session := c.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (e:PoliticalEntity) RETURN e.name AS name ORDER BY name", nil)
		if err != nil {
			return nil, err
		}
		var names []string
		for res.Next(ctx) {
			if name, ok := res.Record().Get("name"); ok {
				if s, ok := name.(string); ok {
					names = append(names, s)
				}
			}
		}
		return names, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: list entities: %w", err)
	}
	return result.([]string), nil
}

const overviewStanceQuery = `
MATCH (e:PoliticalEntity {name: $entity_name})<-[r:HAS_STANCE]-(p:Post)
RETURN r.stance AS stance, count(p) AS count
`

const overviewGraphQuery = `
MATCH (u:User)-[:POSTED]->(p:Post)-[:MENTIONS]->(e:PoliticalEntity {name: $entity_name})
RETURN u.name AS source, e.name AS target LIMIT 25
`

// GetEntityOverview assembles stance distribution and a small mention
// subgraph for one entity. Missing entities return an empty overview, not
// an error.
func (c *Client) GetEntityOverview(ctx context.Context, entityName string) (*EntityOverview, error) {
	session := c.readSession(ctx)
	defer session.Close(ctx)

	overview := &EntityOverview{
		StanceDistribution: []StanceCount{},
		Nodes:              []string{},
		Edges:              []MentionEdge{},
	}

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		params := map[string]any{"entity_name": entityName}

		res, err := tx.Run(ctx, overviewStanceQuery, params)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			stance, _ := rec.Get("stance")
			count, _ := rec.Get("count")
			sc := StanceCount{}
			if s, ok := stance.(string); ok {
				sc.Stance = s
			}
			if n, ok := count.(int64); ok {
				sc.Count = n
			}
			overview.StanceDistribution = append(overview.StanceDistribution, sc)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, overviewGraphQuery, params)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{})
		for res.Next(ctx) {
			rec := res.Record()
			source, _ := rec.Get("source")
			target, _ := rec.Get("target")
			src, _ := source.(string)
			tgt, _ := target.(string)
			if src == "" || tgt == "" {
				continue
			}
			for _, n := range []string{src, tgt} {
				if _, dup := seen[n]; !dup {
					seen[n] = struct{}{}
					overview.Nodes = append(overview.Nodes, n)
				}
			}
			overview.Edges = append(overview.Edges, MentionEdge{Source: src, Target: tgt})
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: entity overview: %w", err)
	}
	return overview, nil
}

const communitiesQuery = `
MATCH (u:User)
WHERE u.communityId IS NOT NULL
WITH u.communityId AS communityId, collect(u.name) AS members
RETURN communityId, members
ORDER BY size(members) DESC
`

// GetCommunities reads back the communities written by the last analysis
// run, largest first. Users never assigned a community are excluded.
func (c *Client) GetCommunities(ctx context.Context) ([]Community, error) {
	session := c.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, communitiesQuery, nil)
		if err != nil {
			return nil, err
		}
		var communities []Community
		for res.Next(ctx) {
			rec := res.Record()
			id, _ := rec.Get("communityId")
			members, _ := rec.Get("members")
			community := Community{}
			if n, ok := id.(int64); ok {
				community.ID = n
			}
			if raw, ok := members.([]any); ok {
				for _, m := range raw {
					if s, ok := m.(string); ok {
						community.Members = append(community.Members, s)
					}
				}
			}
			communities = append(communities, community)
		}
		return communities, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: get communities: %w", err)
	}
	return result.([]Community), nil
}
