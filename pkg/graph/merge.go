package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agoralab/agora/backend/pkg/logger"
)

// MergeRule maps one alias entity name onto its canonical form.
type MergeRule struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}

// BuildMergePlan turns a canonical map into an executable plan. Self
// mappings are dropped, alias chains (a -> b while b -> c) are flattened
// to their terminal canonical, and cyclic maps are rejected outright: a
// cycle means the defragmenter produced contradictory rules and no merge
// should run.
func BuildMergePlan(canonicalMap map[string]string) ([]MergeRule, error) {
	plan := make([]MergeRule, 0, len(canonicalMap))

	for alias := range canonicalMap {
		if alias == canonicalMap[alias] {
			continue
		}

		canonical := canonicalMap[alias]
		hops := 0
		for {
			next, ok := canonicalMap[canonical]
			if !ok || next == canonical {
				break
			}
			canonical = next
			hops++
			if hops > len(canonicalMap) {
				return nil, fmt.Errorf("graph: canonical map contains a cycle through %q", alias)
			}
		}
		if canonical == alias {
			return nil, fmt.Errorf("graph: canonical map contains a cycle through %q", alias)
		}

		plan = append(plan, MergeRule{Alias: alias, Canonical: canonical})
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].Alias < plan[j].Alias })
	return plan, nil
}

// mergeEntitiesQuery collapses each alias node into its canonical node.
// 'first' keeps the canonical node's name and type; relationships from
// the alias are rehomed onto the canonical node by APOC.
const mergeEntitiesQuery = `
UNWIND $plan AS row
MATCH (alias:PoliticalEntity {name: row.alias})
MATCH (canonical:PoliticalEntity {name: row.canonical})
CALL apoc.refactor.mergeNodes([canonical, alias], {
    properties: {
        name: 'first',
        type: 'first'
    }
}) YIELD node
RETURN canonical.name AS merged_into, row.alias AS merged_from
`

// ExecuteMerge applies a merge plan in one write transaction and returns
// how many alias nodes were merged. Aliases already absent from the graph
// are skipped by the MATCH, which makes re-running a plan safe.
func (c *Client) ExecuteMerge(ctx context.Context, plan []MergeRule) (int, error) {
	if len(plan) == 0 {
		return 0, nil
	}

	rows := make([]map[string]any, 0, len(plan))
	for _, rule := range plan {
		rows = append(rows, map[string]any{
			"alias":     rule.Alias,
			"canonical": rule.Canonical,
		})
	}

	session := c.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, mergeEntitiesQuery, map[string]any{"plan": rows})
		if err != nil {
			return nil, err
		}
		merged := 0
		for res.Next(ctx) {
			merged++
		}
		return merged, res.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("graph: execute merge: %w", err)
	}

	merged := result.(int)
	logger.Info("[Graph] entity merge completed", "planned", len(plan), "merged", merged)
	return merged, nil
}
