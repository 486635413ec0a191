package defrag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// DefaultMapFile is where the canonical map is persisted between the
// analysis run that produces it and the merge run that consumes it.
const DefaultMapFile = "canonical_map.json"

// Run fetches every entity name from the graph, clusters the
// near-duplicates and writes the resulting canonical map to mapFile.
// Returns the map; an empty map means nothing needed consolidating and
// no file is written.
func Run(ctx context.Context, client *graph.Client, threshold float64, mapFile string) (map[string]string, error) {
	if mapFile == "" {
		mapFile = DefaultMapFile
	}

	names, err := client.FetchEntityNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		logger.Warn("[Defrag] no entities in the graph, nothing to do")
		return map[string]string{}, nil
	}
	logger.Info("[Defrag] clustering entity names", "count", len(names), "threshold", threshold)

	clusters := Cluster(names, threshold)
	canonicalMap := BuildCanonicalMap(clusters)
	if len(canonicalMap) == 0 {
		logger.Info("[Defrag] no significant clusters found, map not written")
		return canonicalMap, nil
	}

	if err := SaveMap(canonicalMap, mapFile); err != nil {
		return nil, err
	}
	logger.Info("[Defrag] canonical map written", "file", mapFile, "entries", len(canonicalMap))
	return canonicalMap, nil
}

// SaveMap persists a canonical map as indented JSON.
func SaveMap(canonicalMap map[string]string, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("defrag: create map dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(canonicalMap, "", "    ")
	if err != nil {
		return fmt.Errorf("defrag: marshal map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("defrag: write map: %w", err)
	}
	return nil
}

// LoadMap reads a canonical map previously written by SaveMap.
func LoadMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("defrag: read map: %w", err)
	}
	var canonicalMap map[string]string
	if err := json.Unmarshal(data, &canonicalMap); err != nil {
		return nil, fmt.Errorf("defrag: parse map: %w", err)
	}
	return canonicalMap, nil
}
