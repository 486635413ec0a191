package queue

import (
	"github.com/agoralab/agora/backend/pkg/pipeline"
)

// QueueIngestJobMsg carries one batch of raw discussion threads to the
// ingestion worker.
type QueueIngestJobMsg struct {
	Message       string                `json:"message"`
	CorrelationID string                `json:"correlation_id"`
	Threads       *[]pipeline.RawThread `json:"threads"`
}

// QueueAnalysisJobMsg triggers a full analysis run: entity
// defragmentation, alliance detection, community detection and
// ideology summarization. Zero values fall back to defaults.
// DefragOnly stops after writing the canonical map so it can be
// reviewed before any nodes are merged.
type QueueAnalysisJobMsg struct {
	Message          string  `json:"message"`
	CorrelationID    string  `json:"correlation_id"`
	DefragThreshold  float64 `json:"defrag_threshold"`
	CanonicalMapFile string  `json:"canonical_map_file"`
	SkipDefrag       bool    `json:"skip_defrag"`
	DefragOnly       bool    `json:"defrag_only"`
}
