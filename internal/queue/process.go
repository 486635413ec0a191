package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/analysis"
	"github.com/agoralab/agora/backend/pkg/defrag"
	"github.com/agoralab/agora/backend/pkg/graph"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/pipeline"
)

func ProcessIngestMessage(
	ctx context.Context,
	builder *pipeline.Builder,
	msg string,
) error {
	data := new(QueueIngestJobMsg)
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	if data.Threads == nil || len(*data.Threads) == 0 {
		logger.Warn("[Queue] Ingest message carried no threads, skipping", "correlation_id", data.CorrelationID)
		return nil
	}

	start := time.Now()
	logger.Info("[Queue] Starting ingest run", "correlation_id", data.CorrelationID, "threads", len(*data.Threads))

	if err := builder.Run(ctx, *data.Threads); err != nil {
		return err
	}

	logger.Info("[Queue] Ingest run complete", "correlation_id", data.CorrelationID, "threads", len(*data.Threads), "time_ms", time.Since(start).Milliseconds())
	return nil
}

// analysisJob is a QueueAnalysisJobMsg with defaults applied and its
// flags resolved into the stages the run should execute.
type analysisJob struct {
	correlationID string
	threshold     float64
	mapFile       string
	runDefrag     bool
	runMerge      bool
	runAnalytics  bool
}

func parseAnalysisJob(msg string) (*analysisJob, error) {
	data := new(QueueAnalysisJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return nil, err
	}

	job := &analysisJob{
		correlationID: data.CorrelationID,
		threshold:     data.DefragThreshold,
		mapFile:       data.CanonicalMapFile,
		runDefrag:     !data.SkipDefrag,
		runMerge:      !data.SkipDefrag && !data.DefragOnly,
		runAnalytics:  !data.DefragOnly,
	}
	if job.threshold <= 0 {
		job.threshold = defrag.DefaultSimilarityThreshold
	}
	if job.mapFile == "" {
		job.mapFile = defrag.DefaultMapFile
	}
	return job, nil
}

func ProcessAnalysisMessage(
	ctx context.Context,
	graphClient *graph.Client,
	aiClient ai.Client,
	gov *ai.Governor,
	msg string,
) error {
	job, err := parseAnalysisJob(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	logger.Info("[Queue] Starting analysis run", "correlation_id", job.correlationID, "defrag_threshold", job.threshold)

	if job.runDefrag {
		canonicalMap, err := defrag.Run(ctx, graphClient, job.threshold, job.mapFile)
		if err != nil {
			return err
		}

		if !job.runMerge {
			logger.Info("[Queue] Canonical map written for review, stopping before merge", "correlation_id", job.correlationID, "file", job.mapFile, "aliases", len(canonicalMap))
			return nil
		}

		plan, err := graph.BuildMergePlan(canonicalMap)
		if err != nil {
			return err
		}

		merged, err := graphClient.ExecuteMerge(ctx, plan)
		if err != nil {
			return err
		}
		logger.Info("[Queue] Entity defragmentation complete", "correlation_id", job.correlationID, "aliases", len(plan), "merged", merged)
	}

	if !job.runAnalytics {
		return nil
	}

	alliances, err := analysis.CreateAllianceEdges(ctx, graphClient)
	if err != nil {
		return err
	}
	logger.Info("[Queue] Alliance edges written", "correlation_id", job.correlationID, "alliances", alliances)

	communities, err := analysis.DetectCommunities(ctx, graphClient)
	if err != nil {
		return err
	}
	logger.Info("[Queue] Community detection complete", "correlation_id", job.correlationID, "communities", len(communities))

	summarizer := analysis.NewSummarizer(graphClient, aiClient, gov)
	if err := summarizer.SummarizeIdeologies(ctx); err != nil {
		return err
	}

	logger.Info("[Queue] Analysis run complete", "correlation_id", job.correlationID, "time_ms", time.Since(start).Milliseconds())
	return nil
}
