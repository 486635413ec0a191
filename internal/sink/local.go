package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agoralab/agora/backend/pkg/logger"
)

// LocalSink writes failures to the local filesystem under
// <BaseDir>/failed_<type>s/, one JSON file per item.
type LocalSink struct {
	BaseDir string
}

// NewLocalSink returns a LocalSink rooted at baseDir ("data" when empty).
func NewLocalSink(baseDir string) *LocalSink {
	if baseDir == "" {
		baseDir = "data"
	}
	return &LocalSink{BaseDir: baseDir}
}

func (s *LocalSink) Save(ctx context.Context, itemType string, itemID string, item any, reason string) error {
	dir := filepath.Join(s.BaseDir, fmt.Sprintf("failed_%ss", itemType))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: create dlq dir: %w", err)
	}

	payload, err := json.MarshalIndent(FailedItem{Reason: reason, ItemData: item}, "", "    ")
	if err != nil {
		return fmt.Errorf("sink: marshal failed item: %w", err)
	}

	path := filepath.Join(dir, failureKey(itemType, itemID, time.Now()))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("sink: write failed item: %w", err)
	}

	logger.Warn("[Sink] item routed to dead letter store", "type", itemType, "id", itemID, "path", path)
	return nil
}
