// Package sink is the dead-letter store for items that could not be
// enriched or loaded. Every failure is preserved as a standalone JSON
// document so operators can inspect and replay it later.
package sink

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// FailedItem is the persisted envelope: why the item failed plus the
// item itself, exactly as it looked when it failed.
type FailedItem struct {
	Reason   string `json:"reason"`
	ItemData any    `json:"item_data"`
}

// Sink receives items that fell out of the pipeline. itemType namespaces
// the failure ("post", "comment"), itemID identifies the source record.
type Sink interface {
	Save(ctx context.Context, itemType string, itemID string, item any, reason string) error
}

// failureKey builds the per-item object name. The nanoid suffix keeps
// two failures of the same item in the same instant from colliding.
func failureKey(itemType, itemID string, now time.Time) string {
	suffix, err := gonanoid.New(8)
	if err != nil {
		suffix = "00000000"
	}
	if itemID == "" {
		itemID = "unknown_id"
	}
	return fmt.Sprintf("failed_%s_%s_%s_%s.json", itemType, itemID, now.Format("20060102_150405"), suffix)
}
