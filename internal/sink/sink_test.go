package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFailureKey(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

	key := failureKey("post", "p1", now)
	if !strings.HasPrefix(key, "failed_post_p1_20240315_103045_") {
		t.Fatalf("unexpected key prefix: %q", key)
	}
	if !strings.HasSuffix(key, ".json") {
		t.Fatalf("expected .json suffix: %q", key)
	}
}

func TestFailureKey_UnknownID(t *testing.T) {
	key := failureKey("comment", "", time.Now())
	if !strings.Contains(key, "unknown_id") {
		t.Fatalf("expected unknown_id placeholder, got %q", key)
	}
}

func TestFailureKey_Unique(t *testing.T) {
	now := time.Now()
	a := failureKey("post", "p1", now)
	b := failureKey("post", "p1", now)
	if a == b {
		t.Fatalf("expected distinct keys for same instant, got %q twice", a)
	}
}

func TestLocalSink_Save(t *testing.T) {
	baseDir := t.TempDir()
	s := NewLocalSink(baseDir)

	item := map[string]any{"id": "p1", "content": "broken post"}
	if err := s.Save(context.Background(), "post", "p1", item, "Post assembly failed: missing channel"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(baseDir, "failed_posts"))
	if err != nil {
		t.Fatalf("expected failed_posts dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "failed_posts", entries[0].Name()))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var failed FailedItem
	if err := json.Unmarshal(data, &failed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if failed.Reason != "Post assembly failed: missing channel" {
		t.Fatalf("unexpected reason: %q", failed.Reason)
	}
	itemData, ok := failed.ItemData.(map[string]any)
	if !ok {
		t.Fatalf("unexpected item data type: %T", failed.ItemData)
	}
	if itemData["id"] != "p1" {
		t.Fatalf("item data lost: %v", itemData)
	}
}

func TestNewLocalSink_DefaultBaseDir(t *testing.T) {
	s := NewLocalSink("")
	if s.BaseDir != "data" {
		t.Fatalf("expected default base dir, got %q", s.BaseDir)
	}
}
