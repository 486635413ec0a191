package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// RawPost is an unenriched post exactly as a content source delivers it.
type RawPost struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Score     int    `json:"score"`
	Channel   string `json:"channel"`
}

// RawComment is an unenriched reply. PostID ties it to its thread.
type RawComment struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Score     int    `json:"score"`
}

// RawThread is the ingestion unit: one post with its selected comments.
type RawThread struct {
	Post     RawPost      `json:"post"`
	Comments []RawComment `json:"comments"`
}

// ContentSource abstracts where raw discussion threads come from. The
// builder only ever sees threads, never the upstream platform.
type ContentSource interface {
	Fetch(ctx context.Context) ([]RawThread, error)
}

// FileSource reads threads from a JSON file: an array of RawThread
// objects. Used for replays and local runs.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]RawThread, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read source file: %w", err)
	}
	var threads []RawThread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("pipeline: parse source file: %w", err)
	}
	return threads, nil
}
