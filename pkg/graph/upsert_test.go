package graph

import (
	"reflect"
	"testing"

	"github.com/agoralab/agora/backend/pkg/common"
)

func TestPostToParams(t *testing.T) {
	p := &common.Post{
		ID:             "p1",
		Author:         "alice",
		Content:        "raw text",
		CleanedContent: "raw text",
		Timestamp:      1700000000,
		Score:          7,
		Channel:        "politics",
		Entities:       []common.PoliticalEntity{{Name: "NATO", Type: common.EntityTypePolitical}},
		Stances: []common.Stance{
			{TargetEntity: "NATO", Label: common.StanceFavorable, Confidence: 0.9, Sentence: "raw text"},
		},
		Embedding: []float32{0.5, 0.25},
	}

	params := postToParams(p)

	if params["id"] != "p1" || params["channel"] != "politics" {
		t.Fatalf("scalar fields wrong: %v", params)
	}
	if params["score"] != int64(7) {
		t.Fatalf("score must widen to int64, got %T", params["score"])
	}

	entities := params["entities"].([]map[string]any)
	if len(entities) != 1 || entities[0]["name"] != "NATO" || entities[0]["type"] != common.EntityTypePolitical {
		t.Fatalf("entities malformed: %v", entities)
	}

	stances := params["stances"].([]map[string]any)
	if len(stances) != 1 {
		t.Fatalf("stances malformed: %v", stances)
	}
	if stances[0]["stance"] != "FAVORABLE" {
		t.Fatalf("stance label must be a plain string, got %v (%T)", stances[0]["stance"], stances[0]["stance"])
	}
	// sentence is pipeline bookkeeping and must not reach the graph
	if _, ok := stances[0]["sentence"]; ok {
		t.Fatal("sentence must not be persisted")
	}

	embedding := params["embedding"].([]float64)
	if !reflect.DeepEqual(embedding, []float64{0.5, 0.25}) {
		t.Fatalf("embedding not widened correctly: %v", embedding)
	}
}

func TestCommentToParams(t *testing.T) {
	c := &common.Comment{
		ID:        "c1",
		PostID:    "p1",
		Author:    "deleted",
		Timestamp: 1700000100,
		Score:     -3,
	}

	params := commentToParams(c)
	if params["post_id"] != "p1" {
		t.Fatalf("post_id missing: %v", params)
	}
	if params["score"] != int64(-3) {
		t.Fatalf("score must widen to int64, got %T", params["score"])
	}
	if got := params["embedding"].([]float64); len(got) != 0 {
		t.Fatalf("expected empty embedding slice, got %v", got)
	}
}

func TestEmbeddingToParams_Empty(t *testing.T) {
	if got := embeddingToParams(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
