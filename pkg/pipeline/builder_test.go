package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/common"
)

type fakeAIClient struct {
	healthErr error

	mu sync.Mutex
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var response string
	switch name {
	case "political_entities":
		// only texts mentioning nato yield an entity
		if strings.Contains(strings.ToLower(prompt), "nato") {
			response = `{"entities":["NATO"]}`
		} else {
			response = `{"entities":[]}`
		}
	case "stance_classification":
		response = `{"stance":"FAVORABLE","confidence":0.75}`
	default:
		return errors.New("unexpected schema name: " + name)
	}
	return json.Unmarshal([]byte(response), out)
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeAIClient) Health(ctx context.Context) error { return f.healthErr }

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (f *fakeAIClient) ResetMetrics() {}

type fakeSink struct {
	mu    sync.Mutex
	saved []savedItem
}

type savedItem struct {
	itemType string
	itemID   string
	reason   string
}

func (s *fakeSink) Save(ctx context.Context, itemType, itemID string, item any, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, savedItem{itemType: itemType, itemID: itemID, reason: reason})
	return nil
}

func newTestBuilder(client *fakeAIClient, failSink *fakeSink) *Builder {
	return &Builder{
		AI:            client,
		Gov:           ai.NewGovernor(2),
		Sink:          failSink,
		MiniBatchSize: DefaultMiniBatchSize,
	}
}

func TestProcessMiniBatch_AssemblesAndReassociatesStances(t *testing.T) {
	client := &fakeAIClient{}
	failSink := &fakeSink{}
	b := newTestBuilder(client, failSink)

	threads := []RawThread{
		{
			Post: RawPost{
				ID:        "p1",
				Author:    "alice",
				Content:   "NATO is doing important work",
				Timestamp: 1700000000,
				Score:     10,
				Channel:   "politics",
			},
			Comments: []RawComment{
				{
					ID:        "c1",
					PostID:    "p1",
					Author:    "bob",
					Content:   "completely disagree about NATO",
					Timestamp: 1700000100,
					Score:     -2,
				},
			},
		},
	}

	posts, comments := b.processMiniBatch(context.Background(), threads)
	if len(posts) != 1 || len(comments) != 1 {
		t.Fatalf("expected 1 post and 1 comment, got %d and %d", len(posts), len(comments))
	}

	post := posts[0]
	if len(post.Entities) != 1 || post.Entities[0].Name != "NATO" {
		t.Fatalf("expected NATO entity on post, got %v", post.Entities)
	}
	if len(post.Embedding) != 3 {
		t.Fatalf("expected embedding attached, got %v", post.Embedding)
	}
	if len(post.Stances) != 1 {
		t.Fatalf("expected 1 post stance, got %v", post.Stances)
	}
	if post.Stances[0].Sentence != post.Content {
		t.Fatalf("post stance associated with wrong text: %q", post.Stances[0].Sentence)
	}

	comment := comments[0]
	if len(comment.Stances) != 1 {
		t.Fatalf("expected 1 comment stance, got %v", comment.Stances)
	}
	if comment.Stances[0].Sentence != comment.Content {
		t.Fatalf("comment stance associated with wrong text: %q", comment.Stances[0].Sentence)
	}

	if len(failSink.saved) != 0 {
		t.Fatalf("expected nothing sunk, got %v", failSink.saved)
	}
}

func TestProcessMiniBatch_InvalidItemsRoutedToSink(t *testing.T) {
	client := &fakeAIClient{}
	failSink := &fakeSink{}
	b := newTestBuilder(client, failSink)

	threads := []RawThread{
		{
			// missing ID fails post validation
			Post: RawPost{
				Author:    "alice",
				Content:   "whatever",
				Timestamp: 1700000000,
				Channel:   "politics",
			},
			Comments: []RawComment{
				{
					// missing PostID fails comment validation
					ID:        "c1",
					Author:    "bob",
					Content:   "reply",
					Timestamp: 1700000100,
				},
			},
		},
	}

	posts, comments := b.processMiniBatch(context.Background(), threads)
	if len(posts) != 0 || len(comments) != 0 {
		t.Fatalf("expected invalid items excluded, got %d posts %d comments", len(posts), len(comments))
	}

	if len(failSink.saved) != 2 {
		t.Fatalf("expected 2 sunk items, got %v", failSink.saved)
	}
	for _, item := range failSink.saved {
		if !strings.Contains(item.reason, "assembly failed") {
			t.Fatalf("unexpected sink reason: %q", item.reason)
		}
	}
}

func TestProcessMiniBatch_DeletedAuthorKept(t *testing.T) {
	client := &fakeAIClient{}
	b := newTestBuilder(client, &fakeSink{})

	threads := []RawThread{
		{
			Post: RawPost{
				ID:        "p1",
				Author:    "",
				Content:   "no author here",
				Timestamp: 1700000000,
				Channel:   "politics",
			},
		},
	}

	posts, _ := b.processMiniBatch(context.Background(), threads)
	if len(posts) != 1 {
		t.Fatalf("expected post kept, got %d", len(posts))
	}
	if posts[0].Author != common.DeletedAuthor {
		t.Fatalf("expected author %q, got %q", common.DeletedAuthor, posts[0].Author)
	}
}

func TestRun_HaltsWhenBackendUnhealthy(t *testing.T) {
	client := &fakeAIClient{healthErr: errors.New("connection refused")}
	b := newTestBuilder(client, &fakeSink{})

	err := b.Run(context.Background(), []RawThread{{Post: RawPost{ID: "p1"}}})
	if err == nil {
		t.Fatal("expected error from unhealthy backend, got nil")
	}
	if !strings.Contains(err.Error(), "inference backend unavailable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_NoThreadsIsNoop(t *testing.T) {
	client := &fakeAIClient{}
	b := newTestBuilder(client, &fakeSink{})

	if err := b.Run(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error for empty input, got %v", err)
	}
}
