package nlp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/agoralab/agora/backend/pkg/ai"
	"github.com/agoralab/agora/backend/pkg/common"
)

type fakeAIClient struct {
	mu       sync.Mutex
	prompts  []string
	formatFn func(name, prompt string, out any) error
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.formatFn(name, prompt, out)
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeAIClient) Health(ctx context.Context) error { return nil }

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (f *fakeAIClient) ResetMetrics() {}

func TestExtractEntities_OrderAndDedupe(t *testing.T) {
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			payload := out.(*entitiesPayload)
			if strings.Contains(prompt, "first text") {
				payload.Entities = []string{"Biden", " biden ", "NATO", "nato", ""}
			} else {
				payload.Entities = []string{"EU"}
			}
			return nil
		},
	}
	gov := ai.NewGovernor(2)

	results := ExtractEntities(context.Background(), client, gov, []string{"first text", "second text"})
	if len(results) != 2 {
		t.Fatalf("expected 2 result slots, got %d", len(results))
	}

	first := results[0]
	if len(first) != 2 {
		t.Fatalf("expected 2 deduplicated entities, got %v", first)
	}
	if first[0].Name != "Biden" || first[1].Name != "NATO" {
		t.Fatalf("expected first-seen casing kept in order, got %v", first)
	}
	for _, e := range first {
		if e.Type != common.EntityTypePolitical {
			t.Fatalf("expected type %q, got %q", common.EntityTypePolitical, e.Type)
		}
	}

	if len(results[1]) != 1 || results[1][0].Name != "EU" {
		t.Fatalf("expected EU for second text, got %v", results[1])
	}
}

func TestExtractEntities_FailureDegradesToEmpty(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			mu.Lock()
			calls++
			mu.Unlock()
			if strings.Contains(prompt, "broken") {
				return errors.New("model unavailable")
			}
			out.(*entitiesPayload).Entities = []string{"Senate"}
			return nil
		},
	}
	gov := ai.NewGovernor(1)

	results := ExtractEntities(context.Background(), client, gov, []string{"broken text", "fine text"})
	if results[0] == nil || len(results[0]) != 0 {
		t.Fatalf("expected empty slice for failed text, got %v", results[0])
	}
	if len(results[1]) != 1 {
		t.Fatalf("expected healthy text unaffected, got %v", results[1])
	}
	// failed item is retried before degrading
	if calls != 3 {
		t.Fatalf("expected 3 calls (2 for the failure, 1 for success), got %d", calls)
	}
}

func TestClassifyStances(t *testing.T) {
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			payload := out.(*stancePayload)
			payload.Stance = "FAVORABLE"
			payload.Confidence = 0.9
			return nil
		},
	}
	gov := ai.NewGovernor(2)

	pairs := []StancePair{
		{Text: "the senate did well today", Entity: "Senate"},
	}
	stances := ClassifyStances(context.Background(), client, gov, pairs)
	if len(stances) != 1 {
		t.Fatalf("expected 1 stance, got %d", len(stances))
	}
	s := stances[0]
	if s.Label != common.StanceFavorable || s.Confidence != 0.9 {
		t.Fatalf("unexpected stance: %+v", s)
	}
	if s.Sentence != "the senate did well today" {
		t.Fatalf("expected original text recorded as sentence, got %q", s.Sentence)
	}
}

func TestClassifyStances_FailureDegradesToNeutral(t *testing.T) {
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			return errors.New("timeout")
		},
	}
	gov := ai.NewGovernor(1)

	stances := ClassifyStances(context.Background(), client, gov, []StancePair{
		{Text: "unreadable", Entity: "Congress"},
	})
	if len(stances) != 1 {
		t.Fatalf("expected degraded stance to survive, got %d results", len(stances))
	}
	if stances[0].Label != common.StanceNeutral || stances[0].Confidence != 0.0 {
		t.Fatalf("expected NEUTRAL/0.0, got %+v", stances[0])
	}
}

func TestClassifyStances_OutOfRangeDropped(t *testing.T) {
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			payload := out.(*stancePayload)
			payload.Stance = "FAVORABLE"
			payload.Confidence = 3.5
			return nil
		},
	}
	gov := ai.NewGovernor(1)

	stances := ClassifyStances(context.Background(), client, gov, []StancePair{
		{Text: "text", Entity: "X"},
	})
	if len(stances) != 0 {
		t.Fatalf("expected out-of-range result dropped, got %v", stances)
	}
}

func TestClassifyStancesContextual_TruncatesParentPost(t *testing.T) {
	longPost := strings.Repeat("a", 1500)
	client := &fakeAIClient{
		formatFn: func(name, prompt string, out any) error {
			payload := out.(*stancePayload)
			payload.Stance = "AGAINST"
			payload.Confidence = 0.8
			return nil
		},
	}
	gov := ai.NewGovernor(1)

	stances := ClassifyStancesContextual(context.Background(), client, gov, []ContextualStancePair{
		{PostContent: longPost, CommentContent: "hard disagree", Entity: "Parliament"},
	})
	if len(stances) != 1 {
		t.Fatalf("expected 1 stance, got %d", len(stances))
	}
	if stances[0].Sentence != "hard disagree" {
		t.Fatalf("expected comment content as sentence, got %q", stances[0].Sentence)
	}

	if len(client.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(client.prompts))
	}
	if strings.Contains(client.prompts[0], longPost) {
		t.Fatal("expected parent post truncated in prompt")
	}
	if !strings.Contains(client.prompts[0], strings.Repeat("a", 1000)+"...") {
		t.Fatal("expected truncation marker after capped post context")
	}
}
