package rag

import (
	"strings"
	"testing"
)

func TestFormatContext_SummariesAndPosts(t *testing.T) {
	retrieved := RetrievedContext{
		Summaries: []SummaryHit{
			{ID: "NATO:FAVORABLE", Stance: "FAVORABLE", Summary: "Strong support for the alliance."},
		},
		Posts: []PostHit{
			{ID: "p1", Stance: "AGAINST", Text: "spending is out of control"},
			{ID: "p2", Text: "  "},
			{ID: "p3", Text: "neutral observation"},
		},
	}

	got := formatContext(retrieved)

	if !strings.Contains(got, "### Riassunti delle Prospettive Ideologiche Rilevanti") {
		t.Fatal("missing summaries header")
	}
	if !strings.Contains(got, "- (Prospettiva FAVORABLE su NATO): Strong support for the alliance.") {
		t.Fatalf("summary line malformed:\n%s", got)
	}
	if !strings.Contains(got, "### Esempi Specifici da Post Individuali") {
		t.Fatal("missing posts header")
	}
	if !strings.Contains(got, "- (Post p1, Stance: AGAINST): spending is out of control") {
		t.Fatalf("post line malformed:\n%s", got)
	}
	// posts without a stance get the N/A placeholder
	if !strings.Contains(got, "- (Post p3, Stance: N/A): neutral observation") {
		t.Fatalf("stance placeholder missing:\n%s", got)
	}
	// blank posts are skipped entirely
	if strings.Contains(got, "p2") {
		t.Fatalf("blank post should be skipped:\n%s", got)
	}
}

func TestFormatContext_EmptySections(t *testing.T) {
	got := formatContext(RetrievedContext{})

	if !strings.Contains(got, "Nessun riassunto rilevante trovato.") {
		t.Fatalf("missing empty-summaries fallback:\n%s", got)
	}
	if !strings.Contains(got, "Nessun post individuale rilevante trovato.") {
		t.Fatalf("missing empty-posts fallback:\n%s", got)
	}
}

func TestFormatContext_EntityCutFromSummaryID(t *testing.T) {
	retrieved := RetrievedContext{
		Summaries: []SummaryHit{
			{ID: "European Union:AGAINST", Stance: "AGAINST", Summary: "Skeptical of centralization."},
		},
	}

	got := formatContext(retrieved)
	if !strings.Contains(got, "su European Union)") {
		t.Fatalf("entity not recovered from summary id:\n%s", got)
	}
}

func TestRetrievedContextEmpty(t *testing.T) {
	if !(RetrievedContext{}).empty() {
		t.Fatal("zero value should be empty")
	}
	if (RetrievedContext{Posts: []PostHit{{ID: "p"}}}).empty() {
		t.Fatal("context with posts is not empty")
	}
	if (RetrievedContext{Summaries: []SummaryHit{{ID: "s"}}}).empty() {
		t.Fatal("context with summaries is not empty")
	}
}
