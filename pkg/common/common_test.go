package common

import (
	"errors"
	"testing"
)

func TestParseStanceLabel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    StanceLabel
		wantErr bool
	}{
		{name: "favorable", raw: "FAVORABLE", want: StanceFavorable},
		{name: "against lowercase", raw: "against", want: StanceAgainst},
		{name: "neutral with whitespace", raw: "  NEUTRAL ", want: StanceNeutral},
		{name: "unknown label", raw: "AMBIVALENT", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStanceLabel(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseStanceLabel(%q) expected error, got %v", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStanceLabel(%q) unexpected error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseStanceLabel(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNewStance(t *testing.T) {
	s, err := NewStance("Green Party", "favorable", 0.92, "the green party finally gets it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Label != StanceFavorable {
		t.Fatalf("expected FAVORABLE, got %v", s.Label)
	}
	if s.TargetEntity != "Green Party" {
		t.Fatalf("expected target kept, got %q", s.TargetEntity)
	}
}

func TestNewStance_RejectsOutOfRangeConfidence(t *testing.T) {
	for _, conf := range []float64{-0.1, 1.5} {
		if _, err := NewStance("X", "NEUTRAL", conf, "text"); err == nil {
			t.Fatalf("confidence %v: expected error, got nil", conf)
		}
	}
}

func TestNewStance_RejectsEmptyTarget(t *testing.T) {
	if _, err := NewStance("", "NEUTRAL", 0.5, "text"); err == nil {
		t.Fatal("expected error for empty target, got nil")
	}
}

func TestValidatePost_DeletedAuthorDefault(t *testing.T) {
	p := &Post{
		ID:        "p1",
		Author:    "",
		Content:   "some content",
		Timestamp: 1700000000,
		Channel:   "politics",
	}
	if err := ValidatePost(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Author != DeletedAuthor {
		t.Fatalf("expected author %q, got %q", DeletedAuthor, p.Author)
	}
}

func TestValidatePost_MissingFields(t *testing.T) {
	p := &Post{Author: "alice"}
	err := ValidatePost(p)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if vErr.Kind != "post" {
		t.Fatalf("expected kind post, got %q", vErr.Kind)
	}
}

func TestValidatePost_InvalidStanceLabel(t *testing.T) {
	p := &Post{
		ID:        "p1",
		Author:    "alice",
		Timestamp: 1700000000,
		Channel:   "politics",
		Stances: []Stance{
			{TargetEntity: "X", Label: "SOMETHING", Confidence: 0.5},
		},
	}
	if err := ValidatePost(p); err == nil {
		t.Fatal("expected error for invalid stance label, got nil")
	}
}

func TestValidateComment(t *testing.T) {
	c := &Comment{
		ID:        "c1",
		PostID:    "p1",
		Author:    "",
		Content:   "reply",
		Timestamp: 1700000001,
	}
	if err := ValidateComment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Author != DeletedAuthor {
		t.Fatalf("expected author %q, got %q", DeletedAuthor, c.Author)
	}

	missing := &Comment{ID: "c2", Author: "bob", Timestamp: 1}
	if err := ValidateComment(missing); err == nil {
		t.Fatal("expected error for missing post_id, got nil")
	}
}
