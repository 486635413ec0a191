package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type stanceResult struct {
		Stance     string  `json:"stance"`
		Confidence float64 `json:"confidence,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  stanceResult
	}{
		{
			name:  "valid json object",
			input: `{"stance":"NEUTRAL"}`,
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{stance: 'NEUTRAL'}`,
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "trailing comma",
			input: `{"stance":"NEUTRAL",}`,
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "missing endbracket",
			input: `{"stance":"NEUTRAL`,
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{stance: 'NEUTRAL'}"`,
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"stance\": \"NEUTRAL\"\n}\n",
			want:  stanceResult{Stance: "NEUTRAL"},
		},
		{
			name:  "full payload",
			input: `{"stance":"FAVORABLE","confidence":0.85}`,
			want:  stanceResult{Stance: "FAVORABLE", Confidence: 0.85},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got stanceResult
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ListPayload(t *testing.T) {
	type entitiesResult struct {
		Entities []string `json:"entities"`
	}

	input := `"{\n  \"entities\": [\"Joe Biden\", \"NATO\"]\n}\n"`
	var got entitiesResult
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got.Entities) != 2 || got.Entities[0] != "Joe Biden" || got.Entities[1] != "NATO" {
		t.Fatalf("UnmarshalFlexible() got = %+v", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type stanceResult struct {
		Stance string `json:"stance"`
	}

	var got stanceResult
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{name: "short untouched", s: "abc", max: 10, want: "abc"},
		{name: "exact length untouched", s: "abcde", max: 5, want: "abcde"},
		{name: "truncated with ellipsis", s: "abcdefgh", max: 5, want: "abcde..."},
		{name: "zero max disables", s: "abcdefgh", max: 0, want: "abcdefgh"},
		{name: "multibyte runes counted once", s: "ààààà", max: 3, want: "ààà..."},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.s, tc.max); got != tc.want {
				t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
			}
		})
	}
}
