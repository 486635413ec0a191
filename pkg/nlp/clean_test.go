package nlp

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty",
			text: "",
			want: "",
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
			want: "",
		},
		{
			name: "url only",
			text: "https://example.com/article?id=1",
			want: "",
		},
		{
			name: "stopwords dropped and tokens stemmed",
			text: "The cats are running",
			want: "cat run",
		},
		{
			name: "url stripped from surrounding text",
			text: "Check https://example.com/page now",
			want: "check",
		},
		{
			name: "punctuation discarded",
			text: "Politicians!!! (again)",
			want: "politician",
		},
		{
			name: "case folded",
			text: "TAXES Taxes taxes",
			want: "tax tax tax",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Clean(tc.text)
			if got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
