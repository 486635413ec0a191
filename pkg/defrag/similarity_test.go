package defrag

import "testing"

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "Biden", b: "Biden", want: 100},
		{name: "case insensitive", a: "BIDEN", b: "biden", want: 100},
		{name: "containment scores full", a: "Biden", b: "Joe Biden", want: 100},
		{name: "word order ignored", a: "Biden Joe", b: "Joe Biden", want: 100},
		{name: "both empty", a: "", b: "", want: 100},
		{name: "one empty", a: "Biden", b: "", want: 0},
		{name: "disjoint", a: "Biden", b: "Trump", want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := TokenSetRatio(tc.a, tc.b)
			if got != tc.want {
				t.Fatalf("TokenSetRatio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTokenSetRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Joe Biden", "President Biden"},
		{"European Union", "the European Union"},
		{"Biden", "Trump"},
	}
	for _, p := range pairs {
		ab := TokenSetRatio(p[0], p[1])
		ba := TokenSetRatio(p[1], p[0])
		if ab != ba {
			t.Fatalf("TokenSetRatio not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestTokenSetRatio_PartialOverlapBetweenBounds(t *testing.T) {
	got := TokenSetRatio("Joe Biden", "President Biden")
	if got <= 0 || got >= 100 {
		t.Fatalf("expected partial score in (0, 100), got %v", got)
	}
}
