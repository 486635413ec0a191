package defrag

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestCluster_GroupsNameVariants(t *testing.T) {
	names := []string{"Biden", "Joe Biden", "President Biden", "Trump"}

	clusters := Cluster(names, DefaultSimilarityThreshold)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %v", len(clusters), clusters)
	}

	var bidenCluster, trumpCluster []string
	for _, c := range clusters {
		if len(c) == 1 {
			trumpCluster = c
		} else {
			bidenCluster = c
		}
	}

	sort.Strings(bidenCluster)
	want := []string{"Biden", "Joe Biden", "President Biden"}
	if !reflect.DeepEqual(bidenCluster, want) {
		t.Fatalf("expected Biden variants clustered, got %v", bidenCluster)
	}
	if !reflect.DeepEqual(trumpCluster, []string{"Trump"}) {
		t.Fatalf("expected Trump singleton, got %v", trumpCluster)
	}
}

func TestCluster_ThresholdBoundary(t *testing.T) {
	// TokenSetRatio("abcd", "abce") is exactly 75: the indel distance is 2
	// over a combined length of 8. A pair sitting exactly at the threshold
	// must stay separate; only strictly closer pairs merge.
	names := []string{"abcd", "abce"}
	if got := TokenSetRatio("abcd", "abce"); got != 75 {
		t.Fatalf("TokenSetRatio = %v, want 75", got)
	}

	atThreshold := Cluster(names, 75)
	if len(atThreshold) != 2 {
		t.Fatalf("expected 2 clusters at the exact threshold, got %v", atThreshold)
	}

	belowThreshold := Cluster(names, 74)
	if len(belowThreshold) != 1 {
		t.Fatalf("expected 1 cluster below the threshold, got %v", belowThreshold)
	}
}

func TestCluster_Empty(t *testing.T) {
	if got := Cluster(nil, DefaultSimilarityThreshold); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestCluster_Deterministic(t *testing.T) {
	names := []string{"EU", "European Union", "The European Union", "NATO", "Nato Alliance"}
	first := Cluster(names, DefaultSimilarityThreshold)
	for i := 0; i < 5; i++ {
		if got := Cluster(names, DefaultSimilarityThreshold); !reflect.DeepEqual(got, first) {
			t.Fatalf("clustering not deterministic: %v vs %v", got, first)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name    string
		members []string
		want    string
	}{
		{name: "longest wins", members: []string{"Biden", "Joe Biden", "President Biden"}, want: "President Biden"},
		{name: "ties break alphabetically", members: []string{"zzz", "aaa"}, want: "aaa"},
		{name: "single member", members: []string{"NATO"}, want: "NATO"},
		{name: "empty", members: nil, want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalName(tc.members); got != tc.want {
				t.Fatalf("CanonicalName(%v) = %q, want %q", tc.members, got, tc.want)
			}
		})
	}
}

func TestBuildCanonicalMap(t *testing.T) {
	clusters := [][]string{
		{"Biden", "Joe Biden", "President Biden"},
		{"Trump"},
	}

	canonicalMap := BuildCanonicalMap(clusters)
	want := map[string]string{
		"Biden":           "President Biden",
		"Joe Biden":       "President Biden",
		"President Biden": "President Biden",
	}
	if !reflect.DeepEqual(canonicalMap, want) {
		t.Fatalf("BuildCanonicalMap = %v, want %v", canonicalMap, want)
	}
	if _, ok := canonicalMap["Trump"]; ok {
		t.Fatal("singleton cluster must not produce map entries")
	}
}

func TestSaveLoadMapRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonical_map.json")
	in := map[string]string{
		"Biden":     "President Biden",
		"Joe Biden": "President Biden",
	}

	if err := SaveMap(in, path); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}

	out, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %v vs %v", in, out)
	}
}
