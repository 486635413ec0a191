package graph

import (
	"reflect"
	"testing"
)

func TestBuildMergePlan(t *testing.T) {
	canonicalMap := map[string]string{
		"Biden":           "President Biden",
		"Joe Biden":       "President Biden",
		"President Biden": "President Biden",
	}

	plan, err := BuildMergePlan(canonicalMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []MergeRule{
		{Alias: "Biden", Canonical: "President Biden"},
		{Alias: "Joe Biden", Canonical: "President Biden"},
	}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("BuildMergePlan = %v, want %v", plan, want)
	}
}

func TestBuildMergePlan_FlattensChains(t *testing.T) {
	canonicalMap := map[string]string{
		"Biden":     "Joe Biden",
		"Joe Biden": "President Biden",
	}

	plan, err := BuildMergePlan(canonicalMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []MergeRule{
		{Alias: "Biden", Canonical: "President Biden"},
		{Alias: "Joe Biden", Canonical: "President Biden"},
	}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("expected chains flattened to terminal canonical, got %v", plan)
	}
}

func TestBuildMergePlan_RejectsCycles(t *testing.T) {
	canonicalMap := map[string]string{
		"A": "B",
		"B": "C",
		"C": "A",
	}

	if _, err := BuildMergePlan(canonicalMap); err == nil {
		t.Fatal("expected cycle error, got nil")
	}
}

func TestBuildMergePlan_EmptyAndSelfOnly(t *testing.T) {
	plan, err := BuildMergePlan(map[string]string{"NATO": "NATO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan for self mappings, got %v", plan)
	}

	plan, err = BuildMergePlan(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan for nil map, got %v", plan)
	}
}
