// Package defrag consolidates fragmented entity names. Extraction yields
// near-duplicates like "Biden", "Joe Biden" and "President Biden"; this
// package clusters them by fuzzy string similarity and emits a canonical
// map that the graph layer uses to merge the duplicate nodes.
package defrag

import (
	"sort"
	"strings"
)

// TokenSetRatio scores two strings 0..100 by comparing their token sets.
// Word order is ignored and full containment of one token set in the
// other scores 100, which is what makes "Joe Biden" and "Biden" cluster.
func TokenSetRatio(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 100
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var intersection, diffA, diffB []string
	for _, t := range tokensA {
		if contains(tokensB, t) {
			intersection = append(intersection, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for _, t := range tokensB {
		if !contains(tokensA, t) {
			diffB = append(diffB, t)
		}
	}

	base := strings.Join(intersection, " ")
	combinedA := joinNonEmpty(base, strings.Join(diffA, " "))
	combinedB := joinNonEmpty(base, strings.Join(diffB, " "))

	best := indelRatio(base, combinedA)
	if r := indelRatio(base, combinedB); r > best {
		best = r
	}
	if r := indelRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

// tokenSet lowercases, splits on whitespace and returns the sorted set of
// unique tokens.
func tokenSet(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func contains(sorted []string, target string) bool {
	i := sort.SearchStrings(sorted, target)
	return i < len(sorted) && sorted[i] == target
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// indelRatio is the normalized similarity of two strings under
// insert/delete edits: 100 * (1 - distance / (len(a)+len(b))).
func indelRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(indelDistance(ra, rb))/float64(total))
}

// indelDistance is edit distance with insertions and deletions only
// (substitution counts as two edits).
func indelDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			if del < ins {
				curr[j] = del
			} else {
				curr[j] = ins
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
