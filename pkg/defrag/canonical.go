package defrag

import (
	"sort"

	"github.com/agoralab/agora/backend/pkg/logger"
)

// CanonicalName picks a cluster's canonical form: the longest name, ties
// broken alphabetically. Longer names carry more disambiguating context
// ("President Biden" over "Biden").
func CanonicalName(members []string) string {
	if len(members) == 0 {
		return ""
	}
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}

// BuildCanonicalMap maps every member of every multi-member cluster
// (canonical included) to the cluster's canonical name. Singleton
// clusters produce no entries.
func BuildCanonicalMap(clusters [][]string) map[string]string {
	canonicalMap := make(map[string]string)
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		canonical := CanonicalName(members)
		logger.Info("[Defrag] cluster resolved", "members", len(members), "canonical", canonical)
		for _, member := range members {
			canonicalMap[member] = canonical
		}
	}
	return canonicalMap
}
