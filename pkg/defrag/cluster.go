package defrag

// DefaultSimilarityThreshold is the minimum token-set similarity for two
// names to end up in the same cluster.
const DefaultSimilarityThreshold = 85.0

// Cluster groups names by average-linkage agglomerative clustering over
// token-set distance (100 - similarity). Merging stops once the closest
// pair of clusters reaches 100 - threshold; a pair sitting exactly at the
// cutoff stays separate. Each returned cluster preserves the input order
// of its members.
func Cluster(names []string, threshold float64) [][]string {
	if len(names) == 0 {
		return nil
	}

	distanceCutoff := 100.0 - threshold

	// pairwise distance matrix over the original items
	dist := make([][]float64, len(names))
	for i := range dist {
		dist[i] = make([]float64, len(names))
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			d := 100.0 - TokenSetRatio(names[i], names[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	clusters := make([][]int, len(names))
	for i := range names {
		clusters[i] = []int{i}
	}

	for len(clusters) > 1 {
		bestA, bestB := -1, -1
		bestDist := 0.0
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				d := averageLinkage(dist, clusters[a], clusters[b])
				if bestA < 0 || d < bestDist {
					bestA, bestB, bestDist = a, b, d
				}
			}
		}
		if bestDist >= distanceCutoff {
			break
		}
		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	out := make([][]string, 0, len(clusters))
	for _, members := range clusters {
		cluster := make([]string, 0, len(members))
		for _, idx := range members {
			cluster = append(cluster, names[idx])
		}
		out = append(out, cluster)
	}
	return out
}

// averageLinkage is the mean pairwise distance between two clusters.
func averageLinkage(dist [][]float64, a, b []int) float64 {
	sum := 0.0
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}
