package aggregate

import (
	"strings"

	"github.com/poiesic/metasearch/core"
)

// clusterNearDuplicates groups results whose snippet (or title, when the
// snippet is empty) text is nearly identical and collapses each group into
// its highest-scored member. Member URLs survive in the Clusters field so
// callers can still see every source.
func (a *Aggregator) clusterNearDuplicates(results []core.SearchResult) []core.SearchResult {
	grams := make([]map[string]bool, len(results))
	for i, result := range results {
		text := result.Snippet
		if text == "" {
			text = result.Title
		}
		if len(text) > a.config.MinClusterTextLen {
			grams[i] = trigrams(text)
		}
	}

	clustered := make([]core.SearchResult, 0, len(results))
	visited := make([]bool, len(results))
	for i := range results {
		if visited[i] {
			continue
		}
		visited[i] = true

		members := []int{i}
		if grams[i] != nil {
			for j := i + 1; j < len(results); j++ {
				if visited[j] || grams[j] == nil {
					continue
				}
				if jaccard(grams[i], grams[j]) >= a.config.ClusterThreshold {
					visited[j] = true
					members = append(members, j)
				}
			}
		}

		if len(members) == 1 {
			clustered = append(clustered, results[i])
			continue
		}
		clustered = append(clustered, a.collapseCluster(results, members))
	}

	return clustered
}

// collapseCluster merges a near-duplicate group into its best-scored member.
func (a *Aggregator) collapseCluster(results []core.SearchResult, members []int) core.SearchResult {
	bestAt := members[0]
	for _, at := range members[1:] {
		if results[at].Score == nil {
			continue
		}
		if results[bestAt].Score == nil || *results[at].Score > *results[bestAt].Score {
			bestAt = at
		}
	}

	base := results[bestAt]
	urls := base.Clusters
	for _, at := range members {
		urls = appendUnique(urls, results[at].URL)
		for _, url := range results[at].Clusters {
			urls = appendUnique(urls, url)
		}
	}
	for _, at := range members {
		if at == bestAt {
			continue
		}
		a.mergeResult(&base, results[at])
	}
	base.Clusters = urls

	a.logger.Debug("collapsed near-duplicate cluster",
		"members", len(members),
		"url", base.URL)
	return base
}

// trigrams returns the set of character trigrams of the normalized text.
// Normalization lowercases and collapses punctuation runs to single spaces
// so formatting differences do not defeat the similarity check.
func trigrams(text string) map[string]bool {
	var builder strings.Builder
	builder.Grow(len(text))
	lastSpace := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace && builder.Len() > 0 {
			builder.WriteByte(' ')
			lastSpace = true
		}
	}

	normalized := strings.TrimSpace(builder.String())
	set := make(map[string]bool)
	for i := 0; i+3 <= len(normalized); i++ {
		set[normalized[i:i+3]] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for gram := range small {
		if large[gram] {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
