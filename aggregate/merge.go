package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/poiesic/metasearch/core"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006",
	"2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dedupeByURL folds results sharing a normalized URL into one entry,
// preserving first-seen order. Folded URLs that differ from the survivor's
// are recorded in its Clusters list.
func (a *Aggregator) dedupeByURL(results []core.SearchResult) []core.SearchResult {
	deduped := make([]core.SearchResult, 0, len(results))
	index := make(map[string]int, len(results))

	for _, result := range results {
		key := NormalizeURL(result.URL)
		at, seen := index[key]
		if !seen {
			index[key] = len(deduped)
			deduped = append(deduped, result)
			continue
		}
		base := &deduped[at]
		if result.URL != base.URL {
			base.Clusters = appendUnique(base.Clusters, result.URL)
		}
		for _, url := range result.Clusters {
			base.Clusters = appendUnique(base.Clusters, url)
		}
		a.mergeResult(base, result)
	}

	return deduped
}

// mergeResult folds other into base field by field. The rules favor the
// richer value on each field so the outcome does not depend on which
// duplicate arrived first.
func (a *Aggregator) mergeResult(base *core.SearchResult, other core.SearchResult) {
	if other.Score != nil && (base.Score == nil || *other.Score > *base.Score) {
		base.Score = other.Score
	}

	if len(other.Title) > len(base.Title) {
		base.Title = other.Title
	}

	base.Snippet = a.mergeSnippet(base.Snippet, other.Snippet)

	if len(other.Content) > 0 &&
		float64(len(other.Content)) >= a.config.ContentReplaceRatio*float64(len(base.Content)) {
		base.Content = other.Content
	}

	base.Highlights = mergeHighlights(base.Highlights, other.Highlights, a.config.MaxHighlights)
	base.Provider = unionProviders(base.Provider, other.Provider)

	if otherDate, ok := parseDate(other.PublishedAt); ok {
		baseDate, baseOk := parseDate(base.PublishedAt)
		if !baseOk || otherDate.After(baseDate) {
			base.PublishedAt = other.PublishedAt
		}
	}

	if base.Author == "" {
		base.Author = other.Author
	}
}

func (a *Aggregator) mergeSnippet(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if existing == "" {
		return incoming
	}
	if float64(len(incoming)) >= a.config.SnippetReplaceRatio*float64(len(existing)) {
		return incoming
	}
	if len(incoming) >= minSnippetConcatLen && !strings.Contains(existing, incoming) {
		return existing + " " + incoming
	}
	return existing
}

// mergeHighlights unions two highlight lists by text, keeping the higher
// score for repeats, then returns the top entries by score.
func mergeHighlights(base, other []core.Highlight, max int) []core.Highlight {
	if len(other) == 0 && len(base) <= max {
		return base
	}

	byText := make(map[string]int, len(base)+len(other))
	merged := make([]core.Highlight, 0, len(base)+len(other))
	for _, h := range append(append([]core.Highlight{}, base...), other...) {
		at, seen := byText[h.Text]
		if !seen {
			byText[h.Text] = len(merged)
			merged = append(merged, h)
			continue
		}
		if h.Score > merged[at].Score {
			merged[at].Score = h.Score
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

// unionProviders joins two comma-separated provider labels, deduplicated and
// in first-seen order.
func unionProviders(base, other string) string {
	seen := make(map[string]bool)
	labels := make([]string, 0, 4)
	for _, raw := range strings.Split(base+","+other, ",") {
		label := strings.TrimSpace(raw)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return strings.Join(labels, ",")
}

func appendUnique(urls []string, url string) []string {
	for _, existing := range urls {
		if existing == url {
			return urls
		}
	}
	return append(urls, url)
}
