package aggregate

import (
	"sort"
	"strings"

	"github.com/poiesic/metasearch/core"
)

// Stop words to filter out when extracting topic terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true, "why": true,
	"your": true, "about": true, "into": true, "more": true, "other": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation,
// and removes stop words and short tokens.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if len(cleaned) <= 3 || stopWords[cleaned] {
			continue
		}
		filtered = append(filtered, cleaned)
	}

	return filtered
}

// extractTopics counts how many results mention each title term and returns
// the top terms appearing in at least MinTopicResults of them. A term is
// counted once per result regardless of repetition.
func (a *Aggregator) extractTopics(results []core.SearchResult) map[string]int {
	counts := make(map[string]int)
	for _, result := range results {
		seen := make(map[string]bool)
		for _, term := range tokenizeAndFilter(result.Title) {
			if seen[term] {
				continue
			}
			seen[term] = true
			counts[term]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term, count := range counts {
		if count >= a.config.MinTopicResults {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	// Alphabetical tie-break keeps the selection deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > a.config.TopicCount {
		terms = terms[:a.config.TopicCount]
	}

	topics := make(map[string]int, len(terms))
	for _, term := range terms {
		topics[term] = counts[term]
	}
	return topics
}
