package planner

import (
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/metasearch/core"
)

// Analyzer weights. Each analyzer reads one exploratory batch and adds fixed
// points to candidate strategies; the weights are part of the scoring
// contract and not configurable.
const (
	domainMixWeight  = 2
	recencyWeight    = 3
	densityWeight    = 3
	complexityHigh   = 3
	complexityMedium = 2
	complexityLow    = 2

	recencySignalFloor = 3
	densityThreshold   = 0.05
	recencyYearWindow  = 3
)

// analyzer inspects one batch of exploratory results and tallies strategy
// signal points. Analyzers never fail; an empty batch is simply no signal.
type analyzer func(results []core.SearchResult, scores *core.StrategyScores)

var analyzers = []analyzer{
	analyzeDomainMix,
	analyzeRecency,
	analyzeTechnicalDensity,
	analyzeComplexity,
}

var developerDomains = []string{
	"github.com",
	"gitlab.com",
	"stackoverflow.com",
	"news.ycombinator.com",
	"pkg.go.dev",
}

// analyzeDomainMix reads result hosts: educational and governmental domains
// signal academic intent, developer hubs signal technical intent.
func analyzeDomainMix(results []core.SearchResult, scores *core.StrategyScores) {
	for _, result := range results {
		host := hostOf(result.URL)
		if strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".gov") {
			scores.Add(core.StrategyAcademic, domainMixWeight)
		}
		if isDeveloperHost(host) {
			scores.Add(core.StrategyTechnical, domainMixWeight)
		}
	}
}

func hostOf(url string) string {
	host := strings.ToLower(url)
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}

func isDeveloperHost(host string) bool {
	for _, domain := range developerDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return strings.HasPrefix(host, "docs.")
}

var recencyWords = []string{
	"latest", "recent", "today", "yesterday", "breaking",
	"announced", "announcement", "just released", "this week", "this month",
}

// analyzeRecency counts explicit recent-year mentions and recency language
// across the batch. Three or more signals push toward recent events.
func analyzeRecency(results []core.SearchResult, scores *core.StrategyScores) {
	text := batchText(results)

	signals := 0
	currentYear := time.Now().Year()
	for offset := 0; offset < recencyYearWindow; offset++ {
		signals += strings.Count(text, strconv.Itoa(currentYear-offset))
	}
	for _, word := range recencyWords {
		signals += strings.Count(text, word)
	}

	if signals >= recencySignalFloor {
		scores.Add(core.StrategyRecentEvents, recencyWeight)
	}
}

var technicalTerms = map[string]bool{
	"api": true, "sdk": true, "cli": true, "algorithm": true, "framework": true,
	"library": true, "compiler": true, "kernel": true, "protocol": true,
	"runtime": true, "database": true, "latency": true, "throughput": true,
	"encryption": true, "concurrency": true, "deployment": true, "debugging": true,
	"kubernetes": true, "container": true, "microservice": true, "backend": true,
	"frontend": true, "schema": true, "refactoring": true, "serialization": true,
}

// analyzeTechnicalDensity measures the share of technical vocabulary over all
// words in the batch text.
func analyzeTechnicalDensity(results []core.SearchResult, scores *core.StrategyScores) {
	words := strings.Fields(batchText(results))
	if len(words) == 0 {
		return
	}

	technical := 0
	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if technicalTerms[cleaned] {
			technical++
		}
	}

	if float64(technical)/float64(len(words)) > densityThreshold {
		scores.Add(core.StrategyTechnical, densityWeight)
	}
}

var complexityKeywords = map[string][]string{
	"high": {
		"architecture", "tradeoffs", "trade-offs", "in-depth", "comprehensive",
		"research", "analysis", "comparison", "advanced", "theory", "survey",
	},
	"medium": {
		"guide", "tutorial", "overview", "walkthrough", "setup", "configure",
		"best practices", "getting started",
	},
	"low": {
		"what is", "simple", "basics", "intro", "definition", "example", "cheat sheet",
	},
}

// analyzeComplexity buckets keyword hits into high, medium, and low
// complexity and scores the majority bucket. High complexity favors deep
// research and academic strategies together; ties resolve toward the higher
// bucket.
func analyzeComplexity(results []core.SearchResult, scores *core.StrategyScores) {
	text := batchText(results)

	counts := make(map[string]int, 3)
	for bucket, keywords := range complexityKeywords {
		for _, keyword := range keywords {
			counts[bucket] += strings.Count(text, keyword)
		}
	}
	if counts["high"]+counts["medium"]+counts["low"] == 0 {
		return
	}

	switch {
	case counts["high"] >= counts["medium"] && counts["high"] >= counts["low"]:
		scores.Add(core.StrategyDeepResearch, complexityHigh)
		scores.Add(core.StrategyAcademic, complexityHigh)
	case counts["medium"] >= counts["low"]:
		scores.Add(core.StrategyBalanced, complexityMedium)
	default:
		scores.Add(core.StrategyStandard, complexityLow)
	}
}

func batchText(results []core.SearchResult) string {
	var builder strings.Builder
	for _, result := range results {
		builder.WriteString(strings.ToLower(result.Title))
		builder.WriteByte(' ')
		builder.WriteString(strings.ToLower(result.Snippet))
		builder.WriteByte(' ')
	}
	return builder.String()
}
