package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/provider"
)

// Provider implements provider.SearchProvider over a JSON file of results.
// It exists for offline runs and demos: the file holds a JSON array of
// search results, and a query matches a result when every query token
// appears in its title or snippet.
type Provider struct {
	name    string
	results []core.SearchResult
}

var _ provider.SearchProvider = (*Provider)(nil)

// NewProvider loads a result set from the given JSON file.
func NewProvider(name, path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file %s: %w", path, err)
	}

	var results []core.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing result file %s: %w", path, err)
	}

	return &Provider{
		name:    name,
		results: results,
	}, nil
}

// Name returns the provider label.
func (p *Provider) Name() string {
	return p.name
}

// Search returns the results whose title or snippet contains every query
// token, up to opts.MaxResults.
func (p *Provider) Search(ctx context.Context, query string, opts provider.SearchOptions) ([]core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(query))
	matches := make([]core.SearchResult, 0, len(p.results))
	for _, result := range p.results {
		haystack := strings.ToLower(result.Title + " " + result.Snippet)
		matched := true
		for _, token := range tokens {
			if !strings.Contains(haystack, token) {
				matched = false
				break
			}
		}
		if matched {
			matches = append(matches, result)
		}
		if opts.MaxResults > 0 && len(matches) >= opts.MaxResults {
			break
		}
	}
	return matches, nil
}
