// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/provider"
)

// MockSearchProvider is a test double for provider.SearchProvider.
// It allows custom behavior injection via function fields.
type MockSearchProvider struct {
	// ProviderName is the label returned by Name. Defaults to "mock".
	ProviderName string

	// SearchFunc is called by Search if set.
	// If nil, Search returns Results unchanged.
	SearchFunc func(ctx context.Context, query string, opts provider.SearchOptions) ([]core.SearchResult, error)

	// Results is the canned response used when SearchFunc is nil.
	Results []core.SearchResult

	callCount int
	queries   []string
}

var _ provider.SearchProvider = (*MockSearchProvider)(nil)

// NewMockSearchProvider creates a mock provider returning the given canned
// results for every query.
func NewMockSearchProvider(name string, results []core.SearchResult) *MockSearchProvider {
	return &MockSearchProvider{
		ProviderName: name,
		Results:      results,
	}
}

// Name returns the configured provider label.
func (m *MockSearchProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Search records the query and returns the canned or injected response.
func (m *MockSearchProvider) Search(ctx context.Context, query string, opts provider.SearchOptions) ([]core.SearchResult, error) {
	m.callCount++
	m.queries = append(m.queries, query)

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, opts)
	}
	return m.Results, nil
}

// CallCount returns the number of Search calls.
func (m *MockSearchProvider) CallCount() int {
	return m.callCount
}

// Queries returns the queries received, in call order.
func (m *MockSearchProvider) Queries() []string {
	return m.queries
}

// Reset clears recorded calls and injected behavior.
func (m *MockSearchProvider) Reset() {
	m.callCount = 0
	m.queries = nil
	m.SearchFunc = nil
}
