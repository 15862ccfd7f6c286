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


package provider

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for external capability adapters.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API used by
	// the reranker adapter.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// MaxAttempts is the attempt budget for retried external calls.
	// Default: 3 (one call plus two retries)
	MaxAttempts int

	// BaseDelay is the base delay for exponential backoff between retries.
	// Default: 500ms
	BaseDelay time.Duration

	// RerankTimeout bounds a single rerank call.
	// Default: 10s
	RerankTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithMaxAttempts sets the retry attempt budget.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = attempts
	}
}

// WithBaseDelay sets the base backoff delay.
func WithBaseDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.BaseDelay = delay
	}
}

// WithRerankTimeout sets the per-call rerank timeout.
func WithRerankTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RerankTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		RerankTimeout:  10 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Validate checks the configuration and normalizes host URLs.
func (c *Config) Validate() error {
	if c.EmbeddingHost == "" {
		return errors.New("embedding host cannot be empty")
	}
	if c.EmbeddingModel == "" {
		return errors.New("embedding model cannot be empty")
	}
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	c.EmbeddingHost = strings.TrimRight(c.EmbeddingHost, "/")
	return nil
}
