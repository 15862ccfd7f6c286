// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metasearch orchestrates multi-provider search: per-session task
// scheduling with dependency resolution, stage-based strategy planning,
// result aggregation with dedup and reranking, and a throttled client
// update stream. Engine is the entry point; it owns the durable store and
// hands out independent sessions.
package metasearch

import (
	"log/slog"

	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/session"
	"github.com/poiesic/metasearch/storage"
	"github.com/poiesic/metasearch/storage/badger"
)

// Engine owns the durable store shared by all sessions and the provider set
// handed to each new session.
type Engine struct {
	backend      *badger.Backend
	taskRepo     storage.TaskRepository
	planningRepo storage.PlanningRepository
	providers    []provider.SearchProvider
	reranker     provider.Reranker
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	inMemory  bool
	providers []provider.SearchProvider
	reranker  provider.Reranker
	logger    *slog.Logger
}

// WithInMemory opens the store in memory, discarded on close. Used by tests
// and dry runs.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithProviders sets the search providers handed to every session.
func WithProviders(providers ...provider.SearchProvider) EngineOption {
	return func(o *engineOptions) {
		o.providers = providers
	}
}

// WithReranker sets the relevance reranker handed to every session.
func WithReranker(reranker provider.Reranker) EngineOption {
	return func(o *engineOptions) {
		o.reranker = reranker
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// NewEngine opens the durable store at filePath and prepares the shared
// repositories.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	taskRepo, err := badger.NewTaskRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	planningRepo, err := badger.NewPlanningRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:      backend,
		taskRepo:     taskRepo,
		planningRepo: planningRepo,
		providers:    options.providers,
		reranker:     options.reranker,
		logger:       options.logger,
	}, nil
}

// NewSession creates a session over the engine's store and providers.
// Additional options are appended to the engine defaults, so callers can
// attach a sink or override providers per session. The caller closes the
// session; the engine's store stays open.
func (e *Engine) NewSession(sessionId, ownerId string, opts ...session.Option) (*session.Session, error) {
	sessionOpts := []session.Option{
		session.WithProviders(e.providers...),
		session.WithLogger(e.logger),
	}
	if e.reranker != nil {
		sessionOpts = append(sessionOpts, session.WithReranker(e.reranker))
	}
	sessionOpts = append(sessionOpts, opts...)

	return session.New(sessionId, ownerId, e.taskRepo, e.planningRepo, sessionOpts...)
}

// TaskRepository exposes the shared task store.
func (e *Engine) TaskRepository() storage.TaskRepository {
	return e.taskRepo
}

// PlanningRepository exposes the shared planning store.
func (e *Engine) PlanningRepository() storage.PlanningRepository {
	return e.planningRepo
}

// Close closes the repositories and the backend store.
func (e *Engine) Close() error {
	if err := e.planningRepo.Close(); err != nil {
		e.logger.Error("error closing planning repository", "err", err)
		return err
	}
	if err := e.taskRepo.Close(); err != nil {
		e.logger.Error("error closing task repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
