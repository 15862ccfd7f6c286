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


// Package storage provides the durable storage abstraction for metasearch.
//
// This package defines repository interfaces that decouple storage
// implementation from the scheduler and planner. The in-memory state held
// by those components is authoritative during a session; repositories are a
// write-through sink plus the reload source for session resume.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return the interfaces defined here to prevent
// coupling to BadgerDB specifics:
//
//	repo, err := badger.NewTaskRepository(backend) // returns storage.TaskRepository
//
// # Error Semantics
//
// Absence of a record is only an error where the interface says so
// (GetTask); GetPlanningState returns (nil, nil) for a missing record and
// GetSessionTasks returns an empty slice for an unknown session. Callers
// log store failures and continue operating on their in-memory state.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
