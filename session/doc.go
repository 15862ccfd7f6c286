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

// Package session composes the scheduler, planner, aggregator, and event
// stream into a complete search run. One Session serves one
// (sessionId, ownerId) pair; sessions are independent and share nothing
// mutable. Provider fan-out runs concurrently per query on a worker pool
// and is fully joined before aggregation, so the aggregator never observes
// a partial batch.
package session
