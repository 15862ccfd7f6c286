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


// Package scheduler tracks the discrete units of work of one search session
// as a dependency graph and computes the next eligible task.
//
// Eligibility requires pending status and fully completed prerequisites;
// candidates are ordered by priority (high > medium > low) and then by
// insertion order. Dependency edges are validated with a depth-first
// reachability check so the graph can never become cyclic.
package scheduler
