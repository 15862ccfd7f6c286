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

// Package planner implements the per-session strategy planning stage
// machine. Planning proceeds through a fixed stage order, scores candidate
// search strategies from exploratory-search signals (domain mix, recency,
// technical density, complexity), and maps the winning strategy to a static
// workflow configuration.
//
// Provider failures during exploration are never fatal to planning; a failed
// batch simply contributes no signal and ties resolve to the standard
// strategy.
package planner
