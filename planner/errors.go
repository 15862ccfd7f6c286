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

package planner

import "errors"

var (
	// ErrSchedulerRequired indicates the planner was constructed without a
	// scheduler.
	ErrSchedulerRequired = errors.New("scheduler is required")

	// ErrRepositoryRequired indicates the planner was constructed without a
	// planning repository.
	ErrRepositoryRequired = errors.New("planning repository is required")

	// ErrBusRequired indicates the planner was constructed without an event
	// bus.
	ErrBusRequired = errors.New("event bus is required")

	// ErrPlanningNotStarted indicates a stage or completion call before
	// StartPlanning.
	ErrPlanningNotStarted = errors.New("planning has not been started")
)
