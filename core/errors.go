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


package core

import "errors"

// Domain validation errors
var (
	// ErrValidation indicates malformed task or planning input, rejected
	// before any mutation takes place.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTitle indicates the task Title field is empty.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidPriority indicates an unknown TaskPriority value.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidStatus indicates an unknown TaskStatus value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidTransition indicates a status change that violates the
	// monotone lifecycle (cancelled excepted).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownDependency indicates a dependency referencing a task that
	// does not exist in the session.
	ErrUnknownDependency = errors.New("dependency references unknown task")

	// ErrDependencyCycle indicates an edge that would make the dependency
	// graph cyclic.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrInvalidStage indicates an unknown PlanningStage value.
	ErrInvalidStage = errors.New("invalid planning stage")

	// ErrIncompletePlan indicates planning completion was attempted without
	// a selected strategy and an enhanced query.
	ErrIncompletePlan = errors.New("planning result incomplete")
)
