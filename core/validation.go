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

import (
	"fmt"
	"slices"
)

// ValidateTask validates a Task according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Priority and Status must be known values
//   - DependsOn must not contain the task's own id
//
// NOT validated here (enforced by the scheduler, which owns the graph):
//   - existence of DependsOn targets
//   - acyclicity of the dependency graph
func ValidateTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrValidation)
	}

	if task.Title == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTitle)
	}

	if err := ValidatePriority(task.Priority); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := ValidateStatus(task.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if slices.Contains(task.DependsOn, task.Id) {
		return fmt.Errorf("%w: %w: task %q depends on itself", ErrValidation, ErrDependencyCycle, task.Id)
	}

	return nil
}

// ValidatePriority validates that a TaskPriority has a known value.
func ValidatePriority(priority TaskPriority) error {
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidPriority, priority)
}

// ValidateStatus validates that a TaskStatus has a known value.
func ValidateStatus(status TaskStatus) error {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidStatus, status)
}

// ValidateStage validates that a PlanningStage has a known value.
func ValidateStage(stage PlanningStage) error {
	switch stage {
	case StageInitial, StageRequirementsAnalysis, StageTaskDecomposition,
		StageStrategyFormulation, StageResourceAllocation, StageReady:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidStage, stage)
}

// IsTerminalStatus reports whether a status permits no further transitions.
func IsTerminalStatus(status TaskStatus) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// allowedTransitions encodes the monotone task lifecycle. Cancellation is
// reachable from every non-terminal state; completed and cancelled are
// terminal.
var allowedTransitions = map[TaskStatus][]TaskStatus{
	StatusPending:    {StatusInProgress, StatusBlocked, StatusCompleted, StatusCancelled},
	StatusBlocked:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusBlocked, StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether a status change is permitted.
// A same-status update is always permitted (treated as a no-op).
func CanTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(allowedTransitions[from], to)
}

// ValidateTransition validates a status change against the task lifecycle.
func ValidateTransition(from, to TaskStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
