package core

import (
	"errors"
	"testing"
)

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name    string
		task    *Task
		wantErr error
	}{
		{
			name: "valid task",
			task: &Task{
				Id:       "t1",
				Title:    "analyze requirements",
				Priority: PriorityHigh,
				Status:   StatusPending,
			},
			wantErr: nil,
		},
		{
			name: "valid task with dependencies",
			task: &Task{
				Id:        "t2",
				Title:     "formulate strategy",
				Priority:  PriorityMedium,
				Status:    StatusPending,
				DependsOn: []string{"t1"},
			},
			wantErr: nil,
		},
		{
			name:    "nil task",
			task:    nil,
			wantErr: ErrValidation,
		},
		{
			name: "empty title",
			task: &Task{
				Id:       "t1",
				Title:    "",
				Priority: PriorityLow,
				Status:   StatusPending,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "unknown priority",
			task: &Task{
				Id:       "t1",
				Title:    "task",
				Priority: TaskPriority("urgent"),
				Status:   StatusPending,
			},
			wantErr: ErrInvalidPriority,
		},
		{
			name: "unknown status",
			task: &Task{
				Id:       "t1",
				Title:    "task",
				Priority: PriorityHigh,
				Status:   TaskStatus("done"),
			},
			wantErr: ErrInvalidStatus,
		},
		{
			name: "self dependency",
			task: &Task{
				Id:        "t1",
				Title:     "task",
				Priority:  PriorityHigh,
				Status:    StatusPending,
				DependsOn: []string{"t1"},
			},
			wantErr: ErrDependencyCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTask(tt.task)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTask() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTask() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != ErrValidation && !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateTask() error %v should wrap ErrValidation", err)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{"pending to in_progress", StatusPending, StatusInProgress, true},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to blocked", StatusPending, StatusBlocked, true},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"blocked to in_progress", StatusBlocked, StatusInProgress, true},
		{"same status is a no-op", StatusInProgress, StatusInProgress, true},
		{"cancelled from pending", StatusPending, StatusCancelled, true},
		{"cancelled from in_progress", StatusInProgress, StatusCancelled, true},
		{"cancelled from blocked", StatusBlocked, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusInProgress, false},
		{"completed cannot be cancelled", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"in_progress cannot regress", StatusInProgress, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(StatusPending, StatusInProgress); err != nil {
		t.Errorf("ValidateTransition() unexpected error: %v", err)
	}

	err := ValidateTransition(StatusCompleted, StatusPending)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ValidateTransition() error = %v, want ErrInvalidTransition", err)
	}
}

func TestValidateStage(t *testing.T) {
	for _, stage := range []PlanningStage{
		StageInitial, StageRequirementsAnalysis, StageTaskDecomposition,
		StageStrategyFormulation, StageResourceAllocation, StageReady,
	} {
		if err := ValidateStage(stage); err != nil {
			t.Errorf("ValidateStage(%s) unexpected error: %v", stage, err)
		}
	}

	if err := ValidateStage(PlanningStage("finished")); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("ValidateStage() error = %v, want ErrInvalidStage", err)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(StatusCompleted) || !IsTerminalStatus(StatusCancelled) {
		t.Error("completed and cancelled must be terminal")
	}
	if IsTerminalStatus(StatusPending) || IsTerminalStatus(StatusBlocked) || IsTerminalStatus(StatusInProgress) {
		t.Error("pending, blocked and in_progress must not be terminal")
	}
}
