package events

import (
	"time"

	"github.com/poiesic/metasearch/core"
)

// Event is one internal progress signal published on a session's Bus.
// The set of event types is closed: only types in this package implement
// the interface, so consumers can type-switch exhaustively.
type Event interface {
	isEvent()
}

// TaskAction identifies what happened to a task.
type TaskAction string

const (
	TaskCreated   TaskAction = "task_created"
	TaskUpdated   TaskAction = "task_updated"
	TaskCompleted TaskAction = "task_completed"
	TaskCancelled TaskAction = "task_cancelled"
)

// TaskEvent is emitted by the scheduler after every successful task mutation.
// Task is a snapshot taken at emission time.
type TaskEvent struct {
	Action    TaskAction
	Task      core.Task
	Timestamp time.Time
}

// StageEvent is emitted by the planner whenever the planning stage changes.
type StageEvent struct {
	SessionId string
	Stage     core.PlanningStage
	Timestamp time.Time
}

// PlanEvent is emitted when a planning cycle completes successfully.
type PlanEvent struct {
	SessionId string
	Strategy  core.SearchStrategy
	Timestamp time.Time
}

// StepStatus identifies the lifecycle state of a workflow step.
type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepPayload carries the step's own data. Fields are optional; zero values
// are omitted from the client stream.
type StepPayload struct {
	Query       string   `json:"query,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	ResultCount int      `json:"result_count,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// StepEvent is emitted for each workflow step lifecycle change.
type StepEvent struct {
	StepId    string
	Status    StepStatus
	Payload   StepPayload
	Err       string // non-empty only when Status == StepFailed
	Timestamp time.Time
}

// WorkflowStatus identifies the lifecycle state of the whole workflow.
type WorkflowStatus string

const (
	WorkflowStarted   WorkflowStatus = "started"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowSuspended WorkflowStatus = "suspended"
	WorkflowFailed    WorkflowStatus = "failed"
)

// WorkflowEvent is emitted on workflow lifecycle changes. SuspendedStep is
// set only when Status == WorkflowSuspended and names the step the workflow
// is waiting on.
type WorkflowEvent struct {
	Status        WorkflowStatus
	SuspendedStep string
	Payload       StepPayload
	Timestamp     time.Time
}

// BranchEvent is emitted when the workflow evaluates a conditional branch.
type BranchEvent struct {
	BranchId  string
	Condition string
	Selected  bool
	Timestamp time.Time
}

// ProgressEvent reports incremental progress within a step.
type ProgressEvent struct {
	StepId    string
	Current   int
	Total     int
	Timestamp time.Time
}

// CustomEvent carries a named, free-form signal that does not fit the other
// event types. Name becomes the client-facing update type.
type CustomEvent struct {
	Name      string
	Payload   StepPayload
	Timestamp time.Time
}

func (TaskEvent) isEvent()     {}
func (StageEvent) isEvent()    {}
func (PlanEvent) isEvent()     {}
func (StepEvent) isEvent()     {}
func (WorkflowEvent) isEvent() {}
func (BranchEvent) isEvent()   {}
func (ProgressEvent) isEvent() {}
func (CustomEvent) isEvent()   {}
