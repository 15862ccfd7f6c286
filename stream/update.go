package stream

import (
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/metasearch/events"
)

// Update is the canonical client-facing record, one JSON object per line.
type Update struct {
	Step      int           `json:"step"`
	Type      string        `json:"type"`
	Payload   UpdatePayload `json:"payload"`
	Error     bool          `json:"error,omitempty"`
	ErrorType string        `json:"errorType,omitempty"`
}

// UpdatePayload is the update's data body. It carries the originating step's
// own payload plus normalizer-added context; zero fields are omitted from
// the wire.
type UpdatePayload struct {
	events.StepPayload

	StepId      string `json:"step_id,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`

	TaskId    string `json:"task_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	BranchId  string `json:"branch_id,omitempty"`
	Condition string `json:"condition,omitempty"`
	Selected  *bool  `json:"selected,omitempty"`
	Current   int    `json:"current,omitempty"`
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ConvertEventToUpdate normalizes one internal event into a client update.
// Events with no client-facing representation return nil and are logged at
// debug level.
func ConvertEventToUpdate(event events.Event, logger *slog.Logger) *Update {
	if logger == nil {
		logger = slog.Default()
	}

	switch e := event.(type) {
	case events.StepEvent:
		return convertStepEvent(e, logger)

	case events.WorkflowEvent:
		return convertWorkflowEvent(e)

	case events.BranchEvent:
		selected := e.Selected
		return &Update{
			Step: StepGlobal,
			Type: "branch",
			Payload: UpdatePayload{
				BranchId:  e.BranchId,
				Condition: e.Condition,
				Selected:  &selected,
			},
		}

	case events.ProgressEvent:
		step := StepGlobal
		if entry, ok := lookupStep(e.StepId); ok {
			step = entry.Number
		}
		return &Update{
			Step: step,
			Type: "progress",
			Payload: UpdatePayload{
				StepId:  e.StepId,
				Current: e.Current,
				Total:   e.Total,
			},
		}

	case events.CustomEvent:
		return &Update{
			Step:    StepGlobal,
			Type:    e.Name,
			Payload: UpdatePayload{StepPayload: e.Payload},
		}

	case events.TaskEvent:
		return &Update{
			Step: StepPlanning,
			Type: "task_update",
			Payload: UpdatePayload{
				TaskId: e.Task.Id,
				Title:  e.Task.Title,
				Status: string(e.Task.Status),
			},
		}

	case events.StageEvent:
		return &Update{
			Step:    StepPlanning,
			Type:    "planning_status",
			Payload: UpdatePayload{Stage: string(e.Stage)},
		}

	case events.PlanEvent:
		return &Update{
			Step:    StepPlanning,
			Type:    "plan_ready",
			Payload: UpdatePayload{Strategy: string(e.Strategy)},
		}

	default:
		logger.Debug("dropping event with no client representation", "event", event)
		return nil
	}
}

func convertStepEvent(e events.StepEvent, logger *slog.Logger) *Update {
	entry, ok := lookupStep(e.StepId)
	if !ok {
		logger.Debug("dropping step event for unknown step", "step_id", e.StepId)
		return nil
	}

	update := &Update{
		Step: entry.Number,
		Type: entry.Type,
		Payload: UpdatePayload{
			StepPayload: e.Payload,
			StepId:      e.StepId,
			Description: entry.Description,
			Status:      string(e.Status),
		},
	}
	if e.Status == events.StepFailed {
		update.Error = true
		update.ErrorType = deriveErrorType(entry.Type)
		if e.Err != "" {
			update.Payload.Message = e.Err
		}
	}
	return update
}

func convertWorkflowEvent(e events.WorkflowEvent) *Update {
	switch e.Status {
	case events.WorkflowSuspended:
		// Suspension on the human-review step is an explicit wait for user
		// input; anything else is a generic suspension.
		if e.SuspendedStep == "human_review" {
			return &Update{
				Step: StepReading,
				Type: "awaiting_user_input",
				Payload: UpdatePayload{
					StepPayload: e.Payload,
					StepId:      e.SuspendedStep,
					Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
				},
			}
		}
		step := StepGlobal
		if entry, ok := lookupStep(e.SuspendedStep); ok {
			step = entry.Number
		}
		return &Update{
			Step: step,
			Type: "suspended",
			Payload: UpdatePayload{
				StepPayload: e.Payload,
				StepId:      e.SuspendedStep,
			},
		}

	case events.WorkflowFailed:
		return &Update{
			Step:      StepGlobal,
			Type:      "workflow_failed",
			Payload:   UpdatePayload{StepPayload: e.Payload},
			Error:     true,
			ErrorType: "workflow_error",
		}

	case events.WorkflowCompleted:
		return &Update{
			Step:    StepCompletion,
			Type:    "workflow_completed",
			Payload: UpdatePayload{StepPayload: e.Payload},
		}

	default:
		return &Update{
			Step:    StepGlobal,
			Type:    "workflow_" + string(e.Status),
			Payload: UpdatePayload{StepPayload: e.Payload},
		}
	}
}

// deriveErrorType turns a step's update type into its error label, e.g.
// search_status becomes search_error.
func deriveErrorType(updateType string) string {
	return strings.TrimSuffix(updateType, "_status") + "_error"
}
