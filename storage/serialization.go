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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/metasearch/core"
)

// Records are stored as JSON, matching the wire format of the client update
// stream.

// MarshalTask serializes a Task to bytes.
func MarshalTask(task *core.Task) ([]byte, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalTask deserializes a Task from bytes.
func UnmarshalTask(data []byte) (*core.Task, error) {
	var task core.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &task, nil
}

// MarshalPlanningState serializes a PlanningState to bytes.
func MarshalPlanningState(state *core.PlanningState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalPlanningState deserializes a PlanningState from bytes.
func UnmarshalPlanningState(data []byte) (*core.PlanningState, error) {
	var state core.PlanningState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &state, nil
}
