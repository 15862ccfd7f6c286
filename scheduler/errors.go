package scheduler

import "errors"

var (
	// ErrTaskRepositoryRequired is returned when a task repository is not provided.
	ErrTaskRepositoryRequired = errors.New("task repository required")

	// ErrBusRequired is returned when an event bus is not provided.
	ErrBusRequired = errors.New("event bus required")

	// ErrTaskNotFound is returned when an operation references an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateTask is returned when creating a task whose id already exists.
	ErrDuplicateTask = errors.New("task already exists")
)
