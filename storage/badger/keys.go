package badger

import "fmt"

// Key prefixes for different data types
const (
	taskPrefix     = "tsk"
	planningPrefix = "pln"
)

// makeTaskKey generates the primary key for a task record.
// Format: prefix:sessionId:taskId
func makeTaskKey(sessionId, taskId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", taskPrefix, sessionId, taskId))
}

// makeSessionTaskPrefix generates the scan prefix for all tasks of a session.
func makeSessionTaskPrefix(sessionId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", taskPrefix, sessionId))
}

// makePlanningKey generates the key for a session's planning state.
// Format: prefix:sessionId:ownerId
func makePlanningKey(sessionId, ownerId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", planningPrefix, sessionId, ownerId))
}
