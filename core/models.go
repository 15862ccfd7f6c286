package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic identifier from text content using
// BLAKE2b hashing. Identical content always produces the same identifier,
// which keeps task identities stable across session reloads.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return strconv.FormatUint(binary.LittleEndian.Uint64(sum), 16)
}

// TaskPriority orders tasks for scheduling.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusCancelled  TaskStatus = "cancelled"
)

// Task represents one unit of planning or execution work within a search
// session. Tasks are never physically deleted; cancellation is a terminal
// status, not removal.
type Task struct {
	Id          string            `json:"id"`
	SessionId   string            `json:"session_id"`
	OwnerId     string            `json:"owner_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Priority    TaskPriority      `json:"priority"`
	Status      TaskStatus        `json:"status"`
	DependsOn   []string          `json:"depends_on,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"` // set iff Status == StatusCompleted
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PlanningStage identifies the current phase of a planning cycle.
// Stages advance strictly forward through the declared order, except for an
// explicit reset to StageInitial at the start of a new cycle.
type PlanningStage string

const (
	StageInitial              PlanningStage = "initial"
	StageRequirementsAnalysis PlanningStage = "requirements_analysis"
	StageTaskDecomposition    PlanningStage = "task_decomposition"
	StageStrategyFormulation  PlanningStage = "strategy_formulation"
	StageResourceAllocation   PlanningStage = "resource_allocation"
	StageReady                PlanningStage = "ready"
)

// PlanningResult is the partially-built output of a planning cycle.
type PlanningResult struct {
	Strategy           SearchStrategy `json:"strategy,omitempty"`
	EnhancedQuery      string         `json:"enhanced_query,omitempty"`
	SubQueries         []string       `json:"sub_queries,omitempty"`
	ResourceAllocation map[string]int `json:"resource_allocation,omitempty"`
	HumanReview        *bool          `json:"human_review,omitempty"`
}

// PlanningState is the one record per search session tracking planning
// progress. It is owned by the planner and persisted after every mutation.
type PlanningState struct {
	SessionId        string         `json:"session_id"`
	OwnerId          string         `json:"owner_id"`
	Stage            PlanningStage  `json:"stage"`
	Result           PlanningResult `json:"result"`
	SelectedStrategy SearchStrategy `json:"selected_strategy,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Highlight is one scored text fragment attached to a search result.
type Highlight struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchResult is one candidate item returned by a provider.
// After merging, Provider holds a comma-joined union of contributing
// providers and Clusters lists the URLs folded into this result.
type SearchResult struct {
	Id          string      `json:"id,omitempty"`
	URL         string      `json:"url"`
	Title       string      `json:"title,omitempty"`
	Snippet     string      `json:"snippet,omitempty"`
	Content     string      `json:"content,omitempty"`
	Score       *float64    `json:"score,omitempty"`
	Provider    string      `json:"provider,omitempty"`
	Author      string      `json:"author,omitempty"`
	PublishedAt string      `json:"published_at,omitempty"`
	Highlights  []Highlight `json:"highlights,omitempty"` // sorted by descending score, capped
	Clusters    []string    `json:"clusters,omitempty"`
}
