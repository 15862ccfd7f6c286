package stream

// Wire step numbers. Step 0 is session-global; 1-5 track the client-facing
// workflow phases.
const (
	StepGlobal     = 0
	StepPlanning   = 1
	StepSearching  = 2
	StepReading    = 3
	StepSynthesis  = 4
	StepCompletion = 5
)

// stepEntry is one row of the static step table: the client-facing phase
// number, update type, and human-readable description for an internal step
// identifier.
type stepEntry struct {
	Number      int
	Type        string
	Description string
}

var stepTable = map[string]stepEntry{
	"planning":     {StepPlanning, "planning_status", "Planning search strategy"},
	"search":       {StepSearching, "search_status", "Searching providers"},
	"read":         {StepReading, "reading_status", "Reading and reviewing results"},
	"human_review": {StepReading, "human_review", "Awaiting human review"},
	"aggregate":    {StepSearching, "aggregation_status", "Aggregating and ranking results"},
	"synthesize":   {StepSynthesis, "synthesis_status", "Synthesizing answer"},
	"complete":     {StepCompletion, "completion", "Search complete"},
}

// lookupStep resolves an internal step identifier against the static table.
func lookupStep(stepId string) (stepEntry, bool) {
	entry, ok := stepTable[stepId]
	return entry, ok
}
