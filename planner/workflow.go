package planner

import "github.com/poiesic/metasearch/core"

// Workflow step identifiers, shared with the event normalizer's step table.
const (
	StepPlanning    = "planning"
	StepSearch      = "search"
	StepRead        = "read"
	StepHumanReview = "human_review"
	StepAggregate   = "aggregate"
	StepSynthesize  = "synthesize"
	StepComplete    = "complete"
)

// WorkflowConfig is the ordered step list a session executes for one
// strategy, plus the subset of steps that may fan out concurrently.
type WorkflowConfig struct {
	Strategy    core.SearchStrategy
	Steps       []string
	Parallel    []string
	HumanReview bool
}

var workflowTable = map[core.SearchStrategy]WorkflowConfig{
	core.StrategyStandard: {
		Strategy: core.StrategyStandard,
		Steps:    []string{StepPlanning, StepSearch, StepAggregate, StepSynthesize, StepComplete},
		Parallel: []string{StepSearch},
	},
	core.StrategyBalanced: {
		Strategy: core.StrategyBalanced,
		Steps:    []string{StepPlanning, StepSearch, StepRead, StepAggregate, StepSynthesize, StepComplete},
		Parallel: []string{StepSearch},
	},
	core.StrategyAcademic: {
		Strategy: core.StrategyAcademic,
		Steps:    []string{StepPlanning, StepSearch, StepRead, StepAggregate, StepSynthesize, StepComplete},
		Parallel: []string{StepSearch, StepRead},
	},
	core.StrategyTechnical: {
		Strategy: core.StrategyTechnical,
		Steps:    []string{StepPlanning, StepSearch, StepRead, StepAggregate, StepSynthesize, StepComplete},
		Parallel: []string{StepSearch},
	},
	core.StrategyRecentEvents: {
		Strategy: core.StrategyRecentEvents,
		Steps:    []string{StepPlanning, StepSearch, StepAggregate, StepSynthesize, StepComplete},
		Parallel: []string{StepSearch},
	},
	core.StrategyDeepResearch: {
		Strategy:    core.StrategyDeepResearch,
		Steps:       []string{StepPlanning, StepSearch, StepRead, StepAggregate, StepSynthesize, StepComplete},
		Parallel:    []string{StepSearch, StepRead},
		HumanReview: true,
	},
}

// WorkflowForStrategy returns the static workflow for a strategy. An unknown
// strategy maps to the standard workflow. The humanReview override, when
// non-nil, inserts or removes the human-review step immediately before the
// synthesis step regardless of the strategy's own default.
func WorkflowForStrategy(strategy core.SearchStrategy, humanReview *bool) WorkflowConfig {
	config, ok := workflowTable[strategy]
	if !ok {
		config = workflowTable[core.StrategyStandard]
	}

	review := config.HumanReview
	if humanReview != nil {
		review = *humanReview
	}
	config.HumanReview = review

	steps := make([]string, 0, len(config.Steps)+1)
	for _, step := range config.Steps {
		if step == StepHumanReview {
			continue
		}
		if step == StepSynthesize && review {
			steps = append(steps, StepHumanReview)
		}
		steps = append(steps, step)
	}
	config.Steps = steps
	config.Parallel = append([]string(nil), config.Parallel...)

	return config
}
