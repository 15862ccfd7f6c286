package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/metasearch/core"
)

func TestWorkflowForStrategy(t *testing.T) {
	standard := WorkflowForStrategy(core.StrategyStandard, nil)
	assert.Equal(t, []string{StepPlanning, StepSearch, StepAggregate, StepSynthesize, StepComplete}, standard.Steps)
	assert.False(t, standard.HumanReview)

	deep := WorkflowForStrategy(core.StrategyDeepResearch, nil)
	assert.True(t, deep.HumanReview)
	assert.Equal(t, []string{StepPlanning, StepSearch, StepRead, StepAggregate, StepHumanReview, StepSynthesize, StepComplete}, deep.Steps)
}

func TestWorkflowForStrategyUnknownDefaultsToStandard(t *testing.T) {
	config := WorkflowForStrategy(core.SearchStrategy("mystery"), nil)
	assert.Equal(t, core.StrategyStandard, config.Strategy)
}

func TestWorkflowHumanReviewOverride(t *testing.T) {
	on := true
	off := false

	// Override adds the review step right before synthesis.
	standard := WorkflowForStrategy(core.StrategyStandard, &on)
	assert.True(t, standard.HumanReview)
	assert.Equal(t, []string{StepPlanning, StepSearch, StepAggregate, StepHumanReview, StepSynthesize, StepComplete}, standard.Steps)

	// Override removes it even where the strategy defaults to review.
	deep := WorkflowForStrategy(core.StrategyDeepResearch, &off)
	assert.False(t, deep.HumanReview)
	assert.NotContains(t, deep.Steps, StepHumanReview)
}
