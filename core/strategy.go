package core

// SearchStrategy names a configuration of which steps and providers run for
// a session, selected by the planner.
type SearchStrategy string

const (
	StrategyStandard     SearchStrategy = "standard"
	StrategyBalanced     SearchStrategy = "balanced"
	StrategyAcademic     SearchStrategy = "academic"
	StrategyTechnical    SearchStrategy = "technical"
	StrategyRecentEvents SearchStrategy = "recent_events"
	StrategyDeepResearch SearchStrategy = "deep_research"
)

// StrategyOrder is the canonical enumeration order of strategies.
// Ties in scoring are broken by this order, standard first.
var StrategyOrder = []SearchStrategy{
	StrategyStandard,
	StrategyBalanced,
	StrategyAcademic,
	StrategyTechnical,
	StrategyRecentEvents,
	StrategyDeepResearch,
}

// StrategyScores is a mutable tally of weighted signal contributions per
// candidate strategy. It is reset at the start of each planning cycle and
// read off once all analyzers have run.
//
// Not safe for concurrent use; the planner runs analyzers sequentially.
type StrategyScores struct {
	scores map[SearchStrategy]int
}

// NewStrategyScores creates an empty tally covering all known strategies.
func NewStrategyScores() *StrategyScores {
	s := &StrategyScores{}
	s.Reset()
	return s
}

// Reset clears all tallies back to zero.
func (s *StrategyScores) Reset() {
	s.scores = make(map[SearchStrategy]int, len(StrategyOrder))
	for _, strategy := range StrategyOrder {
		s.scores[strategy] = 0
	}
}

// Add contributes points to a candidate strategy. Unknown strategies are
// tallied too, but can never win a tie against an enumerated one.
func (s *StrategyScores) Add(strategy SearchStrategy, points int) {
	s.scores[strategy] += points
}

// Score returns the current tally for a strategy.
func (s *StrategyScores) Score(strategy SearchStrategy) int {
	return s.scores[strategy]
}

// Best returns the strategy with the highest cumulative score.
// Ties are broken by enumeration order, standard first.
func (s *StrategyScores) Best() SearchStrategy {
	best := StrategyStandard
	bestScore := s.scores[best]
	for _, strategy := range StrategyOrder[1:] {
		if s.scores[strategy] > bestScore {
			best = strategy
			bestScore = s.scores[strategy]
		}
	}
	return best
}
