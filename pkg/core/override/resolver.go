package override

import (
	"fmt"
	"sort"
)

// =============================================================================
// CONFLICT RESOLUTION STRATEGIES
// =============================================================================

// ConflictStrategy decides the winner when several rules match one column
type ConflictStrategy string

const (
	StrategyHighestPriority ConflictStrategy = "highest_priority"
	StrategyMostRecent      ConflictStrategy = "most_recent"
	StrategyMostSpecific    ConflictStrategy = "most_specific"
	StrategyCombine         ConflictStrategy = "combine"
	StrategyManual          ConflictStrategy = "manual"
)

// conflictConfidence is the downgraded confidence applied when a winner
// had to be chosen among several matching rules
const conflictConfidence = 0.8

// ConflictResolver settles multi-match resolutions under one strategy
type ConflictResolver struct {
	strategy ConflictStrategy
}

// NewConflictResolver creates a resolver; an empty strategy falls back to
// highest-priority
func NewConflictResolver(strategy ConflictStrategy) *ConflictResolver {
	if strategy == "" {
		strategy = StrategyHighestPriority
	}
	return &ConflictResolver{strategy: strategy}
}

// Strategy returns the configured strategy
func (r *ConflictResolver) Strategy() ConflictStrategy {
	return r.strategy
}

// Resolve picks a winner among matching rules. The returned result carries
// the losers as alternatives and a downgraded confidence so callers can
// see a conflict happened.
func (r *ConflictResolver) Resolve(sourceColumn string, matching []*MappingOverride) (ResolutionResult, error) {
	if len(matching) == 0 {
		return ResolutionResult{SourceColumn: sourceColumn}, nil
	}

	ordered := make([]*MappingOverride, len(matching))
	copy(ordered, matching)

	switch r.strategy {
	case StrategyHighestPriority, StrategyCombine:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Priority > ordered[j].Priority
		})
	case StrategyMostRecent:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].ModifiedAt.After(ordered[j].ModifiedAt)
		})
	case StrategyMostSpecific:
		sort.SliceStable(ordered, func(i, j int) bool {
			return specificity(ordered[i]) > specificity(ordered[j])
		})
	case StrategyManual:
		return ResolutionResult{SourceColumn: sourceColumn, ConflictDetected: true},
			fmt.Errorf("%d overrides match and the manual strategy forbids automatic selection", len(matching))
	default:
		return ResolutionResult{SourceColumn: sourceColumn, ConflictDetected: true},
			fmt.Errorf("unknown conflict strategy %q", r.strategy)
	}

	selected := ordered[0]
	alternatives := make([]string, 0, len(ordered)-1)
	for _, rule := range ordered[1:] {
		alternatives = append(alternatives, rule.ID)
	}
	return ResolutionResult{
		SourceColumn:     sourceColumn,
		OverrideApplied:  true,
		TargetField:      selected.TargetField,
		Confidence:       conflictConfidence,
		SelectedOverride: selected.ID,
		Alternatives:     alternatives,
		ConflictDetected: true,
	}, nil
}

// specificity ranks rules for the most-specific strategy: scoped rules
// beat global ones, more conditions beat fewer, longer patterns beat
// shorter.
func specificity(rule *MappingOverride) int {
	score := 0
	if rule.Scope.Kind != ScopeGlobal && rule.Scope.Kind != "" {
		score += 100
	}
	score += len(rule.Conditions) * 10
	score += len(rule.Pattern.Pattern)
	return score
}
