package override

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// =============================================================================
// ENGINE CONFIGURATION
// =============================================================================

// EngineConfig bounds rule registration and sizes the resolution cache
type EngineConfig struct {
	MaxPatternLength int              `yaml:"max_pattern_length"`
	MaxConditions    int              `yaml:"max_conditions"`
	MinPriority      int              `yaml:"min_priority"`
	MaxPriority      int              `yaml:"max_priority"`
	CacheSize        int              `yaml:"cache_size"`
	Strategy         ConflictStrategy `yaml:"conflict_strategy"`
}

// DefaultEngineConfig returns the standard limits
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxPatternLength: 512,
		MaxConditions:    10,
		MinPriority:      -1000,
		MaxPriority:      1000,
		CacheSize:        1000,
		Strategy:         StrategyHighestPriority,
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine stores override rules sorted by descending priority and resolves
// them against column names. All state is behind one mutex: resolutions
// update the cache and metrics, so even reads mutate.
type Engine struct {
	mu        sync.Mutex
	config    EngineConfig
	overrides []MappingOverride
	cache     *lru.Cache[string, ResolutionResult]
	resolver  *ConflictResolver
	metrics   Metrics
}

// NewEngine creates an engine with the given configuration. Zero-value
// limits fall back to the defaults so a partial config (say, only a cache
// size) still yields a usable engine.
func NewEngine(config EngineConfig) (*Engine, error) {
	defaults := DefaultEngineConfig()
	if config.MaxPatternLength <= 0 {
		config.MaxPatternLength = defaults.MaxPatternLength
	}
	if config.MaxConditions <= 0 {
		config.MaxConditions = defaults.MaxConditions
	}
	if config.MinPriority == 0 && config.MaxPriority == 0 {
		config.MinPriority = defaults.MinPriority
		config.MaxPriority = defaults.MaxPriority
	}
	if config.CacheSize <= 0 {
		config.CacheSize = defaults.CacheSize
	}
	cache, err := lru.New[string, ResolutionResult](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("override resolution cache: %w", err)
	}
	return &Engine{
		config:   config,
		cache:    cache,
		resolver: NewConflictResolver(config.Strategy),
	}, nil
}

// NewDefaultEngine uses the default configuration
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		panic(err)
	}
	return e
}

// =============================================================================
// RULE REGISTRATION
// =============================================================================

// AddOverride validates and registers a rule. Conflicts with existing
// active rules are detected and logged but do not block insertion unless
// the engine runs the Manual strategy. The whole resolution cache is
// invalidated; there is no fine-grained invalidation.
func (e *Engine) AddOverride(rule MappingOverride) error {
	if err := e.validateRule(&rule); err != nil {
		return fmt.Errorf("add override %q: %w", rule.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	conflicts := e.detectConflicts(&rule)
	if len(conflicts) > 0 {
		e.metrics.ConflictsDetected += int64(len(conflicts))
		for _, c := range conflicts {
			log.Printf("[override-engine] conflict (%s/%s): %s", c.Kind, c.Severity, c.Detail)
		}
		if e.resolver.Strategy() == StrategyManual {
			return fmt.Errorf("add override %q: %d conflicts require manual resolution", rule.Name, len(conflicts))
		}
	}

	e.overrides = append(e.overrides, rule)
	sort.SliceStable(e.overrides, func(i, j int) bool {
		return e.overrides[i].Priority > e.overrides[j].Priority
	})
	e.cache.Purge()
	return nil
}

// RemoveOverride deletes a rule by id and invalidates the cache
func (e *Engine) RemoveOverride(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.overrides {
		if e.overrides[i].ID == id {
			e.overrides = append(e.overrides[:i], e.overrides[i+1:]...)
			e.cache.Purge()
			return true
		}
	}
	return false
}

// Overrides returns a copy of the registered rules in priority order
func (e *Engine) Overrides() []MappingOverride {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]MappingOverride, len(e.overrides))
	copy(out, e.overrides)
	return out
}

// NewOverride fills in the bookkeeping fields of a rule
func NewOverride(name string, ruleType RuleType, pattern Pattern, targetField string, priority int, scope Scope) MappingOverride {
	now := time.Now().UTC()
	return MappingOverride{
		ID:          uuid.NewString(),
		Name:        name,
		RuleType:    ruleType,
		Pattern:     pattern,
		TargetField: targetField,
		Priority:    priority,
		Scope:       scope,
		CreatedAt:   now,
		ModifiedAt:  now,
		Active:      true,
		Version:     1,
	}
}

func (e *Engine) validateRule(rule *MappingOverride) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.Pattern.Pattern == "" {
		return fmt.Errorf("pattern is empty")
	}
	if len(rule.Pattern.Pattern) > e.config.MaxPatternLength {
		return fmt.Errorf("pattern exceeds %d characters", e.config.MaxPatternLength)
	}
	if len(rule.Conditions) > e.config.MaxConditions {
		return fmt.Errorf("%d conditions exceeds limit of %d", len(rule.Conditions), e.config.MaxConditions)
	}
	if rule.Priority < e.config.MinPriority || rule.Priority > e.config.MaxPriority {
		return fmt.Errorf("priority %d outside [%d, %d]", rule.Priority, e.config.MinPriority, e.config.MaxPriority)
	}
	if rule.TargetField == "" {
		return fmt.Errorf("target field is empty")
	}
	switch rule.RuleType {
	case RuleExactMatch, RuleContainsMatch, RuleFuzzyMatch:
	case RuleRegexPattern:
		// Matching is still a placeholder, but a malformed pattern must
		// fail at registration, not resolution.
		if _, err := regexp.Compile(rule.Pattern.Pattern); err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
	case RulePrefixSuffixMatch, RulePositionalMatch, RuleConditionalMatch:
		// Declared for file compatibility; matching is not built yet, and
		// a rule that registers but never fires is worse than an error.
		return fmt.Errorf("rule type %q is not implemented", rule.RuleType)
	default:
		return fmt.Errorf("unknown rule type %q", rule.RuleType)
	}
	return nil
}

// detectConflicts flags active rules with the same priority and scope
// whose patterns overlap. Informational only under every strategy except
// Manual. Caller holds the lock.
func (e *Engine) detectConflicts(rule *MappingOverride) []Conflict {
	var conflicts []Conflict
	for i := range e.overrides {
		existing := &e.overrides[i]
		if !existing.Active || existing.Priority != rule.Priority || existing.Scope != rule.Scope {
			continue
		}
		if !patternsOverlap(existing.Pattern.Pattern, rule.Pattern.Pattern) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			FirstID:  existing.ID,
			SecondID: rule.ID,
			Kind:     "priority_tie",
			Severity: "medium",
			Detail: fmt.Sprintf("rules %q and %q share priority %d, scope %s and overlapping patterns",
				existing.Name, rule.Name, rule.Priority, rule.Scope.Kind),
		})
	}
	return conflicts
}

func patternsOverlap(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return la == lb || strings.Contains(la, lb) || strings.Contains(lb, la)
}

// =============================================================================
// RESOLUTION
// =============================================================================

// ResolveMapping finds the override (if any) that applies to a column.
// Results are cached; every resolution, cached or fresh, updates metrics.
func (e *Engine) ResolveMapping(sourceColumn, documentType string, rctx ResolutionContext) (ResolutionResult, error) {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	key := sourceColumn + "\x00" + documentType + "\x00" + rctx.DocumentType
	if cached, ok := e.cache.Get(key); ok {
		e.recordResolution(cached, start)
		return cached, nil
	}

	type candidate struct {
		rule       *MappingOverride
		confidence float64
	}
	var candidates []candidate
	for i := range e.overrides {
		rule := &e.overrides[i]
		if !rule.Active {
			continue
		}
		if !scopeMatches(rule.Scope, rctx) {
			continue
		}
		if !conditionsMatch(rule.Conditions, rctx) {
			continue
		}
		matched, conf := matchPattern(rule, sourceColumn)
		if !matched {
			continue
		}
		candidates = append(candidates, candidate{rule: rule, confidence: conf})
	}

	var result ResolutionResult
	switch len(candidates) {
	case 0:
		result = ResolutionResult{SourceColumn: sourceColumn, OverrideApplied: false}
	case 1:
		result = ResolutionResult{
			SourceColumn:     sourceColumn,
			OverrideApplied:  true,
			TargetField:      candidates[0].rule.TargetField,
			Confidence:       1.0,
			SelectedOverride: candidates[0].rule.ID,
		}
	default:
		matching := make([]*MappingOverride, len(candidates))
		for i, c := range candidates {
			matching[i] = c.rule
		}
		resolved, err := e.resolver.Resolve(sourceColumn, matching)
		if err != nil {
			e.recordResolution(ResolutionResult{SourceColumn: sourceColumn}, start)
			return ResolutionResult{SourceColumn: sourceColumn, ConflictDetected: true},
				fmt.Errorf("resolve %q: %w", sourceColumn, err)
		}
		e.metrics.ConflictsDetected++
		result = resolved
	}

	e.cache.Add(key, result)
	e.recordResolution(result, start)
	return result, nil
}

// recordResolution updates the running metrics. Caller holds the lock.
func (e *Engine) recordResolution(result ResolutionResult, start time.Time) {
	e.metrics.TotalApplications++
	if result.OverrideApplied {
		e.metrics.SuccessfulMatches++
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if e.metrics.TotalApplications == 1 {
		e.metrics.AvgResolutionMillis = elapsed
	} else {
		e.metrics.AvgResolutionMillis = e.metrics.AvgResolutionMillis*0.9 + elapsed*0.1
	}
}

// Metrics returns a snapshot of the running counters
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

// =============================================================================
// MATCH PIPELINE
// =============================================================================

func scopeMatches(scope Scope, rctx ResolutionContext) bool {
	switch scope.Kind {
	case ScopeGlobal, "":
		return true
	case ScopeDocumentType:
		return scope.Value == rctx.DocumentType
	case ScopeOrganization:
		return scope.Value == rctx.Organization
	case ScopeUser:
		return scope.Value == rctx.User
	case ScopeSession:
		return scope.Value == rctx.Session
	case ScopeProject:
		return scope.Value == rctx.Project
	}
	return false
}

// conditionsMatch: every required condition must pass; when optional
// conditions exist at least one of them must pass as well.
func conditionsMatch(conditions []Condition, rctx ResolutionContext) bool {
	hasOptional := false
	anyOptionalPassed := false
	for _, cond := range conditions {
		passed := evaluateCondition(cond, rctx)
		if cond.Required {
			if !passed {
				return false
			}
		} else {
			hasOptional = true
			if passed {
				anyOptionalPassed = true
			}
		}
	}
	return !hasOptional || anyOptionalPassed
}

func evaluateCondition(cond Condition, rctx ResolutionContext) bool {
	var actual string
	switch cond.Field {
	case ConditionDocumentType:
		actual = rctx.DocumentType
	case ConditionFileName:
		actual = rctx.FileName
	case ConditionWorksheet:
		actual = rctx.Worksheet
	default:
		// Unknown condition fields do not veto a rule.
		return true
	}

	switch cond.Operator {
	case OperatorEquals:
		return actual == cond.Value
	case OperatorNotEquals:
		return actual != cond.Value
	case OperatorContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(cond.Value))
	case OperatorNotContains:
		return !strings.Contains(strings.ToLower(actual), strings.ToLower(cond.Value))
	}
	return true
}

// matchPattern applies the rule's pattern to a column name. Regex and
// fuzzy matching are placeholders: they report a match at a fixed
// confidence pending their real implementations.
func matchPattern(rule *MappingOverride, sourceColumn string) (bool, float64) {
	pattern := rule.Pattern.Pattern
	column := sourceColumn
	if !rule.Pattern.CaseSensitive {
		pattern = strings.ToLower(pattern)
		column = strings.ToLower(column)
	}

	switch rule.RuleType {
	case RuleExactMatch:
		return column == pattern, 1.0
	case RuleContainsMatch:
		return strings.Contains(column, pattern), 0.8
	case RuleRegexPattern:
		// Placeholder confidence until regex matching lands.
		return true, 0.9
	case RuleFuzzyMatch:
		// Placeholder confidence until fuzzy matching lands.
		return true, 0.7
	}
	return false, 0
}
