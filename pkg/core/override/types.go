// Package override - User-authored mapping override rules
// Stores pattern rules that force specific column-to-field mappings,
// resolves which rule applies for a given column and context, and settles
// conflicts between rules deterministically.
package override

import (
	"time"
)

// =============================================================================
// RULE TYPES
// =============================================================================

// RuleType selects how a rule's pattern is matched against a column name
type RuleType string

const (
	RuleExactMatch    RuleType = "exact_match"
	RuleRegexPattern  RuleType = "regex_pattern"
	RuleFuzzyMatch    RuleType = "fuzzy_match"
	RuleContainsMatch RuleType = "contains_match"

	// Declared for rule-file compatibility; registration rejects them
	// until their matchers exist.
	RulePrefixSuffixMatch RuleType = "prefix_suffix_match"
	RulePositionalMatch   RuleType = "positional_match"
	RuleConditionalMatch  RuleType = "conditional_match"
)

// Pattern is the matching payload of a rule
type Pattern struct {
	Pattern             string  `json:"pattern"`
	CaseSensitive       bool    `json:"case_sensitive"`
	WholeWord           bool    `json:"whole_word"`
	RegexFlags          string  `json:"regex_flags,omitempty"`
	FuzzyThreshold      float64 `json:"fuzzy_threshold,omitempty"`
	PositionConstraints []int   `json:"position_constraints,omitempty"`
}

// =============================================================================
// SCOPE
// =============================================================================

// ScopeKind restricts where a rule applies. Global always matches; every
// other kind requires exact equality with the matching context field.
type ScopeKind string

const (
	ScopeGlobal       ScopeKind = "global"
	ScopeDocumentType ScopeKind = "document_type"
	ScopeOrganization ScopeKind = "organization"
	ScopeUser         ScopeKind = "user"
	ScopeSession      ScopeKind = "session"
	ScopeProject      ScopeKind = "project"
)

// Scope pairs a kind with the value it must equal
type Scope struct {
	Kind  ScopeKind `json:"kind"`
	Value string    `json:"value,omitempty"`
}

// =============================================================================
// CONDITIONS
// =============================================================================

// ConditionField names the context attribute a condition inspects
type ConditionField string

const (
	ConditionDocumentType ConditionField = "document_type"
	ConditionFileName     ConditionField = "file_name"
	ConditionWorksheet    ConditionField = "worksheet"
)

// ConditionOperator compares the context attribute to the condition value
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorNotContains ConditionOperator = "not_contains"
)

// Condition gates a rule on document context. Required conditions must all
// pass; when optional conditions exist, at least one of them must pass too.
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
	Required bool              `json:"required"`
}

// =============================================================================
// OVERRIDE RULE
// =============================================================================

// MappingOverride is one user-authored rule. Priority is the primary
// conflict-resolution key; higher wins. The engine never deletes a rule on
// its own.
type MappingOverride struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	RuleType    RuleType    `json:"rule_type"`
	Pattern     Pattern     `json:"pattern"`
	TargetField string      `json:"target_field"`
	Priority    int         `json:"priority"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Scope       Scope       `json:"scope"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ModifiedAt  time.Time   `json:"modified_at"`
	Active      bool        `json:"active"`
	Version     int         `json:"version"`
	Tags        []string    `json:"tags,omitempty"`
}

// =============================================================================
// RESOLUTION TYPES
// =============================================================================

// ResolutionContext carries the document context a resolution runs in
type ResolutionContext struct {
	DocumentType string
	Organization string
	User         string
	Session      string
	Project      string
	FileName     string
	Worksheet    string
}

// ResolutionResult reports whether an override applied and which rule won
type ResolutionResult struct {
	SourceColumn     string   `json:"source_column"`
	OverrideApplied  bool     `json:"override_applied"`
	TargetField      string   `json:"target_field,omitempty"`
	Confidence       float64  `json:"confidence"`
	SelectedOverride string   `json:"selected_override,omitempty"`
	Alternatives     []string `json:"alternatives,omitempty"`
	ConflictDetected bool     `json:"conflict_detected"`
}

// Conflict describes two rules that can shadow each other
type Conflict struct {
	FirstID  string `json:"first_id"`
	SecondID string `json:"second_id"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Metrics tracks engine activity. AvgResolutionMillis is exponentially
// smoothed: avg = avg*0.9 + new*0.1.
type Metrics struct {
	TotalApplications   int64   `json:"total_applications"`
	SuccessfulMatches   int64   `json:"successful_matches"`
	ConflictsDetected   int64   `json:"conflicts_detected"`
	AvgResolutionMillis float64 `json:"avg_resolution_millis"`
}
