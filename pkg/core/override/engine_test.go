package override

import (
	"strings"
	"testing"
	"time"
)

func exactRule(name, pattern, target string, priority int) MappingOverride {
	return NewOverride(name, RuleExactMatch, Pattern{Pattern: pattern}, target, priority, Scope{Kind: ScopeGlobal})
}

func TestPriorityResolutionIgnoresInsertionOrder(t *testing.T) {
	// Same pattern and scope at priorities 10 and 20: the 20 must always
	// win regardless of which was registered first.
	orders := [][2]int{{10, 20}, {20, 10}}
	for _, order := range orders {
		e := NewDefaultEngine()
		a := exactRule("low", "hostname", "field_low", 10)
		b := exactRule("high", "hostname", "field_high", 20)
		rules := map[int]MappingOverride{10: a, 20: b}

		for _, p := range order {
			if err := e.AddOverride(rules[p]); err != nil {
				t.Fatalf("AddOverride(priority %d): %v", p, err)
			}
		}

		result, err := e.ResolveMapping("hostname", "inventory", ResolutionContext{})
		if err != nil {
			t.Fatalf("ResolveMapping: %v", err)
		}
		if !result.OverrideApplied {
			t.Fatal("override not applied")
		}
		if result.TargetField != "field_high" {
			t.Errorf("insertion order %v: resolved to %q, want field_high", order, result.TargetField)
		}
		if !result.ConflictDetected {
			t.Error("multi-match resolution should report a conflict")
		}
		if len(result.Alternatives) != 1 {
			t.Errorf("alternatives = %v, want the losing rule", result.Alternatives)
		}
	}
}

func TestSingleMatchFullConfidence(t *testing.T) {
	e := NewDefaultEngine()
	if err := e.AddOverride(exactRule("only", "asset id", "asset_id", 5)); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}

	result, err := e.ResolveMapping("Asset ID", "inventory", ResolutionContext{})
	if err != nil {
		t.Fatalf("ResolveMapping: %v", err)
	}
	if !result.OverrideApplied || result.Confidence != 1.0 {
		t.Errorf("single match: applied=%v confidence=%v, want true/1.0", result.OverrideApplied, result.Confidence)
	}
	if result.TargetField != "asset_id" {
		t.Errorf("TargetField = %q, want asset_id", result.TargetField)
	}
}

func TestNoMatch(t *testing.T) {
	e := NewDefaultEngine()
	if err := e.AddOverride(exactRule("r", "hostname", "hostname", 1)); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}
	result, err := e.ResolveMapping("unrelated column", "inventory", ResolutionContext{})
	if err != nil {
		t.Fatalf("ResolveMapping: %v", err)
	}
	if result.OverrideApplied {
		t.Errorf("unexpected match: %+v", result)
	}
}

func TestCaseSensitivity(t *testing.T) {
	e := NewDefaultEngine()
	rule := exactRule("cs", "Hostname", "hostname", 1)
	rule.Pattern.CaseSensitive = true
	if err := e.AddOverride(rule); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}

	miss, _ := e.ResolveMapping("hostname", "doc", ResolutionContext{})
	if miss.OverrideApplied {
		t.Error("case-sensitive rule matched different casing")
	}
	hit, _ := e.ResolveMapping("Hostname", "doc", ResolutionContext{})
	if !hit.OverrideApplied {
		t.Error("case-sensitive rule missed exact casing")
	}
}

func TestContainsMatch(t *testing.T) {
	e := NewDefaultEngine()
	rule := NewOverride("contains", RuleContainsMatch, Pattern{Pattern: "ip"}, "ip_address", 1, Scope{Kind: ScopeGlobal})
	if err := e.AddOverride(rule); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}
	result, _ := e.ResolveMapping("Device IP Address", "doc", ResolutionContext{})
	if !result.OverrideApplied {
		t.Error("contains rule did not match")
	}
}

func TestScopeFiltering(t *testing.T) {
	e := NewDefaultEngine()
	rule := NewOverride("scoped", RuleExactMatch, Pattern{Pattern: "owner"}, "owner", 1,
		Scope{Kind: ScopeDocumentType, Value: "inventory"})
	if err := e.AddOverride(rule); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}

	hit, _ := e.ResolveMapping("owner", "inventory", ResolutionContext{DocumentType: "inventory"})
	if !hit.OverrideApplied {
		t.Error("scoped rule missed matching document type")
	}
	miss, _ := e.ResolveMapping("owner", "poam", ResolutionContext{DocumentType: "poam"})
	if miss.OverrideApplied {
		t.Error("scoped rule applied outside its document type")
	}
}

func TestConditionEvaluation(t *testing.T) {
	e := NewDefaultEngine()
	rule := exactRule("conditioned", "status", "poam_status", 1)
	rule.Conditions = []Condition{
		{Field: ConditionDocumentType, Operator: OperatorEquals, Value: "poam", Required: true},
		{Field: ConditionFileName, Operator: OperatorContains, Value: "q3", Required: false},
		{Field: ConditionFileName, Operator: OperatorContains, Value: "q4", Required: false},
	}
	if err := e.AddOverride(rule); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}

	// Required passes, one optional passes.
	hit, _ := e.ResolveMapping("status", "poam", ResolutionContext{DocumentType: "poam", FileName: "poam-Q3.xlsx"})
	if !hit.OverrideApplied {
		t.Error("rule should apply when required and one optional condition pass")
	}

	// Required passes but no optional passes.
	miss, _ := e.ResolveMapping("status", "poam", ResolutionContext{DocumentType: "poam", FileName: "poam-q1.xlsx"})
	if miss.OverrideApplied {
		t.Error("rule applied although no optional condition passed")
	}

	// Required fails.
	miss2, _ := e.ResolveMapping("status", "inventory", ResolutionContext{DocumentType: "inventory", FileName: "x-q3.xlsx"})
	if miss2.OverrideApplied {
		t.Error("rule applied although the required condition failed")
	}
}

func TestInactiveRulesSkipped(t *testing.T) {
	e := NewDefaultEngine()
	rule := exactRule("inactive", "hostname", "hostname", 1)
	rule.Active = false
	if err := e.AddOverride(rule); err != nil {
		t.Fatalf("AddOverride: %v", err)
	}
	result, _ := e.ResolveMapping("hostname", "doc", ResolutionContext{})
	if result.OverrideApplied {
		t.Error("inactive rule applied")
	}
}

func TestValidationFailures(t *testing.T) {
	e := NewDefaultEngine()
	tests := []struct {
		name string
		rule MappingOverride
	}{
		{"empty pattern", exactRule("r", "", "t", 1)},
		{"priority out of range", exactRule("r", "p", "t", 100000)},
		{"empty target", exactRule("r", "p", "", 1)},
		{"bad regex", NewOverride("r", RuleRegexPattern, Pattern{Pattern: "("}, "t", 1, Scope{Kind: ScopeGlobal})},
		{"too many conditions", func() MappingOverride {
			r := exactRule("r", "p", "t", 1)
			for i := 0; i < 11; i++ {
				r.Conditions = append(r.Conditions, Condition{Field: ConditionFileName, Operator: OperatorContains, Value: "x"})
			}
			return r
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.AddOverride(tt.rule); err == nil {
				t.Errorf("AddOverride accepted invalid rule (%s)", tt.name)
			}
		})
	}
}

func TestPartialConfigFallsBackToDefaultLimits(t *testing.T) {
	// Only the cache size is set; the unset limits must not be enforced
	// as zero, which would reject every rule.
	e, err := NewEngine(EngineConfig{CacheSize: 1000})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.AddOverride(exactRule("partial", "hostname", "hostname", 10)); err != nil {
		t.Fatalf("AddOverride under partial config: %v", err)
	}
	result, err := e.ResolveMapping("hostname", "doc", ResolutionContext{})
	if err != nil {
		t.Fatalf("ResolveMapping: %v", err)
	}
	if !result.OverrideApplied {
		t.Error("rule registered under partial config did not resolve")
	}

	// Negative priorities sit inside the default [-1000, 1000] window.
	if err := e.AddOverride(exactRule("negative", "owner", "owner", -5)); err != nil {
		t.Errorf("AddOverride(priority -5): %v", err)
	}
	// The default limits still bound registration.
	if err := e.AddOverride(exactRule("huge", "col", "t", 5000)); err == nil {
		t.Error("priority 5000 accepted; default bounds not applied")
	}
	long := exactRule("long", strings.Repeat("x", 513), "t", 1)
	if err := e.AddOverride(long); err == nil {
		t.Error("513-char pattern accepted; default length limit not applied")
	}
}

func TestUnimplementedRuleTypesRejected(t *testing.T) {
	e := NewDefaultEngine()
	for _, ruleType := range []RuleType{RulePrefixSuffixMatch, RulePositionalMatch, RuleConditionalMatch} {
		rule := NewOverride("r", ruleType, Pattern{Pattern: "host"}, "hostname", 1, Scope{Kind: ScopeGlobal})
		err := e.AddOverride(rule)
		if err == nil {
			t.Errorf("AddOverride accepted %s rule, which can never match", ruleType)
			continue
		}
		if !strings.Contains(err.Error(), "not implemented") {
			t.Errorf("AddOverride(%s) = %v, want a not-implemented error", ruleType, err)
		}
	}

	rule := NewOverride("r", RuleType("made_up"), Pattern{Pattern: "host"}, "hostname", 1, Scope{Kind: ScopeGlobal})
	if err := e.AddOverride(rule); err == nil {
		t.Error("AddOverride accepted an unknown rule type")
	}
}

func TestConflictDetectionOnAdd(t *testing.T) {
	e := NewDefaultEngine()
	if err := e.AddOverride(exactRule("first", "hostname", "a", 10)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// Same priority, same scope, identical pattern: logged, not blocked.
	if err := e.AddOverride(exactRule("second", "hostname", "b", 10)); err != nil {
		t.Fatalf("conflicting add should not fail under default strategy: %v", err)
	}
	if got := e.Metrics().ConflictsDetected; got != 1 {
		t.Errorf("ConflictsDetected = %d, want 1", got)
	}
}

func TestManualStrategyBlocksConflictingAdd(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Strategy = StrategyManual
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.AddOverride(exactRule("first", "hostname", "a", 10)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := e.AddOverride(exactRule("second", "hostname", "b", 10)); err == nil {
		t.Error("manual strategy should reject a conflicting add")
	}
}

func TestMostRecentStrategy(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Strategy = StrategyMostRecent
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	older := exactRule("older", "col", "old_field", 5)
	older.ModifiedAt = time.Now().Add(-time.Hour)
	newer := exactRule("newer", "col", "new_field", 5)
	newer.ModifiedAt = time.Now()

	// Different priorities would decide under highest-priority; same
	// priority forces the recency comparison.
	if err := e.AddOverride(newer); err != nil {
		t.Fatal(err)
	}
	if err := e.AddOverride(older); err != nil {
		t.Fatal(err)
	}

	result, err := e.ResolveMapping("col", "doc", ResolutionContext{})
	if err != nil {
		t.Fatalf("ResolveMapping: %v", err)
	}
	if result.TargetField != "new_field" {
		t.Errorf("most-recent strategy picked %q, want new_field", result.TargetField)
	}
}

func TestMetricsSmoothing(t *testing.T) {
	e := NewDefaultEngine()
	if err := e.AddOverride(exactRule("r", "hostname", "hostname", 1)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if _, err := e.ResolveMapping("hostname", "doc", ResolutionContext{}); err != nil {
			t.Fatal(err)
		}
	}
	m := e.Metrics()
	if m.TotalApplications != 5 {
		t.Errorf("TotalApplications = %d, want 5", m.TotalApplications)
	}
	if m.SuccessfulMatches != 5 {
		t.Errorf("SuccessfulMatches = %d, want 5", m.SuccessfulMatches)
	}
	if m.AvgResolutionMillis < 0 {
		t.Errorf("AvgResolutionMillis = %v", m.AvgResolutionMillis)
	}
}

func TestCacheInvalidatedOnAdd(t *testing.T) {
	e := NewDefaultEngine()
	if err := e.AddOverride(exactRule("low", "col", "old_target", 1)); err != nil {
		t.Fatal(err)
	}
	first, _ := e.ResolveMapping("col", "doc", ResolutionContext{})
	if first.TargetField != "old_target" {
		t.Fatalf("first resolution: %+v", first)
	}

	// A higher-priority rule added later must win even though the old
	// resolution was cached.
	if err := e.AddOverride(exactRule("high", "col", "new_target", 50)); err != nil {
		t.Fatal(err)
	}
	second, _ := e.ResolveMapping("col", "doc", ResolutionContext{})
	if second.TargetField != "new_target" {
		t.Errorf("cached stale resolution survived AddOverride: %+v", second)
	}
}

func TestImportJSONTolerant(t *testing.T) {
	e := NewDefaultEngine()
	// Trailing comma on purpose: the repair pass should cope.
	payload := `[
		{
			"name": "imported",
			"rule_type": "exact_match",
			"pattern": {"pattern": "asset id"},
			"target_field": "asset_id",
			"priority": 10,
			"scope": {"kind": "global"},
			"active": true,
		},
	]`
	n, err := e.ImportJSON([]byte(payload))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d rules, want 1", n)
	}

	result, _ := e.ResolveMapping("Asset ID", "doc", ResolutionContext{})
	if !result.OverrideApplied || result.TargetField != "asset_id" {
		t.Errorf("imported rule did not resolve: %+v", result)
	}

	out, err := e.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(string(out), `"imported"`) {
		t.Error("export missing imported rule")
	}
}

func TestRemoveOverride(t *testing.T) {
	e := NewDefaultEngine()
	rule := exactRule("r", "col", "t", 1)
	if err := e.AddOverride(rule); err != nil {
		t.Fatal(err)
	}
	if !e.RemoveOverride(rule.ID) {
		t.Fatal("RemoveOverride did not find the rule")
	}
	result, _ := e.ResolveMapping("col", "doc", ResolutionContext{})
	if result.OverrideApplied {
		t.Error("removed rule still resolves")
	}
	if e.RemoveOverride("missing-id") {
		t.Error("RemoveOverride returned true for unknown id")
	}
}
